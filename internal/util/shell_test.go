package util

import "testing"

func TestShellQuote(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"simple", "'simple'"},
		{"with space", "'with space'"},
		{"with'quote", "'with'\\''quote'"},
		{"", "''"},
		{"path/to/file", "'path/to/file'"},
		{"$variable", "'$variable'"},
		{"$(command)", "'$(command)'"},
		{"`backtick`", "'`backtick`'"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := ShellQuote(tt.input)
			if got != tt.expected {
				t.Errorf("ShellQuote(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestShellJoin(t *testing.T) {
	tests := []struct {
		args     []string
		expected string
	}{
		{nil, ""},
		{[]string{"adb", "connect", "10.0.0.9:5555"}, "'adb' 'connect' '10.0.0.9:5555'"},
		{[]string{"shell", "echo $HOME; rm -rf /"}, "'shell' 'echo $HOME; rm -rf /'"},
		{[]string{"it's"}, "'it'\\''s'"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			got := ShellJoin(tt.args...)
			if got != tt.expected {
				t.Errorf("ShellJoin(%q) = %q, want %q", tt.args, got, tt.expected)
			}
		})
	}
}
