package sshutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseHostsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config")
	content := `Host *
  ServerAliveInterval 30

Host lab lab-alt
  HostName 10.0.0.7
  User pi
  Port 2222

Host build?
  HostName 10.0.0.8

Host basement
  HostName basement.local

Host lab
  HostName duplicate
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	hosts, err := ParseHostsFile(path)
	if err != nil {
		t.Fatalf("ParseHostsFile failed: %v", err)
	}

	var aliases []string
	for _, h := range hosts {
		aliases = append(aliases, h.Alias)
	}
	want := []string{"basement", "lab", "lab-alt"}
	if len(aliases) != len(want) {
		t.Fatalf("aliases = %v, want %v", aliases, want)
	}
	for i := range want {
		if aliases[i] != want[i] {
			t.Errorf("aliases[%d] = %q, want %q", i, aliases[i], want[i])
		}
	}

	lab := hosts[1]
	if lab.Hostname != "10.0.0.7" || lab.User != "pi" || lab.Port != "2222" {
		t.Errorf("lab = %+v", lab)
	}
}

func TestParseHostsFile_Missing(t *testing.T) {
	hosts, err := ParseHostsFile(filepath.Join(t.TempDir(), "nope"))
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if len(hosts) != 0 {
		t.Errorf("hosts = %v, want none", hosts)
	}
}

func TestHostEntry_Description(t *testing.T) {
	tests := []struct {
		entry HostEntry
		want  string
	}{
		{HostEntry{Alias: "lab"}, "lab"},
		{HostEntry{Alias: "lab", Hostname: "lab"}, "lab"},
		{HostEntry{Alias: "lab", Hostname: "10.0.0.7", User: "pi"}, "10.0.0.7, user: pi"},
		{HostEntry{Alias: "lab", Port: "22"}, "lab"},
		{HostEntry{Alias: "lab", Port: "2222"}, "port: 2222"},
	}

	for _, tt := range tests {
		if got := tt.entry.Description(); got != tt.want {
			t.Errorf("Description(%+v) = %q, want %q", tt.entry, got, tt.want)
		}
	}
}
