package bridge

import (
	"bytes"
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/rileyhilliard/adbdial/internal/config"
	"github.com/rileyhilliard/adbdial/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeADB writes an executable shell script standing in for adb.
func fakeADB(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script stand-in needs a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "adb")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script+"\n"), 0o755))
	return path
}

func TestADB_CheckMissingBinary(t *testing.T) {
	err := NewADB("adb-definitely-not-installed").Check(context.Background())

	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrBridge))
	assert.Contains(t, err.Error(), "adb-definitely-not-installed")
}

func TestADB_Check(t *testing.T) {
	bin := fakeADB(t, `echo "Android Debug Bridge version 1.0.41"`)
	assert.NoError(t, NewADB(bin).Check(context.Background()))
}

func TestADB_Connect(t *testing.T) {
	bin := fakeADB(t, `echo "connected to $2"`)

	out, err := NewADB(bin).Connect(context.Background(), "10.0.0.2:5555")
	require.NoError(t, err)
	assert.Equal(t, "connected to 10.0.0.2:5555", out)
}

func TestADB_ConnectExitCode(t *testing.T) {
	bin := fakeADB(t, `echo "error: boom"; exit 3`)

	out, err := NewADB(bin).Connect(context.Background(), "10.0.0.2:5555")
	assert.Equal(t, "error: boom", out)
	code, ok := errors.GetExitCode(err)
	require.True(t, ok)
	assert.Equal(t, 3, code)
}

func TestADB_ConnectTimeout(t *testing.T) {
	bin := fakeADB(t, `exec sleep 5`)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := NewADB(bin).Connect(ctx, "10.0.0.2:5555")
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, context.DeadlineExceeded))
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Equal(t, ReasonTimeout, Categorize("", err))
}

func TestADB_Run(t *testing.T) {
	bin := fakeADB(t, `echo "$@"; exit 2`)

	var stdout bytes.Buffer
	code, err := NewADB(bin).Run(context.Background(), "10.0.0.2:5555", []string{"shell", "ls"}, nil, &stdout, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, code)
	assert.Equal(t, "-s 10.0.0.2:5555 shell ls\n", stdout.String())
}

func TestNew(t *testing.T) {
	cfg := config.DefaultConfig().Bridge
	_, ok := New(cfg).(*ADB)
	assert.True(t, ok)
	assert.Equal(t, "adb", Describe(cfg))

	cfg.Relay = "lab-box"
	_, ok = New(cfg).(*Relay)
	assert.True(t, ok)
	assert.Equal(t, "adb via lab-box", Describe(cfg))
}
