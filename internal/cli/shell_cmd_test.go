package cli

import (
	"context"
	"testing"

	bridgetesting "github.com/rileyhilliard/adbdial/internal/bridge/testing"
	"github.com/rileyhilliard/adbdial/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShellCommand_RunsUntilExit(t *testing.T) {
	useConfig(t, fastConfig)
	fake := bridgetesting.AlwaysFail()
	te := newTestEnv(fake, "devices\nshell ls /sdcard\nEXIT\n")

	err := shellCommand(context.Background(), "emulator-5554", "", te.env)
	require.NoError(t, err)

	runs := fake.Runs()
	require.Len(t, runs, 2)
	assert.Equal(t, "emulator-5554", runs[1].Device)
	assert.Equal(t, []string{"shell", "ls", "/sdcard"}, runs[1].Args)
	assert.Contains(t, te.stdout.String(), "adb@emulator-5554 $ ")
}

func TestShellCommand_CheckFails(t *testing.T) {
	useConfig(t, fastConfig)
	fake := bridgetesting.AlwaysFail()
	fake.CheckErr = errors.New(errors.ErrBridge, "Can't find 'adb'", "")
	te := newTestEnv(fake, "devices\n")

	err := shellCommand(context.Background(), "emulator-5554", "", te.env)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrBridge))
	assert.Empty(t, fake.Runs())
}

func TestShellCommand_Relay(t *testing.T) {
	useConfig(t, fastConfig)
	te := newTestEnv(bridgetesting.AlwaysFail(), "")

	require.NoError(t, shellCommand(context.Background(), "10.0.0.2:5555", "lab-box", te.env))
	assert.Equal(t, "lab-box", te.relay)
}

func TestShellCommandArgs(t *testing.T) {
	assert.Error(t, shellCmd.Args(shellCmd, nil))
	assert.NoError(t, shellCmd.Args(shellCmd, []string{"emulator-5554"}))
	assert.Error(t, shellCmd.Args(shellCmd, []string{"a", "b"}))
}
