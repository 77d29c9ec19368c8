package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rileyhilliard/adbdial/internal/shell"
	"github.com/spf13/cobra"
)

var shellRelayFlag string

var shellCmd = &cobra.Command{
	Use:   "shell <device>",
	Short: "Run adb commands against a connected device",
	Long: `Open the adbdial prompt against a device adb already knows about,
without dialing first. Each line is run as 'adb -s <device> <line>'.

Examples:
  adbdial shell 192.168.1.40:5555
  adbdial shell emulator-5554
  adbdial shell 10.0.0.7:5555 --relay lab-box`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return shellCommand(cmd.Context(), args[0], shellRelayFlag, defaultEnv())
	},
}

func init() {
	rootCmd.AddCommand(shellCmd)
	shellCmd.Flags().StringVar(&shellRelayFlag, "relay", "", "SSH host to run adb on")
	_ = shellCmd.RegisterFlagCompletionFunc("relay", completeRelayHosts)
}

func shellCommand(ctx context.Context, device, relay string, e env) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := loadConfig(DialFlags{Relay: relay})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	br := e.newBridge(cfg.Bridge)
	defer br.Close()

	if err := br.Check(ctx); err != nil {
		return err
	}
	fmt.Fprintf(e.stdout, "Type adb commands for %s, or '%s' to leave.\n", device, shell.ExitCommand)
	return shell.Run(ctx, br, device, e.stdin, e.stdout, e.stderr)
}

