package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rileyhilliard/adbdial/internal/errors"
	"github.com/rileyhilliard/adbdial/internal/logger"
	"github.com/rileyhilliard/adbdial/internal/ui"
	"github.com/rileyhilliard/adbdial/internal/util"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Global flags
var (
	cfgFile     string
	verboseFlag bool
	noColorFlag bool
	logFileFlag string
)

// logOutput is where env loggers write outside of full-screen mode.
var (
	logOutput io.Writer = os.Stderr
	logCloser io.Closer
)

var rootCmd = &cobra.Command{
	Use:   "adbdial [host]",
	Short: "Keep dialing an Android device over adb until it answers",
	Long: `adbdial runs 'adb connect' against a device over and over, from as many
concurrent workers as your machine can afford, until the device accepts the
connection or the deadline passes. Workers are added in small batches only
while CPU and memory stay under their limits.

Once connected you get a prompt that runs adb commands against the device.

Examples:
  adbdial 192.168.1.40
  adbdial pixel.lan:5556 --deadline 2m
  adbdial 10.0.0.7 --relay lab-box --output plain`,
	Args:              cobra.MaximumNArgs(1),
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupGlobals,
	RunE: func(cmd *cobra.Command, args []string) error {
		var host string
		if len(args) == 1 {
			host = args[0]
		}
		return dialCommand(cmd.Context(), host, rootFlags, defaultEnv())
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default: .adbdial.yaml, then ~/.config/adbdial/config.yaml)")
	pf.BoolVarP(&verboseFlag, "verbose", "v", false, "enable debug logging")
	pf.BoolVar(&noColorFlag, "no-color", false, "disable colored output")
	pf.StringVar(&logFileFlag, "log-file", "", "append log output to this file instead of stderr")

	addDialFlags(rootCmd, &rootFlags)
}

// setupGlobals applies the global flags before any command runs.
func setupGlobals(cmd *cobra.Command, args []string) error {
	logger.SetVerbose(verboseFlag)

	if noColorFlag || os.Getenv("NO_COLOR") != "" {
		ui.DisableColors()
	}

	if logFileFlag != "" {
		f, err := os.OpenFile(logFileFlag, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Can't open log file "+logFileFlag,
				"Check the directory exists and is writable")
		}
		logOutput = f
		logCloser = f
		logger.SetOutput(f)
	}
	return nil
}

// Execute runs the root command and exits the process with the status it
// maps to.
func Execute() {
	err := rootCmd.Execute()
	if logCloser != nil {
		logCloser.Close()
	}
	if err == nil {
		return
	}

	fmt.Fprint(os.Stderr, err.Error())
	if !strings.HasSuffix(err.Error(), "\n") {
		fmt.Fprintln(os.Stderr)
	}
	if isUnknownFlagError(err) {
		cmd, _, findErr := rootCmd.Find(os.Args[1:])
		if findErr != nil || cmd == nil {
			cmd = rootCmd
		}
		if hint := suggestFlags(extractUnknownFlag(err), cmd); hint != "" {
			fmt.Fprintln(os.Stderr, hint)
		}
	}
	os.Exit(exitCode(err))
}

// exitCode returns the status for err: the device command's own status when
// the shell ended on one, otherwise 1.
func exitCode(err error) int {
	if code, ok := errors.GetExitCode(err); ok && code > 0 {
		return code
	}
	return 1
}

// isUnknownFlagError checks if the error is from cobra about an unknown flag.
func isUnknownFlagError(err error) bool {
	return strings.Contains(err.Error(), "unknown flag") ||
		strings.Contains(err.Error(), "unknown shorthand flag")
}

// extractUnknownFlag pulls the flag name from cobra's error message,
// e.g. `unknown flag: --deadlin` yields "deadlin".
func extractUnknownFlag(err error) string {
	msg := err.Error()
	idx := strings.Index(msg, "--")
	if idx < 0 {
		return ""
	}
	name := msg[idx+2:]
	if end := strings.IndexAny(name, " =\n"); end >= 0 {
		name = name[:end]
	}
	return name
}

// suggestFlags returns a "Did you mean" hint for a mistyped long flag.
func suggestFlags(name string, cmd *cobra.Command) string {
	if name == "" {
		return ""
	}

	var names []string
	collect := func(f *pflag.Flag) { names = append(names, f.Name) }
	cmd.Flags().VisitAll(collect)
	cmd.PersistentFlags().VisitAll(collect)

	similar := util.SuggestSimilar(name, names, 3)
	if len(similar) == 0 {
		return ""
	}
	for i, s := range similar {
		similar[i] = "--" + s
	}
	return "Did you mean: " + strings.Join(similar, ", ") + "?"
}
