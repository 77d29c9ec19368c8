package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/rileyhilliard/adbdial/internal/bridge"
	"github.com/rileyhilliard/adbdial/internal/config"
	"github.com/rileyhilliard/adbdial/internal/dashboard"
	"github.com/rileyhilliard/adbdial/internal/dial"
	"github.com/rileyhilliard/adbdial/internal/errors"
	"github.com/rileyhilliard/adbdial/internal/export"
	"github.com/rileyhilliard/adbdial/internal/logger"
	"github.com/rileyhilliard/adbdial/internal/shell"
	"github.com/rileyhilliard/adbdial/internal/telemetry"
	"github.com/rileyhilliard/adbdial/internal/ui"
	"github.com/rileyhilliard/adbdial/pkg/sshutil"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// DialFlags are the per-run overrides on the root command. Zero values leave
// the config untouched.
type DialFlags struct {
	Port        int
	Deadline    time.Duration
	Output      string
	Relay       string
	MetricsAddr string
}

var rootFlags DialFlags

func addDialFlags(cmd *cobra.Command, flags *DialFlags) {
	cmd.Flags().IntVarP(&flags.Port, "port", "p", 0, "device port (default from config, 5555)")
	cmd.Flags().DurationVarP(&flags.Deadline, "deadline", "d", 0, "give up after this long (e.g. 30s, 2m)")
	cmd.Flags().StringVarP(&flags.Output, "output", "o", "", "status display: "+strings.Join(config.OutputModes, ", "))
	cmd.Flags().StringVar(&flags.Relay, "relay", "", "SSH host to run adb on")
	cmd.Flags().StringVar(&flags.MetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address (e.g. :9464)")

	_ = cmd.RegisterFlagCompletionFunc("output", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return config.OutputModes, cobra.ShellCompDirectiveNoFileComp
	})
	_ = cmd.RegisterFlagCompletionFunc("relay", completeRelayHosts)
}

// completeRelayHosts offers Host aliases from ~/.ssh/config.
func completeRelayHosts(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	hosts, err := sshutil.KnownHosts()
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	var out []string
	for _, h := range hosts {
		if strings.HasPrefix(h.Alias, toComplete) {
			out = append(out, h.Alias+"\t"+h.Description())
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}

// env is everything dialCommand reaches outside the process.
type env struct {
	stdin          io.Reader
	stdout, stderr io.Writer
	isTTY          bool

	newBridge  func(config.BridgeConfig) bridge.Bridge
	newSampler telemetry.Factory
	askHost    func(port int) (string, error)
}

func defaultEnv() env {
	tty := term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
	e := env{
		stdin:      os.Stdin,
		stdout:     os.Stdout,
		stderr:     os.Stderr,
		isTTY:      tty,
		newBridge:  bridge.New,
		newSampler: telemetry.HostFactory(),
	}
	if tty {
		e.askHost = askHostForm
	} else {
		e.askHost = func(port int) (string, error) { return readHost(os.Stdin, os.Stdout) }
	}
	return e
}

// loadConfig loads the config file and applies flag overrides on top.
func loadConfig(flags DialFlags) (*config.Config, error) {
	cfg, path, err := config.LoadOrDefault(cfgFile)
	if err != nil {
		return nil, err
	}
	if path != "" {
		log.Debug("loaded config from %s", path)
	}

	if flags.Port != 0 {
		cfg.Port = flags.Port
	}
	if flags.Deadline != 0 {
		cfg.Session.Deadline = flags.Deadline
	}
	if flags.Output != "" {
		cfg.Reporter.Output = flags.Output
	}
	if flags.Relay != "" {
		cfg.Bridge.Relay = flags.Relay
	}
	if flags.MetricsAddr != "" {
		cfg.Metrics.Prometheus.Enabled = true
		cfg.Metrics.Prometheus.Listen = flags.MetricsAddr
	}

	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// resolveOutput turns "auto" into a concrete mode.
func resolveOutput(mode string, tty bool) string {
	if mode != config.OutputAuto {
		return mode
	}
	if tty {
		return config.OutputDashboard
	}
	return config.OutputPlain
}

var log = logger.NewEnvLogger("[cli]")

// dialCommand dials host until adb connects and then opens the shell.
func dialCommand(ctx context.Context, host string, flags DialFlags, e env) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}

	if host == "" {
		if host, err = e.askHost(cfg.Port); err != nil {
			return err
		}
	}
	target, err := dial.ParseTarget(host, cfg.Port)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	br := e.newBridge(cfg.Bridge)
	defer br.Close()

	sinks := export.FromConfig(cfg.Metrics, logger.NewEnvLogger("[export]"))
	if err := export.InitializeAll(ctx, sinks, log); err != nil {
		return err
	}
	defer export.CloseAll(sinks, log)

	sessCtx, cancelSession := context.WithCancel(ctx)
	defer cancelSession()

	mode := resolveOutput(cfg.Reporter.Output, e.isTTY)
	var renderer dial.Renderer
	var dash *dashboard.Dashboard
	switch mode {
	case config.OutputDashboard:
		if logFileFlag == "" {
			logger.SetOutput(io.Discard)
		}
		dash = dashboard.Start(target.String(), cfg.Session.Deadline, cancelSession)
		renderer = dash.Renderer()
	case config.OutputScreen:
		renderer = ui.NewScreen(e.stdout)
	case config.OutputPlain:
		fmt.Fprint(e.stdout, ui.RenderHeader(ui.HeaderInfo{
			Version:  formatVersion(version),
			Target:   target.String(),
			Bridge:   bridge.Describe(cfg.Bridge),
			Deadline: cfg.Session.Deadline,
		}))
		renderer = ui.NewPlain(e.stdout)
	default:
		renderer = ui.Quiet{}
	}

	session := dial.NewSession(target, br, e.newSampler, dial.SettingsFrom(cfg),
		dial.WithClassifier(bridge.Classify),
		dial.WithRenderer(renderer),
		dial.WithSinks(export.FrameSinks(sinks)...),
	)
	outcome, runErr := session.Run(sessCtx)

	if dash != nil {
		if err := dash.Close(); err != nil {
			log.Debug("dashboard: %v", err)
		}
		logger.SetOutput(logOutput)
	}
	if runErr != nil {
		return runErr
	}

	if !outcome.Succeeded() {
		fmt.Fprint(e.stdout, ui.RenderFailureReport(outcome, target.String()))
		return nil
	}

	fmt.Fprint(e.stdout, ui.RenderSuccess(outcome))
	fmt.Fprintf(e.stdout, "Type adb commands for %s, or '%s' to leave.\n", outcome.Endpoint, shell.ExitCommand)
	return shell.Run(ctx, br, outcome.Endpoint, e.stdin, e.stdout, e.stderr)
}

// askHostForm prompts for the device address with a huh input.
func askHostForm(port int) (string, error) {
	var host string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Device address").
				Description(fmt.Sprintf("IP or hostname, optionally with :port (default %d)", port)).
				Placeholder("192.168.1.40").
				Value(&host).
				Validate(func(s string) error {
					_, err := dial.ParseTarget(s, port)
					return err
				}),
		),
	)
	if err := form.Run(); err != nil {
		return "", errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to get the device address",
			"Pass it as an argument: adbdial <host>")
	}
	return strings.TrimSpace(host), nil
}

// readHost reads the device address as one line when stdin isn't a terminal.
// It stops at the newline so piped shell commands stay unread for the shell.
func readHost(in io.Reader, out io.Writer) (string, error) {
	fmt.Fprint(out, "Device address: ")
	line, err := readLine(in)
	line = strings.TrimSpace(line)
	if line == "" {
		if err != nil && err != io.EOF {
			return "", errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to read the device address",
				"Pass it as an argument: adbdial <host>")
		}
		return "", errors.New(errors.ErrConfig,
			"No device address given",
			"Pass it as an argument: adbdial <host>")
	}
	return line, nil
}

// readLine reads up to and including '\n' one byte at a time.
func readLine(in io.Reader) (string, error) {
	var sb strings.Builder
	buf := make([]byte, 1)
	for {
		n, err := in.Read(buf)
		if n > 0 {
			if buf[0] == '\n' {
				return sb.String(), nil
			}
			sb.WriteByte(buf[0])
		}
		if err != nil {
			return sb.String(), err
		}
	}
}
