package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/adbdial/internal/bridge"
	"github.com/rileyhilliard/adbdial/internal/config"
	"github.com/rileyhilliard/adbdial/internal/doctor"
	"github.com/rileyhilliard/adbdial/internal/errors"
	"github.com/rileyhilliard/adbdial/internal/ui"
	"github.com/spf13/cobra"
)

var doctorJSON bool

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check that adbdial can run here",
	Long: `Run the same preflight a dial session does, plus a few more checks, and
report what would get in the way: config, adb, local load against the
governor's limits, the SSH relay, and metric exporters.

Examples:
  adbdial doctor
  adbdial doctor --relay lab-box
  adbdial doctor --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return doctorCommand(cmd.Context(), rootFlags, defaultEnv(), doctorJSON)
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
	doctorCmd.Flags().BoolVar(&doctorJSON, "json", false, "output results as JSON")
	doctorCmd.Flags().StringVar(&rootFlags.Relay, "relay", "", "SSH host to run adb on")
	_ = doctorCmd.RegisterFlagCompletionFunc("relay", completeRelayHosts)
}

// DoctorOutput is the --json shape.
type DoctorOutput struct {
	Results map[string][]doctor.CheckResult `json:"results"`
	Summary DoctorSummary                   `json:"summary"`
}

// DoctorSummary counts results by status.
type DoctorSummary struct {
	Pass     int  `json:"pass"`
	Warn     int  `json:"warn"`
	Fail     int  `json:"fail"`
	AllClear bool `json:"all_clear"`
}

func doctorCommand(ctx context.Context, flags DialFlags, e env, asJSON bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := loadConfig(flags)
	if err != nil {
		// Report the broken config through the check itself.
		cfg = config.DefaultConfig()
	}

	br := e.newBridge(cfg.Bridge)
	defer br.Close()

	checks := doctor.Collect(cfgFile, cfg, br, bridge.Describe(cfg.Bridge), e.newSampler())
	results := doctor.RunAllParallel(ctx, checks)

	if asJSON {
		err = writeDoctorJSON(e.stdout, checks, results)
	} else {
		writeDoctorText(e.stdout, checks, results)
	}
	if err != nil {
		return err
	}

	if doctor.HasFailures(results) {
		return errors.New(errors.ErrConfig,
			doctor.Summary(results),
			"Fix the failed checks above and run 'adbdial doctor' again")
	}
	return nil
}

func writeDoctorJSON(w io.Writer, checks []doctor.Check, results []doctor.CheckResult) error {
	grouped := make(map[string][]doctor.CheckResult)
	for i, c := range checks {
		grouped[c.Category()] = append(grouped[c.Category()], results[i])
	}

	counts := doctor.CountByStatus(results)
	out := DoctorOutput{
		Results: grouped,
		Summary: DoctorSummary{
			Pass:     counts[doctor.StatusPass],
			Warn:     counts[doctor.StatusWarn],
			Fail:     counts[doctor.StatusFail],
			AllClear: !doctor.HasIssues(results),
		},
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func writeDoctorText(w io.Writer, checks []doctor.Check, results []doctor.CheckResult) {
	headerStyle := lipgloss.NewStyle().Bold(true)

	fmt.Fprintln(w)
	fmt.Fprintln(w, headerStyle.Render("adbdial diagnostic report"))
	fmt.Fprintln(w)

	grouped := doctor.GroupByCategory(checks)
	for _, category := range doctor.CategoryOrder {
		indices := grouped[category]
		if len(indices) == 0 {
			continue
		}
		fmt.Fprintln(w, headerStyle.Render(category))
		for _, idx := range indices {
			writeCheckResult(w, results[idx])
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, strings.Repeat("━", ui.HeaderWidth))
	if doctor.HasIssues(results) {
		fmt.Fprintf(w, "%s %s\n", ui.ErrorStyle().Render(ui.SymbolFail), doctor.Summary(results))
	} else {
		fmt.Fprintf(w, "%s %s\n", ui.SuccessStyle().Render(ui.SymbolSuccess), doctor.Summary(results))
	}
}

func writeCheckResult(w io.Writer, r doctor.CheckResult) {
	symbol := ui.SuccessStyle().Render(ui.SymbolSuccess)
	switch r.Status {
	case doctor.StatusWarn:
		symbol = ui.WarningStyle().Render(ui.SymbolWarning)
	case doctor.StatusFail:
		symbol = ui.ErrorStyle().Render(ui.SymbolFail)
	}

	fmt.Fprintf(w, "  %s %s\n", symbol, r.Message)
	if r.Suggestion != "" && r.Status != doctor.StatusPass {
		fmt.Fprintf(w, "    %s\n", ui.MutedStyle().Render(r.Suggestion))
	}
}
