package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/rileyhilliard/adbdial/internal/dial"
	"github.com/rileyhilliard/adbdial/internal/util"
)

// FailureCauses are the usual reasons a device never accepts the connection.
var FailureCauses = []string{
	"Debugging is off on the device (Developer options > USB or Wireless debugging)",
	"The device isn't reachable from this network",
	"adbd isn't listening on TCP yet; connect once over USB and run 'adb tcpip 5555'",
}

// RenderSuccess renders the banner shown when a device connects.
func RenderSuccess(o dial.Outcome) string {
	return SuccessStyle().Render(fmt.Sprintf("%s Connected to %s", SymbolSuccess, o.Endpoint)) +
		MutedStyle().Render(fmt.Sprintf(" after %s, %s", o.Elapsed.Round(10*time.Millisecond), attempts(o.Attempts))) + "\n"
}

// RenderFailureReport explains a session that ended without a connection.
func RenderFailureReport(o dial.Outcome, target string) string {
	var b strings.Builder

	headline := fmt.Sprintf("%s Couldn't connect to %s", SymbolFail, target)
	if o.Reason == dial.ReasonInterrupt {
		headline = fmt.Sprintf("%s Stopped dialing %s", SymbolFail, target)
	}
	b.WriteString(ErrorStyle().Render(headline))
	b.WriteString(MutedStyle().Render(fmt.Sprintf(" after %s, %s", o.Elapsed.Round(time.Second), attempts(o.Attempts))))
	b.WriteString("\n")

	if reason, n := o.TopFailure(); n > 0 {
		fmt.Fprintf(&b, "\n  Most attempts failed with: %s (%d of %d)\n", reason, n, o.Attempts)
	}
	if o.Spawned == 0 {
		b.WriteString("\n  " + WarningStyle().Render(SymbolThrottled+" No workers started: CPU or memory stayed over the governor's limits") + "\n")
	}

	b.WriteString("\n  Likely causes:\n")
	for i, c := range FailureCauses {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, c)
	}
	return b.String()
}

func attempts(n int64) string {
	return fmt.Sprintf("%d %s", n, util.Pluralize(n, "attempt", "attempts"))
}
