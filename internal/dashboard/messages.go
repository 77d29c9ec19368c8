package dashboard

import "github.com/rileyhilliard/adbdial/internal/dial"

// FrameMsg carries a new status frame from the reporter.
type FrameMsg dial.Frame
