package ui

const (
	SymbolSuccess   = "✓"
	SymbolFail      = "✗"
	SymbolWarning   = "⚠"
	SymbolThrottled = "⏸"
	SymbolArrow     = "→"
	SymbolUp        = "↑"
	SymbolDown      = "↓"
)
