package render

// Mode is the add-report flow state. The browser build tracked this with
// an addingReport flag plus the presence of a temp marker; here the
// states are explicit so no flag combination is reachable but unhandled.
type Mode int

const (
	// ModeIdle: no add-report flow in progress. Map clicks are no-ops.
	ModeIdle Mode = iota
	// ModeArmed: the user asked to add a report; the next map click
	// captures the placement.
	ModeArmed
	// ModePlacing: a provisional marker exists and the composition form
	// is open, awaiting submit or dismissal.
	ModePlacing
)

func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "idle"
	case ModeArmed:
		return "armed"
	case ModePlacing:
		return "placing"
	default:
		return "unknown"
	}
}
