package agent

// Mode is the agent's survival state, derived from the current GMAC level
// every cycle. Dead is terminal.
type Mode int

const (
	ModeNormal Mode = iota
	ModeSurvival
	ModeCritical
	ModeDead
)

// Thresholds orders the survival boundaries. Valid configurations satisfy
// Death < Critical < Survival.
type Thresholds struct {
	Death    float64
	Critical float64
	Survival float64
}

// ModeFor maps a resource level onto the survival state machine. Equality
// with a boundary resolves to the more severe state.
func ModeFor(level float64, t Thresholds) Mode {
	switch {
	case level <= t.Death:
		return ModeDead
	case level <= t.Critical:
		return ModeCritical
	case level <= t.Survival:
		return ModeSurvival
	default:
		return ModeNormal
	}
}

func (m Mode) String() string {
	switch m {
	case ModeNormal:
		return "NORMAL"
	case ModeSurvival:
		return "SURVIVAL"
	case ModeCritical:
		return "CRITICAL"
	case ModeDead:
		return "DEAD"
	default:
		return "UNKNOWN"
	}
}
