package sim

// LossReason says why a session was lost.
type LossReason int

const (
	LossNone LossReason = iota
	LossBatteryDepleted
	LossCaught
)

func (r LossReason) String() string {
	switch r {
	case LossNone:
		return "none"
	case LossBatteryDepleted:
		return "battery depleted"
	case LossCaught:
		return "caught"
	default:
		return "unknown"
	}
}

// SessionFlags are the outcome latches. GameOver and GameWon are mutually
// exclusive and never reset within a session.
type SessionFlags struct {
	Collected int
	GameOver  bool
	GameWon   bool
	Reason    LossReason
}

// Ended reports whether either latch is set.
func (f SessionFlags) Ended() bool {
	return f.GameOver || f.GameWon
}

// SessionState owns the latches.
type SessionState struct {
	flags SessionFlags
}

// TriggerLoss latches a loss. It returns false when the session had already ended.
func (s *SessionState) TriggerLoss(reason LossReason) bool {
	if s.flags.Ended() {
		return false
	}
	s.flags.GameOver = true
	s.flags.Reason = reason
	return true
}

// TriggerWin latches a win. It returns false when the session had already ended.
func (s *SessionState) TriggerWin() bool {
	if s.flags.Ended() {
		return false
	}
	s.flags.GameWon = true
	return true
}

// Flags returns a copy of the current latches.
func (s *SessionState) Flags() SessionFlags {
	return s.flags
}

// Ended reports whether the session has finished.
func (s *SessionState) Ended() bool {
	return s.flags.Ended()
}
