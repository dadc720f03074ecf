package sim

import "testing"

func TestSession_LatchesAreExclusive(t *testing.T) {
	var s SessionState
	if s.Ended() {
		t.Fatal("new session should be running")
	}
	if !s.TriggerLoss(LossCaught) {
		t.Fatal("first loss should latch")
	}
	if s.TriggerWin() {
		t.Fatal("win after loss must be refused")
	}
	if s.TriggerLoss(LossBatteryDepleted) {
		t.Fatal("second loss must be refused")
	}
	f := s.Flags()
	if !f.GameOver || f.GameWon || f.Reason != LossCaught {
		t.Fatalf("expected caught loss only, got %+v", f)
	}
}

func TestSession_WinBlocksLoss(t *testing.T) {
	var s SessionState
	if !s.TriggerWin() {
		t.Fatal("first win should latch")
	}
	if s.TriggerLoss(LossCaught) || s.TriggerWin() {
		t.Fatal("latches must not change after a win")
	}
	if f := s.Flags(); f.GameOver || !f.GameWon || f.Reason != LossNone {
		t.Fatalf("expected win only, got %+v", f)
	}
}

func TestLossReason_String(t *testing.T) {
	if LossBatteryDepleted.String() != "battery depleted" {
		t.Fatalf("got %q", LossBatteryDepleted)
	}
	if LossCaught.String() != "caught" {
		t.Fatalf("got %q", LossCaught)
	}
}
