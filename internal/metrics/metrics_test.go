package metrics

import (
	"errors"
	"testing"
	"time"
)

func TestRecorderTracksSolvesPerPolicy(t *testing.T) {
	rec := NewRecorder()
	rec.RecordSolve("representative", SolveSample{Duration: 10 * time.Millisecond, Epsilon: 4, Solutions: 3})
	rec.RecordSolve("representative", SolveSample{Duration: 15 * time.Millisecond, Solutions: 0, Err: errors.New("boom")})
	rec.RecordSolve("optimal", SolveSample{Duration: time.Millisecond, Epsilon: 1, Solutions: 5})

	if got := rec.Solves("representative"); got != 2 {
		t.Fatalf("expected 2 solves, got %d", got)
	}
	if got := rec.SolveErrors("representative"); got != 1 {
		t.Fatalf("expected 1 error, got %d", got)
	}

	snap := rec.Snapshot("representative")
	if snap.LastDuration != 15*time.Millisecond {
		t.Fatalf("expected last duration to be 15ms, got %s", snap.LastDuration)
	}
	if snap.LastEpsilon != 4 {
		t.Fatalf("expected failed solve to keep last epsilon, got %d", snap.LastEpsilon)
	}

	if snap := rec.Snapshot("optimal"); snap.Solves != 1 || snap.LastEpsilon != 1 || snap.LastSolutions != 5 {
		t.Fatalf("unexpected optimal snapshot %+v", snap)
	}
}

func TestRecorderNilSafe(t *testing.T) {
	var rec *Recorder
	rec.RecordSolve("optimal", SolveSample{})
	rec.RecordHTTPRequest("GET", "/health", 200, time.Millisecond)
	if snap := rec.Snapshot("optimal"); snap != (Snapshot{}) {
		t.Fatalf("expected empty snapshot, got %+v", snap)
	}
	if NewRecorder().Solves("unknown") != 0 {
		t.Fatalf("expected zero solves for unknown policy")
	}
}
