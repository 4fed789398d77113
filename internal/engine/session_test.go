package engine

import "testing"

func TestSessionStartPerformsHandshake(t *testing.T) {
	s := startHelperSession(t, "")
	defer s.Stop()

	if s.IDName != "HelperEngine" {
		t.Errorf("IDName = %q, want HelperEngine", s.IDName)
	}
	if s.IDAuthor != "test" {
		t.Errorf("IDAuthor = %q, want test", s.IDAuthor)
	}
	if _, ok := s.Options["Hash"]; !ok {
		t.Errorf("Options = %v, want a Hash entry parsed from the option line", s.Options)
	}
	if !s.IsRunning() {
		t.Error("IsRunning() = false right after a successful Start")
	}
}

func TestSessionGoReturnsBestMoveAndDeepestEval(t *testing.T) {
	s := startHelperSession(t, "")
	defer s.Stop()

	move, err := s.Go(GoParams{WTimeMS: 1000, BTimeMS: 1000, TimeoutMS: 2000})
	if err != nil {
		t.Fatalf("Go() error = %v", err)
	}
	if move != "e2e4" {
		t.Errorf("Go() move = %q, want e2e4", move)
	}
	eval := s.LastEval()
	if !eval.HasScore || eval.ScoreCP != 31 || eval.Depth != 12 {
		t.Errorf("LastEval() = %+v, want the deepest (depth 12) info line", eval)
	}
	if s.LastFailure() != FailureNone {
		t.Errorf("LastFailure() = %v, want FailureNone after a clean bestmove", s.LastFailure())
	}
}

func TestSessionGoNoLegalMoveSetsNoMoveFailure(t *testing.T) {
	s := startHelperSession(t, "nomove")
	defer s.Stop()

	move, err := s.Go(GoParams{WTimeMS: 1000, BTimeMS: 1000, TimeoutMS: 2000})
	if err != nil {
		t.Fatalf("Go() error = %v, want a nil error with an empty move on (none)", err)
	}
	if move != "" {
		t.Errorf("Go() move = %q, want empty", move)
	}
	if s.LastFailure() != FailureNoBestmove {
		t.Errorf("LastFailure() = %v, want FailureNoBestmove", s.LastFailure())
	}
}

func TestSessionGoTimesOutWhenEngineHangs(t *testing.T) {
	s := startHelperSession(t, "hang")
	defer s.Stop()

	_, err := s.Go(GoParams{WTimeMS: 1000, BTimeMS: 1000, TimeoutMS: 100})
	if err == nil {
		t.Fatal("Go() against a hanging engine returned no error")
	}
	if s.LastFailure() != FailureTimeout {
		t.Errorf("LastFailure() = %v, want FailureTimeout", s.LastFailure())
	}
}

func TestSessionGoEngineExitSetsCrashFailure(t *testing.T) {
	s := startHelperSession(t, "silent-exit")
	defer s.Stop()

	_, err := s.Go(GoParams{WTimeMS: 1000, BTimeMS: 1000, TimeoutMS: 2000})
	if err == nil {
		t.Fatal("Go() against an engine that exits mid-search returned no error")
	}
	if s.LastFailure() != FailureEngineExited {
		t.Errorf("LastFailure() = %v, want FailureEngineExited", s.LastFailure())
	}
}

func TestSessionStopTerminatesSubprocess(t *testing.T) {
	s := startHelperSession(t, "")
	if err := s.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if s.IsRunning() {
		t.Error("IsRunning() = true after Stop()")
	}
}

func TestSessionNameReturnsConfiguredName(t *testing.T) {
	s := startHelperSession(t, "")
	defer s.Stop()
	if s.Name() != "helper" {
		t.Errorf("Name() = %q, want helper", s.Name())
	}
}
