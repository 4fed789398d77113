package engine

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Failure classifies why a session operation did not produce its expected result.
type Failure int

const (
	FailureNone Failure = iota
	FailureTimeout
	FailureEngineExited
	FailureWriteFailed
	FailureNoBestmove
	FailureHandshakeTimeout
	FailureHandshakeFailed
)

func (f Failure) String() string {
	switch f {
	case FailureNone:
		return "none"
	case FailureTimeout:
		return "timeout"
	case FailureEngineExited:
		return "engine exited"
	case FailureWriteFailed:
		return "write failed"
	case FailureNoBestmove:
		return "no bestmove"
	case FailureHandshakeTimeout:
		return "handshake timeout"
	case FailureHandshakeFailed:
		return "handshake failed"
	default:
		return "unknown"
	}
}

// Eval is the deepest evaluation observed during the most recent go window.
type Eval struct {
	HasScore bool
	ScoreCP  int
	HasMate  bool
	MateIn   int
	Depth    int
}

// Spec describes how to launch and configure one engine.
type Spec struct {
	Name       string
	Command    string
	Args       []string
	UCIOptions map[string]string
}

// Session is one engine's protocol state over a Channel.
type Session struct {
	spec Spec

	channel *Channel
	cwd     string

	HandshakeTimeout time.Duration

	IDName   string
	IDAuthor string
	Options  map[string]string // option name -> "type ..." descriptor text

	lastEval    Eval
	inGoWindow  bool
	lastFailure Failure
}

// New creates a session for spec; the subprocess is not started until Start.
func New(spec Spec) *Session {
	return &Session{
		spec:             spec,
		HandshakeTimeout: 10 * time.Second,
		Options:          make(map[string]string),
	}
}

// Start launches the subprocess, performs the UCI handshake, applies the
// configured UCI options, and waits for readiness.
func (s *Session) Start(cwd string) error {
	s.cwd = cwd
	ch, err := Start(s.spec.Command, s.spec.Args, cwd)
	if err != nil {
		return err
	}
	s.channel = ch
	s.lastFailure = FailureNone

	if err := s.Handshake(); err != nil {
		return err
	}
	for name, value := range s.spec.UCIOptions {
		if err := s.SetOption(name, value); err != nil {
			return err
		}
	}
	return s.IsReady()
}

// Handshake emits "uci" and reads until uciok, capturing id/option lines.
func (s *Session) Handshake() error {
	if err := s.channel.WriteLine("uci"); err != nil {
		s.lastFailure = FailureHandshakeFailed
		return err
	}

	deadline := time.Now().Add(s.HandshakeTimeout)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			s.lastFailure = FailureHandshakeTimeout
			return fmt.Errorf("engine %q: handshake timeout", s.spec.Name)
		}
		line, err := s.channel.ReadLine(remaining)
		if err != nil {
			s.lastFailure = FailureEngineExited
			return fmt.Errorf("engine %q: %w", s.spec.Name, err)
		}
		if line == "" {
			continue
		}
		switch {
		case line == "uciok":
			return nil
		case strings.HasPrefix(line, "id name "):
			s.IDName = strings.TrimPrefix(line, "id name ")
		case strings.HasPrefix(line, "id author "):
			s.IDAuthor = strings.TrimPrefix(line, "id author ")
		case strings.HasPrefix(line, "option name "):
			rest := strings.TrimPrefix(line, "option name ")
			if idx := strings.Index(rest, " type "); idx >= 0 {
				s.Options[rest[:idx]] = strings.TrimSpace(rest[idx+1:])
			}
		}
	}
}

// SetOption emits setoption for name/value.
func (s *Session) SetOption(name, value string) error {
	cmd := fmt.Sprintf("setoption name %s", name)
	if value != "" {
		cmd += fmt.Sprintf(" value %s", value)
	}
	return s.channel.WriteLine(cmd)
}

// IsReady emits isready and waits for readyok.
func (s *Session) IsReady() error {
	if err := s.channel.WriteLine("isready"); err != nil {
		return err
	}
	deadline := time.Now().Add(s.HandshakeTimeout)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			s.lastFailure = FailureHandshakeTimeout
			return fmt.Errorf("engine %q: readyok timeout", s.spec.Name)
		}
		line, err := s.channel.ReadLine(remaining)
		if err != nil {
			s.lastFailure = FailureEngineExited
			return fmt.Errorf("engine %q: %w", s.spec.Name, err)
		}
		if line == "readyok" {
			return nil
		}
	}
}

// NewGame emits ucinewgame.
func (s *Session) NewGame() error {
	return s.channel.WriteLine("ucinewgame")
}

// Position emits a position command. fen == "" means startpos.
func (s *Session) Position(fen string, moves []string) error {
	var cmd string
	if fen == "" {
		cmd = "position startpos"
	} else {
		cmd = "position fen " + fen
	}
	if len(moves) > 0 {
		cmd += " moves " + strings.Join(moves, " ")
	}
	if err := s.channel.WriteLine(cmd); err != nil {
		s.lastFailure = FailureWriteFailed
		return err
	}
	return nil
}

// GoParams carries the search-time parameters for a single move request.
type GoParams struct {
	WTimeMS, BTimeMS   int
	WIncMS, BIncMS     int
	MoveTimeMS         int
	TimeoutMS          int
}

// Go requests a move. On return, LastEval holds the deepest info observed
// during the window; failures are classified into LastFailure.
func (s *Session) Go(p GoParams) (move string, err error) {
	cmd := fmt.Sprintf("go wtime %d btime %d winc %d binc %d", p.WTimeMS, p.BTimeMS, p.WIncMS, p.BIncMS)
	if p.MoveTimeMS > 0 {
		cmd += fmt.Sprintf(" movetime %d", p.MoveTimeMS)
	}

	timeoutMS := p.TimeoutMS
	if timeoutMS <= 0 {
		timeoutMS = p.MoveTimeMS + 5000
	}

	s.inGoWindow = true
	s.lastEval = Eval{}
	defer func() { s.inGoWindow = false }()

	if werr := s.channel.WriteLine(cmd); werr != nil {
		s.lastFailure = FailureWriteFailed
		return "", werr
	}

	deadline := time.Now().Add(time.Duration(timeoutMS) * time.Millisecond)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			s.lastFailure = FailureTimeout
			return "", fmt.Errorf("engine %q: go timeout", s.spec.Name)
		}
		line, rerr := s.channel.ReadLine(remaining)
		if rerr != nil {
			s.lastFailure = FailureEngineExited
			return "", fmt.Errorf("engine %q: %w", s.spec.Name, rerr)
		}
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "info ") {
			s.captureInfo(line)
			continue
		}
		if strings.HasPrefix(line, "bestmove") {
			fields := strings.Fields(line)
			if len(fields) < 2 || fields[1] == "(none)" {
				s.lastFailure = FailureNoBestmove
				return "", nil
			}
			s.lastFailure = FailureNone
			return fields[1], nil
		}
	}
}

// captureInfo updates lastEval from one "info ..." line, keeping only the
// deepest entry observed per search window.
func (s *Session) captureInfo(line string) {
	if !s.inGoWindow {
		return
	}
	fields := strings.Fields(line)
	var depth int
	var hasDepth bool
	var eval Eval
	for i := 0; i < len(fields)-1; i++ {
		switch fields[i] {
		case "depth":
			if v, err := strconv.Atoi(fields[i+1]); err == nil {
				depth = v
				hasDepth = true
			}
		case "score":
			if i+2 < len(fields) {
				switch fields[i+1] {
				case "cp":
					if v, err := strconv.Atoi(fields[i+2]); err == nil {
						eval.HasScore = true
						eval.ScoreCP = v
					}
				case "mate":
					if v, err := strconv.Atoi(fields[i+2]); err == nil {
						eval.HasMate = true
						eval.MateIn = v
					}
				}
			}
		}
	}
	if !hasDepth {
		return
	}
	eval.Depth = depth
	if depth >= s.lastEval.Depth {
		s.lastEval = eval
	}
}

// LastEval returns the last captured evaluation for the most recent go window.
func (s *Session) LastEval() Eval { return s.lastEval }

// LastFailure returns the failure classification from the most recent operation.
func (s *Session) LastFailure() Failure { return s.lastFailure }

// ClearFailure resets the failure classification, used once a session is
// confirmed healthy again (after a successful restart).
func (s *Session) ClearFailure() { s.lastFailure = FailureNone }

// MarkCrashed records that the subprocess was found dead outside of any
// write/read call that would have classified the failure itself, e.g. a
// caller's own IsRunning check between games. A no-op if a more specific
// failure is already recorded.
func (s *Session) MarkCrashed() {
	if s.lastFailure == FailureNone {
		s.lastFailure = FailureEngineExited
	}
}

// IsRunning reports whether the subprocess is still alive.
func (s *Session) IsRunning() bool {
	return s.channel != nil && s.channel.IsRunning()
}

// Stop terminates the subprocess politely, escalating to a kill if it does
// not exit within the grace period.
func (s *Session) Stop() error {
	if s.channel == nil {
		return nil
	}
	s.channel.WriteLine("quit")
	s.channel.Terminate()
	return s.channel.WaitForExit(2 * time.Second)
}

// Name returns the configured display name.
func (s *Session) Name() string { return s.spec.Name }
