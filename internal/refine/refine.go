package refine

import (
	"context"
	"fmt"
)

// State is the session's position in the revision loop.
type State int

const (
	// Draft holds a freshly generated text not yet shown to the user.
	Draft State = iota
	// AwaitingChoice means the current text is presented and the session
	// waits for Accept, Revert, or Revise.
	AwaitingChoice
	// Revising means a revision call is in flight.
	Revising
	// Accepted is terminal; the current text is final.
	Accepted
	// Reverted is terminal; the current text is the original draft.
	Reverted
)

func (s State) String() string {
	switch s {
	case Draft:
		return "draft"
	case AwaitingChoice:
		return "awaiting-choice"
	case Revising:
		return "revising"
	case Accepted:
		return "accepted"
	case Reverted:
		return "reverted"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Terminal reports whether the session has finished.
func (s State) Terminal() bool {
	return s == Accepted || s == Reverted
}

// ReviseFunc produces a revised text from the current one plus user feedback.
type ReviseFunc func(ctx context.Context, current, feedback string) (string, error)

// Session drives user-guided revision of one generated text. The loop has no
// revision limit; it ends only on Accept or Revert. Revert always restores
// the original draft, not the previous revision.
type Session struct {
	revise  ReviseFunc
	state   State
	current string
	history []string
}

// NewSession starts a session in Draft with the generated text.
func NewSession(draft string, revise ReviseFunc) *Session {
	return &Session{revise: revise, state: Draft, current: draft}
}

// State returns the current state.
func (s *Session) State() State { return s.state }

// Text returns the current text.
func (s *Session) Text() string { return s.current }

// History returns every text presented so far, oldest first. Index 0 is the
// original draft.
func (s *Session) History() []string {
	out := make([]string, len(s.history))
	copy(out, s.history)
	return out
}

// enterAwaiting records the current text and moves to AwaitingChoice.
func (s *Session) enterAwaiting() {
	s.history = append(s.history, s.current)
	s.state = AwaitingChoice
}

// Present moves the draft to AwaitingChoice so the caller can render it.
func (s *Session) Present() error {
	if s.state != Draft {
		return fmt.Errorf("cannot present from state %s", s.state)
	}
	s.enterAwaiting()
	return nil
}

// Accept finalizes the current text.
func (s *Session) Accept() error {
	if s.state != AwaitingChoice {
		return fmt.Errorf("cannot accept from state %s", s.state)
	}
	s.state = Accepted
	return nil
}

// Revert abandons every revision and restores the original draft.
func (s *Session) Revert() error {
	if s.state != AwaitingChoice {
		return fmt.Errorf("cannot revert from state %s", s.state)
	}
	s.current = s.history[0]
	s.state = Reverted
	return nil
}

// Revise sends the current text and feedback through the revision call. On
// success the revised text becomes current and the session returns to
// AwaitingChoice. On failure the session also returns to AwaitingChoice with
// the previous text intact, so the caller can fall back to it or try again.
func (s *Session) Revise(ctx context.Context, feedback string) error {
	if s.state != AwaitingChoice {
		return fmt.Errorf("cannot revise from state %s", s.state)
	}
	s.state = Revising
	revised, err := s.revise(ctx, s.current, feedback)
	if err != nil {
		s.state = AwaitingChoice
		return fmt.Errorf("revision failed, keeping previous text: %w", err)
	}
	s.current = revised
	s.enterAwaiting()
	return nil
}
