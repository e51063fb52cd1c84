package conversation

import "strings"

// Session is the single per-session mutable state container: the
// append-only conversation log plus every piece of state derived from it.
// One session id maps to one Session; sessions share nothing.
type Session struct {
	ID string

	turns              []Turn
	lastBookingTurn    int
	lastSuggestionTurn int

	// celebrated holds booking ids whose one-time celebration already
	// fired. Membership only grows until Reset.
	celebrated map[string]struct{}

	// Deferred action queue: at most one pending value per slot, written
	// by UI event handlers and consumed by Processor.DrainPending.
	pendingTimeSelection *string
	pendingConfirmation  *string
}

// NewSession returns an empty session with both derived indices at their
// sentinel value.
func NewSession(id string) *Session {
	return &Session{
		ID:                 id,
		lastBookingTurn:    -1,
		lastSuggestionTurn: -1,
		celebrated:         map[string]struct{}{},
	}
}

// Turns returns the log. Callers must treat the slice as read-only.
func (s *Session) Turns() []Turn {
	return s.turns
}

func (s *Session) Len() int {
	return len(s.turns)
}

// LastBookingTurn is the index of the most recent turn carrying a real
// booking, or -1.
func (s *Session) LastBookingTurn() int {
	return s.lastBookingTurn
}

// LastSuggestionTurn is the index of the most recent turn carrying
// suggested times, or -1.
func (s *Session) LastSuggestionTurn() int {
	return s.lastSuggestionTurn
}

// Counts reports how many turns each role has contributed.
func (s *Session) Counts() (user int, assistant int) {
	for _, t := range s.turns {
		if t.Role == RoleUser {
			user++
		} else {
			assistant++
		}
	}
	return user, assistant
}

// append grows the log and keeps the derived indices current. Only the
// Processor and Restore call it; nothing else grows the log.
func (s *Session) append(t Turn) {
	s.turns = append(s.turns, t)
	if t.Role != RoleAssistant {
		return
	}
	index := len(s.turns) - 1
	if t.hasRealBooking() {
		s.lastBookingTurn = index
	}
	if len(t.SuggestedTimes) > 0 {
		s.lastSuggestionTurn = index
	}
}

// Restore seeds the session with a persisted transcript. Bookings already
// in the transcript are marked celebrated up front so reloading a session
// does not replay their celebration.
func (s *Session) Restore(turns []Turn) {
	for _, t := range turns {
		s.append(t)
		if t.Role == RoleAssistant && t.hasRealBooking() {
			s.celebrated[strings.TrimSpace(t.Booking.ID)] = struct{}{}
		}
	}
}

// QueueTimeSelection records a picked time slot. Event handlers only ever
// write this slot; the backend round-trip happens on the next processing
// pass.
func (s *Session) QueueTimeSelection(slot string) {
	s.pendingTimeSelection = &slot
}

// QueueConfirmation records a confirm/cancel answer for later draining.
func (s *Session) QueueConfirmation(answer string) {
	s.pendingConfirmation = &answer
}

// HasPendingAction reports whether a deferred action is waiting to drain.
func (s *Session) HasPendingAction() bool {
	return s.pendingTimeSelection != nil || s.pendingConfirmation != nil
}

// takePending pops the highest-priority pending action and clears its
// slot. Time-selection wins when both slots are set. Clearing happens
// here, before any backend call, so a failed call consumes the action
// rather than retrying it.
func (s *Session) takePending() (value string, isTimeSelection bool, ok bool) {
	if s.pendingTimeSelection != nil {
		value = *s.pendingTimeSelection
		s.pendingTimeSelection = nil
		return value, true, true
	}
	if s.pendingConfirmation != nil {
		value = *s.pendingConfirmation
		s.pendingConfirmation = nil
		return value, false, true
	}
	return "", false, false
}

// MarkCelebrated records that the one-time celebration fired for a
// booking id. It reports true exactly once per id for the life of the
// log.
func (s *Session) MarkCelebrated(id string) bool {
	id = strings.TrimSpace(id)
	if id == "" {
		return false
	}
	if _, seen := s.celebrated[id]; seen {
		return false
	}
	s.celebrated[id] = struct{}{}
	return true
}

// Celebrated reports whether the celebration already fired for id.
func (s *Session) Celebrated(id string) bool {
	_, seen := s.celebrated[strings.TrimSpace(id)]
	return seen
}

// Reset clears the log and every piece of derived state together: both
// indices back to -1, the celebrated set, and both deferred-action slots.
// A partial reset would let stale state leak into the next conversation.
func (s *Session) Reset() {
	s.turns = nil
	s.lastBookingTurn = -1
	s.lastSuggestionTurn = -1
	s.celebrated = map[string]struct{}{}
	s.pendingTimeSelection = nil
	s.pendingConfirmation = nil
}
