package conversation

import "strings"

// Affordance identifies the single interactive element, if any, an
// assistant turn should render on a given pass.
type Affordance int

const (
	AffordanceNone Affordance = iota
	AffordanceBooking
	AffordanceConfirmation
	AffordanceTimeSlots
	AffordanceMismatchWarning
)

func (a Affordance) String() string {
	switch a {
	case AffordanceBooking:
		return "booking"
	case AffordanceConfirmation:
		return "confirmation"
	case AffordanceTimeSlots:
		return "time_slots"
	case AffordanceMismatchWarning:
		return "mismatch_warning"
	default:
		return "none"
	}
}

// BookingClaimPhrases are prose fragments the backend emits when it
// believes a booking happened. A claim without structured booking data is
// a mismatch: the slot picker is suppressed and a warning shown instead
// of offering stale times for an event the user may believe exists.
var BookingClaimPhrases = []string{
	"i've created",
	"i've made",
	"i've added",
	"created the event",
	"added to your calendar",
	"event created",
	"successfully booked",
	"appointment has been",
	"i'm creating",
	"let me create",
	"i've now booked",
}

// ContainsBookingClaim reports whether content asserts, in free text,
// that a booking took place. Matching is case-insensitive substring.
func ContainsBookingClaim(content string) bool {
	lowered := strings.ToLower(content)
	for _, phrase := range BookingClaimPhrases {
		if strings.Contains(lowered, phrase) {
			return true
		}
	}
	return false
}

// Select decides which affordance the turn at index should render. It is
// a pure function of the session log, evaluated once per historical turn
// on every render pass, and returns exactly one value per turn. Priority
// is booking, then confirmation, then time slots.
func Select(index int, s *Session) Affordance {
	if index < 0 || index >= len(s.turns) {
		return AffordanceNone
	}
	turn := s.turns[index]
	if turn.Role != RoleAssistant || turn.IsStartupNotice {
		return AffordanceNone
	}
	if bookingEligible(index, turn, s) {
		return AffordanceBooking
	}
	if confirmationEligible(index, turn, s) {
		return AffordanceConfirmation
	}
	return suggestionAffordance(index, turn, s)
}

// bookingEligible: a real booking stays visible as long as it is the
// freshest one, even after later unrelated turns.
func bookingEligible(index int, turn Turn, s *Session) bool {
	if !turn.hasRealBooking() {
		return false
	}
	return index == s.lastBookingTurn || index == len(s.turns)-1
}

// confirmationEligible: a confirmation request is suppressed once a later
// assistant turn carries a booking or its own confirmation request.
func confirmationEligible(index int, turn Turn, s *Session) bool {
	if !turn.RequiresConfirmation || turn.Booking != nil {
		return false
	}
	for later := index + 1; later < len(s.turns); later++ {
		lt := s.turns[later]
		if lt.Role != RoleAssistant {
			continue
		}
		if lt.Booking != nil || lt.RequiresConfirmation {
			return false
		}
	}
	return true
}

func suggestionAffordance(index int, turn Turn, s *Session) Affordance {
	if turn.Booking != nil || supersededForSuggestions(index, s) {
		return AffordanceNone
	}
	claimed := ContainsBookingClaim(turn.Content)
	if len(turn.SuggestedTimes) == 0 {
		// A booking claimed in prose with no structured record and no
		// slots to offer still warrants the mismatch warning while it is
		// the latest signal-bearing turn.
		if claimed {
			return AffordanceMismatchWarning
		}
		return AffordanceNone
	}
	if claimed {
		return AffordanceMismatchWarning
	}
	return AffordanceTimeSlots
}

func supersededForSuggestions(index int, s *Session) bool {
	for later := index + 1; later < len(s.turns); later++ {
		lt := s.turns[later]
		if lt.Role != RoleAssistant {
			continue
		}
		if lt.Booking != nil || lt.RequiresConfirmation || len(lt.SuggestedTimes) > 0 {
			return true
		}
	}
	return false
}

// ActiveInteraction scans the log for the single turn whose affordance
// accepts keyboard input right now (the slot picker or the confirmation
// prompt). The eligibility rules guarantee at most one such turn exists.
func ActiveInteraction(s *Session) (index int, affordance Affordance) {
	for i := range s.turns {
		switch a := Select(i, s); a {
		case AffordanceConfirmation, AffordanceTimeSlots:
			return i, a
		}
	}
	return -1, AffordanceNone
}
