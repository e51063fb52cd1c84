package conversation

import "testing"

func assistantReply(s *Session, reply Reply) {
	s.append(Turn{
		Role:                 RoleAssistant,
		Content:              reply.Message,
		Timestamp:            NowIST(),
		Booking:              reply.Booking,
		SuggestedTimes:       reply.SuggestedTimes,
		RequiresConfirmation: reply.RequiresConfirmation,
		IsStartupNotice:      reply.IsStartupNotice,
	})
}

func userText(s *Session, text string) {
	s.append(Turn{Role: RoleUser, Content: text, Timestamp: NowIST()})
}

func TestSelectBookingEligible(t *testing.T) {
	s := NewSession("test")
	userText(s, "book a sync at 3")
	assistantReply(s, Reply{
		Message: "Booked!",
		Booking: &BookingData{ID: "evt123", Title: "Sync"},
	})

	if got := Select(1, s); got != AffordanceBooking {
		t.Fatalf("expected booking affordance, got %s", got)
	}
	if s.LastBookingTurn() != 1 {
		t.Fatalf("expected last booking turn 1, got %d", s.LastBookingTurn())
	}
}

func TestSelectBookingStaysVisibleAfterUnrelatedTurns(t *testing.T) {
	s := NewSession("test")
	assistantReply(s, Reply{Message: "Booked!", Booking: &BookingData{ID: "evt123"}})
	userText(s, "thanks")
	assistantReply(s, Reply{Message: "You're welcome."})

	if got := Select(0, s); got != AffordanceBooking {
		t.Fatalf("expected freshest booking to stay visible, got %s", got)
	}
}

func TestSelectBookingWithoutIDNotEligible(t *testing.T) {
	s := NewSession("test")
	assistantReply(s, Reply{Message: "Booked!", Booking: &BookingData{Title: "Sync"}})

	if got := Select(0, s); got == AffordanceBooking {
		t.Fatalf("booking without id must not be eligible")
	}
}

func TestSelectUserTurnNeverEligible(t *testing.T) {
	s := NewSession("test")
	s.append(Turn{
		Role:           RoleUser,
		Content:        "anything",
		SuggestedTimes: []string{"10 AM"},
		Booking:        &BookingData{ID: "evt1"},
	})
	if got := Select(0, s); got != AffordanceNone {
		t.Fatalf("user turns render no affordance, got %s", got)
	}
}

func TestSelectConfirmationOnlyLatest(t *testing.T) {
	s := NewSession("test")
	assistantReply(s, Reply{Message: "Shall I book Monday?", RequiresConfirmation: true})
	userText(s, "actually tuesday")
	assistantReply(s, Reply{Message: "Shall I book Tuesday?", RequiresConfirmation: true})

	if got := Select(0, s); got != AffordanceNone {
		t.Fatalf("stale confirmation must be suppressed, got %s", got)
	}
	if got := Select(2, s); got != AffordanceConfirmation {
		t.Fatalf("latest confirmation must be eligible, got %s", got)
	}
}

func TestSelectConfirmationSuppressedByLaterBooking(t *testing.T) {
	s := NewSession("test")
	assistantReply(s, Reply{Message: "Shall I book it?", RequiresConfirmation: true})
	userText(s, ConfirmYes)
	assistantReply(s, Reply{Message: "Done.", Booking: &BookingData{ID: "evt9"}})

	if got := Select(0, s); got != AffordanceNone {
		t.Fatalf("confirmation after booking must be suppressed, got %s", got)
	}
	if got := Select(2, s); got != AffordanceBooking {
		t.Fatalf("expected booking on last turn, got %s", got)
	}
}

func TestSelectTimeSlots(t *testing.T) {
	s := NewSession("test")
	assistantReply(s, Reply{
		Message:        "Here are some options:",
		SuggestedTimes: []string{"10 AM", "2 PM"},
	})
	if got := Select(0, s); got != AffordanceTimeSlots {
		t.Fatalf("expected time slot picker, got %s", got)
	}
	if s.LastSuggestionTurn() != 0 {
		t.Fatalf("expected last suggestion turn 0, got %d", s.LastSuggestionTurn())
	}
}

func TestSelectTimeSlotsSupersededByLaterSuggestions(t *testing.T) {
	s := NewSession("test")
	assistantReply(s, Reply{Message: "Options:", SuggestedTimes: []string{"10 AM"}})
	userText(s, "anything later?")
	assistantReply(s, Reply{Message: "Later options:", SuggestedTimes: []string{"4 PM"}})

	if got := Select(0, s); got != AffordanceNone {
		t.Fatalf("stale slots must be suppressed, got %s", got)
	}
	if got := Select(2, s); got != AffordanceTimeSlots {
		t.Fatalf("fresh slots must be eligible, got %s", got)
	}
}

func TestSelectClaimPhraseYieldsMismatchWarning(t *testing.T) {
	s := NewSession("test")
	assistantReply(s, Reply{
		Message:        "I've created the event",
		SuggestedTimes: []string{"10 AM", "2 PM"},
	})

	got := Select(0, s)
	if got == AffordanceTimeSlots {
		t.Fatalf("picker must not render when the text claims a booking")
	}
	if got != AffordanceMismatchWarning {
		t.Fatalf("expected mismatch warning, got %s", got)
	}
}

func TestSelectClaimPhraseWithoutSlotsStillWarns(t *testing.T) {
	s := NewSession("test")
	assistantReply(s, Reply{Message: "The event was successfully booked for you."})

	if got := Select(0, s); got != AffordanceMismatchWarning {
		t.Fatalf("claimed booking without record must warn, got %s", got)
	}
}

func TestSelectStartupNoticeNeverEligible(t *testing.T) {
	s := NewSession("test")
	assistantReply(s, Reply{
		Message:         "The calendar assistant is starting up.",
		SuggestedTimes:  []string{},
		IsStartupNotice: true,
	})
	if got := Select(0, s); got != AffordanceNone {
		t.Fatalf("startup notice must render no affordance, got %s", got)
	}
}

func TestSelectMutualExclusivityAcrossLog(t *testing.T) {
	s := NewSession("test")
	assistantReply(s, Reply{Message: "Options:", SuggestedTimes: []string{"10 AM"}})
	userText(s, "10 AM")
	assistantReply(s, Reply{Message: "Confirm 10 AM?", RequiresConfirmation: true})
	userText(s, ConfirmYes)
	assistantReply(s, Reply{Message: "Booked.", Booking: &BookingData{ID: "evt42"}})

	interactive := 0
	for i := range s.Turns() {
		switch Select(i, s) {
		case AffordanceConfirmation, AffordanceTimeSlots:
			interactive++
		}
	}
	if interactive != 0 {
		t.Fatalf("expected no interactive affordance after a booking, found %d", interactive)
	}
	if got := Select(4, s); got != AffordanceBooking {
		t.Fatalf("expected booking on the final turn, got %s", got)
	}
}

func TestActiveInteractionFindsSinglePicker(t *testing.T) {
	s := NewSession("test")
	userText(s, "when am I free?")
	assistantReply(s, Reply{Message: "Options:", SuggestedTimes: []string{"10 AM", "2 PM"}})

	index, affordance := ActiveInteraction(s)
	if index != 1 || affordance != AffordanceTimeSlots {
		t.Fatalf("expected picker at index 1, got index=%d affordance=%s", index, affordance)
	}
}

func TestContainsBookingClaimIsCaseInsensitive(t *testing.T) {
	if !ContainsBookingClaim("I'VE CREATED a meeting for you") {
		t.Fatalf("expected case-insensitive claim match")
	}
	if ContainsBookingClaim("Here are some free slots tomorrow") {
		t.Fatalf("did not expect a claim match")
	}
}
