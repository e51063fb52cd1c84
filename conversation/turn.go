package conversation

import (
	"strings"
	"time"
)

// Role values for Turn.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Literal answers the confirmation prompt sends back to the backend.
const (
	ConfirmYes    = "yes"
	ConfirmCancel = "no, cancel"
)

// BookingData is the structured booking record echoed by the backend. A
// non-empty ID is the only signal that a booking actually happened; the
// assistant's prose may claim success without one.
type BookingData struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	StartTime string `json:"start_time"`
	Status    string `json:"status"`
	HTMLLink  string `json:"html_link,omitempty"`
}

// Reply is the normalized result of one backend round-trip. The gateway
// folds every failure mode into a Reply, so each chat call yields exactly
// one assistant turn.
type Reply struct {
	Message              string       `json:"message"`
	Booking              *BookingData `json:"booking_data"`
	SuggestedTimes       []string     `json:"suggested_times"`
	RequiresConfirmation bool         `json:"requires_confirmation"`
	IsStartupNotice      bool         `json:"-"`
}

// Turn is one entry in the conversation log.
type Turn struct {
	Role                 string
	Content              string
	Timestamp            time.Time
	Booking              *BookingData
	SuggestedTimes       []string
	RequiresConfirmation bool

	// IsTimeSelection and IsConfirmation mark user turns that originated
	// from a deferred widget action rather than free text.
	IsTimeSelection bool
	IsConfirmation  bool

	// IsStartupNotice marks the synthetic cold-start reply so the UI can
	// render retry guidance instead of a normal answer.
	IsStartupNotice bool
}

func (t Turn) hasRealBooking() bool {
	return t.Booking != nil && strings.TrimSpace(t.Booking.ID) != ""
}

var istLocation = loadIST()

func loadIST() *time.Location {
	loc, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		return time.FixedZone("IST", 5*3600+30*60)
	}
	return loc
}

// NowIST returns the current time in India Standard Time. Timestamps are
// normalized to IST at creation so backend-side time-window reasoning
// stays consistent regardless of host locale.
func NowIST() time.Time {
	return time.Now().In(istLocation)
}
