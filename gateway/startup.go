package gateway

import (
	"context"
	"errors"
	"net"
	"strings"

	"github.com/calchat/calchat/conversation"
)

// coldStartSignatures are error-text fragments that indicate the backend
// is still waking up rather than genuinely broken. Free-tier hosts spin
// the service down after idle periods; the first request then times out.
var coldStartSignatures = []string{
	"timeout",
	"timed out",
	"read timed out",
	"deadline exceeded",
	"connection pool",
}

// IsColdStart reports whether a transport failure matches the cold-start
// signature: a timeout of any flavor, or an error whose text carries one
// of the known fragments.
func IsColdStart(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	text := strings.ToLower(err.Error())
	for _, fragment := range coldStartSignatures {
		if strings.Contains(text, fragment) {
			return true
		}
	}
	return false
}

const startupMessage = `The calendar assistant is starting up.

The service is booting from sleep mode, which is normal for cloud hosts after a period of inactivity. Startup usually takes 50-60 seconds: backend init, Google Calendar connection, model loading.

Wait about a minute and send your message again. Once the service is warm, replies are instant; there is no need to restart the program.`

// StartupReply builds the synthetic assistant reply for a cold-starting
// backend. The notice flag lets the UI show a retry countdown; the empty
// booking and suggestion fields keep the turn out of every display
// affordance.
func StartupReply() conversation.Reply {
	return conversation.Reply{
		Message:         startupMessage,
		SuggestedTimes:  []string{},
		IsStartupNotice: true,
	}
}
