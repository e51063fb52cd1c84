package storage

import "github.com/calchat/calchat/conversation"

// Store persists conversation transcripts across program runs.
type Store interface {
	// AppendTurn adds one turn to a session's transcript.
	AppendTurn(sessionID string, turn conversation.Turn) error

	// LoadSession returns a session's transcript in append order.
	LoadSession(sessionID string) ([]conversation.Turn, error)

	// ClearSession deletes a session's transcript.
	ClearSession(sessionID string) error

	// Close releases the underlying database.
	Close() error
}
