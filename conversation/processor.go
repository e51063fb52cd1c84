package conversation

import (
	"context"

	"go.uber.org/zap"
)

// Chatter is the backend round-trip the processor depends on. The call is
// total: transport failures arrive as Reply records, never as errors.
type Chatter interface {
	SendMessage(ctx context.Context, text string) Reply
}

// TranscriptStore persists turns beyond the session lifetime. Writes are
// best effort; a storage failure never blocks the conversation.
type TranscriptStore interface {
	AppendTurn(sessionID string, turn Turn) error
	ClearSession(sessionID string) error
}

// TurnFlags marks how a user turn originated.
type TurnFlags struct {
	IsTimeSelection bool
	IsConfirmation  bool
}

// Processor orchestrates conversational round-trips: append the user
// turn, call the gateway, append the assistant turn built from the reply.
// It is the only component that grows a session's log.
//
// The round-trip is split into Begin/Absorb so a UI event loop can run
// the blocking gateway call off its update thread while every session
// mutation stays on it. Submit and DrainPending compose the two halves
// for synchronous callers.
type Processor struct {
	gateway Chatter
	store   TranscriptStore
	logger  *zap.Logger
}

func NewProcessor(gateway Chatter, store TranscriptStore, logger *zap.Logger) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{gateway: gateway, store: store, logger: logger}
}

// Begin appends the user turn that opens a round-trip.
func (p *Processor) Begin(s *Session, text string, flags TurnFlags) {
	p.appendAndPersist(s, Turn{
		Role:            RoleUser,
		Content:         text,
		Timestamp:       NowIST(),
		IsTimeSelection: flags.IsTimeSelection,
		IsConfirmation:  flags.IsConfirmation,
	})
}

// BeginPending consumes at most one deferred action per processing pass
// and appends its user turn, returning the text to send to the backend.
// Time-selection has priority over confirmation when both slots are set.
// The slot is cleared up front, so even a failed round-trip consumes the
// action; retries happen only through a fresh user message.
func (p *Processor) BeginPending(s *Session) (text string, ok bool) {
	value, isTimeSelection, ok := s.takePending()
	if !ok {
		return "", false
	}
	p.Begin(s, value, TurnFlags{
		IsTimeSelection: isTimeSelection,
		IsConfirmation:  !isTimeSelection,
	})
	return value, true
}

// Absorb appends the assistant turn built from a backend reply and keeps
// the derived indices current.
func (p *Processor) Absorb(s *Session, reply Reply) {
	assistant := Turn{
		Role:                 RoleAssistant,
		Content:              reply.Message,
		Timestamp:            NowIST(),
		Booking:              reply.Booking,
		SuggestedTimes:       reply.SuggestedTimes,
		RequiresConfirmation: reply.RequiresConfirmation,
		IsStartupNotice:      reply.IsStartupNotice,
	}
	p.appendAndPersist(s, assistant)

	p.logger.Debug("turn processed",
		zap.String("session_id", s.ID),
		zap.Bool("booking", assistant.hasRealBooking()),
		zap.Int("suggested_times", len(reply.SuggestedTimes)),
		zap.Bool("requires_confirmation", reply.RequiresConfirmation),
		zap.Bool("startup_notice", reply.IsStartupNotice),
	)
}

// Submit runs one full round-trip for text and returns the backend reply
// so the caller can surface status.
func (p *Processor) Submit(ctx context.Context, s *Session, text string, flags TurnFlags) Reply {
	p.Begin(s, text, flags)
	reply := p.gateway.SendMessage(ctx, text)
	p.Absorb(s, reply)
	return reply
}

// DrainPending converts at most one deferred action into a full
// round-trip.
func (p *Processor) DrainPending(ctx context.Context, s *Session) (Reply, bool) {
	text, ok := p.BeginPending(s)
	if !ok {
		return Reply{}, false
	}
	reply := p.gateway.SendMessage(ctx, text)
	p.Absorb(s, reply)
	return reply, true
}

// Reset clears the session and its persisted transcript together.
func (p *Processor) Reset(s *Session) {
	s.Reset()
	if p.store == nil {
		return
	}
	if err := p.store.ClearSession(s.ID); err != nil {
		p.logger.Warn("clear transcript failed",
			zap.String("session_id", s.ID), zap.Error(err))
	}
}

func (p *Processor) appendAndPersist(s *Session, t Turn) {
	s.append(t)
	if p.store == nil {
		return
	}
	if err := p.store.AppendTurn(s.ID, t); err != nil {
		p.logger.Warn("persist turn failed",
			zap.String("session_id", s.ID), zap.Error(err))
	}
}
