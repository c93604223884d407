package ingest

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"

	"solana-drc/internal/observability"
	"solana-drc/internal/solana"
)

// Stream is the log subscription transport the listener drives. Satisfied
// by solana.Client.
type Stream interface {
	Dial(ctx context.Context) error
	SubscribeLogs(ctx context.Context, programID, commitment string) error
	Receive(ctx context.Context) (*solana.RawLogEvent, error)
}

// Handler consumes normalized log events. Per-event failures are the
// handler's to absorb; the listener only cares about transport errors.
type Handler interface {
	Handle(ctx context.Context, ev *solana.RawLogEvent)
}

// ListenerConfig tunes the subscribe/reconnect loop.
type ListenerConfig struct {
	ProgramID  string
	Commitment string
	RetryDelay time.Duration
	MaxRetries int // 0 = retry forever
}

// Listener owns the receive loop: dial, subscribe, receive, hand off to
// the handler, and reconnect with a constant delay on transport errors.
type Listener struct {
	stream  Stream
	handler Handler
	cfg     ListenerConfig
	log     *zap.Logger
}

// NewListener creates a listener over the stream.
func NewListener(stream Stream, handler Handler, cfg ListenerConfig, log *zap.Logger) *Listener {
	return &Listener{stream: stream, handler: handler, cfg: cfg, log: log}
}

// Run drives sessions until the context is canceled or the retry budget is
// exhausted. A session ending is never fatal by itself.
func (l *Listener) Run(ctx context.Context) error {
	opts := []backoff.RetryOption{
		backoff.WithBackOff(backoff.NewConstantBackOff(l.cfg.RetryDelay)),
	}
	if l.cfg.MaxRetries > 0 {
		opts = append(opts, backoff.WithMaxTries(uint(l.cfg.MaxRetries)))
	}

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		err := l.session(ctx)
		if ctx.Err() != nil {
			return struct{}{}, backoff.Permanent(ctx.Err())
		}

		observability.RecordReconnect()
		l.log.Warn("stream session ended, reconnecting",
			zap.Duration("retry_delay", l.cfg.RetryDelay),
			zap.Error(err))
		return struct{}{}, err
	}, opts...)
	return err
}

// session runs one connection lifetime: dial, subscribe, receive loop.
func (l *Listener) session(ctx context.Context) error {
	if err := l.stream.Dial(ctx); err != nil {
		return err
	}
	if err := l.stream.SubscribeLogs(ctx, l.cfg.ProgramID, l.cfg.Commitment); err != nil {
		return err
	}

	for {
		ev, err := l.stream.Receive(ctx)
		if err != nil {
			return err
		}
		l.handler.Handle(ctx, ev)
	}
}
