package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/kirinyoku/cartodesk/internal/gamestore"
)

const (
	publishTimeout    = 2 * time.Second
	forwardBufferSize = 256
)

type changePublisher interface {
	Publish(ctx context.Context, kind string, gameIDs []string) error
}

// changeForwarder relays local store events to other instances. Enqueue runs
// inside the store's notification path and never blocks on the network.
type changeForwarder struct {
	pub    changePublisher
	log    *slog.Logger
	events chan gamestore.Event
}

func newChangeForwarder(pub changePublisher, log *slog.Logger) *changeForwarder {
	return &changeForwarder{
		pub:    pub,
		log:    log,
		events: make(chan gamestore.Event, forwardBufferSize),
	}
}

// Enqueue drops the event when the buffer is full; peers still converge on
// the next change they receive.
func (f *changeForwarder) Enqueue(ev gamestore.Event) {
	if ev.Kind == gamestore.EventReloaded {
		return
	}

	select {
	case f.events <- ev:
	default:
		f.log.Warn("games change dropped, publish buffer full", "kind", ev.Kind, "games", len(ev.GameIDs))
	}
}

// Run publishes queued events until ctx ends.
func (f *changeForwarder) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-f.events:
			f.publish(ctx, ev)
		}
	}
}

func (f *changeForwarder) publish(ctx context.Context, ev gamestore.Event) {
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err := f.pub.Publish(ctx, string(ev.Kind), ev.GameIDs); err != nil {
		f.log.Warn("publish games change", slog.Any("err", err))
	}
}
