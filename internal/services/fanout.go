package services

import (
	"context"

	"auction-house/internal/domain"
	"auction-house/pkg/logger"
)

// EventFanout delivers each event to every sink. A failing sink is logged and
// skipped; observers never get to abort a money path.
type EventFanout struct {
	sinks []domain.EventPublisher
	log   logger.Logger
}

func NewEventFanout(log logger.Logger, sinks ...domain.EventPublisher) *EventFanout {
	return &EventFanout{sinks: sinks, log: log}
}

func (f *EventFanout) Publish(ctx context.Context, event *domain.AuctionEvent) error {
	for _, sink := range f.sinks {
		if err := sink.Publish(ctx, event); err != nil {
			f.log.Error("Event sink failed", "type", event.Type, "error", err)
		}
	}
	return nil
}
