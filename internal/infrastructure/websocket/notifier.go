package websocket

import (
	"context"

	"auction-house/internal/domain"
)

// Notifier pushes house events to connected observers. Implements
// domain.EventPublisher.
type Notifier struct {
	connManager *ConnectionManager
}

func NewNotifier(connManager *ConnectionManager) *Notifier {
	return &Notifier{connManager: connManager}
}

func (n *Notifier) Publish(_ context.Context, event *domain.AuctionEvent) error {
	n.connManager.Broadcast(event)
	return nil
}
