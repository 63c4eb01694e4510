package domain

import (
	"time"
)

type EventType string

const (
	EventBidPlaced       EventType = "bid_placed"
	EventRoundCreated    EventType = "round_created"
	EventRoundSettled    EventType = "round_settled"
	EventSettingsChanged EventType = "settings_changed"
	EventPaused          EventType = "paused"
	EventUnpaused        EventType = "unpaused"
)

// AuctionEvent is the single event envelope published to observers. Fields
// that do not apply to a given type are left at their zero value.
type AuctionEvent struct {
	Type      EventType `json:"type"`
	ItemID    uint64    `json:"item_id,omitempty"`
	Bidder    Address   `json:"bidder,omitempty"`
	Winner    Address   `json:"winner,omitempty"`
	Amount    uint64    `json:"amount,omitempty"`
	Extended  bool      `json:"extended,omitempty"`
	StartTime time.Time `json:"start_time,omitempty"`
	EndTime   time.Time `json:"end_time,omitempty"`
	Field     string    `json:"field,omitempty"`
	Value     string    `json:"value,omitempty"`
	ReceiptID string    `json:"receipt_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
