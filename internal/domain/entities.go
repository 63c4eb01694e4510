package domain

import (
	"time"
)

// Address identifies an account on the ledger. The empty string is the null
// address.
type Address string

const ZeroAddress Address = ""

func (a Address) IsZero() bool { return a == ZeroAddress }

// AuctionSettings is the owner-tunable configuration read by the bidding and
// settlement paths. Amounts are in the native coin's smallest unit, durations
// in whole seconds.
type AuctionSettings struct {
	Duration        uint64  `json:"duration"`
	ReservePrice    uint64  `json:"reserve_price"`
	Treasury        Address `json:"treasury"`
	TimeBuffer      uint64  `json:"time_buffer"`
	MinBidIncrement uint8   `json:"min_bid_increment"`
}

// AuctionState is the single in-flight round. It is replaced wholesale each
// time a new round opens; ItemID zero means no round has ever started.
type AuctionState struct {
	ItemID        uint64    `json:"item_id"`
	HighestBid    uint64    `json:"highest_bid"`
	HighestBidder Address   `json:"highest_bidder"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
	Settled       bool      `json:"settled"`
}

// Started reports whether any round has ever been opened.
func (s *AuctionState) Started() bool { return !s.StartTime.IsZero() }

// Over reports whether the bidding window has elapsed at the given instant.
func (s *AuctionState) Over(now time.Time) bool { return !now.Before(s.EndTime) }

// BidReceipt is the persisted record of an accepted bid.
type BidReceipt struct {
	ID       string    `json:"id"`
	ItemID   uint64    `json:"item_id"`
	Bidder   Address   `json:"bidder"`
	Amount   uint64    `json:"amount"`
	Extended bool      `json:"extended"`
	PlacedAt time.Time `json:"placed_at"`
}

// RoundRecord is the persisted summary of a round, written when it opens and
// completed when it settles.
type RoundRecord struct {
	ItemID    uint64    `json:"item_id"`
	Winner    Address   `json:"winner"`
	Amount    uint64    `json:"amount"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Settled   bool      `json:"settled"`
}
