package mysql

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"auction-house/internal/domain"
	"auction-house/pkg/logger"
)

// HistoryRecorder persists rounds and bid receipts off the event stream. It
// implements domain.EventPublisher so that a slow or dead database is an
// observability gap, never a settlement failure, and domain.HistoryStore for
// the read side.
type HistoryRecorder struct {
	db  *sql.DB
	log logger.Logger
}

func NewHistoryRecorder(db *sql.DB, log logger.Logger) *HistoryRecorder {
	return &HistoryRecorder{db: db, log: log}
}

func (r *HistoryRecorder) Publish(ctx context.Context, event *domain.AuctionEvent) error {
	switch event.Type {
	case domain.EventRoundCreated:
		return r.insertRound(ctx, event)
	case domain.EventBidPlaced:
		return r.insertBid(ctx, event)
	case domain.EventRoundSettled:
		return r.settleRound(ctx, event)
	default:
		return nil
	}
}

func (r *HistoryRecorder) insertRound(ctx context.Context, event *domain.AuctionEvent) error {
	query := `
        INSERT INTO rounds (item_id, winner, amount, start_time, end_time, settled)
        VALUES (?, '', 0, ?, ?, FALSE)
    `
	_, err := r.db.ExecContext(ctx, query, event.ItemID, event.StartTime, event.EndTime)
	return err
}

func (r *HistoryRecorder) insertBid(ctx context.Context, event *domain.AuctionEvent) error {
	query := `
        INSERT INTO bids (id, item_id, bidder, amount, extended, placed_at)
        VALUES (?, ?, ?, ?, ?, ?)
    `
	_, err := r.db.ExecContext(ctx, query,
		event.ReceiptID, event.ItemID, string(event.Bidder),
		event.Amount, event.Extended, event.Timestamp)
	if err != nil {
		return err
	}

	// Extensions move the recorded window's end.
	if event.Extended {
		_, err = r.db.ExecContext(ctx,
			`UPDATE rounds SET end_time = ? WHERE item_id = ?`,
			event.EndTime, event.ItemID)
	}
	return err
}

func (r *HistoryRecorder) settleRound(ctx context.Context, event *domain.AuctionEvent) error {
	query := `UPDATE rounds SET winner = ?, amount = ?, settled = TRUE WHERE item_id = ?`
	_, err := r.db.ExecContext(ctx, query, string(event.Winner), event.Amount, event.ItemID)
	return err
}

func (r *HistoryRecorder) RecentBids(ctx context.Context, limit int) ([]*domain.BidReceipt, error) {
	query := `
        SELECT id, item_id, bidder, amount, extended, placed_at
        FROM bids ORDER BY placed_at DESC LIMIT ?
    `
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var receipts []*domain.BidReceipt
	for rows.Next() {
		var receipt domain.BidReceipt
		var bidder string
		var placedAt time.Time

		if err := rows.Scan(&receipt.ID, &receipt.ItemID, &bidder,
			&receipt.Amount, &receipt.Extended, &placedAt); err != nil {
			return nil, err
		}
		receipt.Bidder = domain.Address(bidder)
		receipt.PlacedAt = placedAt
		receipts = append(receipts, &receipt)
	}
	return receipts, rows.Err()
}

func (r *HistoryRecorder) Rounds(ctx context.Context, limit int) ([]*domain.RoundRecord, error) {
	query := `
        SELECT item_id, winner, amount, start_time, end_time, settled
        FROM rounds ORDER BY item_id DESC LIMIT ?
    `
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*domain.RoundRecord
	for rows.Next() {
		var record domain.RoundRecord
		var winner string

		if err := rows.Scan(&record.ItemID, &winner, &record.Amount,
			&record.StartTime, &record.EndTime, &record.Settled); err != nil {
			return nil, err
		}
		record.Winner = domain.Address(winner)
		records = append(records, &record)
	}
	return records, rows.Err()
}
