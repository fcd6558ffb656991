package store

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
)

// Subscribe adds users to a stream. Already-subscribed users are ignored.
// The stream's change stamp is bumped so open headers refresh their counts.
func (s *Store) Subscribe(streamID int64, userIDs ...int64) error {
	return s.withTx(func(tx *sql.Tx) error {
		if err := s.touch(tx, streamID); err != nil {
			return fmt.Errorf("subscribe to stream %d: %w", streamID, err)
		}
		for _, uid := range userIDs {
			if _, err := tx.Exec(
				`INSERT OR IGNORE INTO subscriptions (stream_id, user_id) VALUES (?, ?)`,
				streamID, uid,
			); err != nil {
				return fmt.Errorf("subscribe user %d to stream %d: %w", uid, streamID, err)
			}
		}
		return nil
	})
}

// Unsubscribe removes users from a stream.
func (s *Store) Unsubscribe(streamID int64, userIDs ...int64) error {
	return s.withTx(func(tx *sql.Tx) error {
		if err := s.touch(tx, streamID); err != nil {
			return fmt.Errorf("unsubscribe from stream %d: %w", streamID, err)
		}
		for _, uid := range userIDs {
			if _, err := tx.Exec(
				`DELETE FROM subscriptions WHERE stream_id = ? AND user_id = ?`,
				streamID, uid,
			); err != nil {
				return fmt.Errorf("unsubscribe user %d from stream %d: %w", uid, streamID, err)
			}
		}
		return nil
	})
}

// SubscriberCount returns the number of users subscribed to a stream.
func (s *Store) SubscriberCount(streamID int64) (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM subscriptions WHERE stream_id = ?`, streamID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count subscribers of stream %d: %w", streamID, err)
	}
	return n, nil
}

// IsSubscribed reports whether userID is subscribed to the stream.
func (s *Store) IsSubscribed(streamID, userID int64) (bool, error) {
	var one int
	err := s.db.QueryRow(
		`SELECT 1 FROM subscriptions WHERE stream_id = ? AND user_id = ?`,
		streamID, userID,
	).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check subscription of user %d to stream %d: %w", userID, streamID, err)
	}
	return true, nil
}

// PeerData answers subscriber-count questions for the header. Lookups are
// expected to succeed once a stream has resolved; failures are logged and
// reported as zero.
type PeerData struct {
	store  *Store
	logger *slog.Logger
}

// NewPeerData wraps a store for subscriber-count lookups.
func NewPeerData(s *Store, logger *slog.Logger) *PeerData {
	if logger == nil {
		logger = slog.Default()
	}
	return &PeerData{store: s, logger: logger}
}

// SubscriberCount returns the live subscriber count for a stream.
func (p *PeerData) SubscriberCount(streamID int64) int {
	n, err := p.store.SubscriberCount(streamID)
	if err != nil {
		p.logger.Warn("subscriber count lookup failed", "stream_id", streamID, "error", err)
		return 0
	}
	return n
}
