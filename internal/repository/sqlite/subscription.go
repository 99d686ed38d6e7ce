package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/tazwar/feedpost/internal/repository"
)

// compile-time check that *DB implements repository.SubscriptionRepository
var _ repository.SubscriptionRepository = (*DB)(nil)

// SaveSubscriptions inserts (userID, topic) pairs in one transaction.
// INSERT OR IGNORE skips pairs that already exist (the UNIQUE index on
// user_id+topic), so the returned count is the number of rows actually
// added, not the number of topics submitted.
func (db *DB) SaveSubscriptions(ctx context.Context, userID int64, topics []string) (int64, error) {
	if len(topics) == 0 {
		return 0, nil
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("sqlite: beginning subscription insert: %w", err)
	}
	defer tx.Rollback()

	var added int64
	for _, topic := range topics {
		res, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO subscriptions (user_id, topic) VALUES (?, ?)`,
			userID, topic)
		if err != nil {
			return 0, fmt.Errorf("sqlite: inserting subscription %d/%q: %w", userID, topic, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("sqlite: inserting subscription %d/%q: %w", userID, topic, err)
		}
		added += n
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("sqlite: committing subscription insert: %w", err)
	}
	return added, nil
}

// GetSubscriptions returns the user's topics. A user with no rows gets
// an empty (non-nil) slice so the JSON response is [] rather than null.
func (db *DB) GetSubscriptions(ctx context.Context, userID int64) ([]string, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT topic FROM subscriptions WHERE user_id = ? ORDER BY topic`, userID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: querying subscriptions for user %d: %w", userID, err)
	}
	defer rows.Close()

	topics := []string{}
	for rows.Next() {
		var topic string
		if err := rows.Scan(&topic); err != nil {
			return nil, fmt.Errorf("sqlite: scanning subscription row: %w", err)
		}
		topics = append(topics, topic)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating subscriptions for user %d: %w", userID, err)
	}
	return topics, nil
}

// DeleteSubscriptions removes the matching (userID, topic) pairs and
// returns how many rows went away. Topics the user never had simply
// don't count.
func (db *DB) DeleteSubscriptions(ctx context.Context, userID int64, topics []string) (int64, error) {
	if len(topics) == 0 {
		return 0, nil
	}

	// Build the IN (?, ?, ...) placeholder list; one bind per topic.
	// Never splice the topics into the SQL string itself.
	placeholders := strings.Repeat("?,", len(topics))
	placeholders = placeholders[:len(placeholders)-1]

	args := make([]any, 0, len(topics)+1)
	args = append(args, userID)
	for _, topic := range topics {
		args = append(args, topic)
	}

	res, err := db.conn.ExecContext(ctx,
		`DELETE FROM subscriptions WHERE user_id = ? AND topic IN (`+placeholders+`)`,
		args...)
	if err != nil {
		return 0, fmt.Errorf("sqlite: deleting subscriptions for user %d: %w", userID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("sqlite: deleting subscriptions for user %d: %w", userID, err)
	}
	return affected, nil
}
