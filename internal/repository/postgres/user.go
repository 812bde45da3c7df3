package postgres

import (
	"context"
	"database/sql"
)

// UserRepo implements repository.UserRepository
type UserRepo struct {
	db *sql.DB
}

// NewUserRepo creates a new user repository
func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

// GetOrCreateUser upserts the user and links main words on first creation.
// xmax is zero only for a freshly inserted row.
func (r *UserRepo) GetOrCreateUser(ctx context.Context, telegramID int64, username string) (int64, bool, error) {
	var (
		userID   int64
		inserted bool
	)

	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		query := `
			INSERT INTO users (telegram_id, telegram_username)
			VALUES ($1, $2)
			ON CONFLICT (telegram_id)
			DO UPDATE SET telegram_username = EXCLUDED.telegram_username
			RETURNING id, (xmax = 0) AS inserted
		`
		if err := tx.QueryRowContext(ctx, query, telegramID, username).Scan(&userID, &inserted); err != nil {
			return err
		}
		if !inserted {
			return nil
		}

		linkQuery := `
			INSERT INTO user_words (user_id, word_id)
			SELECT $1, id FROM words WHERE is_main = TRUE
		`
		_, err := tx.ExecContext(ctx, linkQuery, userID)
		return err
	})
	if err != nil {
		return 0, false, mapError("get or create user", err)
	}

	return userID, !inserted, nil
}
