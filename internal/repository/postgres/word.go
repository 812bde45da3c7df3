package postgres

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"vocabtrainer/internal/domain"
)

// WordRepo implements repository.WordRepository
type WordRepo struct {
	db *sql.DB
}

// NewWordRepo creates a new word repository
func NewWordRepo(db *sql.DB) *WordRepo {
	return &WordRepo{db: db}
}

// SeedMainWords inserts the main words that are missing and flags existing pairs as main
func (r *WordRepo) SeedMainWords(ctx context.Context, words []domain.Word) error {
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		query := `
			INSERT INTO words (rus, eng, number, is_main)
			VALUES ($1, $2, $3, TRUE)
			ON CONFLICT (rus, eng)
			DO UPDATE SET is_main = TRUE
		`
		for _, w := range words {
			if _, err := tx.ExecContext(ctx, query, w.Rus, w.Eng, w.Number); err != nil {
				return err
			}
		}
		return nil
	})
	return mapError("seed main words", err)
}

// AddUserWord attaches rus -> eng to the user, creating a new version when needed
func (r *WordRepo) AddUserWord(ctx context.Context, userID int64, rus, eng string) (domain.Outcome, error) {
	var outcome domain.Outcome

	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		candidates, err := findCandidates(ctx, tx, userID, rus)
		if err != nil {
			return err
		}

		plan := domain.PlanAddition(candidates, eng)
		outcome = plan.Outcome

		switch plan.Outcome {
		case domain.OutcomeCreated, domain.OutcomeNewVersionCreated:
			var wordID int64
			query := `
				INSERT INTO words (rus, eng, number)
				VALUES ($1, $2, $3)
				RETURNING id
			`
			if err := tx.QueryRowContext(ctx, query, rus, eng, plan.Number).Scan(&wordID); err != nil {
				return err
			}
			return linkWord(ctx, tx, userID, wordID)
		case domain.OutcomeLinked:
			return linkWord(ctx, tx, userID, plan.WordID)
		}
		return nil
	})
	if err != nil {
		return 0, mapError("add user word", err)
	}

	return outcome, nil
}

// findCandidates returns every version of rus, newest first, flagged when linked to the user
func findCandidates(ctx context.Context, tx *sql.Tx, userID int64, rus string) ([]domain.Candidate, error) {
	query := `
		SELECT w.id, w.rus, w.eng, w.number, w.is_main,
			EXISTS (SELECT 1 FROM user_words uw WHERE uw.word_id = w.id AND uw.user_id = $2) AS linked
		FROM words w
		WHERE w.rus = $1
		ORDER BY w.number DESC
	`
	rows, err := tx.QueryContext(ctx, query, rus, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var candidates []domain.Candidate
	for rows.Next() {
		var c domain.Candidate
		if err := rows.Scan(&c.Word.ID, &c.Word.Rus, &c.Word.Eng, &c.Word.Number, &c.Word.IsMain, &c.Linked); err != nil {
			return nil, err
		}
		candidates = append(candidates, c)
	}

	return candidates, rows.Err()
}

func linkWord(ctx context.Context, tx *sql.Tx, userID, wordID int64) error {
	query := `
		INSERT INTO user_words (user_id, word_id)
		VALUES ($1, $2)
	`
	_, err := tx.ExecContext(ctx, query, userID, wordID)
	return err
}

// DeleteUserWord unlinks every version of rus from the user and removes
// non-main versions nobody references any more
func (r *WordRepo) DeleteUserWord(ctx context.Context, userID int64, rus string) (bool, error) {
	found := false

	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, `SELECT id FROM words WHERE rus = $1`, rus)
		if err != nil {
			return err
		}
		var ids []int64
		for rows.Next() {
			var id int64
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return err
			}
			ids = append(ids, id)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}

		if len(ids) == 0 {
			return nil
		}
		found = true

		unlinkQuery := `
			DELETE FROM user_words
			WHERE user_id = $1 AND word_id = ANY($2)
		`
		if _, err := tx.ExecContext(ctx, unlinkQuery, userID, pq.Array(ids)); err != nil {
			return err
		}

		orphanQuery := `
			DELETE FROM words w
			WHERE w.id = ANY($1)
				AND w.is_main = FALSE
				AND NOT EXISTS (SELECT 1 FROM user_words uw WHERE uw.word_id = w.id)
		`
		_, err = tx.ExecContext(ctx, orphanQuery, pq.Array(ids))
		return err
	})
	if err != nil {
		return false, mapError("delete user word", err)
	}

	return found, nil
}

// ListUserWords returns the user's collection as display pairs
func (r *WordRepo) ListUserWords(ctx context.Context, userID int64) ([]domain.WordPair, error) {
	query := `
		SELECT w.rus, w.eng
		FROM user_words uw
		JOIN words w ON w.id = uw.word_id
		WHERE uw.user_id = $1
		ORDER BY w.rus, w.number
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, mapError("list user words", err)
	}
	defer rows.Close()

	var pairs []domain.WordPair
	for rows.Next() {
		var p domain.WordPair
		if err := rows.Scan(&p.Rus, &p.Eng); err != nil {
			return nil, mapError("list user words", err)
		}
		pairs = append(pairs, p)
	}

	if err := rows.Err(); err != nil {
		return nil, mapError("list user words", err)
	}
	return pairs, nil
}

// GetUserWords returns every association of the user with its word
func (r *WordRepo) GetUserWords(ctx context.Context, userID int64) ([]domain.UserWord, error) {
	query := `
		SELECT uw.id, uw.user_id, uw.learned, uw.attempt_word,
			w.id, w.rus, w.eng, w.number, w.is_main
		FROM user_words uw
		JOIN words w ON w.id = uw.word_id
		WHERE uw.user_id = $1
		ORDER BY uw.id
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, mapError("get user words", err)
	}
	defer rows.Close()

	var words []domain.UserWord
	for rows.Next() {
		var uw domain.UserWord
		if err := rows.Scan(
			&uw.ID, &uw.UserID, &uw.Learned, &uw.Attempts,
			&uw.Word.ID, &uw.Word.Rus, &uw.Word.Eng, &uw.Word.Number, &uw.Word.IsMain,
		); err != nil {
			return nil, mapError("get user words", err)
		}
		words = append(words, uw)
	}

	if err := rows.Err(); err != nil {
		return nil, mapError("get user words", err)
	}
	return words, nil
}

// GetTranslations returns every English term known for rus, across all users
func (r *WordRepo) GetTranslations(ctx context.Context, rus string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT eng FROM words WHERE rus = $1`, rus)
	if err != nil {
		return nil, mapError("get translations", err)
	}
	defer rows.Close()

	var translations []string
	for rows.Next() {
		var eng string
		if err := rows.Scan(&eng); err != nil {
			return nil, mapError("get translations", err)
		}
		translations = append(translations, eng)
	}

	if err := rows.Err(); err != nil {
		return nil, mapError("get translations", err)
	}
	return translations, nil
}

// SetLearned updates the mastery flag, false when the association is gone
func (r *WordRepo) SetLearned(ctx context.Context, userWordID int64, learned bool) (bool, error) {
	query := `
		UPDATE user_words
		SET learned = $2
		WHERE id = $1
	`
	return r.updateOne(ctx, "set learned", query, userWordID, learned)
}

// SetAttempts stores the attempt counter of the current round
func (r *WordRepo) SetAttempts(ctx context.Context, userWordID int64, attempts int) (bool, error) {
	query := `
		UPDATE user_words
		SET attempt_word = $2
		WHERE id = $1
	`
	return r.updateOne(ctx, "set attempts", query, userWordID, attempts)
}

func (r *WordRepo) updateOne(ctx context.Context, op, query string, args ...any) (bool, error) {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, mapError(op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, mapError(op, err)
	}
	return affected > 0, nil
}

// CountProgress returns how many of the user's words are learned
func (r *WordRepo) CountProgress(ctx context.Context, userID int64) (int, int, error) {
	query := `
		SELECT COUNT(*) FILTER (WHERE learned), COUNT(*)
		FROM user_words
		WHERE user_id = $1
	`
	var learned, total int
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&learned, &total); err != nil {
		return 0, 0, mapError("count progress", err)
	}
	return learned, total, nil
}

// DeleteOrphanWords removes non-main words without any user
func (r *WordRepo) DeleteOrphanWords(ctx context.Context) (int64, error) {
	query := `
		DELETE FROM words w
		WHERE w.is_main = FALSE
			AND NOT EXISTS (SELECT 1 FROM user_words uw WHERE uw.word_id = w.id)
	`
	res, err := r.db.ExecContext(ctx, query)
	if err != nil {
		return 0, mapError("delete orphan words", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, mapError("delete orphan words", err)
	}
	return n, nil
}
