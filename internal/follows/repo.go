package follows

import (
	"context"
	"database/sql"
	"fmt"
)

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

// Follow inserts the edge and bumps the novel's derived follower counter in
// the same transaction. Following twice is a no-op.
func (r *Repo) Follow(ctx context.Context, userID, novelID string) (bool, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin follow: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT OR IGNORE INTO user_follows (user_id, novel_id) VALUES (?, ?)
	`, userID, novelID)
	if err != nil {
		return false, fmt.Errorf("insert follow: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return false, nil
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE novels SET followers = followers + 1 WHERE id = ?
	`, novelID); err != nil {
		return false, fmt.Errorf("increment followers: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit follow: %w", err)
	}
	return true, nil
}

// Unfollow removes the edge and decrements the counter together.
func (r *Repo) Unfollow(ctx context.Context, userID, novelID string) (bool, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin unfollow: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		DELETE FROM user_follows WHERE user_id = ? AND novel_id = ?
	`, userID, novelID)
	if err != nil {
		return false, fmt.Errorf("delete follow: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return false, nil
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE novels SET followers = MAX(followers - 1, 0) WHERE id = ?
	`, novelID); err != nil {
		return false, fmt.Errorf("decrement followers: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit unfollow: %w", err)
	}
	return true, nil
}

// FollowerIDs snapshots the current follower set of a novel.
func (r *Repo) FollowerIDs(ctx context.Context, novelID string) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT user_id FROM user_follows WHERE novel_id = ?
	`, novelID)
	if err != nil {
		return nil, fmt.Errorf("list followers: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan follower: %w", err)
		}
		out = append(out, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

func (r *Repo) IsFollowing(ctx context.Context, userID, novelID string) (bool, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM user_follows WHERE user_id = ? AND novel_id = ?
	`, userID, novelID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check follow: %w", err)
	}
	return n > 0, nil
}
