package tags

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"novelhub/pkg/models"
)

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

func (r *Repo) List(ctx context.Context) ([]models.Tag, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, name
		FROM tags
		ORDER BY name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer rows.Close()

	var out []models.Tag
	for rows.Next() {
		var t models.Tag
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

func (r *Repo) Create(ctx context.Context, name string) (*models.Tag, error) {
	res, err := r.DB.ExecContext(ctx, `
		INSERT INTO tags (name) VALUES (?)
	`, name)
	if err != nil {
		return nil, fmt.Errorf("insert tag: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return &models.Tag{ID: id, Name: name}, nil
}

// CountByIDs reports how many of the given tag ids exist. Callers compare
// against len(ids) to validate a membership request up front.
func (r *Repo) CountByIDs(ctx context.Context, ids []int64) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, 0, len(ids))
	for _, id := range ids {
		args = append(args, id)
	}

	var n int
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tags WHERE id IN (`+placeholders+`)`, args...,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count tags: %w", err)
	}
	return n, nil
}
