package novels

import (
	"context"
	"database/sql"
	"fmt"

	"novelhub/pkg/models"
)

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

func scanNovel(row *sql.Row) (*models.Novel, error) {
	var n models.Novel
	err := row.Scan(
		&n.ID, &n.AuthorID, &n.Title, &n.Description,
		&n.ImageURL, &n.ImagePublicID, &n.Status,
		&n.Followers, &n.ChapterCount, &n.CreatedAt, &n.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &n, nil
}

func (r *Repo) GetByID(ctx context.Context, id string) (*models.Novel, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT id, author_id, title, description, image_url, image_public_id,
		       status, followers, chapter_count, created_at, updated_at
		FROM novels
		WHERE id = ?
	`, id)

	n, err := scanNovel(row)
	if err != nil {
		return nil, fmt.Errorf("get novel: %w", err)
	}
	return n, nil
}

// Insert persists a new novel row together with its tag edges as one unit.
func (r *Repo) Insert(ctx context.Context, n models.Novel, tagIDs []int64) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin insert novel: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO novels (id, author_id, title, description, image_url, image_public_id,
		                    status, followers, chapter_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, n.ID, n.AuthorID, n.Title, n.Description, n.ImageURL, n.ImagePublicID,
		n.Status, n.Followers, n.ChapterCount)
	if err != nil {
		return fmt.Errorf("insert novel: %w", err)
	}

	for _, tagID := range tagIDs {
		if _, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO novel_tags (novel_id, tag_id) VALUES (?, ?)
		`, n.ID, tagID); err != nil {
			return fmt.Errorf("attach tag %d: %w", tagID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit insert novel: %w", err)
	}
	return nil
}

// UpdateFields carries the writable novel columns. The image pair is only
// written when SetImage is true.
type UpdateFields struct {
	Title         string
	Description   string
	Status        string
	SetImage      bool
	ImageURL      string
	ImagePublicID string
}

// Update rewrites the novel's fields and replaces its tag membership set in
// one transaction.
func (r *Repo) Update(ctx context.Context, id string, f UpdateFields, tagIDs []int64) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update novel: %w", err)
	}
	defer tx.Rollback()

	if f.SetImage {
		_, err = tx.ExecContext(ctx, `
			UPDATE novels
			SET title = ?, description = ?, status = ?,
			    image_url = ?, image_public_id = ?,
			    updated_at = CURRENT_TIMESTAMP
			WHERE id = ?
		`, f.Title, f.Description, f.Status, f.ImageURL, f.ImagePublicID, id)
	} else {
		_, err = tx.ExecContext(ctx, `
			UPDATE novels
			SET title = ?, description = ?, status = ?,
			    updated_at = CURRENT_TIMESTAMP
			WHERE id = ?
		`, f.Title, f.Description, f.Status, id)
	}
	if err != nil {
		return fmt.Errorf("update novel: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM novel_tags WHERE novel_id = ?
	`, id); err != nil {
		return fmt.Errorf("detach tags: %w", err)
	}
	for _, tagID := range tagIDs {
		if _, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO novel_tags (novel_id, tag_id) VALUES (?, ?)
		`, id, tagID); err != nil {
			return fmt.Errorf("attach tag %d: %w", tagID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit update novel: %w", err)
	}
	return nil
}

// Delete removes the aggregate: tag edges, follower edges, chapters, then the
// novel row. The order means no chapter or edge can ever reference a missing
// novel mid-delete.
func (r *Repo) Delete(ctx context.Context, id string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete novel: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM novel_tags WHERE novel_id = ?`, id); err != nil {
		return fmt.Errorf("detach tags: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM user_follows WHERE novel_id = ?`, id); err != nil {
		return fmt.Errorf("detach followers: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM chapters WHERE novel_id = ?`, id); err != nil {
		return fmt.Errorf("delete chapters: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM novels WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete novel: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete novel: %w", err)
	}
	return nil
}

// IncrementChapterCount bumps the cached counter by one. Called exactly once
// per successful chapter insert; never retried on its own.
func (r *Repo) IncrementChapterCount(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE novels
		SET chapter_count = chapter_count + 1, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, id)
	if err != nil {
		return fmt.Errorf("increment chapter count: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("increment chapter count rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("increment chapter count: novel not found")
	}
	return nil
}

// TagIDs returns the novel's current tag membership.
func (r *Repo) TagIDs(ctx context.Context, id string) ([]int64, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT tag_id FROM novel_tags WHERE novel_id = ? ORDER BY tag_id
	`, id)
	if err != nil {
		return nil, fmt.Errorf("novel tag ids: %w", err)
	}
	defer rows.Close()

	var out []int64
	for rows.Next() {
		var tagID int64
		if err := rows.Scan(&tagID); err != nil {
			return nil, fmt.Errorf("scan tag id: %w", err)
		}
		out = append(out, tagID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}
