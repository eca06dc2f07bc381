package chapters

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sqlite3 "github.com/mattn/go-sqlite3"

	"novelhub/internal/apperr"
	"novelhub/pkg/models"
)

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

// NextNumber suggests the number for a new chapter: max+1, or 1 when the
// novel has no chapters. Numbers need not be contiguous, authors may pick
// their own.
func (r *Repo) NextNumber(ctx context.Context, novelID string) (int, error) {
	var next int
	err := r.DB.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(chapter_number), 0) + 1
		FROM chapters
		WHERE novel_id = ?
	`, novelID).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("next chapter number: %w", err)
	}
	return next, nil
}

// NumberTaken is the fast user-facing pre-check. The UNIQUE(novel_id,
// chapter_number) constraint remains the authoritative guard under
// concurrent writers.
func (r *Repo) NumberTaken(ctx context.Context, novelID string, number int) (bool, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM chapters
		WHERE novel_id = ? AND chapter_number = ?
	`, novelID, number).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check chapter number: %w", err)
	}
	return n > 0, nil
}

// Neighbors returns the ids of the chapters directly below and above the
// given number, nil at either boundary.
func (r *Repo) Neighbors(ctx context.Context, novelID string, number int) (prevID, nextID *string, err error) {
	prevID, err = r.neighborID(ctx, novelID, number, true)
	if err != nil {
		return nil, nil, err
	}
	nextID, err = r.neighborID(ctx, novelID, number, false)
	if err != nil {
		return nil, nil, err
	}
	return prevID, nextID, nil
}

func (r *Repo) neighborID(ctx context.Context, novelID string, number int, previous bool) (*string, error) {
	query := `
		SELECT id FROM chapters
		WHERE novel_id = ? AND chapter_number > ?
		ORDER BY chapter_number ASC
		LIMIT 1
	`
	if previous {
		query = `
			SELECT id FROM chapters
			WHERE novel_id = ? AND chapter_number < ?
			ORDER BY chapter_number DESC
			LIMIT 1
		`
	}

	var id string
	err := r.DB.QueryRowContext(ctx, query, novelID, number).Scan(&id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("neighbor chapter: %w", err)
	}
	return &id, nil
}

// Insert persists the chapter. A unique-constraint conflict on
// (novel_id, chapter_number) maps to ErrDuplicateChapterNumber so racing
// creators get the same answer the pre-check gives.
func (r *Repo) Insert(ctx context.Context, ch models.Chapter) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO chapters (id, novel_id, author_id, title, content, chapter_number)
		VALUES (?, ?, ?, ?, ?, ?)
	`, ch.ID, ch.NovelID, ch.AuthorID, ch.Title, ch.Content, ch.ChapterNumber)
	if err != nil {
		var se sqlite3.Error
		if errors.As(err, &se) && se.ExtendedCode == sqlite3.ErrConstraintUnique {
			return apperr.ErrDuplicateChapterNumber
		}
		return fmt.Errorf("insert chapter: %w", err)
	}
	return nil
}

func scanChapter(row *sql.Row) (*models.Chapter, error) {
	var ch models.Chapter
	err := row.Scan(
		&ch.ID, &ch.NovelID, &ch.AuthorID, &ch.Title, &ch.Content,
		&ch.ChapterNumber, &ch.CreatedAt, &ch.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &ch, nil
}

func (r *Repo) GetByID(ctx context.Context, novelID, chapterID string) (*models.Chapter, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT id, novel_id, author_id, title, content, chapter_number, created_at, updated_at
		FROM chapters
		WHERE id = ? AND novel_id = ?
	`, chapterID, novelID)

	ch, err := scanChapter(row)
	if err != nil {
		return nil, fmt.Errorf("get chapter: %w", err)
	}
	return ch, nil
}

func (r *Repo) Update(ctx context.Context, chapterID, title, content string) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE chapters
		SET title = ?, content = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, title, content, chapterID)
	if err != nil {
		return fmt.Errorf("update chapter: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update chapter rows: %w", err)
	}
	if affected == 0 {
		return apperr.ErrChapterNotFound
	}
	return nil
}

// CountByNovel recomputes the real chapter count; the query layer uses it
// as a consistency check against the cached counter.
func (r *Repo) CountByNovel(ctx context.Context, novelID string) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM chapters WHERE novel_id = ?
	`, novelID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count chapters: %w", err)
	}
	return n, nil
}
