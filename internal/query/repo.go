package query

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"novelhub/pkg/models"
)

// Repo assembles denormalized read models for the presentation layer. It
// never mutates; related data is loaded explicitly, one bounded query per
// relation.
type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

// NovelCard is a novel as shown on the home feed.
type NovelCard struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	ImageURL    string       `json:"image_url"`
	Followers   int          `json:"followers"`
	Tags        []models.Tag `json:"tags"`
	AuthorName  string       `json:"author_name"`
}

// ChapterCard is a recently updated chapter annotated with its parent
// novel's display fields.
type ChapterCard struct {
	ChapterID     string    `json:"chapter_id"`
	ChapterNumber int       `json:"chapter_number"`
	NovelID       string    `json:"novel_id"`
	AuthorID      string    `json:"author_id"`
	Title         string    `json:"title"` // parent novel title
	ImageURL      string    `json:"image_url"`
	AuthorName    string    `json:"author_name"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NovelSummary is the minimal card for the random shelf.
type NovelSummary struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	ImageURL string `json:"image_url"`
}

// ChapterListItem is a chapter row on the novel detail page (no content).
type ChapterListItem struct {
	ID            string    `json:"id"`
	NovelID       string    `json:"novel_id"`
	Title         string    `json:"title"`
	ChapterNumber int       `json:"chapter_number"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NovelDetail is the full single-novel page: the aggregate plus owner
// display fields, tags and chapters in reading order.
type NovelDetail struct {
	models.Novel
	Tags       []models.Tag      `json:"tags"`
	AuthorName string            `json:"author_name"`
	AvatarURL  string            `json:"avatar_url"`
	Chapters   []ChapterListItem `json:"chapters"`
}

func (r *Repo) TopNovels(ctx context.Context, limit int) ([]NovelCard, error) {
	if limit <= 0 || limit > 20 {
		limit = 5
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT n.id, n.title, n.description, n.image_url, n.followers, u.username
		FROM novels n
		JOIN users u ON u.id = n.author_id
		ORDER BY n.followers DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("top novels: %w", err)
	}
	defer rows.Close()

	out := make([]NovelCard, 0, limit)
	var ids []string
	for rows.Next() {
		var card NovelCard
		if err := rows.Scan(&card.ID, &card.Title, &card.Description, &card.ImageURL, &card.Followers, &card.AuthorName); err != nil {
			return nil, fmt.Errorf("scan top novel: %w", err)
		}
		card.Tags = []models.Tag{}
		out = append(out, card)
		ids = append(ids, card.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}

	tagsByNovel, err := r.tagsForNovels(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range out {
		if tags, ok := tagsByNovel[out[i].ID]; ok {
			out[i].Tags = tags
		}
	}
	return out, nil
}

func (r *Repo) LatestChapters(ctx context.Context, limit int) ([]ChapterCard, error) {
	if limit <= 0 || limit > 50 {
		limit = 12
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT c.id, c.chapter_number, c.updated_at,
		       n.id, n.author_id, n.title, n.image_url, u.username
		FROM chapters c
		JOIN novels n ON n.id = c.novel_id
		JOIN users u ON u.id = n.author_id
		ORDER BY c.updated_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("latest chapters: %w", err)
	}
	defer rows.Close()

	out := make([]ChapterCard, 0, limit)
	for rows.Next() {
		var card ChapterCard
		if err := rows.Scan(
			&card.ChapterID, &card.ChapterNumber, &card.UpdatedAt,
			&card.NovelID, &card.AuthorID, &card.Title, &card.ImageURL, &card.AuthorName,
		); err != nil {
			return nil, fmt.Errorf("scan latest chapter: %w", err)
		}
		out = append(out, card)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

func (r *Repo) RandomNovels(ctx context.Context, limit int) ([]NovelSummary, error) {
	if limit <= 0 || limit > 50 {
		limit = 15
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, title, image_url
		FROM novels
		ORDER BY RANDOM()
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("random novels: %w", err)
	}
	defer rows.Close()

	out := make([]NovelSummary, 0, limit)
	for rows.Next() {
		var s NovelSummary
		if err := rows.Scan(&s.ID, &s.Title, &s.ImageURL); err != nil {
			return nil, fmt.Errorf("scan random novel: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

// NovelDetail loads the novel page as three explicit queries: the aggregate
// row with its owner, the tag set, and the chapters in reading order.
// Returns (nil, nil) when the novel does not exist.
func (r *Repo) NovelDetail(ctx context.Context, id string) (*NovelDetail, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT n.id, n.author_id, n.title, n.description, n.image_url, n.image_public_id,
		       n.status, n.followers, n.chapter_count, n.created_at, n.updated_at,
		       u.username, COALESCE(u.avatar_url, '')
		FROM novels n
		JOIN users u ON u.id = n.author_id
		WHERE n.id = ?
	`, id)

	var d NovelDetail
	err := row.Scan(
		&d.ID, &d.AuthorID, &d.Title, &d.Description, &d.ImageURL, &d.ImagePublicID,
		&d.Status, &d.Followers, &d.ChapterCount, &d.CreatedAt, &d.UpdatedAt,
		&d.AuthorName, &d.AvatarURL,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("novel detail: %w", err)
	}

	tagsByNovel, err := r.tagsForNovels(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	d.Tags = tagsByNovel[id]
	if d.Tags == nil {
		d.Tags = []models.Tag{}
	}

	chapterRows, err := r.DB.QueryContext(ctx, `
		SELECT id, novel_id, title, chapter_number, updated_at
		FROM chapters
		WHERE novel_id = ?
		ORDER BY chapter_number ASC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("detail chapters: %w", err)
	}
	defer chapterRows.Close()

	d.Chapters = []ChapterListItem{}
	for chapterRows.Next() {
		var item ChapterListItem
		if err := chapterRows.Scan(&item.ID, &item.NovelID, &item.Title, &item.ChapterNumber, &item.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan detail chapter: %w", err)
		}
		d.Chapters = append(d.Chapters, item)
	}
	if err := chapterRows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}

	return &d, nil
}

func (r *Repo) tagsForNovels(ctx context.Context, novelIDs []string) (map[string][]models.Tag, error) {
	if len(novelIDs) == 0 {
		return map[string][]models.Tag{}, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(novelIDs)), ",")
	args := make([]any, 0, len(novelIDs))
	for _, id := range novelIDs {
		args = append(args, id)
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT nt.novel_id, t.id, t.name
		FROM novel_tags nt
		JOIN tags t ON t.id = nt.tag_id
		WHERE nt.novel_id IN (`+placeholders+`)
		ORDER BY t.name ASC
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("tags for novels: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]models.Tag, len(novelIDs))
	for rows.Next() {
		var novelID string
		var t models.Tag
		if err := rows.Scan(&novelID, &t.ID, &t.Name); err != nil {
			return nil, fmt.Errorf("scan novel tag: %w", err)
		}
		out[novelID] = append(out[novelID], t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}
