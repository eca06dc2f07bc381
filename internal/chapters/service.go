package chapters

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"novelhub/internal/apperr"
	"novelhub/internal/novels"
	"novelhub/pkg/logger"
	"novelhub/pkg/models"
)

// Notifier fans a new chapter out to the novel's followers. Implementations
// must not block the write path; failures stay on their side of the fence.
type Notifier interface {
	NotifyFollowers(novelID, chapterID string, chapterNumber int)
}

type Service struct {
	Repo     *Repo
	Novels   *novels.Service
	Notifier Notifier
	Log      *logger.Logger
}

func NewService(repo *Repo, novelSvc *novels.Service, notifier Notifier, log *logger.Logger) *Service {
	return &Service{Repo: repo, Novels: novelSvc, Notifier: notifier, Log: log}
}

type CreateInput struct {
	Title   string
	Content string
	Number  int
}

func (s *Service) Create(ctx context.Context, novelID, authorID string, in CreateInput) (*models.Chapter, error) {
	in.Title = strings.TrimSpace(in.Title)

	if in.Title == "" {
		return nil, apperr.Validation("title", "the title is required")
	}
	if strings.TrimSpace(in.Content) == "" {
		return nil, apperr.Validation("content", "the content is required")
	}
	if in.Number < 1 {
		return nil, apperr.Validation("chapter_number", "chapter number must be a positive integer")
	}

	novel, err := s.Novels.Repo.GetByID(ctx, novelID)
	if err != nil {
		return nil, err
	}
	if novel == nil {
		return nil, apperr.ErrNovelNotFound
	}

	// Fast rejection; two creators racing past this both hit the unique
	// constraint on insert, where exactly one wins.
	taken, err := s.Repo.NumberTaken(ctx, novelID, in.Number)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperr.ErrDuplicateChapterNumber
	}

	ch := models.Chapter{
		ID:            uuid.NewString(),
		NovelID:       novelID,
		AuthorID:      authorID,
		Title:         in.Title,
		Content:       in.Content,
		ChapterNumber: in.Number,
	}
	if err := s.Repo.Insert(ctx, ch); err != nil {
		return nil, err
	}

	if err := s.Novels.OnChapterAdded(ctx, novelID); err != nil {
		// Chapter row exists; a stale counter is a reconciliation concern,
		// not a reason to fail the create.
		s.Log.Error("chapter counter increment failed", "novel_id", novelID, "chapter_id", ch.ID, "err", err)
	}

	// Fire-and-forget relative to the write. The dispatcher owns delivery.
	s.Notifier.NotifyFollowers(novelID, ch.ID, ch.ChapterNumber)

	return s.Repo.GetByID(ctx, novelID, ch.ID)
}

func (s *Service) Update(ctx context.Context, novelID, chapterID, actorID, title, content string) (*models.Chapter, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperr.Validation("title", "the title is required")
	}
	if strings.TrimSpace(content) == "" {
		return nil, apperr.Validation("content", "the content is required")
	}

	ch, err := s.Repo.GetByID(ctx, novelID, chapterID)
	if err != nil {
		return nil, err
	}
	if ch == nil {
		return nil, apperr.ErrChapterNotFound
	}
	if ch.AuthorID != actorID {
		return nil, apperr.ErrForbidden
	}

	if err := s.Repo.Update(ctx, chapterID, title, content); err != nil {
		return nil, err
	}
	return s.Repo.GetByID(ctx, novelID, chapterID)
}

// NextNumber answers "what number should the next chapter get" for the
// creation form.
func (s *Service) NextNumber(ctx context.Context, novelID string) (int, error) {
	novel, err := s.Novels.Repo.GetByID(ctx, novelID)
	if err != nil {
		return 0, err
	}
	if novel == nil {
		return 0, apperr.ErrNovelNotFound
	}
	return s.Repo.NextNumber(ctx, novelID)
}

// ChapterView is a chapter plus its reading-order neighbors.
type ChapterView struct {
	models.Chapter
	PreviousChapter *string `json:"previous_chapter"`
	NextChapter     *string `json:"next_chapter"`
}

func (s *Service) Get(ctx context.Context, novelID, chapterID string) (*ChapterView, error) {
	ch, err := s.Repo.GetByID(ctx, novelID, chapterID)
	if err != nil {
		return nil, err
	}
	if ch == nil {
		return nil, apperr.ErrChapterNotFound
	}

	prev, next, err := s.Repo.Neighbors(ctx, novelID, ch.ChapterNumber)
	if err != nil {
		return nil, err
	}
	return &ChapterView{Chapter: *ch, PreviousChapter: prev, NextChapter: next}, nil
}
