package novels

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"novelhub/internal/apperr"
	"novelhub/internal/assets"
	"novelhub/internal/tags"
	"novelhub/pkg/logger"
	"novelhub/pkg/models"
)

// Service owns the novel aggregate: creation, update, deletion, tag
// membership and the cached chapter counter. Remote image handling goes
// through the asset store; only upload failures are fatal to the caller.
type Service struct {
	Repo        *Repo
	Tags        *tags.Repo
	Assets      assets.Store
	AssetFolder string
	Log         *logger.Logger
}

func NewService(repo *Repo, tagRepo *tags.Repo, store assets.Store, folder string, log *logger.Logger) *Service {
	return &Service{Repo: repo, Tags: tagRepo, Assets: store, AssetFolder: folder, Log: log}
}

type CreateInput struct {
	Title       string
	Description string
	TagIDs      []int64
	Image       []byte
}

func (s *Service) validateTags(ctx context.Context, tagIDs []int64) error {
	if len(tagIDs) == 0 {
		return apperr.Validation("tags", "at least one tag is required")
	}
	n, err := s.Tags.CountByIDs(ctx, tagIDs)
	if err != nil {
		return fmt.Errorf("validate tags: %w", err)
	}
	if n != len(tagIDs) {
		return apperr.Validation("tags", "unknown tag id")
	}
	return nil
}

func (s *Service) Create(ctx context.Context, ownerID string, in CreateInput) (*models.Novel, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)

	if in.Title == "" {
		return nil, apperr.Validation("title", "the title is required")
	}
	if len(in.Title) > 255 {
		return nil, apperr.Validation("title", "the title must not exceed 255 chars")
	}
	if in.Description == "" {
		return nil, apperr.Validation("description", "the description is required")
	}
	if len(in.Image) == 0 {
		return nil, apperr.Validation("image", "an image is required")
	}
	if err := s.validateTags(ctx, in.TagIDs); err != nil {
		return nil, err
	}

	// Upload first: if the image never makes it to the asset store there is
	// nothing to persist (no partial aggregate).
	asset, err := s.Assets.Upload(ctx, in.Image, s.AssetFolder)
	if err != nil {
		return nil, err
	}

	n := models.Novel{
		ID:            uuid.NewString(),
		AuthorID:      ownerID,
		Title:         in.Title,
		Description:   in.Description,
		ImageURL:      asset.URL,
		ImagePublicID: asset.RemoteID,
		Status:        models.NovelStatusOngoing,
		Followers:     0,
		ChapterCount:  0,
	}

	if err := s.Repo.Insert(ctx, n, in.TagIDs); err != nil {
		// The row never existed; the uploaded asset is orphaned until a
		// reconciliation sweep. Acceptable tradeoff, log and fail.
		s.Log.Error("novel insert failed after upload", "novel_id", n.ID, "remote_id", asset.RemoteID, "err", err)
		return nil, fmt.Errorf("create novel: %w", err)
	}

	return s.Repo.GetByID(ctx, n.ID)
}

type UpdateInput struct {
	Title       string
	Description string
	Status      string
	TagIDs      []int64
	Image       []byte // nil keeps the current asset
}

func (s *Service) Update(ctx context.Context, novelID, actorID string, in UpdateInput) (*models.Novel, error) {
	n, err := s.Repo.GetByID(ctx, novelID)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, apperr.ErrNovelNotFound
	}
	if n.AuthorID != actorID {
		return nil, apperr.ErrForbidden
	}

	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Status = strings.ToLower(strings.TrimSpace(in.Status))

	if in.Title == "" || len(in.Title) > 255 {
		return nil, apperr.Validation("title", "the title must be 1-255 chars")
	}
	if in.Description == "" {
		return nil, apperr.Validation("description", "the description is required")
	}
	if in.Status != models.NovelStatusOngoing && in.Status != models.NovelStatusCompleted {
		return nil, apperr.Validation("status", "status must be ongoing or completed")
	}
	if err := s.validateTags(ctx, in.TagIDs); err != nil {
		return nil, err
	}

	fields := UpdateFields{
		Title:       in.Title,
		Description: in.Description,
		Status:      in.Status,
	}

	oldRemoteID := ""
	if len(in.Image) > 0 {
		// New asset goes up before anything else changes; an upload failure
		// leaves the novel exactly as it was.
		asset, err := s.Assets.Upload(ctx, in.Image, s.AssetFolder)
		if err != nil {
			return nil, err
		}
		fields.SetImage = true
		fields.ImageURL = asset.URL
		fields.ImagePublicID = asset.RemoteID
		oldRemoteID = n.ImagePublicID
	}

	if err := s.Repo.Update(ctx, novelID, fields, in.TagIDs); err != nil {
		return nil, err
	}

	// Old asset is removed only after the new one is durably linked. A crash
	// or failure here orphans the old remote asset, never the novel.
	if oldRemoteID != "" {
		if err := s.Assets.Delete(ctx, oldRemoteID); err != nil {
			s.Log.Warn("old cover delete failed", "novel_id", novelID, "remote_id", oldRemoteID, "err", err)
		}
	}

	return s.Repo.GetByID(ctx, novelID)
}

func (s *Service) Delete(ctx context.Context, novelID, actorID string) error {
	n, err := s.Repo.GetByID(ctx, novelID)
	if err != nil {
		return err
	}
	if n == nil {
		return apperr.ErrNovelNotFound
	}
	if n.AuthorID != actorID {
		return apperr.ErrForbidden
	}

	// Remote asset first, best effort: an orphaned remote image is
	// recoverable, a zombie novel row is not.
	if n.ImagePublicID != "" {
		if err := s.Assets.Delete(ctx, n.ImagePublicID); err != nil {
			s.Log.Warn("cover delete failed", "novel_id", novelID, "remote_id", n.ImagePublicID, "err", err)
		}
	}

	return s.Repo.Delete(ctx, novelID)
}

// OnChapterAdded keeps the derived chapter_count in step with the chapter
// rows. Called once per successful chapter creation.
func (s *Service) OnChapterAdded(ctx context.Context, novelID string) error {
	return s.Repo.IncrementChapterCount(ctx, novelID)
}
