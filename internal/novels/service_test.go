package novels

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"novelhub/internal/apperr"
	"novelhub/internal/assets"
	"novelhub/internal/tags"
	"novelhub/pkg/database/dbtest"
	"novelhub/pkg/logger"
)

// fakeStore stands in for the remote image service.
type fakeStore struct {
	uploads    int
	deletes    []string
	failUpload bool
	failDelete bool
}

func (f *fakeStore) Upload(_ context.Context, _ []byte, _ string) (assets.Asset, error) {
	if f.failUpload {
		return assets.Asset{}, fmt.Errorf("%w: unreachable", apperr.ErrAssetUpload)
	}
	f.uploads++
	id := fmt.Sprintf("remote-%d", f.uploads)
	return assets.Asset{RemoteID: id, URL: "https://cdn.example.com/" + id}, nil
}

func (f *fakeStore) Delete(_ context.Context, remoteID string) error {
	if f.failDelete {
		return fmt.Errorf("%w: unreachable", apperr.ErrAssetDelete)
	}
	f.deletes = append(f.deletes, remoteID)
	return nil
}

type fixture struct {
	db      *sql.DB
	store   *fakeStore
	service *Service
	tagIDs  []int64
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := dbtest.Open(t)

	_, err := db.Exec(`
		INSERT INTO users (id, username, email, password_hash) VALUES
			('owner', 'owner', 'owner@example.com', 'x'),
			('other', 'other', 'other@example.com', 'x')
	`)
	require.NoError(t, err)

	tagRepo := tags.NewRepo(db)
	var tagIDs []int64
	for _, name := range []string{"fantasy", "romance"} {
		tag, err := tagRepo.Create(context.Background(), name)
		require.NoError(t, err)
		tagIDs = append(tagIDs, tag.ID)
	}

	store := &fakeStore{}
	service := NewService(NewRepo(db), tagRepo, store, "covers", logger.NewNop())
	return &fixture{db: db, store: store, service: service, tagIDs: tagIDs}
}

func (f *fixture) createNovel(t *testing.T) string {
	t.Helper()
	novel, err := f.service.Create(context.Background(), "owner", CreateInput{
		Title:       "The Long Road",
		Description: "a journey",
		TagIDs:      f.tagIDs[:1],
		Image:       []byte("img"),
	})
	require.NoError(t, err)
	return novel.ID
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := []struct {
		name string
		in   CreateInput
	}{
		{"empty title", CreateInput{Description: "d", TagIDs: f.tagIDs, Image: []byte("i")}},
		{"empty description", CreateInput{Title: "t", TagIDs: f.tagIDs, Image: []byte("i")}},
		{"no tags", CreateInput{Title: "t", Description: "d", Image: []byte("i")}},
		{"unknown tag", CreateInput{Title: "t", Description: "d", TagIDs: []int64{999}, Image: []byte("i")}},
		{"no image", CreateInput{Title: "t", Description: "d", TagIDs: f.tagIDs}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.service.Create(ctx, "owner", tc.in)
			assert.True(t, apperr.IsValidation(err), "want validation error, got %v", err)
		})
	}

	// nothing was uploaded or persisted
	assert.Equal(t, 0, f.store.uploads)
	var n int
	require.NoError(t, f.db.QueryRow(`SELECT COUNT(*) FROM novels`).Scan(&n))
	assert.Equal(t, 0, n)
}

func TestCreateUploadFailureLeavesNoRow(t *testing.T) {
	f := newFixture(t)
	f.store.failUpload = true

	_, err := f.service.Create(context.Background(), "owner", CreateInput{
		Title: "t", Description: "d", TagIDs: f.tagIDs, Image: []byte("i"),
	})
	assert.ErrorIs(t, err, apperr.ErrAssetUpload)

	var n int
	require.NoError(t, f.db.QueryRow(`SELECT COUNT(*) FROM novels`).Scan(&n))
	assert.Equal(t, 0, n)
}

func TestCreateSuccess(t *testing.T) {
	f := newFixture(t)

	novel, err := f.service.Create(context.Background(), "owner", CreateInput{
		Title:       "The Long Road",
		Description: "a journey",
		TagIDs:      f.tagIDs,
		Image:       []byte("img"),
	})
	require.NoError(t, err)

	assert.Equal(t, "owner", novel.AuthorID)
	assert.Equal(t, "ongoing", novel.Status)
	assert.Equal(t, 0, novel.Followers)
	assert.Equal(t, 0, novel.ChapterCount)
	assert.Equal(t, "remote-1", novel.ImagePublicID)
	assert.NotEmpty(t, novel.ImageURL)

	attached, err := f.service.Repo.TagIDs(context.Background(), novel.ID)
	require.NoError(t, err)
	assert.Equal(t, f.tagIDs, attached)
}

func TestUpdateForbidden(t *testing.T) {
	f := newFixture(t)
	id := f.createNovel(t)

	_, err := f.service.Update(context.Background(), id, "other", UpdateInput{
		Title: "hijack", Description: "d", Status: "ongoing", TagIDs: f.tagIDs,
	})
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	// fields untouched
	n, err := f.service.Repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "The Long Road", n.Title)
}

func TestUpdateReplacesTags(t *testing.T) {
	f := newFixture(t)
	id := f.createNovel(t) // starts with tagIDs[:1]

	_, err := f.service.Update(context.Background(), id, "owner", UpdateInput{
		Title: "The Long Road", Description: "a journey", Status: "completed",
		TagIDs: f.tagIDs[1:],
	})
	require.NoError(t, err)

	attached, err := f.service.Repo.TagIDs(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, f.tagIDs[1:], attached, "membership set is replaced, not merged")

	n, err := f.service.Repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "completed", n.Status)
}

func TestUpdateImageSwap(t *testing.T) {
	f := newFixture(t)
	id := f.createNovel(t) // uploads remote-1

	updated, err := f.service.Update(context.Background(), id, "owner", UpdateInput{
		Title: "The Long Road", Description: "a journey", Status: "ongoing",
		TagIDs: f.tagIDs[:1], Image: []byte("new"),
	})
	require.NoError(t, err)

	assert.Equal(t, "remote-2", updated.ImagePublicID)
	assert.Equal(t, []string{"remote-1"}, f.store.deletes, "old asset deleted after swap")
}

func TestUpdateImageUploadFailure(t *testing.T) {
	f := newFixture(t)
	id := f.createNovel(t)
	f.store.failUpload = true

	_, err := f.service.Update(context.Background(), id, "owner", UpdateInput{
		Title: "New Title", Description: "new desc", Status: "completed",
		TagIDs: f.tagIDs[:1], Image: []byte("new"),
	})
	assert.ErrorIs(t, err, apperr.ErrAssetUpload)

	// all-or-nothing: original asset and fields intact, no delete attempted
	n, getErr := f.service.Repo.GetByID(context.Background(), id)
	require.NoError(t, getErr)
	assert.Equal(t, "remote-1", n.ImagePublicID)
	assert.Equal(t, "The Long Road", n.Title)
	assert.Empty(t, f.store.deletes)
}

func TestUpdateOldAssetDeleteFailureIsSwallowed(t *testing.T) {
	f := newFixture(t)
	id := f.createNovel(t)
	f.store.failDelete = true

	updated, err := f.service.Update(context.Background(), id, "owner", UpdateInput{
		Title: "The Long Road", Description: "a journey", Status: "ongoing",
		TagIDs: f.tagIDs[:1], Image: []byte("new"),
	})
	require.NoError(t, err, "delete failure must not surface")
	assert.Equal(t, "remote-2", updated.ImagePublicID)
}

func TestDeleteCascades(t *testing.T) {
	f := newFixture(t)
	id := f.createNovel(t)
	ctx := context.Background()

	// 5 chapters, followers, plus the tag edge from creation
	for i := 1; i <= 5; i++ {
		_, err := f.db.Exec(`
			INSERT INTO chapters (id, novel_id, author_id, title, content, chapter_number)
			VALUES (?, ?, 'owner', 'ch', 'text', ?)
		`, fmt.Sprintf("c%d", i), id, i)
		require.NoError(t, err)
	}
	for _, u := range []string{"owner", "other"} {
		_, err := f.db.Exec(`INSERT INTO user_follows (user_id, novel_id) VALUES (?, ?)`, u, id)
		require.NoError(t, err)
	}

	// even a failing remote asset delete must not stop the aggregate delete
	f.store.failDelete = true
	require.NoError(t, f.service.Delete(ctx, id, "owner"))

	for _, q := range []string{
		`SELECT COUNT(*) FROM chapters WHERE novel_id = ?`,
		`SELECT COUNT(*) FROM novel_tags WHERE novel_id = ?`,
		`SELECT COUNT(*) FROM user_follows WHERE novel_id = ?`,
		`SELECT COUNT(*) FROM novels WHERE id = ?`,
	} {
		var n int
		require.NoError(t, f.db.QueryRow(q, id).Scan(&n))
		assert.Equal(t, 0, n, q)
	}
}

func TestDeleteForbidden(t *testing.T) {
	f := newFixture(t)
	id := f.createNovel(t)

	err := f.service.Delete(context.Background(), id, "other")
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	n, getErr := f.service.Repo.GetByID(context.Background(), id)
	require.NoError(t, getErr)
	require.NotNil(t, n)
	assert.Empty(t, f.store.deletes)
}

func TestDeleteNotFound(t *testing.T) {
	f := newFixture(t)
	err := f.service.Delete(context.Background(), "missing", "owner")
	assert.ErrorIs(t, err, apperr.ErrNovelNotFound)
}

func TestOnChapterAdded(t *testing.T) {
	f := newFixture(t)
	id := f.createNovel(t)
	ctx := context.Background()

	require.NoError(t, f.service.OnChapterAdded(ctx, id))
	require.NoError(t, f.service.OnChapterAdded(ctx, id))

	n, err := f.service.Repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 2, n.ChapterCount)
}
