package chapters

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"novelhub/internal/apperr"
	"novelhub/internal/assets"
	"novelhub/internal/novels"
	"novelhub/internal/tags"
	"novelhub/pkg/database/dbtest"
	"novelhub/pkg/logger"
)

type recordedNotify struct {
	novelID       string
	chapterID     string
	chapterNumber int
}

// fakeNotifier records emissions synchronously.
type fakeNotifier struct {
	calls []recordedNotify
}

func (f *fakeNotifier) NotifyFollowers(novelID, chapterID string, chapterNumber int) {
	f.calls = append(f.calls, recordedNotify{novelID, chapterID, chapterNumber})
}

type nopStore struct{}

func (nopStore) Upload(context.Context, []byte, string) (assets.Asset, error) {
	return assets.Asset{RemoteID: "r", URL: "u"}, nil
}
func (nopStore) Delete(context.Context, string) error { return nil }

func newServiceFixture(t *testing.T) (*sql.DB, *Service, *fakeNotifier) {
	t.Helper()
	db := dbtest.Open(t)

	_, err := db.Exec(`
		INSERT INTO users (id, username, email, password_hash) VALUES
			('author', 'author', 'author@example.com', 'x'),
			('reader1', 'reader1', 'r1@example.com', 'x'),
			('reader2', 'reader2', 'r2@example.com', 'x');
		INSERT INTO novels (id, author_id, title, description, image_url, image_public_id)
		VALUES ('n1', 'author', 'Novel', 'desc', 'http://img', 'pub');
	`)
	require.NoError(t, err)

	novelSvc := novels.NewService(novels.NewRepo(db), tags.NewRepo(db), nopStore{}, "covers", logger.NewNop())
	notifier := &fakeNotifier{}
	svc := NewService(NewRepo(db), novelSvc, notifier, logger.NewNop())
	return db, svc, notifier
}

func TestCreateChapter(t *testing.T) {
	db, svc, notifier := newServiceFixture(t)
	ctx := context.Background()

	for _, u := range []string{"reader1", "reader2"} {
		_, err := db.Exec(`INSERT INTO user_follows (user_id, novel_id) VALUES (?, 'n1')`, u)
		require.NoError(t, err)
	}

	ch, err := svc.Create(ctx, "n1", "author", CreateInput{
		Title: "First", Content: "once upon a time", Number: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, ch.ChapterNumber)
	assert.Equal(t, "author", ch.AuthorID)

	// counter in step with the chapter rows
	var count int
	require.NoError(t, db.QueryRow(`SELECT chapter_count FROM novels WHERE id = 'n1'`).Scan(&count))
	assert.Equal(t, 1, count)

	// one fan-out enqueued for the new chapter
	require.Len(t, notifier.calls, 1)
	assert.Equal(t, "n1", notifier.calls[0].novelID)
	assert.Equal(t, ch.ID, notifier.calls[0].chapterID)
	assert.Equal(t, 1, notifier.calls[0].chapterNumber)
}

func TestCreateChapterNovelNotFound(t *testing.T) {
	_, svc, notifier := newServiceFixture(t)

	_, err := svc.Create(context.Background(), "missing", "author", CreateInput{
		Title: "t", Content: "c", Number: 1,
	})
	assert.ErrorIs(t, err, apperr.ErrNovelNotFound)
	assert.Empty(t, notifier.calls)
}

func TestCreateChapterDuplicateNumber(t *testing.T) {
	db, svc, notifier := newServiceFixture(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, "n1", "author", CreateInput{Title: "a", Content: "c", Number: 2})
	require.NoError(t, err)

	_, err = svc.Create(ctx, "n1", "author", CreateInput{Title: "b", Content: "c", Number: 2})
	assert.ErrorIs(t, err, apperr.ErrDuplicateChapterNumber)

	// the failed attempt left no trace
	var count int
	require.NoError(t, db.QueryRow(`SELECT chapter_count FROM novels WHERE id = 'n1'`).Scan(&count))
	assert.Equal(t, 1, count)
	assert.Len(t, notifier.calls, 1)
}

func TestCreateChapterValidation(t *testing.T) {
	_, svc, _ := newServiceFixture(t)
	ctx := context.Background()

	cases := []CreateInput{
		{Content: "c", Number: 1},
		{Title: "t", Number: 1},
		{Title: "t", Content: "c", Number: 0},
		{Title: "t", Content: "c", Number: -3},
	}
	for _, in := range cases {
		_, err := svc.Create(ctx, "n1", "author", in)
		assert.True(t, apperr.IsValidation(err), "input %+v: got %v", in, err)
	}
}

func TestUpdateChapter(t *testing.T) {
	_, svc, _ := newServiceFixture(t)
	ctx := context.Background()

	ch, err := svc.Create(ctx, "n1", "author", CreateInput{Title: "old", Content: "old text", Number: 1})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, "n1", ch.ID, "author", "new", "new text")
	require.NoError(t, err)
	assert.Equal(t, "new", updated.Title)
	assert.Equal(t, "new text", updated.Content)

	_, err = svc.Update(ctx, "n1", ch.ID, "reader1", "hijack", "text")
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	_, err = svc.Update(ctx, "n1", "missing", "author", "t", "c")
	assert.ErrorIs(t, err, apperr.ErrChapterNotFound)
}

func TestGetWithNeighbors(t *testing.T) {
	_, svc, _ := newServiceFixture(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, "n1", "author", CreateInput{Title: "1", Content: "c", Number: 1})
	require.NoError(t, err)
	second, err := svc.Create(ctx, "n1", "author", CreateInput{Title: "2", Content: "c", Number: 2})
	require.NoError(t, err)
	third, err := svc.Create(ctx, "n1", "author", CreateInput{Title: "3", Content: "c", Number: 3})
	require.NoError(t, err)

	view, err := svc.Get(ctx, "n1", second.ID)
	require.NoError(t, err)
	require.NotNil(t, view.PreviousChapter)
	require.NotNil(t, view.NextChapter)
	assert.Equal(t, first.ID, *view.PreviousChapter)
	assert.Equal(t, third.ID, *view.NextChapter)

	view, err = svc.Get(ctx, "n1", first.ID)
	require.NoError(t, err)
	assert.Nil(t, view.PreviousChapter)
}

func TestNextNumberUseCase(t *testing.T) {
	_, svc, _ := newServiceFixture(t)
	ctx := context.Background()

	next, err := svc.NextNumber(ctx, "n1")
	require.NoError(t, err)
	assert.Equal(t, 1, next)

	_, err = svc.NextNumber(ctx, "missing")
	assert.ErrorIs(t, err, apperr.ErrNovelNotFound)
}
