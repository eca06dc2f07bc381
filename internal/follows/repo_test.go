package follows

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"novelhub/pkg/database/dbtest"
)

func seed(t *testing.T, db *sql.DB) {
	t.Helper()
	_, err := db.Exec(`
		INSERT INTO users (id, username, email, password_hash) VALUES
			('author', 'author', 'a@example.com', 'x'),
			('reader', 'reader', 'r@example.com', 'x');
		INSERT INTO novels (id, author_id, title, description, image_url, image_public_id)
		VALUES ('n1', 'author', 'Novel', 'desc', 'http://img', 'pub');
	`)
	require.NoError(t, err)
}

func followerCount(t *testing.T, db *sql.DB) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(`SELECT followers FROM novels WHERE id = 'n1'`).Scan(&n))
	return n
}

func TestFollowUnfollow(t *testing.T) {
	db := dbtest.Open(t)
	seed(t, db)
	r := NewRepo(db)
	ctx := context.Background()

	changed, err := r.Follow(ctx, "reader", "n1")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, 1, followerCount(t, db))

	// idempotent: counter stays in step with the edge set
	changed, err = r.Follow(ctx, "reader", "n1")
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, 1, followerCount(t, db))

	following, err := r.IsFollowing(ctx, "reader", "n1")
	require.NoError(t, err)
	assert.True(t, following)

	changed, err = r.Unfollow(ctx, "reader", "n1")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, 0, followerCount(t, db))

	changed, err = r.Unfollow(ctx, "reader", "n1")
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, 0, followerCount(t, db))
}

func TestFollowerIDs(t *testing.T) {
	db := dbtest.Open(t)
	seed(t, db)
	r := NewRepo(db)
	ctx := context.Background()

	ids, err := r.FollowerIDs(ctx, "n1")
	require.NoError(t, err)
	assert.Empty(t, ids)

	_, err = r.Follow(ctx, "reader", "n1")
	require.NoError(t, err)
	_, err = r.Follow(ctx, "author", "n1")
	require.NoError(t, err)

	ids, err = r.FollowerIDs(ctx, "n1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"reader", "author"}, ids)
}
