package tags

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"novelhub/pkg/database/dbtest"
)

func TestCreateAndList(t *testing.T) {
	db := dbtest.Open(t)
	r := NewRepo(db)
	ctx := context.Background()

	created, err := r.Create(ctx, "fantasy")
	require.NoError(t, err)
	assert.Equal(t, "fantasy", created.Name)
	assert.NotZero(t, created.ID)

	_, err = r.Create(ctx, "adventure")
	require.NoError(t, err)

	list, err := r.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "adventure", list[0].Name, "sorted by name")
	assert.Equal(t, "fantasy", list[1].Name)
}

func TestCreateDuplicate(t *testing.T) {
	db := dbtest.Open(t)
	r := NewRepo(db)
	ctx := context.Background()

	_, err := r.Create(ctx, "fantasy")
	require.NoError(t, err)

	_, err = r.Create(ctx, "fantasy")
	assert.Error(t, err)
}

func TestCountByIDs(t *testing.T) {
	db := dbtest.Open(t)
	r := NewRepo(db)
	ctx := context.Background()

	a, err := r.Create(ctx, "fantasy")
	require.NoError(t, err)
	b, err := r.Create(ctx, "romance")
	require.NoError(t, err)

	n, err := r.CountByIDs(ctx, []int64{a.ID, b.ID})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = r.CountByIDs(ctx, []int64{a.ID, 999})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = r.CountByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}
