package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_NotFound(t *testing.T) {
	c := createTestCatalog(t)

	_, err := c.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestList_OrderedByName(t *testing.T) {
	c := createTestCatalog(t)
	ctx := context.Background()

	empty, err := c.List(ctx)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	for _, name := range []string{"b", "a", "B"} {
		_, err := c.Put(ctx, mustIndexRecord(t, testIndex(name, "docs."+name)))
		require.NoError(t, err)
	}

	records, err := c.List(ctx)
	require.NoError(t, err)

	var names []string
	for _, r := range records {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{"B", "a", "b"}, names)
}

func TestHistory_Empty(t *testing.T) {
	c := createTestCatalog(t)

	revs, err := c.History(context.Background(), "nothing")
	require.NoError(t, err)
	assert.Empty(t, revs)
}
