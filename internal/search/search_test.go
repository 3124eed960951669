package search

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thumblifyapp/thumblify-server/internal/domain"
)

// setupTestIndex creates a temporary search index for testing.
func setupTestIndex(t *testing.T) *SearchIndex {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "search-test-*")
	require.NoError(t, err)

	index, err := NewSearchIndex(Options{
		DataPath: tmpDir,
		Logger:   nil,
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = index.Close()
		_ = os.RemoveAll(tmpDir)
	})

	return index
}

func testThumbnail(id, ownerID, title, details string, style domain.Style) *domain.Thumbnail {
	return domain.NewThumbnail(id, ownerID, "prompt", domain.ThumbnailParams{
		Title:       title,
		Details:     details,
		Style:       style,
		AspectRatio: domain.AspectRatio16x9,
	})
}

func TestNewSearchIndex(t *testing.T) {
	index := setupTestIndex(t)

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestSearchIndex_IndexThumbnail(t *testing.T) {
	index := setupTestIndex(t)

	thumb := testThumbnail("thumb_1", "user_1", "10 Sleep Tips", "calm bedroom scene", domain.StyleMinimalist)
	require.NoError(t, index.IndexThumbnail(t.Context(), thumb))

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)
}

func TestSearchIndex_Search_OwnerScoped(t *testing.T) {
	index := setupTestIndex(t)

	require.NoError(t, index.IndexThumbnail(t.Context(),
		testThumbnail("thumb_1", "user_1", "Sourdough Basics", "", domain.StyleBold)))
	require.NoError(t, index.IndexThumbnail(t.Context(),
		testThumbnail("thumb_2", "user_2", "Sourdough Masterclass", "", domain.StyleBold)))

	hits, err := index.Search(t.Context(), "user_1", "sourdough", 10)
	require.NoError(t, err)

	require.Len(t, hits, 1)
	assert.Equal(t, "thumb_1", hits[0].ID)
	assert.Equal(t, "Sourdough Basics", hits[0].Title)
	assert.Equal(t, string(domain.StyleBold), hits[0].Style)
}

func TestSearchIndex_Search_MatchesDetails(t *testing.T) {
	index := setupTestIndex(t)

	require.NoError(t, index.IndexThumbnail(t.Context(),
		testThumbnail("thumb_1", "user_1", "Morning Routine", "sunrise over a mountain lake", domain.StyleCinematic)))

	hits, err := index.Search(t.Context(), "user_1", "sunrise", 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "thumb_1", hits[0].ID)
}

func TestSearchIndex_Search_EmptyQueryReturnsAll(t *testing.T) {
	index := setupTestIndex(t)

	require.NoError(t, index.IndexThumbnail(t.Context(),
		testThumbnail("thumb_1", "user_1", "First", "", domain.StyleBold)))
	require.NoError(t, index.IndexThumbnail(t.Context(),
		testThumbnail("thumb_2", "user_1", "Second", "", domain.StyleBold)))
	require.NoError(t, index.IndexThumbnail(t.Context(),
		testThumbnail("thumb_3", "user_2", "Third", "", domain.StyleBold)))

	hits, err := index.Search(t.Context(), "user_1", "", 10)
	require.NoError(t, err)
	assert.Len(t, hits, 2)
}

func TestSearchIndex_RemoveThumbnail(t *testing.T) {
	index := setupTestIndex(t)

	require.NoError(t, index.IndexThumbnail(t.Context(),
		testThumbnail("thumb_1", "user_1", "Disappearing Act", "", domain.StylePlayful)))
	require.NoError(t, index.RemoveThumbnail(t.Context(), "thumb_1"))

	hits, err := index.Search(t.Context(), "user_1", "disappearing", 10)
	require.NoError(t, err)
	assert.Empty(t, hits)

	// Removing an id that was never indexed is fine
	require.NoError(t, index.RemoveThumbnail(t.Context(), "thumb_unknown"))
}

func TestSearchIndex_IndexThumbnails_Batch(t *testing.T) {
	index := setupTestIndex(t)

	thumbs := []*domain.Thumbnail{
		testThumbnail("thumb_1", "user_1", "Batch One", "", domain.StyleBold),
		testThumbnail("thumb_2", "user_1", "Batch Two", "", domain.StyleBold),
		testThumbnail("thumb_3", "user_1", "Batch Three", "", domain.StyleBold),
	}
	require.NoError(t, index.IndexThumbnails(thumbs))

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(3), count)
}

func TestSearchIndex_ReindexUpdatesDocument(t *testing.T) {
	index := setupTestIndex(t)

	thumb := testThumbnail("thumb_1", "user_1", "Old Title", "", domain.StyleBold)
	require.NoError(t, index.IndexThumbnail(t.Context(), thumb))

	thumb.Title = "Fresh Title"
	require.NoError(t, index.IndexThumbnail(t.Context(), thumb))

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)

	hits, err := index.Search(t.Context(), "user_1", "fresh", 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)

	hits, err = index.Search(t.Context(), "user_1", "old", 10)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestSearchIndex_Rebuild(t *testing.T) {
	index := setupTestIndex(t)

	require.NoError(t, index.IndexThumbnail(t.Context(),
		testThumbnail("thumb_1", "user_1", "Gone After Rebuild", "", domain.StyleRetro)))
	require.NoError(t, index.Rebuild())

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}
