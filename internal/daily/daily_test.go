package daily

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cozyshelfapp/shelf-server/internal/domain"
	"github.com/cozyshelfapp/shelf-server/internal/logger"
)

type fakeMarkerStore struct {
	marker   string
	stickers []domain.Sticker
}

func (f *fakeMarkerStore) DailyMarker(_ context.Context, _ string) (string, error) {
	return f.marker, nil
}

func (f *fakeMarkerStore) SetDailyMarker(_ context.Context, _ string, dayKey string) error {
	f.marker = dayKey
	return nil
}

func (f *fakeMarkerStore) CreateSticker(_ context.Context, _ string, s *domain.Sticker) error {
	f.stickers = append(f.stickers, *s)
	return nil
}

func TestHash(t *testing.T) {
	assert.Equal(t, uint32(0), Hash(""))
	assert.Equal(t, uint32('a'), Hash("a"))
	assert.Equal(t, uint32('a')*31+uint32('b'), Hash("ab"))
	assert.Equal(t, Hash("2026-08-30"), Hash("2026-08-30"), "same input always hashes the same")
}

func TestHue_InRange(t *testing.T) {
	for _, key := range []string{"2026-08-30", "2026-08-31", "1999-12-31", ""} {
		h := Hue(key)
		assert.GreaterOrEqual(t, h, 0)
		assert.Less(t, h, 360)
	}
}

func TestDeriveAsset_Deterministic(t *testing.T) {
	name1, url1 := DeriveAsset("2026-08-30")
	name2, url2 := DeriveAsset("2026-08-30")

	assert.Equal(t, name1, name2)
	assert.Equal(t, url1, url2, "the same day derives byte-identical assets")
	assert.True(t, strings.HasPrefix(url1, "data:image/png;base64,"))
}

func TestDeriveAsset_VariesByDay(t *testing.T) {
	_, url1 := DeriveAsset("2026-08-30")
	_, url2 := DeriveAsset("2026-08-31")
	assert.NotEqual(t, url1, url2)
}

func TestStarterPack(t *testing.T) {
	stickers := StarterPack(1000)

	require.Len(t, stickers, len(pack))
	seen := make(map[string]bool)
	for _, s := range stickers {
		assert.True(t, s.Valid())
		assert.Equal(t, int64(1000), s.CreatedAtMs)
		assert.False(t, seen[s.ID], "starter stickers get distinct ids")
		seen[s.ID] = true
	}
}

func TestGenerator_GrantOncePerDay(t *testing.T) {
	store := &fakeMarkerStore{}
	g := NewGenerator(store, logger.NewDiscard())
	now := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)

	first, err := g.Grant(context.Background(), "usr-1", now)
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, "2026-08-30", store.marker)
	assert.Len(t, store.stickers, 1)

	again, err := g.Grant(context.Background(), "usr-1", now.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Nil(t, again, "second invocation on the same day is a no-op")
	assert.Len(t, store.stickers, 1)

	next, err := g.Grant(context.Background(), "usr-1", now.Add(24*time.Hour))
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Len(t, store.stickers, 2)
	assert.NotEqual(t, first.DataURL, next.DataURL)
}
