package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStore_SaveAndList(t *testing.T) {
	ctx := context.Background()
	s := New(filepath.Join(t.TempDir(), "history.db"))
	t.Cleanup(func() { s.Close() })

	first := s.Save(ctx, Record{SessionID: "s1", UserName: "민지", Emotion: "슬픔", Classified: true, Matches: 3})
	require.NotEmpty(t, first.ID)
	require.False(t, first.CreatedAt.IsZero())

	s.Save(ctx, Record{SessionID: "s2", Classified: false, CreatedAt: first.CreatedAt.Add(time.Second)})
	s.Save(ctx, Record{SessionID: "s1", Emotion: "행복", Classified: true, CreatedAt: first.CreatedAt.Add(2 * time.Second)})

	got := s.ListSession(ctx, "s1")
	require.Len(t, got, 2)
	require.Equal(t, first.ID, got[0].ID)
	require.Equal(t, "민지", got[0].UserName)
	require.Equal(t, "슬픔", got[0].Emotion)
	require.True(t, got[0].Classified)
	require.Equal(t, 3, got[0].Matches)
	require.Equal(t, "행복", got[1].Emotion)

	recent := s.Recent(ctx, 2)
	require.Len(t, recent, 2)
	require.Equal(t, "행복", recent[0].Emotion)
	require.Equal(t, "s2", recent[1].SessionID)
	require.False(t, recent[1].Classified)
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "history.db")

	s := New(path)
	saved := s.Save(ctx, Record{SessionID: "s1", Emotion: "분노", Classified: true})
	require.NoError(t, s.Close())

	reopened := New(path)
	t.Cleanup(func() { reopened.Close() })
	got := reopened.ListSession(ctx, "s1")
	require.Len(t, got, 1)
	require.Equal(t, saved.ID, got[0].ID)
	require.Equal(t, saved.CreatedAt.UnixMilli(), got[0].CreatedAt.UnixMilli())
}

func TestStore_InMemoryFallback(t *testing.T) {
	ctx := context.Background()
	// a directory that does not exist cannot hold the database file
	s := New(filepath.Join(t.TempDir(), "missing", "dir", "history.db"))

	s.Save(ctx, Record{SessionID: "s1", Emotion: "사랑", Classified: true})
	s.Save(ctx, Record{SessionID: "s1", Emotion: "열정", Classified: true})

	got := s.ListSession(ctx, "s1")
	require.Len(t, got, 2)
	require.Equal(t, "사랑", got[0].Emotion)

	recent := s.Recent(ctx, 1)
	require.Len(t, recent, 1)
	require.Equal(t, "열정", recent[0].Emotion)
}

func TestStore_EmptyResultsAreNotNil(t *testing.T) {
	ctx := context.Background()
	s := New(filepath.Join(t.TempDir(), "history.db"))
	t.Cleanup(func() { s.Close() })

	require.NotNil(t, s.ListSession(ctx, "nobody"))
	require.Empty(t, s.ListSession(ctx, "nobody"))
	require.NotNil(t, s.Recent(ctx, 5))

	mem := New(filepath.Join(t.TempDir(), "missing", "history.db"))
	require.NotNil(t, mem.ListSession(ctx, "nobody"))
	require.NotNil(t, mem.Recent(ctx, 5))
}
