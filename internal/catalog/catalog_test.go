package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/comigor/emotune/internal/emotion"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "songs.csv")
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestLookup_TrimmedExactMatch(t *testing.T) {
	path := writeCSV(t, "emotion,performer,title,genre\n"+
		"sadness ,A,X,ballad\n"+
		"joy,B,Y,pop\n")
	s := New(path)

	require.Equal(t, []Entry{{Performer: "A", Title: "X", Genre: "ballad", Emotion: "sadness "}}, s.Lookup("sadness"))
	require.Empty(t, s.Lookup("anger"))
	require.NotNil(t, s.Lookup("anger"))
}

func TestLookup_CaseSensitive(t *testing.T) {
	s := New(writeCSV(t, "emotion,performer,title,genre\nSadness,A,X,ballad\n"))
	require.Empty(t, s.Lookup("sadness"))
}

func TestLookup_OrderAndDuplicatesPreserved(t *testing.T) {
	path := writeCSV(t, "emotion,performer,title,genre\n"+
		"슬픔,아이유,밤편지,발라드\n"+
		"행복,B,Y,pop\n"+
		"슬픔,성시경,거리에서,발라드\n"+
		"슬픔,아이유,밤편지,발라드\n")
	s := New(path)

	got := s.Lookup(emotion.Sadness)
	require.Len(t, got, 3)
	require.Equal(t, "밤편지", got[0].Title)
	require.Equal(t, "거리에서", got[1].Title)
	require.Equal(t, got[0], got[2])

	require.Equal(t, got, s.Lookup(emotion.Sadness))
}

func TestLookup_AliasedColumnNamesWithBOM(t *testing.T) {
	path := writeCSV(t, "\ufefflyric,singer,title,genre,emotion1,emotion2,emotion3\n"+
		"\"가사, 쉼표\",아이유,밤편지,발라드, 그리움 ,사랑,슬픔\n"+
		"x,B,Y,pop,사랑,행복,열정\n")

	got := New(path).Lookup(emotion.Longing)
	require.Equal(t, []Entry{{Performer: "아이유", Title: "밤편지", Genre: "발라드", Emotion: " 그리움 "}}, got)
}

func TestLookup_MissingFile(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "missing.csv"))
	require.Empty(t, s.Lookup(emotion.Joy))

	_, err := s.load()
	require.True(t, errors.Is(err, ErrSourceMissing))
}

func TestLookup_MissingColumns(t *testing.T) {
	s := New(writeCSV(t, "emotion,title,genre\n슬픔,X,ballad\n"))
	require.Empty(t, s.Lookup(emotion.Sadness))

	_, err := s.load()
	require.True(t, errors.Is(err, ErrMissingColumns))
	require.Contains(t, err.Error(), "performer")
}

func TestParse_SkipsShortRows(t *testing.T) {
	entries, err := parse(strings.NewReader("title,genre,performer,emotion\nX,pop\nY,rock,B,분노\n"))
	require.NoError(t, err)
	require.Equal(t, []Entry{{Performer: "B", Title: "Y", Genre: "rock", Emotion: "분노"}}, entries)
}

func TestParse_EmptySource(t *testing.T) {
	_, err := parse(strings.NewReader(""))
	require.True(t, errors.Is(err, ErrMissingColumns))
}

func TestLookup_EmptyLabelMatchesNothing(t *testing.T) {
	path := writeCSV(t, "emotion,performer,title,genre\n"+
		",Nobody,Untagged,pop\n"+
		"  ,Nobody,Blank,pop\n"+
		"슬픔,A,X,ballad\n")
	s := New(path)

	require.Empty(t, s.Lookup(""))
	require.NotNil(t, s.Lookup(""))
	require.Empty(t, s.Lookup(" "))
	require.Len(t, s.Lookup(emotion.Sadness), 1)
}

func TestParse_MissingColumnsListedInFixedOrder(t *testing.T) {
	for range 10 {
		_, err := parse(strings.NewReader("lyric\nx\n"))
		require.ErrorIs(t, err, ErrMissingColumns)
		require.Contains(t, err.Error(), "performer, title, genre, emotion")
	}
}

func TestPath(t *testing.T) {
	require.Equal(t, "data/songs.csv", New("data/songs.csv").Path())
}
