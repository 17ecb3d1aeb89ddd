package tools

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/comigor/emotune/internal/catalog"
	"github.com/comigor/emotune/internal/emotion"
	"github.com/comigor/emotune/internal/logger"
)

// Lookuper is satisfied by *catalog.Store.
type Lookuper interface {
	Lookup(label emotion.Label) []catalog.Entry
}

// RecommendSongsTool returns catalog songs tagged with an emotion.
type RecommendSongsTool struct {
	catalog      Lookuper
	defaultLimit int
}

// NewRecommendSongsTool creates a RecommendSongsTool. defaultLimit caps the
// result when the caller gives no limit; zero means unlimited.
func NewRecommendSongsTool(c Lookuper, defaultLimit int) *RecommendSongsTool {
	return &RecommendSongsTool{catalog: c, defaultLimit: defaultLimit}
}

// Name returns the name of the tool
func (t *RecommendSongsTool) Name() string { return "recommend_songs" }

// Description returns the description of the tool
func (t *RecommendSongsTool) Description() string {
	return "Lists songs tagged with an emotion. Call 'list_emotions' first to obtain the valid emotion labels; English names are accepted too."
}

type recommendArgs struct {
	Emotion string `json:"emotion"`
	Limit   int    `json:"limit,omitempty"`
}

// Options returns the tool arguments
func (t *RecommendSongsTool) Options() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithString("emotion",
			mcp.Required(),
			mcp.Description("Emotion label as stored in the catalog (e.g. 슬픔) or its English name (e.g. sadness)"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of songs to return"),
			mcp.Min(0),
		),
		mcp.WithReadOnlyHintAnnotation(true),
	}
}

// Run runs the tool
func (t *RecommendSongsTool) Run(args string) (string, error) {
	var in recommendArgs
	if err := json.Unmarshal([]byte(args), &in); err != nil {
		return "", fmt.Errorf("invalid arguments: %w", err)
	}
	if strings.TrimSpace(in.Emotion) == "" {
		return "", fmt.Errorf("emotion is required")
	}

	label, known := emotion.Parse(in.Emotion)
	if !known {
		logger.L.Warn("recommend_songs called with unknown emotion", "emotion", in.Emotion)
	}

	songs := t.catalog.Lookup(label)
	limit := in.Limit
	if limit <= 0 {
		limit = t.defaultLimit
	}
	if limit > 0 && len(songs) > limit {
		songs = songs[:limit]
	}

	b, err := json.Marshal(songs)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ListEmotionsTool lists the emotion labels songs are tagged with.
// No arguments are required.
type ListEmotionsTool struct{}

// Name returns the name of the tool
func (t *ListEmotionsTool) Name() string { return "list_emotions" }

// Description returns the description of the tool
func (t *ListEmotionsTool) Description() string {
	return "Lists the emotion labels (stored token and English name) the song catalog uses."
}

// Options returns the tool arguments; there are none.
func (t *ListEmotionsTool) Options() []mcp.ToolOption {
	return []mcp.ToolOption{mcp.WithReadOnlyHintAnnotation(true)}
}

// Run executes the listing and returns a JSON array of {label, name}.
func (t *ListEmotionsTool) Run(_ string) (string, error) {
	type item struct {
		Label string `json:"label"`
		Name  string `json:"name"`
	}
	out := make([]item, len(emotion.All))
	for i, l := range emotion.All {
		out[i] = item{Label: string(l), Name: l.Name()}
	}
	b, err := json.Marshal(out)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
