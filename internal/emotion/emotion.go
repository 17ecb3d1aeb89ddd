// Package emotion defines the closed set of emotion labels songs are tagged
// with and the instruction used to make the completion service pick one.
package emotion

import (
	"strings"
	"unicode"
)

// Label is an emotion token as stored in the song catalog.
type Label string

const (
	Love       Label = "사랑"
	Joy        Label = "즐거움"
	Passion    Label = "열정"
	Happiness  Label = "행복"
	Sadness    Label = "슬픔"
	Anger      Label = "분노"
	Loneliness Label = "외로움"
	Longing    Label = "그리움"
	Fear       Label = "두려움"
)

// All lists the labels in the order they are offered to the model.
var All = []Label{Love, Joy, Passion, Happiness, Sadness, Anger, Loneliness, Longing, Fear}

var names = map[Label]string{
	Love:       "love",
	Joy:        "joy",
	Passion:    "passion",
	Happiness:  "happiness",
	Sadness:    "sadness",
	Anger:      "anger",
	Loneliness: "loneliness",
	Longing:    "longing",
	Fear:       "fear",
}

// ClassificationPrompt is appended as a transient system message when asking
// the model to name the user's emotion.
var ClassificationPrompt = "지금까지의 대화 내용을 바탕으로 사용자의 현재 핵심 감정을 다음 중 하나로만 딱 골라서 대답해줘. " +
	"다른 말은 붙이지 말고 오직 단어 하나만 말해.\n" +
	"목록: [" + join(All, ", ") + "]"

// Known reports whether l belongs to the closed label set.
func (l Label) Known() bool {
	_, ok := names[l]
	return ok
}

// Name returns the English name of a known label, or the raw token otherwise.
func (l Label) Name() string {
	if n, ok := names[l]; ok {
		return n
	}
	return string(l)
}

func (l Label) String() string { return string(l) }

// Parse accepts either the stored token or its English name.
func Parse(s string) (Label, bool) {
	s = strings.TrimSpace(s)
	if l := Label(s); l.Known() {
		return l, true
	}
	for l, n := range names {
		if strings.EqualFold(n, s) {
			return l, true
		}
	}
	return Label(s), false
}

// stripped are removed from a raw model reply in addition to all whitespace.
const stripped = `[]'".`

// Clean reduces a raw model reply to a bare token by dropping brackets,
// quotes, periods and whitespace. It does not check the result against the
// label set.
func Clean(raw string) Label {
	return Label(strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || strings.ContainsRune(stripped, r) {
			return -1
		}
		return r
	}, raw))
}

func join(labels []Label, sep string) string {
	parts := make([]string, len(labels))
	for i, l := range labels {
		parts[i] = string(l)
	}
	return strings.Join(parts, sep)
}
