package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/comigor/emotune/internal/emotion"
	"github.com/comigor/emotune/internal/llm"
	"github.com/comigor/emotune/internal/logger"
)

// FallbackReply is returned by Respond when the completion service fails.
const FallbackReply = "죄송해요, 지금은 답변을 드릴 수 없어요. 잠시 후 다시 이야기해 주세요."

// ServiceError wraps a failed completion call.
type ServiceError struct {
	Op  string
	Err error
}

func (e *ServiceError) Error() string { return fmt.Sprintf("completion %s: %v", e.Op, e.Err) }

func (e *ServiceError) Unwrap() error { return e.Err }

var errNoChoices = errors.New("response contained no choices")

// Session holds the ordered message history of one conversation.
type Session struct {
	client  llm.Client
	model   string
	history []Message
}

// New starts a conversation seeded with the persona prompt.
func New(client llm.Client, model, persona string) *Session {
	return &Session{
		client:  client,
		model:   model,
		history: []Message{{Role: RoleSystem, Content: persona}},
	}
}

// History returns a copy of the persistent history.
func (s *Session) History() []Message {
	out := make([]Message, len(s.history))
	copy(out, s.history)
	return out
}

// Respond records the user turn, asks the completion service for a reply and
// records it. Service failures become FallbackReply; the user turn is kept.
func (s *Session) Respond(ctx context.Context, userText string) string {
	s.history = append(s.history, Message{Role: RoleUser, Content: userText})

	reply, err := s.complete(ctx, "respond", s.history)
	if err != nil {
		logger.L.Error("chat completion failed", "error", err, "turns", len(s.history))
		return FallbackReply
	}

	s.history = append(s.history, Message{Role: RoleAssistant, Content: reply})
	return reply
}

// ClassifyEmotion asks the completion service which label fits the
// conversation so far. The instruction is sent alongside a copy of the
// history and never stored. ok is false when the call failed; the label is
// not checked against the known set.
func (s *Session) ClassifyEmotion(ctx context.Context) (label emotion.Label, ok bool) {
	request := make([]Message, len(s.history), len(s.history)+1)
	copy(request, s.history)
	request = append(request, Message{Role: RoleSystem, Content: emotion.ClassificationPrompt})

	reply, err := s.complete(ctx, "classify", request)
	if err != nil {
		logger.L.Error("emotion classification failed", "error", err)
		return "", false
	}

	label = emotion.Clean(reply)
	logger.L.Debug("emotion classified", "raw", reply, "label", string(label), "known", label.Known())
	return label, true
}

func (s *Session) complete(ctx context.Context, op string, msgs []Message) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:    s.model,
		Messages: toOpenAI(msgs),
	}
	resp, err := s.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", &ServiceError{Op: op, Err: err}
	}
	if len(resp.Choices) == 0 {
		return "", &ServiceError{Op: op, Err: errNoChoices}
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
