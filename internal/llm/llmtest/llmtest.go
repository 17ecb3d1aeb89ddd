// Package llmtest provides a scripted llm.Client for tests.
package llmtest

import (
	"context"
	"errors"
	"sync"

	"github.com/sashabaranov/go-openai"
)

// ErrExhausted is returned once every scripted reply has been consumed.
var ErrExhausted = errors.New("llmtest: no more replies configured")

// Client answers CreateChatCompletion with scripted replies in order and
// records every request it receives.
type Client struct {
	mu       sync.Mutex
	replies  []string
	Err      error
	requests []openai.ChatCompletionRequest
}

// New returns a Client that replies with the given contents in order.
func New(replies ...string) *Client {
	return &Client{replies: replies}
}

// Failing returns a Client whose every call fails with err.
func Failing(err error) *Client {
	return &Client{Err: err}
}

func (c *Client) CreateChatCompletion(_ context.Context, r openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	msgs := make([]openai.ChatCompletionMessage, len(r.Messages))
	copy(msgs, r.Messages)
	r.Messages = msgs
	c.requests = append(c.requests, r)

	if c.Err != nil {
		return openai.ChatCompletionResponse{}, c.Err
	}
	if len(c.replies) == 0 {
		return openai.ChatCompletionResponse{}, ErrExhausted
	}
	reply := c.replies[0]
	c.replies = c.replies[1:]
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{
			Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: reply},
		}},
	}, nil
}

// Requests returns every request received so far.
func (c *Client) Requests() []openai.ChatCompletionRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]openai.ChatCompletionRequest, len(c.requests))
	copy(out, c.requests)
	return out
}

// Calls reports how many requests were received.
func (c *Client) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.requests)
}
