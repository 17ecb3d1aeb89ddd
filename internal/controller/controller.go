package controller

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/qmuntal/stateless"

	"github.com/comigor/emotune/internal/catalog"
	"github.com/comigor/emotune/internal/conversation"
	"github.com/comigor/emotune/internal/emotion"
	"github.com/comigor/emotune/internal/history"
	"github.com/comigor/emotune/internal/logger"
)

// State is a controller FSM state.
type State string

const (
	StateChatting     State = "chatting"
	StateAnalyzing    State = "analyzing"
	StateRecommending State = "recommending" // terminal until Reset
)

// Trigger is a controller FSM trigger.
type Trigger string

const (
	TriggerKeywordDetected  Trigger = "KeywordDetected"
	TriggerAnalysisFinished Trigger = "AnalysisFinished"
	TriggerReset            Trigger = "Reset"
)

// TransitionMessage is shown when a trigger keyword ends the conversation.
const TransitionMessage = "네, 지금까지의 이야기를 바탕으로 음악을 추천해드릴게요. 잠시만 기다려주세요..."

// ErrSessionFinished is returned by Submit once a recommendation was made.
var ErrSessionFinished = errors.New("session already finished; reset to start over")

// Conversation is what the controller needs from conversation.Session.
type Conversation interface {
	Respond(ctx context.Context, userText string) string
	ClassifyEmotion(ctx context.Context) (emotion.Label, bool)
	History() []conversation.Message
}

// Catalog looks songs up by emotion.
type Catalog interface {
	Lookup(label emotion.Label) []catalog.Entry
}

// Recorder stores finished recommendations.
type Recorder interface {
	Save(ctx context.Context, r history.Record) history.Record
}

// ReplyKind tells the surface how to present a Reply.
type ReplyKind string

const (
	ReplyAssistant  ReplyKind = "assistant"
	ReplyTransition ReplyKind = "transition"
)

// Outcome is the result of the analysis. Classified is false when the
// emotion could not be determined; Songs is then empty.
type Outcome struct {
	Label      emotion.Label   `json:"emotion"`
	Classified bool            `json:"classified"`
	Songs      []catalog.Entry `json:"songs"`
}

// Reply is the answer to one submitted user turn.
type Reply struct {
	Kind    ReplyKind `json:"kind"`
	Text    string    `json:"text"`
	Outcome *Outcome  `json:"outcome,omitempty"`
}

// Options tune a Controller. Zero values select the defaults.
type Options struct {
	ID       string
	UserName string
	Triggers []string
	Recorder Recorder
}

// DefaultTriggers end the conversation when found anywhere in the input.
var DefaultTriggers = []string{"추천", "그만", "종료", "노래", "music"}

// Controller drives one user session: chatting until a trigger keyword shows
// up, then classifying the conversation once and recommending songs.
type Controller struct {
	mu sync.Mutex

	id       string
	userName string
	triggers []string

	newConversation func() Conversation
	catalog         Catalog
	recorder        Recorder

	conv    Conversation
	outcome *Outcome
	fsm     *stateless.StateMachine
}

// New builds a controller in StateChatting. newConversation is called now and
// again on every Reset.
func New(newConversation func() Conversation, cat Catalog, opts Options) *Controller {
	c := &Controller{
		id:              opts.ID,
		userName:        opts.UserName,
		triggers:        opts.Triggers,
		newConversation: newConversation,
		catalog:         cat,
		recorder:        opts.Recorder,
	}
	if c.id == "" {
		c.id = uuid.NewString()
	}
	if len(c.triggers) == 0 {
		c.triggers = DefaultTriggers
	}
	c.conv = newConversation()
	c.fsm = c.buildFSM()
	return c
}

func (c *Controller) buildFSM() *stateless.StateMachine {
	fsm := stateless.NewStateMachine(StateChatting)

	// State: Chatting
	// Reset re-enters with a fresh conversation.
	fsm.Configure(StateChatting).
		Permit(TriggerKeywordDetected, StateAnalyzing).
		PermitReentry(TriggerReset).
		OnEntryFrom(TriggerReset, func(ctx context.Context, args ...any) error {
			c.conv = c.newConversation()
			c.outcome = nil
			logger.L.Info("session reset", "session_id", c.id)
			return nil
		})

	// State: Analyzing
	// Action: classify exactly once, whatever the result, then move on.
	fsm.Configure(StateAnalyzing).
		OnEntry(func(ctx context.Context, args ...any) error {
			label, ok := c.conv.ClassifyEmotion(ctx)
			if ok && label == "" {
				logger.L.Warn("classifier reply was empty after cleaning", "session_id", c.id)
				ok = false
			}
			c.outcome = &Outcome{Label: label, Classified: ok, Songs: []catalog.Entry{}}
			if ok && !label.Known() {
				logger.L.Warn("classifier returned a label outside the known set", "session_id", c.id, "label", string(label))
			}
			return fsm.FireCtx(ctx, TriggerAnalysisFinished)
		}).
		Permit(TriggerAnalysisFinished, StateRecommending).
		Permit(TriggerReset, StateChatting)

	// State: Recommending
	// Action: look the label up and record the outcome.
	fsm.Configure(StateRecommending).
		OnEntry(func(ctx context.Context, args ...any) error {
			if c.outcome.Classified {
				c.outcome.Songs = c.catalog.Lookup(c.outcome.Label)
			}
			logger.L.Info("recommendation ready",
				"session_id", c.id,
				"emotion", string(c.outcome.Label),
				"classified", c.outcome.Classified,
				"matches", len(c.outcome.Songs))
			if c.recorder != nil {
				c.recorder.Save(ctx, history.Record{
					SessionID:  c.id,
					UserName:   c.userName,
					Emotion:    string(c.outcome.Label),
					Classified: c.outcome.Classified,
					Matches:    len(c.outcome.Songs),
				})
			}
			return nil
		}).
		Permit(TriggerReset, StateChatting)

	return fsm
}

// Submit feeds one user turn into the session.
func (c *Controller) Submit(ctx context.Context, input string) (Reply, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state() {
	case StateChatting:
	case StateRecommending:
		return Reply{}, ErrSessionFinished
	default:
		return Reply{}, fmt.Errorf("cannot accept input in state %s", c.state())
	}

	if !c.isTrigger(input) {
		return Reply{Kind: ReplyAssistant, Text: c.conv.Respond(ctx, input)}, nil
	}

	logger.L.Debug("trigger keyword detected", "session_id", c.id)
	if err := c.fsm.FireCtx(ctx, TriggerKeywordDetected); err != nil {
		return Reply{}, fmt.Errorf("start analysis: %w", err)
	}
	if c.state() != StateRecommending {
		return Reply{}, fmt.Errorf("analysis ended in unexpected state %s", c.state())
	}
	out := *c.outcome
	return Reply{Kind: ReplyTransition, Text: TransitionMessage, Outcome: &out}, nil
}

// Reset discards the conversation and outcome and returns to StateChatting.
func (c *Controller) Reset(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.fsm.FireCtx(ctx, TriggerReset); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	return nil
}

// State returns the current FSM state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state()
}

func (c *Controller) state() State {
	return c.fsm.MustState().(State)
}

// Outcome returns the analysis result, or nil while still chatting.
func (c *Controller) Outcome() *Outcome {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.outcome == nil {
		return nil
	}
	out := *c.outcome
	return &out
}

// History returns a copy of the current conversation history.
func (c *Controller) History() []conversation.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conv.History()
}

// ID identifies the session.
func (c *Controller) ID() string { return c.id }

// UserName is the display name given at creation, possibly empty.
func (c *Controller) UserName() string { return c.userName }

// Greeting is the opening line shown before the first turn.
func (c *Controller) Greeting() string {
	hello := "안녕하세요!"
	if c.userName != "" {
		hello = fmt.Sprintf("안녕하세요, %s님!", c.userName)
	}
	hint := ""
	if len(c.triggers) >= 2 {
		hint = fmt.Sprintf(" (대화를 끝내고 싶으면 '%s'이나 '%s'이라고 말해주세요)", c.triggers[0], c.triggers[1])
	} else if len(c.triggers) == 1 {
		hint = fmt.Sprintf(" (대화를 끝내고 싶으면 '%s'이라고 말해주세요)", c.triggers[0])
	}
	return hello + " 오늘 하루는 어떠셨나요?" + hint
}

func (c *Controller) isTrigger(input string) bool {
	for _, kw := range c.triggers {
		if kw != "" && strings.Contains(input, kw) {
			return true
		}
	}
	return false
}
