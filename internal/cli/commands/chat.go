package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/spf13/cobra"

	"github.com/comigor/emotune/internal/cli/ui"
	"github.com/comigor/emotune/internal/controller"
)

// chatCmd is the chat command
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "start an interactive chat in the terminal",
	Long: `Start an interactive chat. Talk about your day; when your message contains a
trigger keyword ('추천', '그만', '종료', '노래', 'music' by default) the
conversation is analysed and matching songs are shown.`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

// prompter reads user input; tests replace the survey implementation.
type prompter interface {
	Ask(message string) (string, error)
	Confirm(message string) (bool, error)
}

type surveyPrompter struct{}

func (surveyPrompter) Ask(message string) (string, error) {
	var answer string
	err := survey.AskOne(&survey.Input{Message: message}, &answer)
	return answer, err
}

func (surveyPrompter) Confirm(message string) (bool, error) {
	var yes bool
	err := survey.AskOne(&survey.Confirm{Message: message, Default: false}, &yes)
	return yes, err
}

func runChat(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cfg)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}
	defer a.close()

	p := surveyPrompter{}
	ui.PrintBanner()
	name, err := p.Ask("Enter your name:")
	if err != nil {
		return ignoreInterrupt(err)
	}

	c := a.newController(strings.TrimSpace(name))
	return ignoreInterrupt(chatLoop(cmd.Context(), c, p, a.cfg.Catalog.DisplayLimit))
}

// chatLoop runs sessions on c until the user declines to start over.
func chatLoop(ctx context.Context, c *controller.Controller, p prompter, displayLimit int) error {
	for {
		ui.PrintAssistant(c.Greeting())
		if err := chatUntilRecommended(ctx, c, p, displayLimit); err != nil {
			return err
		}

		again, err := p.Confirm("다시 시작하기?")
		if err != nil {
			return err
		}
		if !again {
			return nil
		}
		if err := c.Reset(ctx); err != nil {
			return err
		}
	}
}

func chatUntilRecommended(ctx context.Context, c *controller.Controller, p prompter, displayLimit int) error {
	for {
		input, err := p.Ask("User :")
		if err != nil {
			return err
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		reply, err := c.Submit(ctx, input)
		if err != nil {
			return fmt.Errorf("submit: %w", err)
		}
		ui.PrintAssistant(reply.Text)
		if reply.Kind == controller.ReplyTransition {
			ui.PrintOutcome(c.UserName(), reply.Outcome, displayLimit)
			return nil
		}
	}
}

func ignoreInterrupt(err error) error {
	if errors.Is(err, terminal.InterruptErr) {
		return nil
	}
	return err
}
