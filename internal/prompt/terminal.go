package prompt

import (
	"context"
	"errors"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
)

// Terminal asks questions through bubbletea programs. It satisfies migration.Prompter.
type Terminal struct {
	in  io.Reader
	out io.Writer
}

func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{in: in, out: out}
}

func (t *Terminal) run(ctx context.Context, model tea.Model) (tea.Model, error) {
	program := tea.NewProgram(model,
		tea.WithContext(ctx),
		tea.WithInput(t.in),
		tea.WithOutput(t.out),
	)

	final, err := program.Run()
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil, ctx.Err()
		}

		return nil, fmt.Errorf("error running prompt: %w", err)
	}

	return final, nil
}

func (t *Terminal) Select(ctx context.Context, title string, options []string) (int, error) {
	if len(options) == 0 {
		return -1, fmt.Errorf("%s: nothing to choose from", title)
	}

	final, err := t.run(ctx, newSelectModel(title, options))
	if err != nil {
		return -1, err
	}

	model, ok := final.(selectModel)
	if !ok {
		return -1, unexpectedModel(final)
	}

	return model.result()
}

func (t *Terminal) Confirm(ctx context.Context, message string) (bool, error) {
	final, err := t.run(ctx, newConfirmModel(message))
	if err != nil {
		return false, err
	}

	model, ok := final.(confirmModel)
	if !ok {
		return false, unexpectedModel(final)
	}

	return model.confirmed(), nil
}

// Prompter is the question surface of Terminal.
type Prompter interface {
	Select(ctx context.Context, title string, options []string) (int, error)
	Confirm(ctx context.Context, message string) (bool, error)
}

// AutoConfirm answers every confirmation with yes and delegates selections.
type AutoConfirm struct {
	Prompter
}

func (AutoConfirm) Confirm(context.Context, string) (bool, error) {
	return true, nil
}

// NonInteractive fails every question; used when all choices must come from flags.
type NonInteractive struct{}

// ErrInteractionRequired indicates a choice was left to a prompt in non-interactive mode.
var ErrInteractionRequired = errors.New("interactive input required; pass the choice as a flag")

func (NonInteractive) Select(_ context.Context, title string, _ []string) (int, error) {
	return -1, fmt.Errorf("%w: %s", ErrInteractionRequired, title)
}

func (NonInteractive) Confirm(context.Context, string) (bool, error) {
	return false, ErrInteractionRequired
}
