package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"shady/internal/driver"
	"shady/internal/ui"
)

type uiMode string

const (
	uiModeAuto uiMode = "auto"
	uiModeOn   uiMode = "on"
	uiModeOff  uiMode = "off"
)

func readUIMode(value string) (uiMode, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "auto":
		return uiModeAuto, nil
	case "on":
		return uiModeOn, nil
	case "off":
		return uiModeOff, nil
	default:
		return "", fmt.Errorf("invalid --ui value %q (expected auto|on|off)", value)
	}
}

// shouldUseTUI decides whether to draw the progress view. It is drawn on
// stderr, so auto requires stderr to be a terminal and stdout to carry no
// GLSL.
func shouldUseTUI(mode uiMode, toFiles bool) bool {
	switch mode {
	case uiModeOn:
		return true
	case uiModeOff:
		return false
	default:
		return toFiles && isTerminal(os.Stderr)
	}
}

type renderOutcome struct {
	results []*driver.Result
	err     error
}

// renderAllWithUI runs driver.RenderAll while a progress view follows its
// phase events.
func renderAllWithUI(ctx context.Context, title string, jobs int, units []driver.Unit, opts driver.Options) ([]*driver.Result, error) {
	events := make(chan driver.PhaseEvent, 256)
	outcomeCh := make(chan renderOutcome, 1)

	go func() {
		o := opts
		o.Observer = func(ev driver.PhaseEvent) { events <- ev }
		res, err := driver.RenderAll(ctx, jobs, units, o)
		close(events)
		outcomeCh <- renderOutcome{results: res, err: err}
	}()

	names := make([]string, len(units))
	for i, u := range units {
		names[i] = u.Name
	}
	model := ui.NewProgressModel(title, names, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stderr))
	_, uiErr := program.Run()
	if uiErr != nil {
		// Keep the pipeline from blocking on a view that is gone.
		go func() {
			for range events {
			}
		}()
	}
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.results, uiErr
	}
	return outcome.results, outcome.err
}
