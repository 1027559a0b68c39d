package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/balkashynov/punch/internal/tracker"
)

// RunTrackerTUI mounts the widget, runs the interactive tracker and
// unmounts it on exit
func RunTrackerTUI(ctx context.Context, widget *tracker.Widget, altScreen bool) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	widget.Mount(ctx)
	defer widget.Unmount()

	var opts []tea.ProgramOption
	if altScreen {
		opts = append(opts, tea.WithAltScreen())
	}
	opts = append(opts, tea.WithContext(ctx))

	p := tea.NewProgram(NewTrackerModel(ctx, widget), opts...)
	finalModel, err := p.Run()
	if err != nil {
		return err
	}

	// Leave a one-line summary behind after the screen clears
	if m, ok := finalModel.(TrackerModel); ok {
		f := m.widget.Snapshot()
		switch f.State {
		case tracker.StateActive:
			fmt.Printf("🟢 Still clocked in · worked %s\n", f.Work)
		case tracker.StateBreak:
			fmt.Printf("☕ Still on break · break %s\n", f.Break)
		default:
			fmt.Println("○ Not clocked in")
		}
	}

	return nil
}
