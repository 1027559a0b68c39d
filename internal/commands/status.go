package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/balkashynov/punch/internal/models"
	"github.com/balkashynov/punch/internal/tracker"
	"github.com/balkashynov/punch/internal/tui"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current attendance status",
	Args:  cobra.NoArgs,
	Run: withApp(true, func(cmd *cobra.Command, args []string, a *app) {
		if err := a.ctrl.FetchCurrentSession(cmdContext(cmd)); err != nil {
			a.logger.Warn("fetching current session", "err", err)
		}

		sess := a.ctrl.Current()
		state := tracker.StateOf(sess)
		if state == tracker.StateNone {
			fmt.Println("○ Not clocked in")
			return
		}

		work, brk := tracker.Readings(sess, time.Now())
		switch state {
		case tracker.StateActive:
			fmt.Println("🟢 Working")
		case tracker.StateBreak:
			fmt.Println("☕ On break")
		}
		fmt.Printf("Clocked in at: %s\n", tui.ClockTime(sess.ClockIn))
		fmt.Printf("Work time: %s\n", work)
		if state == tracker.StateBreak {
			fmt.Printf("Break started at: %s\n", clockTimePtr(sess.BreakStart))
			fmt.Printf("Break time: %s\n", brk)
		}
		if sess.TotalBreakMinutes > 0 {
			fmt.Printf("Breaks so far: %.0fm\n", sess.TotalBreakMinutes)
		}
		if sess.Location != nil && *sess.Location != "" {
			fmt.Printf("Location: %s\n", *sess.Location)
		}
	}),
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show your most recent sessions",
	Args:  cobra.NoArgs,
	Run: withApp(true, func(cmd *cobra.Command, args []string, a *app) {
		if err := a.ctrl.FetchRecentActivity(cmdContext(cmd)); err != nil {
			a.logger.Warn("fetching recent activity", "err", err)
		}

		records := a.ctrl.History()
		if len(records) == 0 {
			fmt.Println("No recent activity")
			return
		}
		for _, r := range records {
			fmt.Println(tui.FormatRecord(r))
		}
	}),
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Open the live attendance tracker",
	Long: `Open the live attendance tracker with a running clock, session timers
and one-key actions. Use --no-ui for a plain line that updates every second.

Keys:
  i   clock in
  o   clock out
  b   start/end break
  r   refresh
  q   quit`,
	Args: cobra.NoArgs,
	Run: withApp(true, func(cmd *cobra.Command, args []string, a *app) {
		ctx, stop := signal.NotifyContext(cmdContext(cmd), os.Interrupt, syscall.SIGTERM)
		defer stop()

		noUI, _ := cmd.Flags().GetBool("no-ui")
		if noUI {
			watchPlain(ctx, a.widget)
			return
		}

		if err := tui.RunTrackerTUI(ctx, a.widget, a.cfg.UI.AltScreen); err != nil {
			fmt.Printf("Error: %v\n", err)
		}
	}),
}

// watchPlain rewrites one status line per frame until ctx is done
func watchPlain(ctx context.Context, w *tracker.Widget) {
	w.Mount(ctx)
	defer w.Unmount()

	for {
		select {
		case <-ctx.Done():
			fmt.Println()
			return
		case f, ok := <-w.Frames():
			if !ok {
				return
			}
			fmt.Printf("\r\033[K%s", plainLine(f))
		}
	}
}

func plainLine(f tracker.Frame) string {
	line := fmt.Sprintf("%s  %s", f.Now.Format(tracker.TimeLayout), f.State)
	switch f.State {
	case tracker.StateActive:
		line += fmt.Sprintf("  work %s", f.Work)
	case tracker.StateBreak:
		line += fmt.Sprintf("  work %s  break %s", f.Work, f.Break)
	}
	if f.Session != nil && f.Session.Status == models.StatusBreak && f.Session.TotalBreakMinutes > 0 {
		line += fmt.Sprintf("  (%.0fm earlier)", f.Session.TotalBreakMinutes)
	}
	return line
}

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func init() {
	watchCmd.Flags().Bool("no-ui", false, "Print a plain status line instead of the interactive tracker")
}
