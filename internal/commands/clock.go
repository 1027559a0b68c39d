package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/balkashynov/punch/internal/models"
	"github.com/balkashynov/punch/internal/tracker"
	"github.com/balkashynov/punch/internal/tui"
)

var inCmd = &cobra.Command{
	Use:   "in",
	Short: "Clock in and start a work session",
	Long: `Clock in and start a work session. The location tag comes from
--location, PUNCH_LOCATION or api.location in the config file.

Examples:
  punch in
  punch in --location office`,
	Args: cobra.NoArgs,
	Run: withApp(true, func(cmd *cobra.Command, args []string, a *app) {
		if loc, _ := cmd.Flags().GetString("location"); loc != "" {
			tracker.WithLocation(loc)(a.ctrl)
		}

		sess, ok := runAction(cmdContext(cmd), a, action{
			allowed: (*tracker.Controller).CanClockIn,
			refuse: func(cur *models.Session) string {
				if cur == nil {
					return "Another request is in progress"
				}
				return fmt.Sprintf("Already %s since %s. Run 'punch out' first.",
					tracker.StateOf(cur), tui.ClockTime(cur.ClockIn))
			},
			do: a.ctrl.ClockIn,
		})
		if !ok {
			return
		}

		fmt.Printf("🟢 Clocked in at %s\n", tui.ClockTime(sess.ClockIn))
		if sess.Location != nil && *sess.Location != "" {
			fmt.Printf("Location: %s\n", *sess.Location)
		}
	}),
}

var outCmd = &cobra.Command{
	Use:   "out",
	Short: "Clock out and close the current session",
	Args:  cobra.NoArgs,
	Run: withApp(true, func(cmd *cobra.Command, args []string, a *app) {
		sess, ok := runAction(cmdContext(cmd), a, action{
			allowed: (*tracker.Controller).CanClockOut,
			refuse:  func(*models.Session) string { return "Not clocked in" },
			do:      a.ctrl.ClockOut,
		})
		if !ok {
			return
		}

		fmt.Printf("⏹️  Clocked out at %s\n", clockTimePtr(sess.ClockOut))
		if sess.TotalHours != nil {
			fmt.Printf("Worked: %.2fh\n", *sess.TotalHours)
		}
		if sess.TotalBreakMinutes > 0 {
			fmt.Printf("Breaks: %.0fm\n", sess.TotalBreakMinutes)
		}
	}),
}

var breakCmd = &cobra.Command{
	Use:   "break",
	Short: "Start a break in the current session",
	Args:  cobra.NoArgs,
	Run: withApp(true, func(cmd *cobra.Command, args []string, a *app) {
		sess, ok := runAction(cmdContext(cmd), a, action{
			allowed: (*tracker.Controller).CanStartBreak,
			refuse: func(cur *models.Session) string {
				if cur != nil && cur.Status == models.StatusBreak {
					return "Already on break. Run 'punch resume' to get back to work."
				}
				return "Not clocked in"
			},
			do: a.ctrl.StartBreak,
		})
		if !ok {
			return
		}
		fmt.Printf("☕ Break started at %s\n", clockTimePtr(sess.BreakStart))
	}),
}

var resumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "End the current break",
	Args:  cobra.NoArgs,
	Run: withApp(true, func(cmd *cobra.Command, args []string, a *app) {
		sess, ok := runAction(cmdContext(cmd), a, action{
			allowed: (*tracker.Controller).CanEndBreak,
			refuse:  func(*models.Session) string { return "Not on break" },
			do:      a.ctrl.EndBreak,
		})
		if !ok {
			return
		}
		fmt.Printf("🟢 Back to work at %s\n", clockTimePtr(sess.BreakEnd))
		fmt.Printf("Total break today: %.0fm\n", sess.TotalBreakMinutes)
	}),
}

// action is one mutating command: a capability check, the message printed
// when it fails, and the controller call
type action struct {
	allowed func(*tracker.Controller) bool
	refuse  func(*models.Session) string
	do      func(context.Context) error
}

// runAction fetches the current session, refuses actions the state does not
// allow, and otherwise performs the action and returns the session the
// server acknowledged
func runAction(ctx context.Context, a *app, act action) (*models.Session, bool) {
	if err := a.ctrl.FetchCurrentSession(ctx); err != nil {
		a.logger.Warn("fetching current session", "err", err)
	}
	if !act.allowed(a.ctrl) {
		fmt.Println(act.refuse(a.ctrl.Current()))
		return nil, false
	}

	var acked *models.Session
	unsubscribe := a.ctrl.Bus().Subscribe(func(e tracker.Event) {
		acked = e.Session
	})
	defer unsubscribe()

	if err := act.do(ctx); err != nil {
		if msg, ok := tracker.Notice(err); ok {
			fmt.Printf("Error: %s\n", msg)
		}
		return nil, false
	}
	if acked == nil {
		acked = &models.Session{}
	}
	return acked, true
}

func clockTimePtr(raw *string) string {
	if raw == nil {
		return tracker.ElapsedPlaceholder
	}
	return tui.ClockTime(*raw)
}

func init() {
	inCmd.Flags().StringP("location", "l", "", "Location tag sent with the clock-in")
}
