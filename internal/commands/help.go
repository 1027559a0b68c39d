package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var helpCmd = &cobra.Command{
	Use:   "help",
	Short: "Show comprehensive help for punch",
	Long:  `Display detailed help for all punch commands and flags.`,
	Run: func(cmd *cobra.Command, args []string) {
		showCustomHelp()
	},
}

func showCustomHelp() {
	fmt.Print(`
██████╗ ██╗   ██╗███╗   ██╗ ██████╗██╗  ██╗
██╔══██╗██║   ██║████╗  ██║██╔════╝██║  ██║
██████╔╝██║   ██║██╔██╗ ██║██║     ███████║
██╔═══╝ ██║   ██║██║╚██╗██║██║     ██╔══██║
██║     ╚██████╔╝██║ ╚████║╚██████╗██║  ██║
╚═╝      ╚═════╝ ╚═╝  ╚═══╝ ╚═════╝╚═╝  ╚═╝

punch - CLI Attendance Tracker

COMMANDS:

  in                      Clock in and start a work session
    -l, --location        Location tag (office, home, ...)
  out                     Clock out and close the session

  break                   Start a break
  resume                  End the current break

  status                  Show the current session and timers
  history                 Show your last three sessions

  watch                   Live tracker with clock and timers
    --no-ui               Plain one-line output

    Quick actions:
      i             Clock in
      o             Clock out
      b             Start/end break
      r             Refresh from the server
      ?             Toggle help
      esc/q         Quit

  login                   Store your API token
    --token               Bearer token (required)
    --user                User id, for non-JWT tokens
    --email               Email shown in the tracker
  logout                  Forget the stored token
  whoami                  Show the signed-in user

  version                 Print version information
  help                    Show this help

CONFIG:

  ~/.punch/config.yaml    api.url, api.timeout, api.location,
                          log.level, log.file, ui.alt_screen, db.path
  Environment             PUNCH_API_URL, PUNCH_API_TIMEOUT, PUNCH_LOCATION,
                          PUNCH_LOG_LEVEL, PUNCH_DB_PATH (.env is read too)
  --config <file>         Use another config file

`)
}
