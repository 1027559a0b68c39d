package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/balkashynov/punch/internal/auth"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store the token used to talk to the time-tracking API",
	Long: `Store the bearer token used to talk to the time-tracking API.

JWT tokens carry the user id and email; other tokens need --user.

Examples:
  punch login --token eyJhbGciOi...
  punch login --token abc123 --user 42 --email me@example.com`,
	Args: cobra.NoArgs,
	Run: withApp(false, func(cmd *cobra.Command, args []string, a *app) {
		token, _ := cmd.Flags().GetString("token")
		userID, _ := cmd.Flags().GetString("user")
		email, _ := cmd.Flags().GetString("email")

		user, err := auth.Login(token, userID, email)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		a.logger.Info("signed in", "user", user.ID)

		fmt.Printf("✅ Signed in as %s\n", displayName(user))
		if user.ExpiresAt != nil {
			fmt.Printf("Token expires: %s\n", user.ExpiresAt.Local().Format("2006-01-02 15:04"))
		}
	}),
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored token",
	Args:  cobra.NoArgs,
	Run: withApp(false, func(cmd *cobra.Command, args []string, a *app) {
		removed, err := auth.Logout()
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		if !removed {
			fmt.Println("Not signed in")
			return
		}
		a.logger.Info("signed out")
		fmt.Println("👋 Signed out")
	}),
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	Args:  cobra.NoArgs,
	Run: withApp(false, func(cmd *cobra.Command, args []string, a *app) {
		user, err := auth.NewStoreProvider(nil).CurrentUser(cmdContext(cmd))
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		if user == nil {
			fmt.Println("Not signed in. Run 'punch login' first.")
			return
		}

		fmt.Printf("Signed in as %s\n", displayName(user))
		if user.ExpiresAt != nil {
			left := time.Until(*user.ExpiresAt).Round(time.Minute)
			fmt.Printf("Token expires in %s\n", left)
		}
	}),
}

func displayName(u *auth.User) string {
	if u.Email != "" {
		return fmt.Sprintf("%s (%s)", u.Email, u.ID)
	}
	return u.ID
}

func init() {
	loginCmd.Flags().String("token", "", "Bearer token (required)")
	loginCmd.Flags().String("user", "", "User id, when the token is not a JWT")
	loginCmd.Flags().String("email", "", "Email shown in the tracker")
	loginCmd.MarkFlagRequired("token")
}
