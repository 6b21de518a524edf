package cmd

import (
	"errors"
	"fmt"
	"syscall"

	"github.com/awnumar/memguard"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/openboard/openboard/session"
)

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)

	loginCmd.Flags().StringP("id", "u", "", "Member ID (prompted if omitted)")
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to the forum",
	Long: `Authenticate with the forum and persist the session.

The password is read from the terminal, never from flags or the environment.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		id, _ := cmd.Flags().GetString("id")
		if id == "" {
			fmt.Print("Member ID: ")
			_, _ = fmt.Scanln(&id)
		}
		if id == "" {
			return fmt.Errorf("member ID is required")
		}

		fmt.Print("Password: ")
		raw, err := term.ReadPassword(syscall.Stdin)
		fmt.Println()
		if err != nil {
			return fmt.Errorf("reading password: %w", err)
		}
		// memguard wipes the plaintext once the buffer is destroyed.
		password := memguard.NewBufferFromBytes(raw)
		defer password.Destroy()

		c, cleanup, err := openClient(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		user, err := c.Sessions().Login(cmd.Context(), session.Credentials{
			ID:       id,
			Password: password.String(),
		})
		if errors.Is(err, session.ErrBadCredentials) {
			return fmt.Errorf("login rejected: check your member ID and password")
		}
		if err != nil {
			return fmt.Errorf("login failed: %w", err)
		}

		fmt.Printf("Logged in as %s (%s)\n", user.Nickname, user.ID)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out and discard the persisted session",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, cleanup, err := openClient(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		if err := c.Sessions().Logout(cmd.Context()); err != nil {
			return fmt.Errorf("logout failed: %w", err)
		}
		fmt.Println("Logged out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in member",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, cleanup, err := openClient(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		user := c.Sessions().User()
		if user == nil {
			fmt.Println("Not logged in")
			return nil
		}
		fmt.Printf("ID:       %s\n", user.ID)
		fmt.Printf("Nickname: %s\n", user.Nickname)
		fmt.Printf("Email:    %s\n", user.Email)
		if user.JoiningDate != "" {
			fmt.Printf("Joined:   %s\n", user.JoiningDate)
		}
		return nil
	},
}
