package cli

import (
	"errors"
	"time"

	"github.com/spf13/cobra"
)

func newSignUpCommand(app func() *App) *cobra.Command {
	var passwordFile string

	cmd := &cobra.Command{
		Use:   "signup [email]",
		Short: "Create an account and sign in",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			ctx := cmd.Context()

			email, err := a.readEmail(args)
			if err != nil {
				return err
			}

			password, interactive, err := a.readPassword(passwordFile, "Password: ")
			if err != nil {
				return err
			}
			if interactive {
				confirm, err := a.io.ReadPassword("Confirm password: ")
				if err != nil {
					return err
				}
				if confirm != password {
					return errors.New("passwords do not match")
				}
			}

			if _, err := a.auth.SignUp(ctx, email, password); err != nil {
				return err
			}

			sess, err := a.auth.SignIn(ctx, email, password)
			if err != nil {
				return err
			}

			a.io.Printf("✓ Account created. Signed in as %s\n", sess.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&passwordFile, "password-file", "", "read password from file")
	return cmd
}

func newLoginCommand(app func() *App) *cobra.Command {
	var passwordFile string

	cmd := &cobra.Command{
		Use:   "login [email]",
		Short: "Sign in; the account is remembered for switching",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()

			email, err := a.readEmail(args)
			if err != nil {
				return err
			}

			password, _, err := a.readPassword(passwordFile, "Password: ")
			if err != nil {
				return err
			}

			sess, err := a.auth.SignIn(cmd.Context(), email, password)
			if err != nil {
				return err
			}

			a.io.Printf("✓ Signed in as %s\n", sess.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&passwordFile, "password-file", "", "read password from file")
	return cmd
}

func newLogoutCommand(app func() *App) *cobra.Command {
	var everywhere bool

	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Sign out of the current account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := app()
			ctx := cmd.Context()

			current := a.auth.Current(ctx)
			if current.IsZero() {
				a.io.Println("Not signed in")
				return nil
			}

			if everywhere {
				token, err := a.auth.AccessToken(ctx)
				if err != nil {
					return err
				}
				if err := a.client.SignOutEverywhere(ctx, token); err != nil {
					return err
				}
			}

			if err := a.auth.SignOut(ctx); err != nil {
				return err
			}

			if everywhere {
				a.io.Printf("Signed out of %s on all devices\n", current.Email)
			} else {
				a.io.Printf("Signed out of %s\n", current.Email)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&everywhere, "all", false, "revoke sessions on all devices")
	return cmd
}

func newWhoAmICommand(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:     "whoami",
		Aliases: []string{"status"},
		Short:   "Show the signed-in account",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := app()
			ctx := cmd.Context()

			sess, ok := a.auth.ActiveSession(ctx)
			if !ok {
				a.io.Println("Not signed in")
				return nil
			}

			a.io.Printf("Email:   %s\n", sess.Email)
			a.io.Printf("User ID: %s\n", sess.UserID)
			if acc, ok := a.accounts.Get(ctx, sess.UserID); ok && acc.DisplayName() != sess.Email {
				a.io.Printf("Name:    %s\n", acc.DisplayName())
			}
			if sess.ExpiresAt > 0 {
				a.io.Printf("Access token expires: %s\n", formatTime(time.Unix(sess.ExpiresAt, 0)))
			}
			return nil
		},
	}
}
