package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/iudanet/lostlibrary/internal/client/accounts"
	"github.com/iudanet/lostlibrary/internal/client/switcher"
)

// maxPasswordAttempts ограничивает число попыток ввода пароля при переключении
const maxPasswordAttempts = 3

func newAccountsCommand(app func() *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Manage accounts remembered on this device",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List remembered accounts",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				app().printAccounts(cmd.Context())
				return nil
			},
		},
		newSwitchCommand(app),
		&cobra.Command{
			Use:   "remove <email|id>",
			Short: "Forget an account; the active account is signed out first",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				a := app()
				ctx := cmd.Context()

				acc, ok := a.resolveAccount(ctx, args[0])
				if !ok {
					return fmt.Errorf("no remembered account %q", args[0])
				}

				if a.auth.Current(ctx).UserID == acc.ID {
					if err := a.auth.SignOut(ctx); err != nil {
						return err
					}
				}
				a.accounts.Remove(ctx, acc.ID)

				a.io.Printf("Removed %s\n", acc.Email)
				return nil
			},
		},
	)

	return cmd
}

func (a *App) printAccounts(ctx context.Context) []accounts.StoredAccount {
	list := a.accounts.List(ctx)
	if len(list) == 0 {
		a.io.Println("No remembered accounts. Run 'lostlibrary login' to add one.")
		return list
	}

	current := a.auth.Current(ctx).UserID

	w := tabwriter.NewWriter(a.io, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "\t#\tEMAIL\tNAME\tSESSION\tLAST USED")
	for i, acc := range list {
		marker := ""
		if acc.ID == current {
			marker = "*"
		}
		session := "password required"
		if acc.HasSession() {
			session = "saved"
		}
		_, _ = fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\t%s\n",
			marker, i+1, acc.Email, acc.DisplayName(), session, formatTime(acc.LastUsedAt))
	}
	_ = w.Flush()

	return list
}

func newSwitchCommand(app func() *App) *cobra.Command {
	var passwordFile string

	cmd := &cobra.Command{
		Use:   "switch [email|id]",
		Short: "Switch to another remembered account",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app().switchAccount(cmd.Context(), args, passwordFile)
		},
	}

	cmd.Flags().StringVar(&passwordFile, "password-file", "", "read password from file if it is needed")
	return cmd
}

func (a *App) switchAccount(ctx context.Context, args []string, passwordFile string) error {
	sw := a.switcher

	if _, err := sw.Open(ctx); err != nil {
		return err
	}

	acc, err := a.pickAccount(ctx, args)
	if err != nil {
		sw.Cancel()
		return err
	}

	if a.auth.Current(ctx).UserID == acc.ID {
		sw.Cancel()
		a.io.Printf("Already signed in as %s\n", acc.Email)
		return nil
	}

	state, err := sw.Choose(ctx, acc.ID)
	if err != nil {
		sw.Cancel()
		return err
	}

	for attempt := 1; state == switcher.StatePromptingPassword; attempt++ {
		prompt := sw.Prompt()
		a.io.Println(prompt.Title())
		if prompt.Error != "" {
			a.io.Printf("  %s\n", prompt.Error)
		}
		a.io.Printf("Email: %s\n", prompt.Email)

		password, interactive, err := a.readPassword(passwordFile, "Password (empty to cancel): ")
		if err != nil {
			sw.Cancel()
			return err
		}
		if password == "" {
			sw.Cancel()
			a.io.Println("Cancelled")
			return nil
		}

		if err := sw.SubmitPassword(ctx, password); err != nil {
			// Пароль из env или файла не изменится при повторе
			if !interactive || attempt >= maxPasswordAttempts {
				sw.Cancel()
				return err
			}
		}
		state = sw.State()
	}

	sw.Close()
	a.io.Printf("✓ Switched to %s\n", acc.Email)
	return nil
}

// pickAccount выбирает аккаунт по аргументу или по номеру из списка
func (a *App) pickAccount(ctx context.Context, args []string) (accounts.StoredAccount, error) {
	if len(args) > 0 {
		acc, ok := a.resolveAccount(ctx, args[0])
		if !ok {
			return accounts.StoredAccount{}, fmt.Errorf("no remembered account %q", args[0])
		}
		return acc, nil
	}

	list := a.printAccounts(ctx)
	if len(list) == 0 {
		return accounts.StoredAccount{}, errors.New("nothing to switch to")
	}

	choice, err := a.io.ReadInput("Switch to # (empty to cancel): ")
	if err != nil {
		return accounts.StoredAccount{}, fmt.Errorf("failed to read choice: %w", err)
	}
	if choice == "" {
		return accounts.StoredAccount{}, errCancelled
	}

	n, err := strconv.Atoi(choice)
	if err != nil || n < 1 || n > len(list) {
		return accounts.StoredAccount{}, fmt.Errorf("invalid choice %q", choice)
	}
	return list[n-1], nil
}
