package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newFavoritesCommand(app func() *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "favorites",
		Aliases: []string{"fav"},
		Short:   "Favorite articles of the signed-in account, kept on this device",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List favorite articles",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				a := app()
				ctx := cmd.Context()

				user, err := a.requireUser(ctx)
				if err != nil {
					return err
				}

				articles, err := a.favorites.Articles(ctx, a.client, user.UserID)
				if err != nil {
					return err
				}
				if len(articles) == 0 {
					a.io.Println("No favorites yet. Add one with 'lostlibrary favorites add <article-id>'.")
					return nil
				}

				a.printArticles(articles)
				return nil
			},
		},
		&cobra.Command{
			Use:   "add <article-id>",
			Short: "Add an article to favorites",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				a := app()
				ctx := cmd.Context()

				user, err := a.requireUser(ctx)
				if err != nil {
					return err
				}

				// Проверяем, что статья существует и опубликована
				found, err := a.client.GetArticlesByIDs(ctx, args[:1])
				if err != nil {
					return err
				}
				if len(found) == 0 {
					return fmt.Errorf("article %s not found", args[0])
				}

				a.favorites.Add(ctx, user.UserID, found[0].ID)
				a.io.Printf("★ Added %q to favorites\n", found[0].Title)
				return nil
			},
		},
		&cobra.Command{
			Use:   "remove <article-id>",
			Short: "Remove an article from favorites",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				a := app()
				ctx := cmd.Context()

				user, err := a.requireUser(ctx)
				if err != nil {
					return err
				}

				if !a.favorites.Contains(ctx, user.UserID, args[0]) {
					a.io.Println("Not in favorites")
					return nil
				}

				a.favorites.Remove(ctx, user.UserID, args[0])
				a.io.Println("Removed from favorites")
				return nil
			},
		},
	)

	return cmd
}
