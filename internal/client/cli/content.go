package cli

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/iudanet/lostlibrary/internal/validation"
	"github.com/iudanet/lostlibrary/pkg/api"
)

func newFeedCommand(app func() *App) *cobra.Command {
	var (
		category string
		limit    int
	)

	cmd := &cobra.Command{
		Use:   "feed",
		Short: "Show published articles, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := app()

			if err := validation.ValidateCategory(category); err != nil {
				return err
			}

			articles, err := a.client.Feed(cmd.Context(), category, limit)
			if err != nil {
				return err
			}
			if len(articles) == 0 {
				a.io.Println("No articles")
				return nil
			}

			a.printArticles(articles)
			return nil
		},
	}

	values := make([]string, 0, len(api.Categories))
	for _, c := range api.Categories {
		values = append(values, c.Value)
	}
	cmd.Flags().StringVar(&category, "category", "", "filter by category: "+strings.Join(values, ", "))
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of articles")
	return cmd
}

func (a *App) printArticles(articles []api.Article) {
	w := tabwriter.NewWriter(a.io, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tTITLE\tCATEGORY\tLIKES\tPUBLISHED")
	for _, art := range articles {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
			art.ID, art.Title, api.CategoryLabel(art.Category), art.LikeCount, formatTime(art.PublishedAt))
	}
	_ = w.Flush()
}

func newReadCommand(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "read <slug>",
		Short: "Read an article",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			ctx := cmd.Context()

			art, err := a.client.GetArticle(ctx, args[0])
			if err != nil {
				return err
			}

			a.io.Println(art.Title)
			a.io.Println(strings.Repeat("=", len([]rune(art.Title))))
			byline := api.CategoryLabel(art.Category) + " · " + formatTime(art.PublishedAt)
			if art.Author != nil {
				name := art.Author.FullName
				if name == "" {
					name = art.Author.Username
				}
				if name != "" {
					byline = "by " + name + " · " + byline
				}
			}
			a.io.Println(byline)
			a.io.Printf("ID: %s  views: %d  likes: %d\n", art.ID, art.ViewCount, art.LikeCount)

			if user := a.auth.Current(ctx); !user.IsZero() && a.favorites.Contains(ctx, user.UserID, art.ID) {
				a.io.Println("★ in favorites")
			}

			a.io.Println("")
			if art.Excerpt != "" {
				a.io.Println(art.Excerpt)
				a.io.Println("")
			}
			a.io.Println(art.Content)
			return nil
		},
	}
}

func newLikeCommand(app func() *App, like bool) *cobra.Command {
	use, short := "like <article-id>", "Like an article"
	if !like {
		use, short = "unlike <article-id>", "Remove your like from an article"
	}

	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			ctx := cmd.Context()

			token, err := a.auth.AccessToken(ctx)
			if err != nil {
				return err
			}

			var status *api.LikeStatus
			if like {
				status, err = a.client.Like(ctx, token, args[0])
			} else {
				status, err = a.client.Unlike(ctx, token, args[0])
			}
			if err != nil {
				return err
			}

			mark := "♡"
			if status.Liked {
				mark = "♥"
			}
			a.io.Printf("%s %d likes\n", mark, status.Count)
			return nil
		},
	}
}

func newProfileCommand(app func() *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show or edit profiles",
	}

	var req api.UpdateProfileRequest
	update := &cobra.Command{
		Use:   "update",
		Short: "Replace your profile fields",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := app()
			ctx := cmd.Context()

			if err := validation.ValidateProfile(req); err != nil {
				return err
			}

			token, err := a.auth.AccessToken(ctx)
			if err != nil {
				return err
			}

			profile, err := a.client.UpdateProfile(ctx, token, req)
			if err != nil {
				return err
			}

			// Обновляем имя в списке аккаунтов
			a.auth.CaptureSession(ctx, profile.ID)

			a.printProfile(profile)
			return nil
		},
	}
	f := update.Flags()
	f.StringVar(&req.Username, "username", "", "username")
	f.StringVar(&req.FullName, "full-name", "", "full name")
	f.StringVar(&req.AvatarURL, "avatar-url", "", "avatar URL")
	f.StringVar(&req.Bio, "bio", "", "short bio")
	f.StringVar(&req.Website, "website", "", "website URL")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show [user-id]",
			Short: "Show a profile, yours by default",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				a := app()
				ctx := cmd.Context()

				var id string
				if len(args) > 0 {
					id = args[0]
				} else {
					user, err := a.requireUser(ctx)
					if err != nil {
						return err
					}
					id = user.UserID
				}

				profile, err := a.client.GetProfile(ctx, id)
				if err != nil {
					return err
				}
				a.printProfile(profile)
				return nil
			},
		},
		update,
	)

	return cmd
}

func (a *App) printProfile(p *api.Profile) {
	w := tabwriter.NewWriter(a.io, 0, 4, 2, ' ', 0)
	rows := [][2]string{
		{"ID", p.ID},
		{"Username", p.Username},
		{"Name", p.FullName},
		{"Avatar", p.AvatarURL},
		{"Bio", p.Bio},
		{"Website", p.Website},
	}
	for _, row := range rows {
		if row[1] != "" {
			_, _ = fmt.Fprintf(w, "%s:\t%s\n", row[0], row[1])
		}
	}
	_ = w.Flush()
}

func newPublishCommand(app func() *App) *cobra.Command {
	var (
		req         api.CreateArticleRequest
		contentFile string
		draft       bool
	)

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Create an article",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := app()
			ctx := cmd.Context()

			if contentFile != "" {
				content, err := os.ReadFile(contentFile)
				if err != nil {
					return fmt.Errorf("failed to read content file: %w", err)
				}
				req.Content = string(content)
			}
			req.Publish = !draft

			if err := validation.ValidateArticle(req); err != nil {
				return err
			}

			token, err := a.auth.AccessToken(ctx)
			if err != nil {
				return err
			}

			art, err := a.client.CreateArticle(ctx, token, req)
			if err != nil {
				return err
			}

			if draft {
				a.io.Printf("✓ Draft saved: %s (%s)\n", art.Slug, art.ID)
			} else {
				a.io.Printf("✓ Published: %s (%s)\n", art.Slug, art.ID)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&req.Title, "title", "", "article title")
	f.StringVar(&req.Slug, "slug", "", "URL slug")
	f.StringVar(&req.Category, "category", "", "category")
	f.StringVar(&req.Excerpt, "excerpt", "", "short excerpt")
	f.StringVar(&req.ImageURL, "image-url", "", "cover image URL")
	f.StringVar(&contentFile, "content-file", "", "read article body from file")
	f.BoolVar(&draft, "draft", false, "save without publishing")
	return cmd
}
