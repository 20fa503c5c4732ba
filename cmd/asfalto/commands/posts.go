package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"asfalto/cmd/asfalto/output"
	"asfalto/internal/app"
	"asfalto/internal/live"
	"asfalto/internal/models"
)

var (
	listCategory string
	listAuthor   string
	listSearch   string

	newPost     app.NewPost
	newCategory string
)

var postsCmd = &cobra.Command{
	Use:   "posts",
	Short: "List, show, create and delete posts",
}

var postsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List posts, newest first",
	Example: `  asfalto posts list
  asfalto posts list --category STREETWEAR
  asfalto posts list --search grunge`,
	RunE: func(cmd *cobra.Command, args []string) error {
		q, err := postsQuery(cmd)
		if err != nil {
			return err
		}
		posts, err := q.Get(cmd.Context())
		if err != nil {
			return err
		}
		output.Posts(posts)
		return nil
	},
}

var postsShowCmd = &cobra.Command{
	Use:   "show <post-id>",
	Short: "Show a post with its comments",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		repos, err := container.Repositories(ctx)
		if err != nil {
			return err
		}
		p, err := repos.Posts.Get(ctx, args[0])
		if err != nil {
			return err
		}
		if p == nil {
			return fmt.Errorf("post %s not found", args[0])
		}
		images, err := container.Images()
		if err != nil {
			return err
		}
		output.Post(*p, images.DisplayURI)
		comments, err := repos.Comments.ObserveByPost(p.ID).Get(ctx)
		if err != nil {
			return err
		}
		output.Section("Comments")
		output.Comments(comments)
		return nil
	},
}

var postsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Publish a post as the signed-in user",
	RunE: func(cmd *cobra.Command, args []string) error {
		category, err := parseCategory(newCategory)
		if err != nil {
			return err
		}
		s, err := signedIn(cmd.Context())
		if err != nil {
			return err
		}
		newPost.Category = category
		id, err := s.CreatePost(cmd.Context(), newPost)
		if err != nil {
			return err
		}
		output.Success("Published %s", id)
		return nil
	},
}

var postsDeleteCmd = &cobra.Command{
	Use:   "delete <post-id>",
	Short: "Delete a post with its comments and likes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := signedIn(cmd.Context())
		if err != nil {
			return err
		}
		if err := s.DeletePost(cmd.Context(), args[0]); err != nil {
			return err
		}
		output.Success("Deleted %s", args[0])
		return nil
	},
}

func parseCategory(s string) (models.Category, error) {
	c, err := models.ParseCategory(strings.ToUpper(strings.TrimSpace(s)))
	if err != nil {
		return "", fmt.Errorf("unknown category %q, want one of %v", s, models.Categories)
	}
	return c, nil
}

// postsQuery picks the post query the list flags ask for.
func postsQuery(cmd *cobra.Command) (*live.Query[[]models.Post], error) {
	repos, err := container.Repositories(cmd.Context())
	if err != nil {
		return nil, err
	}
	flags := cmd.Flags()
	switch {
	case flags.Changed("category"):
		c, err := parseCategory(listCategory)
		if err != nil {
			return nil, err
		}
		return repos.Posts.GetByCategory(c), nil
	case flags.Changed("author"):
		return repos.Posts.GetByAuthorEmail(listAuthor), nil
	case flags.Changed("search"):
		return repos.Posts.Search(listSearch), nil
	default:
		return repos.Posts.GetAll(), nil
	}
}

func addListFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&listCategory, "category", "", "Only posts in this category")
	cmd.Flags().StringVar(&listAuthor, "author", "", "Only posts by this email")
	cmd.Flags().StringVar(&listSearch, "search", "", "Only posts whose title or summary contains this text")
	cmd.MarkFlagsMutuallyExclusive("category", "author", "search")
}

func init() {
	rootCmd.AddCommand(postsCmd)
	postsCmd.AddCommand(postsListCmd, postsShowCmd, postsCreateCmd, postsDeleteCmd)

	addListFlags(postsListCmd)

	postsCreateCmd.Flags().StringVar(&newPost.Title, "title", "", "Title")
	postsCreateCmd.Flags().StringVar(&newPost.Summary, "summary", "", "Summary")
	postsCreateCmd.Flags().StringVar(&newPost.Content, "content", "", "Content")
	postsCreateCmd.Flags().StringVar(&newCategory, "category", string(models.CategoryNoticias), "Category")
	postsCreateCmd.Flags().StringVar(&newPost.Image, "image", "", "Image file")
}
