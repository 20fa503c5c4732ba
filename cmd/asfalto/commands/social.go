package commands

import (
	"github.com/spf13/cobra"

	"asfalto/cmd/asfalto/output"
)

var commentsCmd = &cobra.Command{
	Use:   "comments",
	Short: "List, add and delete comments",
}

var commentsListCmd = &cobra.Command{
	Use:   "list <post-id>",
	Short: "List a post's comments, newest first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repos, err := container.Repositories(cmd.Context())
		if err != nil {
			return err
		}
		comments, err := repos.Comments.ObserveByPost(args[0]).Get(cmd.Context())
		if err != nil {
			return err
		}
		output.Comments(comments)
		return nil
	},
}

var commentsAddCmd = &cobra.Command{
	Use:   "add <post-id> <text>",
	Short: "Comment on a post as the signed-in user",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := signedIn(cmd.Context())
		if err != nil {
			return err
		}
		id, err := s.AddComment(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		if id == "" {
			output.Muted("empty comment ignored")
			return nil
		}
		output.Success("Commented %s", id)
		return nil
	},
}

var commentsDeleteCmd = &cobra.Command{
	Use:   "delete <comment-id>",
	Short: "Delete a comment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := signedIn(cmd.Context())
		if err != nil {
			return err
		}
		if err := s.DeleteComment(cmd.Context(), args[0]); err != nil {
			return err
		}
		output.Success("Deleted %s", args[0])
		return nil
	},
}

var likesCmd = &cobra.Command{
	Use:   "likes",
	Short: "Toggle and list likes",
}

var likesToggleCmd = &cobra.Command{
	Use:   "toggle <post-id>",
	Short: "Like a post, or remove your like",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := signedIn(cmd.Context())
		if err != nil {
			return err
		}
		liked, err := s.ToggleLike(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if liked {
			output.Success("♥ Liked")
		} else {
			output.Success("Like removed")
		}
		return nil
	},
}

var likesListCmd = &cobra.Command{
	Use:   "list <post-id>",
	Short: "List who liked a post",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repos, err := container.Repositories(cmd.Context())
		if err != nil {
			return err
		}
		likes, err := repos.Likes.GetLikesForPost(args[0]).Get(cmd.Context())
		if err != nil {
			return err
		}
		output.Likes(likes)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(commentsCmd, likesCmd)
	commentsCmd.AddCommand(commentsListCmd, commentsAddCmd, commentsDeleteCmd)
	likesCmd.AddCommand(likesToggleCmd, likesListCmd)
}
