package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"asfalto/cmd/asfalto/output"
	"asfalto/internal/live"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print live results again whenever they change",
	Long: `Watch a query and print a fresh result after every change to the data it reads,
including changes made by other asfalto processes sharing the same database file.

Example:
  asfalto watch posts --category STREETWEAR
  # in another terminal
  asfalto posts create --title ... --category STREETWEAR`,
}

var pollInterval time.Duration

var watchPostsCmd = &cobra.Command{
	Use:   "posts",
	Short: "Watch the post list",
	RunE: func(cmd *cobra.Command, args []string) error {
		q, err := postsQuery(cmd)
		if err != nil {
			return err
		}
		return watch(cmd.Context(), q, output.Posts)
	},
}

var watchCommentsCmd = &cobra.Command{
	Use:   "comments <post-id>",
	Short: "Watch a post's comments",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repos, err := container.Repositories(cmd.Context())
		if err != nil {
			return err
		}
		return watch(cmd.Context(), repos.Comments.ObserveByPost(args[0]), output.Comments)
	},
}

var watchLikesCmd = &cobra.Command{
	Use:   "likes <post-id>",
	Short: "Watch a post's likes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repos, err := container.Repositories(cmd.Context())
		if err != nil {
			return err
		}
		return watch(cmd.Context(), repos.Likes.GetLikesForPost(args[0]), output.Likes)
	},
}

// watch prints every snapshot of q until interrupted.
func watch[T any](ctx context.Context, q *live.Query[T], show func(T)) error {
	if pollInterval <= 0 {
		return fmt.Errorf("--poll must be positive, got %s", pollInterval)
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := container.Store(ctx)
	if err != nil {
		return err
	}
	follow := make(chan error, 1)
	go func() {
		follow <- store.Follow(ctx, pollInterval)
		stop()
	}()

	for snap := range q.Observe(ctx) {
		if snap.Err != nil {
			output.Error("%v", snap.Err)
			continue
		}
		output.Section("Update")
		show(snap.Value)
	}
	return <-follow
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.AddCommand(watchPostsCmd, watchCommentsCmd, watchLikesCmd)
	addListFlags(watchPostsCmd)
	watchCmd.PersistentFlags().DurationVar(&pollInterval, "poll", 500*time.Millisecond, "How often to check for writes from other processes")
}
