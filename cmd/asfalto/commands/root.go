package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"asfalto/cmd/asfalto/output"
	"asfalto/internal/app"
	"asfalto/internal/config"
)

var (
	dbPath string

	container *app.Container
)

var rootCmd = &cobra.Command{
	Use:   "asfalto",
	Short: "Asfalto Fashion - community posts, comments and likes",
	Long: `Asfalto Fashion keeps a local store of users, posts, comments and likes.

The first run creates the database and seeds two accounts:
  admin@asfalto.cl / Admin123!   (admin)
  joan@gmail.com   / Asfalto123!

Configuration comes from the environment or a .env file:
  ASFALTO_DB_PATH, ASFALTO_IMAGES_DIR, ASFALTO_PREFS_PATH,
  REDIS_URL, CLOUDINARY_URL, ASFALTO_BCRYPT_COST, ASFALTO_SEED`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if dbPath != "" {
			cfg.DBPath = dbPath
		}
		container = app.NewContainer(cfg)
		return nil
	},
}

// execute runs the command line and releases whatever the command opened.
func execute() error {
	defer func() {
		if container != nil {
			container.Close()
			container = nil
		}
	}()
	return rootCmd.Execute()
}

func Execute() {
	if err := execute(); err != nil {
		output.Error("%v", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Database file (overrides ASFALTO_DB_PATH)")
}

// session returns a session with the remembered user signed back in.
func session(ctx context.Context) (*app.Session, error) {
	s, err := container.Session(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := s.Restore(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func signedIn(ctx context.Context) (*app.Session, error) {
	s, err := session(ctx)
	if err != nil {
		return nil, err
	}
	if s.User() == nil {
		return nil, fmt.Errorf("%w: run asfalto login first", app.ErrNotLoggedIn)
	}
	return s, nil
}
