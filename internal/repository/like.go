package repository

import (
	"context"
	"database/sql"

	"asfalto/internal/db"
	"asfalto/internal/live"
	"asfalto/internal/models"
)

type LikeRepository interface {
	// GetLikesForPost lists the post's likes with user fields, newest first.
	GetLikesForPost(postID string) *live.Query[[]models.Like]
	// ToggleLike likes the post if userEmail has not, unlikes it otherwise,
	// and reports whether the post is liked afterwards.
	ToggleLike(ctx context.Context, postID, userEmail string) (bool, error)
	// GetUserLike returns nil when userEmail has not liked postID.
	GetUserLike(ctx context.Context, postID, userEmail string) (*models.LikeRecord, error)
	HasUserLiked(ctx context.Context, postID, userEmail string) (bool, error)
}

type likeRepository struct {
	store *db.Store
	opts  options
}

func NewLikeRepository(store *db.Store, opts ...Option) LikeRepository {
	return &likeRepository{store: store, opts: buildOptions(opts)}
}

func (r *likeRepository) GetLikesForPost(postID string) *live.Query[[]models.Like] {
	rows := live.NewQuery(r.store.Hub(), func(ctx context.Context) ([]models.LikeWithUser, error) {
		return models.ListLikes(ctx, r.store.DB, postID)
	}, live.Likes, live.Users)

	return live.Map(rows, func(rows []models.LikeWithUser) ([]models.Like, error) {
		likes := make([]models.Like, len(rows))
		for i, row := range rows {
			likes[i] = row.ToDomain()
		}
		return likes, nil
	})
}

// ToggleLike reads and writes inside one serialized transaction, so two
// concurrent toggles for the same pair always cancel out instead of both
// observing "not liked".
func (r *likeRepository) ToggleLike(ctx context.Context, postID, userEmail string) (bool, error) {
	var liked bool
	err := r.store.Write(ctx, []live.Table{live.Likes}, func(tx *sql.Tx) error {
		existing, err := models.GetLike(ctx, tx, postID, userEmail)
		if err != nil {
			return err
		}
		if existing != nil {
			liked = false
			return models.DeleteLike(ctx, tx, postID, userEmail)
		}
		liked = true
		return models.UpsertLike(ctx, tx, models.LikeRecord{
			PostID:    postID,
			UserEmail: userEmail,
			Timestamp: r.opts.millis(),
		})
	})
	if err != nil {
		return false, err
	}
	return liked, nil
}

func (r *likeRepository) GetUserLike(ctx context.Context, postID, userEmail string) (*models.LikeRecord, error) {
	return models.GetLike(ctx, r.store.DB, postID, userEmail)
}

func (r *likeRepository) HasUserLiked(ctx context.Context, postID, userEmail string) (bool, error) {
	l, err := r.GetUserLike(ctx, postID, userEmail)
	if err != nil {
		return false, err
	}
	return l != nil, nil
}
