package repository

import (
	"context"
	"database/sql"

	"asfalto/internal/db"
	"asfalto/internal/live"
	"asfalto/internal/models"
)

type CommentRepository interface {
	// ObserveByPost lists the post's comments with author fields, newest first.
	ObserveByPost(postID string) *live.Query[[]models.Comment]
	// AddComment stores content as given; blank content is the caller's concern.
	AddComment(ctx context.Context, postID string, authorID int64, content string) (string, error)
	DeleteComment(ctx context.Context, commentID string) error
	// Get returns nil when no comment has commentID.
	Get(ctx context.Context, commentID string) (*models.Comment, error)
	CountByPost(ctx context.Context, postID string) (int64, error)
}

type commentRepository struct {
	store *db.Store
	opts  options
}

func NewCommentRepository(store *db.Store, opts ...Option) CommentRepository {
	return &commentRepository{store: store, opts: buildOptions(opts)}
}

func (r *commentRepository) ObserveByPost(postID string) *live.Query[[]models.Comment] {
	rows := live.NewQuery(r.store.Hub(), func(ctx context.Context) ([]models.CommentWithAuthor, error) {
		return models.ListComments(ctx, r.store.DB, postID)
	}, live.Comments, live.Users)

	return live.Map(rows, func(rows []models.CommentWithAuthor) ([]models.Comment, error) {
		comments := make([]models.Comment, len(rows))
		for i, row := range rows {
			comments[i] = row.ToDomain()
		}
		return comments, nil
	})
}

func (r *commentRepository) AddComment(ctx context.Context, postID string, authorID int64, content string) (string, error) {
	c := models.CommentRecord{
		ID:        r.opts.newID(),
		PostID:    postID,
		AuthorID:  authorID,
		Content:   content,
		Timestamp: r.opts.millis(),
	}
	err := r.store.Write(ctx, []live.Table{live.Comments}, func(tx *sql.Tx) error {
		return models.UpsertComment(ctx, tx, c)
	})
	if err != nil {
		return "", err
	}
	return c.ID, nil
}

func (r *commentRepository) DeleteComment(ctx context.Context, commentID string) error {
	return r.store.Write(ctx, []live.Table{live.Comments}, func(tx *sql.Tx) error {
		return models.DeleteComment(ctx, tx, commentID)
	})
}

func (r *commentRepository) Get(ctx context.Context, commentID string) (*models.Comment, error) {
	row, err := models.GetComment(ctx, r.store.DB, commentID)
	if err != nil || row == nil {
		return nil, err
	}
	c := row.ToDomain()
	return &c, nil
}

func (r *commentRepository) CountByPost(ctx context.Context, postID string) (int64, error) {
	return models.CountComments(ctx, r.store.DB, postID)
}
