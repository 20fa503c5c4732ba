package models

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func wrap(op string, err error) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
		return &ConstraintError{Op: op, Err: err}
	}
	return fmt.Errorf("%s: %w", op, err)
}

func isUnique(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}

func nullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

// Users

const userColumns = `id, name, email, phone, password_hash, profile_image_path, is_admin`

func scanUser(row interface{ Scan(...any) error }) (*User, error) {
	var u User
	var image sql.NullString
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.PasswordHash, &image, &u.IsAdmin); err != nil {
		return nil, err
	}
	u.ProfileImagePath = nullString(image)
	return &u, nil
}

// InsertUser inserts u unless its email is taken. inserted is false on conflict.
func InsertUser(ctx context.Context, db DBTX, u *User) (id int64, inserted bool, err error) {
	res, err := db.ExecContext(ctx, `INSERT OR IGNORE INTO users (name, email, phone, password_hash, profile_image_path, is_admin)
        VALUES (?, ?, ?, ?, ?, ?)`, u.Name, u.Email, u.Phone, u.PasswordHash, u.ProfileImagePath, u.IsAdmin)
	if err != nil {
		return 0, false, wrap("insert user", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, false, err
	}
	if n == 0 {
		return 0, false, nil
	}
	id, err = res.LastInsertId()
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}

// UpdateUser replaces every column of the row identified by u.ID.
func UpdateUser(ctx context.Context, db DBTX, u *User) error {
	_, err := db.ExecContext(ctx, `UPDATE users SET name = ?, email = ?, phone = ?, password_hash = ?,
        profile_image_path = ?, is_admin = ? WHERE id = ?`,
		u.Name, u.Email, u.Phone, u.PasswordHash, u.ProfileImagePath, u.IsAdmin, u.ID)
	if err != nil {
		if isUnique(err) {
			return ErrDuplicateEmail
		}
		return wrap("update user", err)
	}
	return nil
}

func DeleteUser(ctx context.Context, db DBTX, id int64) error {
	if _, err := db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id); err != nil {
		return wrap("delete user", err)
	}
	return nil
}

// GetUserByEmail returns nil when no user has email.
func GetUserByEmail(ctx context.Context, db DBTX, email string) (*User, error) {
	row := db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ? LIMIT 1`, email)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

// GetUserByID returns nil when no user has id.
func GetUserByID(ctx context.Context, db DBTX, id int64) (*User, error) {
	row := db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	return u, nil
}

func ListUsers(ctx context.Context, db DBTX) ([]User, error) {
	rows, err := db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()
	var users []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func CountUsers(ctx context.Context, db DBTX) (int64, error) {
	var n int64
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}

// Posts

// UpsertPost inserts p, overwriting the row with the same id.
func UpsertPost(ctx context.Context, db DBTX, p PostRecord) error {
	_, err := db.ExecContext(ctx, `INSERT INTO posts (id, title, summary, content, category, author_id, published_at, image_url)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(id) DO UPDATE SET title = excluded.title, summary = excluded.summary,
            content = excluded.content, category = excluded.category, author_id = excluded.author_id,
            published_at = excluded.published_at, image_url = excluded.image_url`,
		p.ID, p.Title, p.Summary, p.Content, p.Category, p.AuthorID, p.PublishedAt, p.ImageURL)
	if err != nil {
		return wrap("upsert post", err)
	}
	return nil
}

// PostFilter narrows ListPosts. Nil fields do not filter; a set field always
// applies, so an empty AuthorEmail matches no author.
type PostFilter struct {
	Category    *string
	AuthorEmail *string
	// Search matches title or summary, case-insensitively.
	Search *string
}

const postSelect = `SELECT p.id, p.title, p.summary, p.content, p.category, p.author_id, p.published_at, p.image_url,
        u.name, u.email, u.profile_image_path,
        (SELECT COUNT(*) FROM likes l WHERE l.post_id = p.id) AS likes_count
    FROM posts p
    INNER JOIN users u ON p.author_id = u.id`

func scanPost(row interface{ Scan(...any) error }) (*PostWithDetails, error) {
	var p PostWithDetails
	var image, avatar sql.NullString
	err := row.Scan(&p.ID, &p.Title, &p.Summary, &p.Content, &p.Category, &p.AuthorID, &p.PublishedAt, &image,
		&p.AuthorName, &p.AuthorEmail, &avatar, &p.LikesCount)
	if err != nil {
		return nil, err
	}
	p.ImageURL = nullString(image)
	p.AuthorProfileImageURL = nullString(avatar)
	return &p, nil
}

// ListPosts returns matching posts, newest first.
func ListPosts(ctx context.Context, db DBTX, f PostFilter) ([]PostWithDetails, error) {
	q := postSelect
	var where []string
	args := []any{}
	if f.Category != nil {
		where = append(where, `p.category = ?`)
		args = append(args, *f.Category)
	}
	if f.AuthorEmail != nil {
		where = append(where, `u.email = ?`)
		args = append(args, *f.AuthorEmail)
	}
	if f.Search != nil {
		where = append(where, `(contains_fold(p.title, ?) OR contains_fold(p.summary, ?))`)
		args = append(args, *f.Search, *f.Search)
	}
	for i, w := range where {
		if i == 0 {
			q += ` WHERE ` + w
		} else {
			q += ` AND ` + w
		}
	}
	q += ` ORDER BY p.published_at DESC`

	rows, err := db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()
	var posts []PostWithDetails
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, *p)
	}
	return posts, rows.Err()
}

// GetPost returns nil when no post has id.
func GetPost(ctx context.Context, db DBTX, id string) (*PostWithDetails, error) {
	row := db.QueryRowContext(ctx, postSelect+` WHERE p.id = ? LIMIT 1`, id)
	p, err := scanPost(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}
	return p, nil
}

func CountPosts(ctx context.Context, db DBTX) (int64, error) {
	var n int64
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts`).Scan(&n)
	return n, err
}

// DeletePost removes the post; comments cascade by foreign key, likes by trigger.
func DeletePost(ctx context.Context, db DBTX, id string) error {
	if _, err := db.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id); err != nil {
		return wrap("delete post", err)
	}
	return nil
}

// Comments

func UpsertComment(ctx context.Context, db DBTX, c CommentRecord) error {
	_, err := db.ExecContext(ctx, `INSERT INTO comments (id, post_id, author_id, content, timestamp)
        VALUES (?, ?, ?, ?, ?)
        ON CONFLICT(id) DO UPDATE SET post_id = excluded.post_id, author_id = excluded.author_id,
            content = excluded.content, timestamp = excluded.timestamp`,
		c.ID, c.PostID, c.AuthorID, c.Content, c.Timestamp)
	if err != nil {
		return wrap("upsert comment", err)
	}
	return nil
}

const commentSelect = `SELECT c.id, c.post_id, c.author_id, c.content, c.timestamp,
        u.name, u.email, u.profile_image_path
    FROM comments c
    INNER JOIN users u ON c.author_id = u.id`

func scanComment(row interface{ Scan(...any) error }) (*CommentWithAuthor, error) {
	var c CommentWithAuthor
	var avatar sql.NullString
	err := row.Scan(&c.ID, &c.PostID, &c.AuthorID, &c.Content, &c.Timestamp, &c.AuthorName, &c.AuthorEmail, &avatar)
	if err != nil {
		return nil, err
	}
	c.AuthorProfileImageURL = nullString(avatar)
	return &c, nil
}

// ListComments returns the comments on postID, newest first.
func ListComments(ctx context.Context, db DBTX, postID string) ([]CommentWithAuthor, error) {
	rows, err := db.QueryContext(ctx, commentSelect+` WHERE c.post_id = ? ORDER BY c.timestamp DESC`, postID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()
	var cs []CommentWithAuthor
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		cs = append(cs, *c)
	}
	return cs, rows.Err()
}

// GetComment returns nil when no comment has id.
func GetComment(ctx context.Context, db DBTX, id string) (*CommentWithAuthor, error) {
	c, err := scanComment(db.QueryRowContext(ctx, commentSelect+` WHERE c.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get comment: %w", err)
	}
	return c, nil
}

func CountComments(ctx context.Context, db DBTX, postID string) (int64, error) {
	var n int64
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM comments WHERE post_id = ?`, postID).Scan(&n)
	return n, err
}

func DeleteComment(ctx context.Context, db DBTX, id string) error {
	if _, err := db.ExecContext(ctx, `DELETE FROM comments WHERE id = ?`, id); err != nil {
		return wrap("delete comment", err)
	}
	return nil
}

// Likes

// UpsertLike inserts l; an existing (post, email) like keeps one row with l's timestamp.
func UpsertLike(ctx context.Context, db DBTX, l LikeRecord) error {
	_, err := db.ExecContext(ctx, `INSERT INTO likes (post_id, user_email, timestamp) VALUES (?, ?, ?)
        ON CONFLICT(post_id, user_email) DO UPDATE SET timestamp = excluded.timestamp`,
		l.PostID, l.UserEmail, l.Timestamp)
	if err != nil {
		return wrap("upsert like", err)
	}
	return nil
}

// GetLike returns nil when userEmail has not liked postID.
func GetLike(ctx context.Context, db DBTX, postID, userEmail string) (*LikeRecord, error) {
	var l LikeRecord
	err := db.QueryRowContext(ctx, `SELECT post_id, user_email, timestamp FROM likes
        WHERE post_id = ? AND user_email = ? LIMIT 1`, postID, userEmail).Scan(&l.PostID, &l.UserEmail, &l.Timestamp)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get like: %w", err)
	}
	return &l, nil
}

func DeleteLike(ctx context.Context, db DBTX, postID, userEmail string) error {
	_, err := db.ExecContext(ctx, `DELETE FROM likes WHERE post_id = ? AND user_email = ?`, postID, userEmail)
	if err != nil {
		return wrap("delete like", err)
	}
	return nil
}

// ListLikes returns the likes on postID joined with the liking user, newest first.
// Likes whose email matches no user are omitted.
func ListLikes(ctx context.Context, db DBTX, postID string) ([]LikeWithUser, error) {
	rows, err := db.QueryContext(ctx, `SELECT l.post_id, l.user_email, l.timestamp, u.name, u.profile_image_path
        FROM likes l
        INNER JOIN users u ON l.user_email = u.email
        WHERE l.post_id = ?
        ORDER BY l.timestamp DESC`, postID)
	if err != nil {
		return nil, fmt.Errorf("list likes: %w", err)
	}
	defer rows.Close()
	var likes []LikeWithUser
	for rows.Next() {
		var l LikeWithUser
		var avatar sql.NullString
		if err := rows.Scan(&l.PostID, &l.UserEmail, &l.Timestamp, &l.UserName, &avatar); err != nil {
			return nil, err
		}
		l.UserProfileImageURL = nullString(avatar)
		likes = append(likes, l)
	}
	return likes, rows.Err()
}
