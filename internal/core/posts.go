package core

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/mdobak/go-xerrors"
	"github.com/siahsang/socialite/internal/filter"
	"github.com/siahsang/socialite/internal/utils/databaseutils"
	"github.com/siahsang/socialite/models"
)

func (c *Core) CreatePost(ctx context.Context, post *models.Post) (*models.Post, error) {
	const insertSQL = `
		INSERT INTO posts (content, image, author_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, content, image, author_id, created_at, updated_at
	`

	now := time.Now()
	newPost, err := databaseutils.ExecuteSingleQuery(c.sqlTemplate, ctx, insertSQL, scanPost,
		post.Content, post.Image, post.AuthorID, now, now)
	if err != nil {
		return nil, xerrors.New(err)
	}

	return newPost, nil
}

func (c *Core) GetPostByID(ctx context.Context, postID int64) (*models.Post, error) {
	const query = `
		SELECT id, content, image, author_id, created_at, updated_at
		FROM posts
		WHERE id = $1
	`

	post, err := databaseutils.ExecuteSingleQuery(c.sqlTemplate, ctx, query, scanPost, postID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, xerrors.New(NoRecordFound)
		default:
			return nil, xerrors.New(err)
		}
	}

	return post, nil
}

// UpdatePost persists new content/image for a post and refreshes updated_at.
// Ownership is checked by the caller before this is reached.
func (c *Core) UpdatePost(ctx context.Context, post *models.Post) (*models.Post, error) {
	const query = `
		UPDATE posts
		SET content = $1, image = $2, updated_at = $3
		WHERE id = $4
		RETURNING id, content, image, author_id, created_at, updated_at
	`

	updatedPost, err := databaseutils.ExecuteSingleQuery(c.sqlTemplate, ctx, query, scanPost,
		post.Content, post.Image, time.Now(), post.ID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, xerrors.New(NoRecordFound)
		default:
			return nil, xerrors.New(err)
		}
	}

	return updatedPost, nil
}

// DeletePost removes a post; comments and likes go with it via ON DELETE CASCADE.
func (c *Core) DeletePost(ctx context.Context, postID int64) error {
	const deleteSQL = `DELETE FROM posts WHERE id = $1`

	affected, err := databaseutils.ExecuteUpdate(c.sqlTemplate, ctx, deleteSQL, postID)
	if err != nil {
		return xerrors.New(err)
	}

	if affected == 0 {
		return xerrors.New(NoRecordFound)
	}

	return nil
}

// GetPosts returns all posts, newest first, one page at a time.
func (c *Core) GetPosts(ctx context.Context, filters filter.Filter) ([]*models.Post, error) {
	const query = `
		SELECT id, content, image, author_id, created_at, updated_at
		FROM posts
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	posts, err := databaseutils.ExecuteQuery(c.sqlTemplate, ctx, query, scanPost, filters.Limit(), filters.Offset())
	if err != nil {
		return nil, xerrors.New(err)
	}

	return posts, nil
}

func (c *Core) CountPosts(ctx context.Context) (int64, error) {
	const query = `SELECT COUNT(*) FROM posts`

	return c.countRows(ctx, query)
}

// GetFeed returns the page of posts authored by users the given user follows.
func (c *Core) GetFeed(ctx context.Context, userID int64, filters filter.Filter) ([]*models.Post, error) {
	const query = `
		SELECT p.id, p.content, p.image, p.author_id, p.created_at, p.updated_at
		FROM posts p
		JOIN follows f ON f.followee_id = p.author_id
		WHERE f.follower_id = $1
		ORDER BY p.created_at DESC
		LIMIT $2 OFFSET $3
	`

	posts, err := databaseutils.ExecuteQuery(c.sqlTemplate, ctx, query, scanPost, userID, filters.Limit(), filters.Offset())
	if err != nil {
		return nil, xerrors.New(err)
	}

	return posts, nil
}

func (c *Core) CountFeed(ctx context.Context, userID int64) (int64, error) {
	const query = `
		SELECT COUNT(*)
		FROM posts p
		JOIN follows f ON f.followee_id = p.author_id
		WHERE f.follower_id = $1
	`

	return c.countRows(ctx, query, userID)
}

func (c *Core) countRows(ctx context.Context, query string, args ...any) (int64, error) {
	count, err := databaseutils.ExecuteSingleQuery(c.sqlTemplate, ctx, query, func(rows *sql.Rows) (int64, error) {
		var count int64
		if err := rows.Scan(&count); err != nil {
			return 0, xerrors.New(err)
		}
		return count, nil
	}, args...)

	if err != nil {
		return 0, xerrors.New(err)
	}

	return count, nil
}

func scanPost(rows *sql.Rows) (*models.Post, error) {
	var post models.Post
	if err := rows.Scan(&post.ID, &post.Content, &post.Image, &post.AuthorID, &post.CreatedAt, &post.UpdatedAt); err != nil {
		return nil, xerrors.New(err)
	}
	return &post, nil
}
