package core

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/mdobak/go-xerrors"
	"github.com/siahsang/socialite/internal/utils/databaseutils"
	"github.com/siahsang/socialite/models"
)

func (c *Core) CreateComment(ctx context.Context, comment *models.Comment) (*models.Comment, error) {
	const insertSQL = `
		INSERT INTO comments (body, created_at, updated_at, author_id, post_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, body, created_at, updated_at, author_id, post_id
	`

	now := time.Now()
	newComment, err := databaseutils.ExecuteSingleQuery(c.sqlTemplate, ctx, insertSQL, scanComment,
		comment.Body, now, now, comment.AuthorID, comment.PostID)
	if err != nil {
		return nil, xerrors.New(err)
	}

	return newComment, nil
}

func (c *Core) GetCommentByID(ctx context.Context, commentID int64) (*models.Comment, error) {
	const query = `
		SELECT id, body, created_at, updated_at, author_id, post_id
		FROM comments
		WHERE id = $1
	`

	comment, err := databaseutils.ExecuteSingleQuery(c.sqlTemplate, ctx, query, scanComment, commentID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, xerrors.New(NoRecordFound)
		default:
			return nil, xerrors.New(err)
		}
	}

	return comment, nil
}

// UpdateComment replaces the comment body and refreshes updated_at.
// Ownership is checked by the caller before this is reached.
func (c *Core) UpdateComment(ctx context.Context, comment *models.Comment) (*models.Comment, error) {
	const query = `
		UPDATE comments
		SET body = $1, updated_at = $2
		WHERE id = $3
		RETURNING id, body, created_at, updated_at, author_id, post_id
	`

	updatedComment, err := databaseutils.ExecuteSingleQuery(c.sqlTemplate, ctx, query, scanComment,
		comment.Body, time.Now(), comment.ID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, xerrors.New(NoRecordFound)
		default:
			return nil, xerrors.New(err)
		}
	}

	return updatedComment, nil
}

func (c *Core) DeleteComment(ctx context.Context, commentID int64) error {
	const deleteSQL = `DELETE FROM comments WHERE id = $1`

	affected, err := databaseutils.ExecuteUpdate(c.sqlTemplate, ctx, deleteSQL, commentID)
	if err != nil {
		return xerrors.New(err)
	}

	if affected == 0 {
		return xerrors.New(NoRecordFound)
	}

	return nil
}

// GetCommentsByPostID returns a post's comments, newest first.
func (c *Core) GetCommentsByPostID(ctx context.Context, postID int64) ([]*models.Comment, error) {
	const query = `
		SELECT id, body, created_at, updated_at, author_id, post_id
		FROM comments
		WHERE post_id = $1
		ORDER BY created_at DESC
	`

	comments, err := databaseutils.ExecuteQuery(c.sqlTemplate, ctx, query, scanComment, postID)
	if err != nil {
		return nil, xerrors.New(err)
	}

	return comments, nil
}

func scanComment(rows *sql.Rows) (*models.Comment, error) {
	var comment models.Comment
	if err := rows.Scan(&comment.ID, &comment.Body, &comment.CreatedAt, &comment.UpdatedAt, &comment.AuthorID, &comment.PostID); err != nil {
		return nil, xerrors.New(err)
	}
	return &comment, nil
}
