package core

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/mdobak/go-xerrors"
	"github.com/siahsang/socialite/internal/auth"
	"github.com/siahsang/socialite/internal/utils/databaseutils"
	"github.com/siahsang/socialite/internal/utils/stringutils"
)

var PostIsAlreadyLiked = xerrors.Message("Post is already liked")

// ToggleLike flips the like state of (user, post) and reports the new state.
// The insert is a single conditional statement so two concurrent toggles from
// the same user cannot produce a duplicate row; the unique constraint on
// (user_id, post_id) is the race guard. Run it inside a transaction so the
// insert-then-delete pair commits atomically.
func (c *Core) ToggleLike(ctx context.Context, userID, postID int64) (bool, error) {
	const insertSQL = `
		INSERT INTO likes (user_id, post_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, post_id) DO NOTHING
	`

	inserted, err := databaseutils.ExecuteUpdate(c.sqlTemplate, ctx, insertSQL, userID, postID)
	if err != nil {
		return false, xerrors.New(err)
	}

	if inserted == 1 {
		return true, nil
	}

	const deleteSQL = `
		DELETE FROM likes
		WHERE user_id = $1 AND post_id = $2
	`

	if _, err := databaseutils.ExecuteUpdate(c.sqlTemplate, ctx, deleteSQL, userID, postID); err != nil {
		return false, xerrors.New(err)
	}

	return false, nil
}

// LikePost creates a like without toggle semantics. A duplicate like is a
// conflict, not a silent success.
func (c *Core) LikePost(ctx context.Context, userID, postID int64) error {
	const insertSQL = `
		INSERT INTO likes (user_id, post_id)
		VALUES ($1, $2)
	`

	_, err := databaseutils.ExecuteUpdate(c.sqlTemplate, ctx, insertSQL, userID, postID)
	if err != nil {
		switch {
		case strings.Contains(err.Error(), `duplicate key value violates unique constraint`):
			return xerrors.New(PostIsAlreadyLiked)
		default:
			return xerrors.New(err)
		}
	}

	return nil
}

func (c *Core) LikeCount(ctx context.Context, postID int64) (int64, error) {
	const query = `SELECT COUNT(*) FROM likes WHERE post_id = $1`

	return c.countRows(ctx, query, postID)
}

func (c *Core) IsLikedByUser(ctx context.Context, postID int64, user *auth.User) (bool, error) {
	if user == nil {
		return false, nil
	}

	const query = `
		SELECT EXISTS (
			SELECT 1 FROM likes WHERE user_id = $1 AND post_id = $2
		)
	`

	liked, err := databaseutils.ExecuteSingleQuery(c.sqlTemplate, ctx, query, func(rows *sql.Rows) (bool, error) {
		var exists bool
		if err := rows.Scan(&exists); err != nil {
			return false, xerrors.New(err)
		}
		return exists, nil
	}, user.ID, postID)

	if err != nil {
		return false, xerrors.New(err)
	}

	return liked, nil
}

// LikeCountByPostIDs returns like counts for a batch of posts in one query.
// Posts with no likes are absent from the result map.
func (c *Core) LikeCountByPostIDs(ctx context.Context, postIDs []int64) (map[int64]int64, error) {
	if len(postIDs) == 0 {
		return map[int64]int64{}, nil
	}

	placeholders, args := stringutils.INClause(postIDs)
	query := fmt.Sprintf(`
		SELECT post_id, COUNT(*)
		FROM likes
		WHERE post_id IN (%s)
		GROUP BY post_id
	`, strings.Join(placeholders, ", "))

	type likeCount struct {
		postID int64
		count  int64
	}

	results, err := databaseutils.ExecuteQuery(c.sqlTemplate, ctx, query, func(rows *sql.Rows) (likeCount, error) {
		var lc likeCount
		if err := rows.Scan(&lc.postID, &lc.count); err != nil {
			return likeCount{}, xerrors.New(err)
		}
		return lc, nil
	}, args...)

	if err != nil {
		return nil, xerrors.New(err)
	}

	countByPostID := make(map[int64]int64, len(results))
	for _, lc := range results {
		countByPostID[lc.postID] = lc.count
	}

	return countByPostID, nil
}

// LikedPostIDs reports which of the given posts the user has liked.
func (c *Core) LikedPostIDs(ctx context.Context, postIDs []int64, user *auth.User) (map[int64]bool, error) {
	if user == nil || len(postIDs) == 0 {
		return map[int64]bool{}, nil
	}

	placeholders, args := stringutils.INClause(postIDs)
	query := fmt.Sprintf(`
		SELECT post_id
		FROM likes
		WHERE user_id = $%d AND post_id IN (%s)
	`, len(postIDs)+1, strings.Join(placeholders, ", "))

	args = append(args, user.ID)

	likedIDs, err := databaseutils.ExecuteQuery(c.sqlTemplate, ctx, query, func(rows *sql.Rows) (int64, error) {
		var postID int64
		if err := rows.Scan(&postID); err != nil {
			return 0, xerrors.New(err)
		}
		return postID, nil
	}, args...)

	if err != nil {
		return nil, xerrors.New(err)
	}

	likedByPostID := make(map[int64]bool, len(likedIDs))
	for _, postID := range likedIDs {
		likedByPostID[postID] = true
	}

	return likedByPostID, nil
}
