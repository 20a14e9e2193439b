package core

import (
	"context"
	"database/sql"
	"strings"

	"github.com/mdobak/go-xerrors"
	"github.com/siahsang/socialite/internal/auth"
	"github.com/siahsang/socialite/internal/utils/databaseutils"
	"github.com/siahsang/socialite/models"
)

var (
	UserIsAlreadyFollowed = xerrors.Message("User is already followed")
	UserIsNotFollowed     = xerrors.Message("User is not followed")
	CannotFollowYourself  = xerrors.Message("Cannot follow yourself")
)

// GetProfile assembles the public view of a user: bio, image and counts
// derived from the posts and follows tables, plus the following flag for
// the viewer (false for anonymous viewers).
func (c *Core) GetProfile(ctx context.Context, userID int64, viewer *auth.User) (*models.Profile, error) {
	user, err := c.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	return c.assembleProfile(ctx, user, viewer)
}

func (c *Core) GetProfileByUsername(ctx context.Context, username string, viewer *auth.User) (*models.Profile, error) {
	user, err := c.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	return c.assembleProfile(ctx, user, viewer)
}

func (c *Core) assembleProfile(ctx context.Context, user *auth.User, viewer *auth.User) (*models.Profile, error) {
	const countsSQL = `
		SELECT
			(SELECT COUNT(*) FROM posts WHERE author_id = $1),
			(SELECT COUNT(*) FROM follows WHERE followee_id = $1),
			(SELECT COUNT(*) FROM follows WHERE follower_id = $1)
	`

	profile := &models.Profile{
		ID:       user.ID,
		Username: user.Username,
		Bio:      user.Bio,
		Image:    user.Image,
	}

	type counts struct {
		posts, followers, following int64
	}

	result, err := databaseutils.ExecuteSingleQuery(c.sqlTemplate, ctx, countsSQL, func(rows *sql.Rows) (counts, error) {
		var cnt counts
		if err := rows.Scan(&cnt.posts, &cnt.followers, &cnt.following); err != nil {
			return counts{}, xerrors.New(err)
		}
		return cnt, nil
	}, user.ID)
	if err != nil {
		return nil, xerrors.New(err)
	}

	profile.PostCount = result.posts
	profile.FollowerCount = result.followers
	profile.FollowingCount = result.following

	if viewer != nil {
		following, err := c.IsFollowing(ctx, viewer.ID, user.ID)
		if err != nil {
			return nil, err
		}
		profile.Following = following
	}

	return profile, nil
}

func (c *Core) IsFollowing(ctx context.Context, followerID, followeeID int64) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM follows WHERE follower_id = $1 AND followee_id = $2
		)
	`

	following, err := databaseutils.ExecuteSingleQuery(c.sqlTemplate, ctx, query, func(rows *sql.Rows) (bool, error) {
		var exists bool
		if err := rows.Scan(&exists); err != nil {
			return false, xerrors.New(err)
		}
		return exists, nil
	}, followerID, followeeID)

	if err != nil {
		return false, xerrors.New(err)
	}

	return following, nil
}

// FollowUser creates a follow edge from followerUser to the named user.
// Self-follow is a validation failure, a duplicate edge a conflict.
func (c *Core) FollowUser(ctx context.Context, followerUser *auth.User, followeeUsername string) (*models.Profile, error) {
	followeeUser, err := c.GetUserByUsername(ctx, followeeUsername)
	if err != nil {
		return nil, err
	}

	if followeeUser.ID == followerUser.ID {
		return nil, xerrors.New(CannotFollowYourself)
	}

	const insertSQL = `
		INSERT INTO follows (follower_id, followee_id)
		VALUES ($1, $2)
	`

	_, err = databaseutils.ExecuteUpdate(c.sqlTemplate, ctx, insertSQL, followerUser.ID, followeeUser.ID)
	if err != nil {
		switch {
		case strings.Contains(err.Error(), `duplicate key value violates unique constraint`):
			return nil, xerrors.New(UserIsAlreadyFollowed)
		default:
			return nil, xerrors.New(err)
		}
	}

	return c.assembleProfile(ctx, followeeUser, followerUser)
}

// UnfollowUser removes the follow edge. Removing an edge that does not exist
// is reported as UserIsNotFollowed.
func (c *Core) UnfollowUser(ctx context.Context, followerUser *auth.User, followeeUsername string) (*models.Profile, error) {
	followeeUser, err := c.GetUserByUsername(ctx, followeeUsername)
	if err != nil {
		return nil, err
	}

	const deleteSQL = `
		DELETE FROM follows
		WHERE follower_id = $1 AND followee_id = $2
	`

	affected, err := databaseutils.ExecuteUpdate(c.sqlTemplate, ctx, deleteSQL, followerUser.ID, followeeUser.ID)
	if err != nil {
		return nil, xerrors.New(err)
	}

	if affected == 0 {
		return nil, xerrors.New(UserIsNotFollowed)
	}

	return c.assembleProfile(ctx, followeeUser, followerUser)
}

// GetFollowers returns the users following the given user, newest edge first.
func (c *Core) GetFollowers(ctx context.Context, userID int64) ([]*auth.User, error) {
	const query = `
		SELECT u.id, u.email, u.username, u.password, p.bio, p.image
		FROM users u
		JOIN profiles p ON p.user_id = u.id
		JOIN follows f ON f.follower_id = u.id
		WHERE f.followee_id = $1
		ORDER BY f.created_at DESC
	`

	followers, err := databaseutils.ExecuteQuery(c.sqlTemplate, ctx, query, scanUser, userID)
	if err != nil {
		return nil, xerrors.New(err)
	}

	return followers, nil
}

// GetFollowing returns the users the given user follows, newest edge first.
func (c *Core) GetFollowing(ctx context.Context, userID int64) ([]*auth.User, error) {
	const query = `
		SELECT u.id, u.email, u.username, u.password, p.bio, p.image
		FROM users u
		JOIN profiles p ON p.user_id = u.id
		JOIN follows f ON f.followee_id = u.id
		WHERE f.follower_id = $1
		ORDER BY f.created_at DESC
	`

	following, err := databaseutils.ExecuteQuery(c.sqlTemplate, ctx, query, scanUser, userID)
	if err != nil {
		return nil, xerrors.New(err)
	}

	return following, nil
}
