package core

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/siahsang/socialite/internal/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFollowUser_SelfFollowIsRejected(t *testing.T) {
	c, mock, _ := newTestCore(t)

	mock.ExpectQuery(`SELECT (.+) FROM users`).
		WithArgs("alice").
		WillReturnRows(userRows(1, "alice@example.com", "alice"))

	follower := &auth.User{ID: 1, Username: "alice"}
	_, err := c.FollowUser(context.Background(), follower, "alice")

	require.Error(t, err)
	assert.ErrorIs(t, err, CannotFollowYourself)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFollowUser_DuplicateEdgeIsConflict(t *testing.T) {
	c, mock, _ := newTestCore(t)

	mock.ExpectQuery(`SELECT (.+) FROM users`).
		WithArgs("bob").
		WillReturnRows(userRows(2, "bob@example.com", "bob"))

	mock.ExpectExec(`INSERT INTO follows`).
		WithArgs(int64(1), int64(2)).
		WillReturnError(errDuplicate(`follows_follower_id_followee_id_key`))

	follower := &auth.User{ID: 1, Username: "alice"}
	_, err := c.FollowUser(context.Background(), follower, "bob")

	require.Error(t, err)
	assert.ErrorIs(t, err, UserIsAlreadyFollowed)
}

func TestFollowUser_UnknownTarget(t *testing.T) {
	c, mock, _ := newTestCore(t)

	mock.ExpectQuery(`SELECT (.+) FROM users`).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "username", "password", "bio", "image"}))

	follower := &auth.User{ID: 1, Username: "alice"}
	_, err := c.FollowUser(context.Background(), follower, "ghost")

	require.Error(t, err)
	assert.ErrorIs(t, err, NoRecordFound)
}

func TestUnfollowUser_NotFollowed(t *testing.T) {
	c, mock, _ := newTestCore(t)

	mock.ExpectQuery(`SELECT (.+) FROM users`).
		WithArgs("bob").
		WillReturnRows(userRows(2, "bob@example.com", "bob"))

	mock.ExpectExec(`DELETE FROM follows`).
		WithArgs(int64(1), int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	follower := &auth.User{ID: 1, Username: "alice"}
	_, err := c.UnfollowUser(context.Background(), follower, "bob")

	require.Error(t, err)
	assert.ErrorIs(t, err, UserIsNotFollowed)
}

func TestIsFollowing(t *testing.T) {
	c, mock, _ := newTestCore(t)

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(int64(1), int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	following, err := c.IsFollowing(context.Background(), 1, 2)

	require.NoError(t, err)
	assert.True(t, following)
}

func TestGetProfile_DerivesCountsAndFollowingFlag(t *testing.T) {
	c, mock, _ := newTestCore(t)

	mock.ExpectQuery(`SELECT (.+) FROM users`).
		WithArgs(int64(2)).
		WillReturnRows(userRows(2, "bob@example.com", "bob"))

	mock.ExpectQuery(`SELECT`).
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"posts", "followers", "following"}).AddRow(int64(4), int64(2), int64(1)))

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(int64(1), int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	viewer := &auth.User{ID: 1, Username: "alice"}
	profile, err := c.GetProfile(context.Background(), 2, viewer)

	require.NoError(t, err)
	assert.Equal(t, "bob", profile.Username)
	assert.Equal(t, int64(4), profile.PostCount)
	assert.Equal(t, int64(2), profile.FollowerCount)
	assert.Equal(t, int64(1), profile.FollowingCount)
	assert.True(t, profile.Following)
	assert.NoError(t, mock.ExpectationsWereMet())
}
