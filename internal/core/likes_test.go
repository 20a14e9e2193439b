package core

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/siahsang/socialite/internal/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToggleLike_CreatesLikeWhenAbsent(t *testing.T) {
	c, mock, _ := newTestCore(t)

	mock.ExpectExec(`INSERT INTO likes`).
		WithArgs(int64(1), int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	liked, err := c.ToggleLike(context.Background(), 1, 2)

	require.NoError(t, err)
	assert.True(t, liked)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestToggleLike_RemovesLikeWhenPresent(t *testing.T) {
	c, mock, _ := newTestCore(t)

	// ON CONFLICT DO NOTHING inserts no row, so the toggle deletes.
	mock.ExpectExec(`INSERT INTO likes`).
		WithArgs(int64(1), int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	mock.ExpectExec(`DELETE FROM likes`).
		WithArgs(int64(1), int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	liked, err := c.ToggleLike(context.Background(), 1, 2)

	require.NoError(t, err)
	assert.False(t, liked)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestToggleLike_Involution(t *testing.T) {
	c, mock, _ := newTestCore(t)

	mock.ExpectExec(`INSERT INTO likes`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO likes`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`DELETE FROM likes`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	liked, err := c.ToggleLike(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.True(t, liked)

	liked, err = c.ToggleLike(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.False(t, liked)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLikePost_DuplicateIsConflict(t *testing.T) {
	c, mock, _ := newTestCore(t)

	mock.ExpectExec(`INSERT INTO likes`).
		WillReturnError(errDuplicate(`likes_user_id_post_id_key`))

	err := c.LikePost(context.Background(), 1, 2)

	require.Error(t, err)
	assert.ErrorIs(t, err, PostIsAlreadyLiked)
}

func TestLikeCount(t *testing.T) {
	c, mock, _ := newTestCore(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM likes`).
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(5)))

	count, err := c.LikeCount(context.Background(), 2)

	require.NoError(t, err)
	assert.Equal(t, int64(5), count)
}

func TestIsLikedByUser_AnonymousViewer(t *testing.T) {
	c, _, _ := newTestCore(t)

	liked, err := c.IsLikedByUser(context.Background(), 2, nil)

	require.NoError(t, err)
	assert.False(t, liked)
}

func TestLikeCountByPostIDs_EmptyInput(t *testing.T) {
	c, _, _ := newTestCore(t)

	counts, err := c.LikeCountByPostIDs(context.Background(), nil)

	require.NoError(t, err)
	assert.Empty(t, counts)
}

func TestLikedPostIDs(t *testing.T) {
	c, mock, _ := newTestCore(t)

	mock.ExpectQuery(`SELECT post_id`).
		WillReturnRows(sqlmock.NewRows([]string{"post_id"}).AddRow(int64(2)))

	liked, err := c.LikedPostIDs(context.Background(), []int64{2, 3}, &auth.User{ID: 1})

	require.NoError(t, err)
	assert.True(t, liked[2])
	assert.False(t, liked[3])
}
