package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/julienschmidt/httprouter"
	"github.com/siahsang/socialite/internal/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mockPostRow(id, authorID int64) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{"id", "content", "image", "author_id", "created_at", "updated_at"}).
		AddRow(id, "original content", nil, authorID, now, now)
}

func TestUpdatePostHandler_NonAuthorIsForbidden(t *testing.T) {
	app, mock := newTestApplication(t)

	mock.ExpectQuery(`SELECT (.+) FROM posts`).
		WithArgs(int64(1)).
		WillReturnRows(mockPostRow(1, 1))

	body := strings.NewReader(`{"post": {"content": "hijacked"}}`)
	r := httptest.NewRequest(http.MethodPut, "/api/posts/1", body)
	r = withRouteParams(r, httprouter.Params{{Key: "id", Value: "1"}})
	r = asUser(app, r, &auth.User{ID: 2, Username: "carol"})

	w := httptest.NewRecorder()
	app.updatePostHandler(w, r)

	assert.Equal(t, http.StatusForbidden, w.Code)
	// No UPDATE statement may reach the database.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeletePostHandler_NonAuthorIsForbidden(t *testing.T) {
	app, mock := newTestApplication(t)

	mock.ExpectQuery(`SELECT (.+) FROM posts`).
		WithArgs(int64(1)).
		WillReturnRows(mockPostRow(1, 1))

	r := httptest.NewRequest(http.MethodDelete, "/api/posts/1", nil)
	r = withRouteParams(r, httprouter.Params{{Key: "id", Value: "1"}})
	r = asUser(app, r, &auth.User{ID: 2, Username: "carol"})

	w := httptest.NewRecorder()
	app.deletePostHandler(w, r)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetPostHandler_UnknownIDIsNotFound(t *testing.T) {
	app, mock := newTestApplication(t)

	mock.ExpectQuery(`SELECT (.+) FROM posts`).
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "content", "image", "author_id", "created_at", "updated_at"}))

	r := httptest.NewRequest(http.MethodGet, "/api/posts/99", nil)
	r = withRouteParams(r, httprouter.Params{{Key: "id", Value: "99"}})

	w := httptest.NewRecorder()
	app.getPostHandler(w, r)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreatePostHandler_RequiresContentOrImage(t *testing.T) {
	app, mock := newTestApplication(t)

	body := strings.NewReader(`{"post": {}}`)
	r := httptest.NewRequest(http.MethodPost, "/api/posts", body)
	r = asUser(app, r, &auth.User{ID: 1, Username: "alice"})

	w := httptest.NewRecorder()
	app.createPostHandler(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestToggleLikeHandler_LikesAndReportsCount(t *testing.T) {
	app, mock := newTestApplication(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM posts`).
		WithArgs(int64(1)).
		WillReturnRows(mockPostRow(1, 1))
	mock.ExpectExec(`INSERT INTO likes`).
		WithArgs(int64(2), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM likes`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(1)))
	mock.ExpectCommit()

	r := httptest.NewRequest(http.MethodPost, "/api/posts/1/like", nil)
	r = withRouteParams(r, httprouter.Params{{Key: "id", Value: "1"}})
	r = asUser(app, r, &auth.User{ID: 2, Username: "bob"})

	w := httptest.NewRecorder()
	app.toggleLikeHandler(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"liked": true`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestToggleLikeHandler_UnlikesOnSecondCall(t *testing.T) {
	app, mock := newTestApplication(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM posts`).
		WithArgs(int64(1)).
		WillReturnRows(mockPostRow(1, 1))
	mock.ExpectExec(`INSERT INTO likes`).
		WithArgs(int64(2), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`DELETE FROM likes`).
		WithArgs(int64(2), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM likes`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(0)))
	mock.ExpectCommit()

	r := httptest.NewRequest(http.MethodPost, "/api/posts/1/like", nil)
	r = withRouteParams(r, httprouter.Params{{Key: "id", Value: "1"}})
	r = asUser(app, r, &auth.User{ID: 2, Username: "bob"})

	w := httptest.NewRecorder()
	app.toggleLikeHandler(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"liked": false`)
	assert.NoError(t, mock.ExpectationsWereMet())
}
