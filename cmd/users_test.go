package main

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/siahsang/socialite/internal/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubStorage struct {
	mu        sync.Mutex
	uploadURL string
	deleted   []string
}

func (s *stubStorage) UploadImage(ctx context.Context, prefix string, fileName string, file io.Reader, size int64) (string, error) {
	return s.uploadURL, nil
}

func (s *stubStorage) DeleteImage(ctx context.Context, imageURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, imageURL)
	return nil
}

func imageUploadRequest(t *testing.T, target string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("image", "avatar.png")
	require.NoError(t, err)
	_, err = fw.Write([]byte("png-bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	r := httptest.NewRequest(http.MethodPost, target, &buf)
	r.Header.Set("Content-Type", mw.FormDataContentType())
	return r
}

func TestRegisterUserHandler_ShortMultibyteUsername(t *testing.T) {
	app, mock := newTestApplication(t)

	// 2 characters, 6 bytes; still below the 3-character minimum.
	body := strings.NewReader(`{"user": {"email": "yuki@example.com", "username": "ゆき", "password": "correct horse"}}`)
	r := httptest.NewRequest(http.MethodPost, "/api/users", body)

	w := httptest.NewRecorder()
	app.registerUserHandler(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "at least 3 characters")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateProfileHandler_AcceptsMultibyteBioAtLimit(t *testing.T) {
	app, mock := newTestApplication(t)

	mock.ExpectExec(`UPDATE profiles`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	// 250 characters, 750 bytes; exactly at the upper bound.
	bio := strings.Repeat("あ", 250)
	body := strings.NewReader(`{"user": {"bio": "` + bio + `"}}`)
	r := httptest.NewRequest(http.MethodPut, "/api/user", body)
	r = asUser(app, r, &auth.User{ID: 1, Username: "alice"})

	w := httptest.NewRecorder()
	app.updateProfileHandler(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUploadProfileImageHandler_DeletesReplacedImage(t *testing.T) {
	app, mock := newTestApplication(t)

	storage := &stubStorage{uploadURL: "http://localhost:9000/images/profiles/new.png"}
	app.storage = storage

	mock.ExpectExec(`UPDATE profiles`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	oldImage := "http://localhost:9000/images/profiles/old.png"
	r := imageUploadRequest(t, "/api/user/image")
	r = asUser(app, r, &auth.User{ID: 1, Username: "alice", Image: &oldImage})

	w := httptest.NewRecorder()
	app.uploadProfileImageHandler(w, r)

	require.Equal(t, http.StatusOK, w.Code)

	// The replaced object is removed in the background.
	app.wg.Wait()
	storage.mu.Lock()
	defer storage.mu.Unlock()
	assert.Equal(t, []string{oldImage}, storage.deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateProfileHandler_RejectsLongBio(t *testing.T) {
	app, mock := newTestApplication(t)

	bio := strings.Repeat("a", 251)
	body := strings.NewReader(`{"user": {"bio": "` + bio + `"}}`)
	r := httptest.NewRequest(http.MethodPut, "/api/user", body)
	r = asUser(app, r, &auth.User{ID: 1, Username: "alice"})

	w := httptest.NewRecorder()
	app.updateProfileHandler(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "more than 250 characters")
	assert.NoError(t, mock.ExpectationsWereMet())
}
