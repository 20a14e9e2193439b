package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/julienschmidt/httprouter"
	"github.com/siahsang/socialite/internal/auth"
	"github.com/siahsang/socialite/internal/config"
	"github.com/siahsang/socialite/internal/core"
	"github.com/siahsang/socialite/internal/utils/databaseutils"
	"github.com/stretchr/testify/require"
)

func newTestApplication(t *testing.T) (*application, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sqlTemplate := databaseutils.NewSQLTemplate(db, 3*time.Second)

	app := &application{
		config: &config.Config{
			JWTSecret:     "test-secret",
			TokenDuration: time.Hour,
			MaxUploadSize: 1024,
		},
		core:    core.NewCore(db, logger, sqlTemplate),
		auth:    auth.New(),
		session: databaseutils.NewSession(db, logger),
		logger:  logger,
	}

	return app, mock
}

func withRouteParams(r *http.Request, params httprouter.Params) *http.Request {
	ctx := context.WithValue(r.Context(), httprouter.ParamsKey, params)
	return r.WithContext(ctx)
}

func asUser(app *application, r *http.Request, user *auth.User) *http.Request {
	return app.auth.SetAuthenticatedUser(r, user)
}
