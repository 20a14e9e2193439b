package core

import (
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/siahsang/socialite/internal/utils/databaseutils"
	"github.com/stretchr/testify/require"
)

func newTestCore(t *testing.T) (*Core, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sqlTemplate := databaseutils.NewSQLTemplate(db, 3*time.Second)

	return NewCore(db, logger, sqlTemplate), mock, db
}

func userRows(id int64, email, username string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "email", "username", "password", "bio", "image"}).
		AddRow(id, email, username, []byte("hashed"), "", nil)
}

func errDuplicate(constraint string) error {
	return fmt.Errorf("pq: duplicate key value violates unique constraint %q", constraint)
}
