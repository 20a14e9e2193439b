package core

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mdobak/go-xerrors"
	"github.com/siahsang/socialite/internal/auth"
	"github.com/siahsang/socialite/internal/utils/databaseutils"
	"github.com/siahsang/socialite/internal/utils/stringutils"
)

var (
	ErrDuplicateEmail    = xerrors.Message("Duplicate email")
	ErrDuplicateUsername = xerrors.Message("Duplicate username")
	NoRecordFound        = xerrors.Message("No record found")
)

// CreateUser inserts the user row and its profile row. Every user owns
// exactly one profile, created here so no other call site has to remember it.
// Run it inside a transaction so both rows commit together.
func (c *Core) CreateUser(ctx context.Context, user *auth.User) error {
	const insertUserSQL = `
		INSERT INTO users (username, email, password)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	args := []any{user.Username, user.Email, user.Password}
	_, err := databaseutils.ExecuteSingleQuery(c.sqlTemplate, ctx, insertUserSQL, func(rows *sql.Rows) (*auth.User, error) {
		if err := rows.Scan(&user.ID); err != nil {
			return nil, xerrors.New(err)
		}
		return user, nil
	}, args...)

	if err != nil {
		switch {
		case strings.Contains(err.Error(), `duplicate key value violates unique constraint "users_email_key"`):
			return xerrors.New(ErrDuplicateEmail)
		case strings.Contains(err.Error(), `duplicate key value violates unique constraint "users_username_key"`):
			return xerrors.New(ErrDuplicateUsername)
		default:
			return xerrors.New(err)
		}
	}

	const insertProfileSQL = `
		INSERT INTO profiles (user_id, bio, image)
		VALUES ($1, '', NULL)
	`

	if _, err := databaseutils.ExecuteUpdate(c.sqlTemplate, ctx, insertProfileSQL, user.ID); err != nil {
		return xerrors.New(err)
	}

	return nil
}

func (c *Core) GetUserByEmail(ctx context.Context, email string) (*auth.User, error) {
	const query = `
		SELECT u.id, u.email, u.username, u.password, p.bio, p.image
		FROM users u
		JOIN profiles p ON p.user_id = u.id
		WHERE u.email = $1
	`

	return c.getSingleUser(ctx, query, email)
}

func (c *Core) GetUserByUsername(ctx context.Context, username string) (*auth.User, error) {
	const query = `
		SELECT u.id, u.email, u.username, u.password, p.bio, p.image
		FROM users u
		JOIN profiles p ON p.user_id = u.id
		WHERE u.username = $1
	`

	return c.getSingleUser(ctx, query, username)
}

func (c *Core) GetUserByID(ctx context.Context, userID int64) (*auth.User, error) {
	const query = `
		SELECT u.id, u.email, u.username, u.password, p.bio, p.image
		FROM users u
		JOIN profiles p ON p.user_id = u.id
		WHERE u.id = $1
	`

	return c.getSingleUser(ctx, query, userID)
}

func (c *Core) GetUsersByIdList(ctx context.Context, userIdList []int64) ([]*auth.User, error) {
	if len(userIdList) == 0 {
		return []*auth.User{}, nil
	}

	placeholders, args := stringutils.INClause(userIdList)
	query := fmt.Sprintf(`
		SELECT u.id, u.email, u.username, u.password, p.bio, p.image
		FROM users u
		JOIN profiles p ON p.user_id = u.id
		WHERE u.id IN (%s)
	`, strings.Join(placeholders, ", "))

	queryResultList, err := databaseutils.ExecuteQuery(c.sqlTemplate, ctx, query, scanUser, args...)
	if err != nil {
		return nil, xerrors.New(err)
	}

	return queryResultList, nil
}

// UpdateProfile persists the mutable profile fields (bio, image) of a user.
func (c *Core) UpdateProfile(ctx context.Context, user *auth.User) (*auth.User, error) {
	const query = `
		UPDATE profiles
		SET bio = $1, image = $2
		WHERE user_id = $3
	`

	affected, err := databaseutils.ExecuteUpdate(c.sqlTemplate, ctx, query, user.Bio, user.Image, user.ID)
	if err != nil {
		return nil, xerrors.New(err)
	}

	if affected == 0 {
		return nil, xerrors.New(NoRecordFound)
	}

	c.log.Info("Profile updated successfully", "user_id", user.ID, "username", user.Username)
	return user, nil
}

func (c *Core) getSingleUser(ctx context.Context, query string, args ...any) (*auth.User, error) {
	user, err := databaseutils.ExecuteSingleQuery(c.sqlTemplate, ctx, query, scanUser, args...)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, xerrors.New(NoRecordFound)
		default:
			return nil, xerrors.New(err)
		}
	}

	return user, nil
}

func scanUser(rows *sql.Rows) (*auth.User, error) {
	var user = &auth.User{}

	if err := rows.Scan(
		&user.ID,
		&user.Email,
		&user.Username,
		&user.Password,
		&user.Bio,
		&user.Image,
	); err != nil {
		return nil, xerrors.New(err)
	}
	return user, nil
}
