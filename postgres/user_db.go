package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgxutil"
	"github.com/nicolasparada/go-db"

	"github.com/fixitnow/fixitnow/errs"
	"github.com/fixitnow/fixitnow/id"
	"github.com/fixitnow/fixitnow/types"
)

var userColumns = [...]string{
	"users.id",
	"users.email",
	"users.name",
	"users.role",
}

var userColumnsStr = strings.Join(userColumns[:], ", ")

// CreateUser exists for the account subsystem and for tests; the
// engine itself never writes user rows.
func (p *Postgres) CreateUser(ctx context.Context, in types.CreateUser) (types.User, error) {
	var out types.User

	query := `
		INSERT INTO users (id, email, name, role)
		VALUES (@user_id, LOWER(@email), @name, @role)
		RETURNING ` + userColumnsStr + `
	`

	rows, err := p.db.Query(ctx, query, pgx.StrictNamedArgs{
		"user_id": id.Generate(),
		"email":   in.Email,
		"name":    in.Name,
		"role":    in.Role,
	})
	if err != nil {
		return out, fmt.Errorf("sql insert user: %w", err)
	}

	out, err = pgx.CollectExactlyOneRow(rows, pgx.RowToStructByNameLax[types.User])
	if err != nil {
		return out, fmt.Errorf("sql collect inserted user: %w", err)
	}

	return out, nil
}

func (p *Postgres) User(ctx context.Context, userID string) (types.User, error) {
	query := `
		SELECT ` + userColumnsStr + `
		FROM users
		WHERE users.id = @user_id
	`
	args := pgx.StrictNamedArgs{
		"user_id": userID,
	}

	user, err := pgxutil.SelectRow(ctx, p.db, query, []any{args}, pgx.RowToStructByNameLax[types.User])
	if db.IsNotFoundError(err) {
		return user, errs.NewNotFoundError("user not found")
	}

	if err != nil {
		return user, fmt.Errorf("sql select user: %w", err)
	}

	return user, nil
}

// UserByEmail looks a user up by their normalized email, the routing
// key carried as the token subject.
func (p *Postgres) UserByEmail(ctx context.Context, email string) (types.User, error) {
	query := `
		SELECT ` + userColumnsStr + `
		FROM users
		WHERE LOWER(users.email) = LOWER(@email)
	`
	args := pgx.StrictNamedArgs{
		"email": email,
	}

	user, err := pgxutil.SelectRow(ctx, p.db, query, []any{args}, pgx.RowToStructByNameLax[types.User])
	if db.IsNotFoundError(err) {
		return user, errs.NewNotFoundError("user not found")
	}

	if err != nil {
		return user, fmt.Errorf("sql select user by email: %w", err)
	}

	return user, nil
}

func (p *Postgres) userExists(ctx context.Context, userID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM users WHERE id = @user_id
		)
	`
	args := pgx.StrictNamedArgs{
		"user_id": userID,
	}

	exists, err := pgxutil.SelectRow(ctx, p.db, query, []any{args}, pgx.RowTo[bool])
	if err != nil {
		return false, fmt.Errorf("sql check user exists: %w", err)
	}

	return exists, nil
}
