package migrator

import (
	"context"
	"io/fs"
	"slices"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nicolasparada/go-db"
)

// Migrate applies every .sql file in fsys in lexical order inside one
// transaction. Statements are idempotent (IF NOT EXISTS) so re-running
// on boot is safe.
func Migrate(ctx context.Context, pool *pgxpool.Pool, fsys fs.FS) error {
	db := db.New(pool)

	matches, err := fs.Glob(fsys, "**/*.sql")
	if err != nil {
		return err
	}

	slices.Sort(matches)

	return db.RunTx(ctx, func(ctx context.Context) error {
		for _, match := range matches {
			b, err := fs.ReadFile(fsys, match)
			if err != nil {
				return err
			}

			_, err = db.Exec(ctx, string(b))
			if err != nil {
				return err
			}
		}

		return nil
	})
}
