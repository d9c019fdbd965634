// Package postgres is the persistence layer for the interaction engine.
package postgres

import (
	"embed"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nicolasparada/go-db"
)

//go:embed migrations/*.sql
var MigrationsFS embed.FS

type Postgres struct {
	db *db.DB
}

func New(pool *pgxpool.Pool) *Postgres {
	return &Postgres{
		db: db.New(pool),
	}
}
