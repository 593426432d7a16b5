package postgres

import (
	"context"
	"database/sql"
	"net"
	"net/url"

	"github.com/fillog/blog-service/internal/config"
	"github.com/fillog/blog-service/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
)

const schema = `
CREATE TABLE IF NOT EXISTS follows (
	follower_id TEXT NOT NULL,
	followee_id TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (follower_id, followee_id)
);
CREATE INDEX IF NOT EXISTS follows_followee_idx ON follows (followee_id);
`

func DB(ctx context.Context, cfg config.DBConfig) (*sql.DB, error) {
	connConfig, err := pgx.ParseConfig(dsn(cfg))
	if err != nil {
		return nil, err
	}

	db := stdlib.OpenDB(*connConfig)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// dsn escapes credentials and the database name so reserved characters in
// them survive parsing.
func dsn(cfg config.DBConfig) string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(cfg.Username, cfg.Password),
		Host:   net.JoinHostPort(cfg.Host, cfg.Port),
		Path:   "/" + cfg.DBName,
	}
	if cfg.SSLMode != "" {
		u.RawQuery = url.Values{"sslmode": {cfg.SSLMode}}.Encode()
	}

	return u.String()
}

func Migrate(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, schema)
	return err
}

type PostgresRepository struct {
	Follow repository.Follow
}

func New(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{
		Follow: newFollowRepo(db),
	}
}
