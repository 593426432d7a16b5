package postgres

import (
	"context"
	"database/sql"

	"github.com/fillog/blog-service/internal/repository"
)

type followRepo struct {
	db *sql.DB
}

func newFollowRepo(db *sql.DB) repository.Follow {
	return &followRepo{
		db: db,
	}
}

func (r *followRepo) Add(ctx context.Context, followerID string, followeeID string) (bool, error) {
	res, err := r.db.ExecContext(
		ctx,
		"INSERT INTO follows(follower_id, followee_id) VALUES($1, $2) ON CONFLICT DO NOTHING",
		followerID,
		followeeID,
	)
	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}

func (r *followRepo) Remove(ctx context.Context, followerID string, followeeID string) (bool, error) {
	res, err := r.db.ExecContext(
		ctx,
		"DELETE FROM follows WHERE follower_id = $1 AND followee_id = $2",
		followerID,
		followeeID,
	)
	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}

func (r *followRepo) Followers(ctx context.Context, followeeID string) ([]string, error) {
	return r.ids(ctx, "SELECT follower_id FROM follows WHERE followee_id = $1 ORDER BY created_at", followeeID)
}

func (r *followRepo) Following(ctx context.Context, followerID string) ([]string, error) {
	return r.ids(ctx, "SELECT followee_id FROM follows WHERE follower_id = $1 ORDER BY created_at", followerID)
}

func (r *followRepo) ids(ctx context.Context, query string, arg string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}

		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return ids, nil
}
