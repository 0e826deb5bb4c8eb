package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Oxygen12-cyber/aipromptapp/internal/model"
)

// PostgresImageRepo はPostgreSQLを使用した画像添付リポジトリ。
type PostgresImageRepo struct {
	db *sql.DB
}

// NewPostgresImageRepo はPostgresImageRepoを生成する。
func NewPostgresImageRepo(db *sql.DB) *PostgresImageRepo {
	return &PostgresImageRepo{db: db}
}

// Create は画像添付を作成する。
func (r *PostgresImageRepo) Create(ctx context.Context, image *model.Image) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO images (id, user_id, post_id, url, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		image.ID, image.UserID, image.PostID, image.URL, image.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert image: %w", err)
	}
	return nil
}

// ListByPostID は投稿の全画像添付を返す。
func (r *PostgresImageRepo) ListByPostID(ctx context.Context, postID string) ([]model.Image, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, post_id, url, created_at FROM images
		 WHERE post_id = $1 ORDER BY created_at`,
		postID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list images: %w", err)
	}
	defer rows.Close()

	var images []model.Image
	for rows.Next() {
		var image model.Image
		if err := rows.Scan(&image.ID, &image.UserID, &image.PostID, &image.URL, &image.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan image row: %w", err)
		}
		images = append(images, image)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate image rows: %w", err)
	}
	return images, nil
}

// compile-time interface check
var _ ImageRepository = (*PostgresImageRepo)(nil)
