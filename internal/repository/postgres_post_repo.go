package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Oxygen12-cyber/aipromptapp/internal/model"
)

// PostgresPostRepo はPostgreSQLを使用した投稿リポジトリ。
type PostgresPostRepo struct {
	db *sql.DB
}

// NewPostgresPostRepo はPostgresPostRepoを生成する。
func NewPostgresPostRepo(db *sql.DB) *PostgresPostRepo {
	return &PostgresPostRepo{db: db}
}

// postWithLikesQuery は投稿といいね数を結合する共通SELECT句。
const postWithLikesQuery = `
	SELECT p.id, p.user_id, p.title, p.content, p.tags, p.llm_model,
	       p.created_at, p.updated_at,
	       COUNT(l.id) AS likes_count
	FROM posts p
	LEFT JOIN likes l ON l.post_id = p.id`

const postGroupBy = ` GROUP BY p.id`

// FindByID は指定IDの投稿をいいね数付きで取得する。見つからない場合はnilを返す。
func (r *PostgresPostRepo) FindByID(ctx context.Context, id string) (*model.PostWithLikes, error) {
	post := &model.PostWithLikes{}
	err := r.db.QueryRowContext(ctx,
		postWithLikesQuery+` WHERE p.id = $1`+postGroupBy,
		id,
	).Scan(
		&post.ID, &post.UserID, &post.Title, &post.Content, &post.Tags, &post.LLMModel,
		&post.CreatedAt, &post.UpdatedAt, &post.LikesCount,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find post by ID: %w", err)
	}

	return post, nil
}

// List は投稿一覧をいいね数付き・作成日時降順で返す。
func (r *PostgresPostRepo) List(ctx context.Context, offset, limit int) ([]model.PostWithLikes, error) {
	rows, err := r.db.QueryContext(ctx,
		postWithLikesQuery+postGroupBy+` ORDER BY p.created_at DESC OFFSET $1 LIMIT $2`,
		offset, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	defer rows.Close()

	return scanPostRows(rows)
}

// ListByUserID は指定ユーザーの投稿一覧を作成日時降順で返す。
func (r *PostgresPostRepo) ListByUserID(ctx context.Context, userID string, offset, limit int) ([]model.PostWithLikes, error) {
	rows, err := r.db.QueryContext(ctx,
		postWithLikesQuery+` WHERE p.user_id = $1`+postGroupBy+` ORDER BY p.created_at DESC OFFSET $2 LIMIT $3`,
		userID, offset, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts by user: %w", err)
	}
	defer rows.Close()

	return scanPostRows(rows)
}

// Search はtitle・content・tags・llm_modelに対するILIKE部分一致検索を行う。
// 作成日時降順で返す。
func (r *PostgresPostRepo) Search(ctx context.Context, query string, offset, limit int) ([]model.PostWithLikes, error) {
	pattern := "%" + query + "%"
	rows, err := r.db.QueryContext(ctx,
		postWithLikesQuery+`
		 WHERE p.title ILIKE $1 OR p.content ILIKE $1 OR p.tags ILIKE $1 OR p.llm_model ILIKE $1`+
			postGroupBy+` ORDER BY p.created_at DESC OFFSET $2 LIMIT $3`,
		pattern, offset, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search posts: %w", err)
	}
	defer rows.Close()

	return scanPostRows(rows)
}

// Create は投稿を作成する。
func (r *PostgresPostRepo) Create(ctx context.Context, post *model.Post) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO posts (id, user_id, title, content, tags, llm_model, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		post.ID, post.UserID, post.Title, post.Content, post.Tags, post.LLMModel,
		post.CreatedAt, post.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert post: %w", err)
	}
	return nil
}

// Update は投稿の非nilフィールドのみを部分更新する。
// COALESCEにより未指定フィールドは既存値を維持する。
func (r *PostgresPostRepo) Update(ctx context.Context, id string, update *model.PostUpdate) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE posts
		 SET title = COALESCE($2, title),
		     content = COALESCE($3, content),
		     tags = COALESCE($4, tags),
		     llm_model = COALESCE($5, llm_model),
		     updated_at = now()
		 WHERE id = $1`,
		id, update.Title, update.Content, update.Tags, update.LLMModel,
	)
	if err != nil {
		return fmt.Errorf("failed to update post: %w", err)
	}
	return nil
}

// Delete は指定IDの投稿を削除する。関連するlikes・comments・imagesは
// CASCADE削除される。
func (r *PostgresPostRepo) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM posts WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("post not found: %s", id)
	}
	return nil
}

// scanPostRows は複数行の投稿をスキャンする。
func scanPostRows(rows *sql.Rows) ([]model.PostWithLikes, error) {
	var posts []model.PostWithLikes
	for rows.Next() {
		var post model.PostWithLikes
		if err := rows.Scan(
			&post.ID, &post.UserID, &post.Title, &post.Content, &post.Tags, &post.LLMModel,
			&post.CreatedAt, &post.UpdatedAt, &post.LikesCount,
		); err != nil {
			return nil, fmt.Errorf("failed to scan post row: %w", err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate post rows: %w", err)
	}
	return posts, nil
}

// compile-time interface check
var _ PostRepository = (*PostgresPostRepo)(nil)
