package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Oxygen12-cyber/aipromptapp/internal/model"
	"github.com/lib/pq"
)

// ErrDuplicateLike は同一ユーザーによる同一投稿への重複いいねを表す。
var ErrDuplicateLike = errors.New("like already exists for this user and post")

// uniqueViolationCode はPostgreSQLのユニーク制約違反のエラーコード。
const uniqueViolationCode = "23505"

// PostgresLikeRepo はPostgreSQLを使用したいいねリポジトリ。
type PostgresLikeRepo struct {
	db *sql.DB
}

// NewPostgresLikeRepo はPostgresLikeRepoを生成する。
func NewPostgresLikeRepo(db *sql.DB) *PostgresLikeRepo {
	return &PostgresLikeRepo{db: db}
}

// Create はいいねを作成する。
// unique_user_post_like制約違反の場合はErrDuplicateLikeを返す。
func (r *PostgresLikeRepo) Create(ctx context.Context, like *model.Like) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO likes (id, user_id, post_id, created_at)
		 VALUES ($1, $2, $3, $4)`,
		like.ID, like.UserID, like.PostID, like.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolationCode {
			return ErrDuplicateLike
		}
		return fmt.Errorf("failed to insert like: %w", err)
	}
	return nil
}

// Delete はユーザーIDと投稿IDでいいねを削除する。
// 削除された場合はtrue、存在しなかった場合はfalseを返す。
func (r *PostgresLikeRepo) Delete(ctx context.Context, userID, postID string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM likes WHERE user_id = $1 AND post_id = $2`,
		userID, postID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to delete like: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

// ListByPostID は投稿の全いいねを返す。
func (r *PostgresLikeRepo) ListByPostID(ctx context.Context, postID string) ([]model.Like, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, post_id, created_at FROM likes WHERE post_id = $1 ORDER BY created_at`,
		postID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list likes: %w", err)
	}
	defer rows.Close()

	var likes []model.Like
	for rows.Next() {
		var like model.Like
		if err := rows.Scan(&like.ID, &like.UserID, &like.PostID, &like.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan like row: %w", err)
		}
		likes = append(likes, like)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate like rows: %w", err)
	}
	return likes, nil
}

// ListPostsLikedByUser はユーザーがいいねした投稿をいいね数付きで返す。
// 削除済み投稿はJOINにより自然に除外される。
func (r *PostgresLikeRepo) ListPostsLikedByUser(ctx context.Context, userID string) ([]model.PostWithLikes, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT p.id, p.user_id, p.title, p.content, p.tags, p.llm_model,
		        p.created_at, p.updated_at,
		        COUNT(l2.id) AS likes_count
		 FROM likes l
		 JOIN posts p ON p.id = l.post_id
		 LEFT JOIN likes l2 ON l2.post_id = p.id
		 WHERE l.user_id = $1
		 GROUP BY p.id, l.created_at
		 ORDER BY l.created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list liked posts: %w", err)
	}
	defer rows.Close()

	return scanPostRows(rows)
}

// compile-time interface check
var _ LikeRepository = (*PostgresLikeRepo)(nil)
