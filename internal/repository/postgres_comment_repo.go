package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Oxygen12-cyber/aipromptapp/internal/model"
)

// PostgresCommentRepo はPostgreSQLを使用したコメントリポジトリ。
type PostgresCommentRepo struct {
	db *sql.DB
}

// NewPostgresCommentRepo はPostgresCommentRepoを生成する。
func NewPostgresCommentRepo(db *sql.DB) *PostgresCommentRepo {
	return &PostgresCommentRepo{db: db}
}

// FindByID は指定IDのコメントを取得する。見つからない場合はnilを返す。
func (r *PostgresCommentRepo) FindByID(ctx context.Context, id string) (*model.Comment, error) {
	comment := &model.Comment{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, post_id, body, created_at FROM comments WHERE id = $1`,
		id,
	).Scan(&comment.ID, &comment.UserID, &comment.PostID, &comment.Body, &comment.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find comment: %w", err)
	}

	return comment, nil
}

// Create はコメントを作成する。
func (r *PostgresCommentRepo) Create(ctx context.Context, comment *model.Comment) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO comments (id, user_id, post_id, body, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		comment.ID, comment.UserID, comment.PostID, comment.Body, comment.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert comment: %w", err)
	}
	return nil
}

// ListByPostID は投稿の全コメントを作成日時昇順で返す。
func (r *PostgresCommentRepo) ListByPostID(ctx context.Context, postID string) ([]model.Comment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, post_id, body, created_at FROM comments
		 WHERE post_id = $1 ORDER BY created_at`,
		postID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	var comments []model.Comment
	for rows.Next() {
		var comment model.Comment
		if err := rows.Scan(&comment.ID, &comment.UserID, &comment.PostID, &comment.Body, &comment.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan comment row: %w", err)
		}
		comments = append(comments, comment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate comment rows: %w", err)
	}
	return comments, nil
}

// Delete は指定IDのコメントを削除する。
func (r *PostgresCommentRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM comments WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	return nil
}

// compile-time interface check
var _ CommentRepository = (*PostgresCommentRepo)(nil)
