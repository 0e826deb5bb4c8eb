// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/Oxygen12-cyber/aipromptapp/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByUsername はユーザー名でユーザーを検索する。見つからない場合はnilを返す。
	FindByUsername(ctx context.Context, username string) (*model.User, error)

	// FindByEmail はメールアドレスでユーザーを検索する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// Create はユーザーを作成する。
	Create(ctx context.Context, user *model.User) error
}

// PostRepository は投稿データの永続化インターフェース。
type PostRepository interface {
	// FindByID は指定IDの投稿をいいね数付きで取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.PostWithLikes, error)

	// List は投稿一覧をいいね数付き・作成日時降順で返す。
	List(ctx context.Context, offset, limit int) ([]model.PostWithLikes, error)

	// ListByUserID は指定ユーザーの投稿一覧を作成日時降順で返す。
	ListByUserID(ctx context.Context, userID string, offset, limit int) ([]model.PostWithLikes, error)

	// Search はtitle・content・tags・llm_modelに対する部分一致検索を行う。
	// 大文字小文字は区別しない。作成日時降順で返す。
	Search(ctx context.Context, query string, offset, limit int) ([]model.PostWithLikes, error)

	// Create は投稿を作成する。
	Create(ctx context.Context, post *model.Post) error

	// Update は投稿の非nilフィールドのみを部分更新する。
	Update(ctx context.Context, id string, update *model.PostUpdate) error

	// Delete は指定IDの投稿を削除する。関連するlikes・comments・imagesは
	// CASCADE削除される。
	Delete(ctx context.Context, id string) error
}

// LikeRepository はいいねデータの永続化インターフェース。
type LikeRepository interface {
	// Create はいいねを作成する。既にいいね済みの場合はErrDuplicateLikeを返す。
	Create(ctx context.Context, like *model.Like) error

	// Delete はユーザーIDと投稿IDでいいねを削除する。
	// 削除された場合はtrue、存在しなかった場合はfalseを返す。
	Delete(ctx context.Context, userID, postID string) (bool, error)

	// ListByPostID は投稿の全いいねを返す。
	ListByPostID(ctx context.Context, postID string) ([]model.Like, error)

	// ListPostsLikedByUser はユーザーがいいねした投稿をいいね数付きで返す。
	ListPostsLikedByUser(ctx context.Context, userID string) ([]model.PostWithLikes, error)
}

// CommentRepository はコメントデータの永続化インターフェース。
type CommentRepository interface {
	// FindByID は指定IDのコメントを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Comment, error)

	// Create はコメントを作成する。
	Create(ctx context.Context, comment *model.Comment) error

	// ListByPostID は投稿の全コメントを作成日時昇順で返す。
	ListByPostID(ctx context.Context, postID string) ([]model.Comment, error)

	// Delete は指定IDのコメントを削除する。
	Delete(ctx context.Context, id string) error
}

// ImageRepository は画像添付データの永続化インターフェース。
type ImageRepository interface {
	// Create は画像添付を作成する。
	Create(ctx context.Context, image *model.Image) error

	// ListByPostID は投稿の全画像添付を返す。
	ListByPostID(ctx context.Context, postID string) ([]model.Image, error)
}
