// Package post はプロンプト投稿のドメインロジックを提供する。
package post

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Oxygen12-cyber/aipromptapp/internal/model"
	"github.com/Oxygen12-cyber/aipromptapp/internal/repository"
	"github.com/Oxygen12-cyber/aipromptapp/internal/security"
)

// DefaultListLimit は一覧取得のデフォルト件数。
const DefaultListLimit = 20

// MaxListLimit は一覧取得の最大件数。
const MaxListLimit = 100

// CreateInput は投稿作成の入力。
type CreateInput struct {
	Title    string
	Content  string
	Tags     string
	LLMModel string
}

// PostMetrics は投稿関連メトリクスの記録インターフェース。
type PostMetrics interface {
	RecordPostCreated()
}

// Service は投稿管理のサービス層。
// 投稿の作成・取得・検索・更新・削除のビジネスロジックを提供する。
// ユーザー入力はすべて保存前にサニタイズされる。
type Service struct {
	postRepo  repository.PostRepository
	sanitizer security.PromptSanitizerService
	metrics   PostMetrics // nilの場合は記録しない
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(postRepo repository.PostRepository, sanitizer security.PromptSanitizerService, metrics PostMetrics) *Service {
	return &Service{
		postRepo:  postRepo,
		sanitizer: sanitizer,
		metrics:   metrics,
	}
}

// Create は投稿を作成する。
// タイトル・本文・タグ・モデル名はサニタイズしてから保存する。
func (s *Service) Create(ctx context.Context, userID string, input CreateInput) (*model.PostWithLikes, error) {
	now := time.Now()
	post := &model.Post{
		ID:        uuid.New().String(),
		UserID:    userID,
		Title:     s.sanitizer.Sanitize(input.Title),
		Content:   s.sanitizer.Sanitize(input.Content),
		Tags:      s.sanitizer.Sanitize(input.Tags),
		LLMModel:  s.sanitizer.Sanitize(input.LLMModel),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("投稿の作成に失敗しました: %w", err)
	}

	slog.Info("post created",
		slog.String("post_id", post.ID),
		slog.String("user_id", userID),
	)

	if s.metrics != nil {
		s.metrics.RecordPostCreated()
	}

	return &model.PostWithLikes{Post: *post, LikesCount: 0}, nil
}

// Get は指定IDの投稿をいいね数付きで取得する。
func (s *Service) Get(ctx context.Context, postID string) (*model.PostWithLikes, error) {
	post, err := s.postRepo.FindByID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("投稿の取得に失敗しました: %w", err)
	}
	if post == nil {
		return nil, model.NewPostNotFoundError(postID)
	}
	return post, nil
}

// List は投稿一覧をいいね数付き・作成日時降順で返す。
func (s *Service) List(ctx context.Context, offset, limit int) ([]model.PostWithLikes, error) {
	offset, limit = normalizePage(offset, limit)
	posts, err := s.postRepo.List(ctx, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("投稿一覧の取得に失敗しました: %w", err)
	}
	return posts, nil
}

// ListByUser は指定ユーザーの投稿一覧を作成日時降順で返す。
func (s *Service) ListByUser(ctx context.Context, userID string, offset, limit int) ([]model.PostWithLikes, error) {
	offset, limit = normalizePage(offset, limit)
	posts, err := s.postRepo.ListByUserID(ctx, userID, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("投稿一覧の取得に失敗しました: %w", err)
	}
	return posts, nil
}

// Search はタイトル・本文・タグ・モデル名に対する部分一致検索を行う。
// 大文字小文字は区別しない。空クエリの場合は通常の一覧を返す。
func (s *Service) Search(ctx context.Context, query string, offset, limit int) ([]model.PostWithLikes, error) {
	offset, limit = normalizePage(offset, limit)
	if query == "" {
		return s.List(ctx, offset, limit)
	}
	posts, err := s.postRepo.Search(ctx, query, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("投稿の検索に失敗しました: %w", err)
	}
	return posts, nil
}

// Update は投稿を部分更新する。
// 投稿の所有者のみが更新できる。非nilフィールドはサニタイズしてから保存する。
func (s *Service) Update(ctx context.Context, userID, postID string, update *model.PostUpdate) (*model.PostWithLikes, error) {
	post, err := s.postRepo.FindByID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("投稿の取得に失敗しました: %w", err)
	}
	if post == nil {
		return nil, model.NewPostNotFoundError(postID)
	}
	if post.UserID != userID {
		return nil, model.NewNotPostOwnerError()
	}

	sanitized := &model.PostUpdate{
		Title:    s.sanitizeField(update.Title),
		Content:  s.sanitizeField(update.Content),
		Tags:     s.sanitizeField(update.Tags),
		LLMModel: s.sanitizeField(update.LLMModel),
	}

	if err := s.postRepo.Update(ctx, postID, sanitized); err != nil {
		return nil, fmt.Errorf("投稿の更新に失敗しました: %w", err)
	}

	// 更新後の投稿を取得して返す
	updated, err := s.postRepo.FindByID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("投稿の再取得に失敗しました: %w", err)
	}
	if updated == nil {
		return nil, model.NewPostNotFoundError(postID)
	}
	return updated, nil
}

// Delete は投稿を削除する。
// 投稿の所有者のみが削除できる。関連するいいね・コメント・画像はCASCADE削除される。
func (s *Service) Delete(ctx context.Context, userID, postID string) error {
	post, err := s.postRepo.FindByID(ctx, postID)
	if err != nil {
		return fmt.Errorf("投稿の取得に失敗しました: %w", err)
	}
	if post == nil {
		return model.NewPostNotFoundError(postID)
	}
	if post.UserID != userID {
		return model.NewNotPostOwnerError()
	}

	if err := s.postRepo.Delete(ctx, postID); err != nil {
		return fmt.Errorf("投稿の削除に失敗しました: %w", err)
	}

	slog.Info("post deleted",
		slog.String("post_id", postID),
		slog.String("user_id", userID),
	)

	return nil
}

// sanitizeField は非nilの更新フィールドをサニタイズする。
func (s *Service) sanitizeField(field *string) *string {
	if field == nil {
		return nil
	}
	cleaned := s.sanitizer.Sanitize(*field)
	return &cleaned
}

// normalizePage はページング指定を正規化する。
func normalizePage(offset, limit int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	return offset, limit
}
