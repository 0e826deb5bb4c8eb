// Package comment はコメント管理のドメインロジックを提供する。
package comment

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/Oxygen12-cyber/aipromptapp/internal/model"
	"github.com/Oxygen12-cyber/aipromptapp/internal/repository"
	"github.com/Oxygen12-cyber/aipromptapp/internal/security"
)

// Service はコメント管理のサービス層。
// コメントの作成・一覧取得・削除のビジネスロジックを提供する。
type Service struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
	sanitizer   security.PromptSanitizerService
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
	sanitizer security.PromptSanitizerService,
) *Service {
	return &Service{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		sanitizer:   sanitizer,
	}
}

// Create は投稿にコメントを作成する。
// 本文はサニタイズ後に文字数を検証する。上限はMaxCommentLength文字。
func (s *Service) Create(ctx context.Context, userID, postID, body string) (*model.Comment, error) {
	post, err := s.postRepo.FindByID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("投稿の取得に失敗しました: %w", err)
	}
	if post == nil {
		return nil, model.NewPostNotFoundError(postID)
	}

	cleaned := s.sanitizer.Sanitize(body)
	if utf8.RuneCountInString(cleaned) > model.MaxCommentLength {
		return nil, model.NewCommentTooLongError()
	}

	comment := &model.Comment{
		ID:        uuid.New().String(),
		UserID:    userID,
		PostID:    postID,
		Body:      cleaned,
		CreatedAt: time.Now(),
	}

	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("コメントの作成に失敗しました: %w", err)
	}

	return comment, nil
}

// ListByPost は投稿の全コメントを作成日時昇順で返す。
func (s *Service) ListByPost(ctx context.Context, postID string) ([]model.Comment, error) {
	post, err := s.postRepo.FindByID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("投稿の取得に失敗しました: %w", err)
	}
	if post == nil {
		return nil, model.NewPostNotFoundError(postID)
	}

	comments, err := s.commentRepo.ListByPostID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("コメント一覧の取得に失敗しました: %w", err)
	}
	return comments, nil
}

// Delete はコメントを削除する。
// コメントの作成者、またはコメント先投稿の所有者のみが削除できる。
func (s *Service) Delete(ctx context.Context, userID, commentID string) error {
	comment, err := s.commentRepo.FindByID(ctx, commentID)
	if err != nil {
		return fmt.Errorf("コメントの取得に失敗しました: %w", err)
	}
	if comment == nil {
		return model.NewCommentNotFoundError(commentID)
	}

	if comment.UserID != userID {
		// コメント先投稿の所有者であれば削除を許可する
		post, err := s.postRepo.FindByID(ctx, comment.PostID)
		if err != nil {
			return fmt.Errorf("投稿の取得に失敗しました: %w", err)
		}
		if post == nil || post.UserID != userID {
			return model.NewNotPostOwnerError()
		}
	}

	if err := s.commentRepo.Delete(ctx, commentID); err != nil {
		return fmt.Errorf("コメントの削除に失敗しました: %w", err)
	}

	return nil
}
