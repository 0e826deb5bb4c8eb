// Package like はいいね管理のドメインロジックを提供する。
package like

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Oxygen12-cyber/aipromptapp/internal/model"
	"github.com/Oxygen12-cyber/aipromptapp/internal/repository"
)

// Service はいいね管理のサービス層。
// いいねの付与・取り消し・一覧取得のビジネスロジックを提供する。
type Service struct {
	likeRepo repository.LikeRepository
	postRepo repository.PostRepository
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(likeRepo repository.LikeRepository, postRepo repository.PostRepository) *Service {
	return &Service{
		likeRepo: likeRepo,
		postRepo: postRepo,
	}
}

// Like は投稿にいいねを付与する。
// 同一ユーザーによる同一投稿への重複いいねはDBのユニーク制約で拒否され、
// AlreadyLikedエラーとして返す。
func (s *Service) Like(ctx context.Context, userID, postID string) (*model.Like, error) {
	post, err := s.postRepo.FindByID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("投稿の取得に失敗しました: %w", err)
	}
	if post == nil {
		return nil, model.NewPostNotFoundError(postID)
	}

	like := &model.Like{
		ID:        uuid.New().String(),
		UserID:    userID,
		PostID:    postID,
		CreatedAt: time.Now(),
	}

	if err := s.likeRepo.Create(ctx, like); err != nil {
		if errors.Is(err, repository.ErrDuplicateLike) {
			return nil, model.NewAlreadyLikedError()
		}
		return nil, fmt.Errorf("いいねの作成に失敗しました: %w", err)
	}

	return like, nil
}

// Unlike は投稿へのいいねを取り消す。
// いいねしていない投稿への取り消しはLikeNotFoundエラーを返す。
func (s *Service) Unlike(ctx context.Context, userID, postID string) error {
	post, err := s.postRepo.FindByID(ctx, postID)
	if err != nil {
		return fmt.Errorf("投稿の取得に失敗しました: %w", err)
	}
	if post == nil {
		return model.NewPostNotFoundError(postID)
	}

	deleted, err := s.likeRepo.Delete(ctx, userID, postID)
	if err != nil {
		return fmt.Errorf("いいねの削除に失敗しました: %w", err)
	}
	if !deleted {
		return model.NewLikeNotFoundError()
	}

	return nil
}

// ListPostLikes は投稿の全いいねを返す。
func (s *Service) ListPostLikes(ctx context.Context, postID string) ([]model.Like, error) {
	post, err := s.postRepo.FindByID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("投稿の取得に失敗しました: %w", err)
	}
	if post == nil {
		return nil, model.NewPostNotFoundError(postID)
	}

	likes, err := s.likeRepo.ListByPostID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("いいね一覧の取得に失敗しました: %w", err)
	}
	return likes, nil
}

// ListLikedPosts はユーザーがいいねした投稿をいいね数付きで返す。
func (s *Service) ListLikedPosts(ctx context.Context, userID string) ([]model.PostWithLikes, error) {
	posts, err := s.likeRepo.ListPostsLikedByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("いいね済み投稿の取得に失敗しました: %w", err)
	}
	return posts, nil
}
