// Package user はユーザー管理のドメインロジックを提供する。
package user

import (
	"context"
	"fmt"
	"time"

	"github.com/Oxygen12-cyber/aipromptapp/internal/model"
	"github.com/Oxygen12-cyber/aipromptapp/internal/repository"
)

// Profile はユーザーの公開プロフィール。
// ハッシュ済みパスワードなどの秘匿情報は含まない。
type Profile struct {
	ID        string
	Username  string
	Email     string
	CreatedAt time.Time
}

// Service はユーザー管理のサービス層。
// プロフィール取得のビジネスロジックを提供する。
type Service struct {
	userRepo repository.UserRepository
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(userRepo repository.UserRepository) *Service {
	return &Service{userRepo: userRepo}
}

// GetByID は指定IDのユーザーの公開プロフィールを返す。
func (s *Service) GetByID(ctx context.Context, id string) (*Profile, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError()
	}
	return toProfile(user), nil
}

// GetByUsername は指定ユーザー名のユーザーの公開プロフィールを返す。
func (s *Service) GetByUsername(ctx context.Context, username string) (*Profile, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError()
	}
	return toProfile(user), nil
}

// toProfile はUserから公開プロフィールを生成する。
func toProfile(user *model.User) *Profile {
	return &Profile{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	}
}
