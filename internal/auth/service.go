package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Oxygen12-cyber/aipromptapp/internal/model"
	"github.com/Oxygen12-cyber/aipromptapp/internal/repository"
	"github.com/google/uuid"
)

// AuthMetrics は認証関連メトリクスの記録インターフェース。
type AuthMetrics interface {
	RecordRegistration()
	RecordLoginSuccess()
	RecordLoginFailure()
}

// Service は登録・ログインのビジネスロジックを提供する。
// 登録時はHasherで保存用シークレットを導出し、ログイン時は
// Hasherで検証した上でCodecでトークンを発行する。
type Service struct {
	userRepo repository.UserRepository
	hasher   *Hasher
	codec    *Codec
	metrics  AuthMetrics // nilの場合は記録しない
}

// NewService はServiceを生成する。
func NewService(userRepo repository.UserRepository, hasher *Hasher, codec *Codec, metrics AuthMetrics) *Service {
	return &Service{
		userRepo: userRepo,
		hasher:   hasher,
		codec:    codec,
		metrics:  metrics,
	}
}

// Register は新規ユーザーを登録する。
// ユーザー名・メールアドレスの重複はそれぞれエラーとして返す。
func (s *Service) Register(ctx context.Context, username, email, password string) (*model.User, error) {
	existing, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if existing != nil {
		return nil, model.NewUsernameTakenError(username)
	}

	existing, err = s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if existing != nil {
		return nil, model.NewEmailTakenError()
	}

	hashed, err := s.hasher.HashPassword(password)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user := &model.User{
		ID:             uuid.New().String(),
		Username:       username,
		Email:          email,
		HashedPassword: hashed,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	slog.Info("new user registered",
		slog.String("user_id", user.ID),
		slog.String("username", username),
	)

	if s.metrics != nil {
		s.metrics.RecordRegistration()
	}

	return user, nil
}

// Login は認証情報を検証し、成功時にアクセストークンを発行する。
// ユーザー不在とパスワード不一致は呼び出し側から区別できない。
// 試行されたパスワードはログに残さない。
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return "", fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil || !s.hasher.VerifyPassword(password, user.HashedPassword) {
		slog.Warn("login failed",
			slog.String("username", username),
		)
		if s.metrics != nil {
			s.metrics.RecordLoginFailure()
		}
		return "", model.NewInvalidCredentialsError()
	}

	token, err := s.codec.Encode(map[string]any{SubjectClaim: user.Username}, 0)
	if err != nil {
		return "", fmt.Errorf("failed to encode token: %w", err)
	}

	slog.Info("user logged in",
		slog.String("user_id", user.ID),
	)

	if s.metrics != nil {
		s.metrics.RecordLoginSuccess()
	}

	return token, nil
}

// CurrentUser はトークンから現在のユーザーを解決する。
func (s *Service) CurrentUser(ctx context.Context, token string) (*model.User, error) {
	return NewResolver(s.codec).Resolve(ctx, token, s.userRepo)
}
