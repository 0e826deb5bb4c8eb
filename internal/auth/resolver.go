package auth

import (
	"context"
	"log/slog"

	"github.com/Oxygen12-cyber/aipromptapp/internal/model"
)

// UserLookup はユーザー名から外部ストアのユーザーレコードを検索する機能。
// 見つからない場合は(nil, nil)を返す。
type UserLookup interface {
	FindByUsername(ctx context.Context, username string) (*model.User, error)
}

// Resolver はベアラートークンから認証済みプリンシパルを解決する。
// すべての保護エンドポイントはビジネスロジックの前にこの解決を通過する。
type Resolver struct {
	codec *Codec
}

// NewResolver はResolverを生成する。
func NewResolver(codec *Codec) *Resolver {
	return &Resolver{codec: codec}
}

// Resolve はトークンをデコードし、subjectのユーザーをlookupで取得して返す。
// トークン不正・期限切れ・subject未存在のいずれの場合も同一の
// Unauthenticatedエラーを返し、アカウント存在の有無を漏らさない。
// lookup自体の失敗も外部には同じエラーで報告し、詳細はログにのみ残す。
func (r *Resolver) Resolve(ctx context.Context, token string, lookup UserLookup) (*model.User, error) {
	subject := r.codec.Decode(token)
	if subject == "" {
		return nil, model.NewUnauthenticatedError()
	}

	user, err := lookup.FindByUsername(ctx, subject)
	if err != nil {
		slog.Error("user lookup failed during token resolution",
			slog.String("error", err.Error()),
		)
		return nil, model.NewUnauthenticatedError()
	}
	if user == nil {
		return nil, model.NewUnauthenticatedError()
	}

	return user, nil
}
