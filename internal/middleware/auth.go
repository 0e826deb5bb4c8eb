// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/Oxygen12-cyber/aipromptapp/internal/auth"
	"github.com/Oxygen12-cyber/aipromptapp/internal/model"
)

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// userIDContextKey はリクエストコンテキストにユーザーIDを格納するためのキー。
var userIDContextKey = contextKey("user_id")

// usernameContextKey はリクエストコンテキストにユーザー名を格納するためのキー。
var usernameContextKey = contextKey("username")

// bearerPrefix はAuthorizationヘッダーのベアラートークンのプレフィックス。
// `Bearer <token>` のフレーミングはHTTP層であるこのミドルウェアの責務であり、
// トークンコーデックには生のトークン文字列のみを渡す。
const bearerPrefix = "Bearer "

// NewAuthMiddleware はAuthorizationヘッダーのベアラートークンを検証し、
// 認証済みユーザーをリクエストコンテキストに注入するミドルウェアを返す。
// トークン欠落・不正・期限切れ・ユーザー不在のいずれの場合も
// 一律に401 Unauthorizedを返す。
// すべての保護エンドポイントはこのミドルウェアを通過してから
// 所有者チェック等の個別の認可判定を行う。
func NewAuthMiddleware(resolver *auth.Resolver, lookup auth.UserLookup) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// 1. Authorizationヘッダーからトークンを取得
			token := extractBearerToken(r)
			if token == "" {
				writeUnauthenticated(w)
				return
			}

			// 2. トークンからプリンシパルを解決
			user, err := resolver.Resolve(r.Context(), token, lookup)
			if err != nil {
				writeUnauthenticated(w)
				return
			}

			// 3. 認証済みユーザーをコンテキストに注入
			ctx := context.WithValue(r.Context(), userIDContextKey, user.ID)
			ctx = context.WithValue(ctx, usernameContextKey, user.Username)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractBearerToken はAuthorizationヘッダーから生のトークン文字列を取り出す。
// ヘッダーが存在しない、またはBearer形式でない場合は空文字列を返す。
func extractBearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" || !strings.HasPrefix(header, bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
}

// writeUnauthenticated は統一フォーマットの401レスポンスを書き込む。
func writeUnauthenticated(w http.ResponseWriter) {
	WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthenticatedError())
}

// UserIDFromContext はリクエストコンテキストからユーザーIDを取得する。
// 認証ミドルウェアを通過したリクエストでのみ有効。
func UserIDFromContext(ctx context.Context) (string, error) {
	userID, ok := ctx.Value(userIDContextKey).(string)
	if !ok || userID == "" {
		return "", fmt.Errorf("user ID not found in context")
	}
	return userID, nil
}

// ContextWithUserID はコンテキストにユーザーIDを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDContextKey, userID)
}

// UsernameFromContext はリクエストコンテキストからユーザー名を取得する。
func UsernameFromContext(ctx context.Context) (string, error) {
	username, ok := ctx.Value(usernameContextKey).(string)
	if !ok || username == "" {
		return "", fmt.Errorf("username not found in context")
	}
	return username, nil
}
