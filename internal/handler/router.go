package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Oxygen12-cyber/aipromptapp/internal/auth"
	"github.com/Oxygen12-cyber/aipromptapp/internal/metrics"
	"github.com/Oxygen12-cyber/aipromptapp/internal/middleware"
)

// HealthChecker はヘルスチェックでDB接続を検証するインターフェース。
// *sql.DBが満たす。
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

var _ HealthChecker = (*sql.DB)(nil)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	HealthChecker     HealthChecker
	Resolver          *auth.Resolver
	UserLookup        auth.UserLookup
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	Logger            *slog.Logger

	// メトリクス（nilの場合は/metricsを公開しない）
	MetricsCollector *metrics.Collector
	MetricsGatherer  prometheus.Gatherer

	// ドメインサービス
	AuthService    AuthServiceInterface
	PostService    PostServiceInterface
	LikeService    LikeServiceInterface
	CommentService CommentServiceInterface
	UserService    UserServiceInterface
	ImageService   ImageServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → CORS → Logging → Metrics →（保護ルートのみ）Auth → RateLimit(General)
//
// 登録・ログインと読み取り系エンドポイントは認証不要。
// ログインにはブルートフォース対策の専用レート制限を適用する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	if deps.Logger != nil {
		r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	}
	if deps.MetricsCollector != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.MetricsCollector))
	}

	authHandler := NewAuthHandler(deps.AuthService)
	postHandler := NewPostHandler(deps.PostService)
	likeHandler := NewLikeHandler(deps.LikeService)
	commentHandler := NewCommentHandler(deps.CommentService)
	userHandler := NewUserHandler(deps.UserService)
	imageHandler := NewImageHandler(deps.ImageService)

	// --- 認証不要のルート ---

	// ヘルスチェック
	r.Get("/health", newHealthHandler(deps.HealthChecker))

	// Prometheusメトリクス
	if deps.MetricsGatherer != nil {
		r.Handle("/metrics", metrics.Handler(deps.MetricsGatherer))
	}

	// 認証ルート
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		// ログインは専用レート制限付き（IPアドレス単位）
		r.With(deps.RateLimiter.LoginMiddleware()).Post("/login", authHandler.Login)
		r.Get("/me", authHandler.Me)
	})

	// 読み取り系の公開ルート
	// 公開ルートと保護ルートで同じパスパターンを共有するため、
	// サブルーターのMountではなくメソッド単位で登録する
	r.Get("/api/posts", postHandler.ListPosts)
	r.Get("/api/posts/search", postHandler.SearchPosts)
	r.Get("/api/posts/{id}", postHandler.GetPost)
	r.Get("/api/posts/{id}/likes", likeHandler.ListPostLikes)
	r.Get("/api/posts/{id}/comments", commentHandler.ListComments)
	r.Get("/api/posts/{id}/images", imageHandler.ListImages)
	r.Get("/api/users/{id}", userHandler.GetUser)
	r.Get("/api/users/{id}/posts", postHandler.ListUserPosts)
	r.Get("/api/users/by-username/{username}", userHandler.GetUserByUsername)

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: Auth → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewAuthMiddleware(deps.Resolver, deps.UserLookup))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		// 投稿管理
		r.Post("/api/posts", postHandler.CreatePost)
		r.Patch("/api/posts/{id}", postHandler.UpdatePost)
		r.Delete("/api/posts/{id}", postHandler.DeletePost)

		// いいね
		r.Post("/api/posts/{id}/like", likeHandler.LikePost)
		r.Delete("/api/posts/{id}/like", likeHandler.UnlikePost)

		// コメント
		r.Post("/api/posts/{id}/comments", commentHandler.CreateComment)
		r.Delete("/api/comments/{id}", commentHandler.DeleteComment)

		// 画像添付
		r.Post("/api/posts/{id}/images", imageHandler.AttachImage)

		// いいね済み投稿一覧
		r.Get("/api/users/me/likes", likeHandler.ListLikedPosts)
	})

	return r
}

// newHealthHandler はDB接続を検証するヘルスチェックハンドラーを返す。
func newHealthHandler(checker HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := "ok"
		statusCode := http.StatusOK

		if checker != nil {
			if err := checker.PingContext(r.Context()); err != nil {
				slog.Error("health check: database ping failed", slog.String("error", err.Error()))
				status = "unavailable"
				statusCode = http.StatusServiceUnavailable
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		json.NewEncoder(w).Encode(map[string]string{"status": status})
	}
}
