// Package image は投稿への画像URL添付のドメインロジックを提供する。
package image

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Oxygen12-cyber/aipromptapp/internal/model"
	"github.com/Oxygen12-cyber/aipromptapp/internal/repository"
	"github.com/Oxygen12-cyber/aipromptapp/internal/security"
)

// fetchUserAgent は画像検証リクエストのUser-Agentヘッダー。
const fetchUserAgent = "AIPromptApp/1.0 Image Validator"

// Service は画像添付のサービス層。
// 添付前にURLのSSRF検証と画像コンテンツの確認を行う。
type Service struct {
	imageRepo repository.ImageRepository
	postRepo  repository.PostRepository
	ssrfGuard security.SSRFGuardService
	timeout   time.Duration
	maxSize   int64
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	imageRepo repository.ImageRepository,
	postRepo repository.PostRepository,
	ssrfGuard security.SSRFGuardService,
	timeout time.Duration,
	maxSize int64,
) *Service {
	return &Service{
		imageRepo: imageRepo,
		postRepo:  postRepo,
		ssrfGuard: ssrfGuard,
		timeout:   timeout,
		maxSize:   maxSize,
	}
}

// Attach は投稿に外部画像URLを添付する。
// 投稿の所有者のみが添付できる。URLはSSRFガードによる静的検証を通過し、
// SSRF防止機能付きクライアントで実際に取得して画像であることを確認してから保存する。
func (s *Service) Attach(ctx context.Context, userID, postID, rawURL string) (*model.Image, error) {
	post, err := s.postRepo.FindByID(ctx, postID)
	if err != nil {
		return nil, model.NewPostNotFoundError(postID)
	}
	if post == nil {
		return nil, model.NewPostNotFoundError(postID)
	}
	if post.UserID != userID {
		return nil, model.NewNotPostOwnerError()
	}

	// SSRF検証（静的チェック）
	if err := s.ssrfGuard.ValidateURL(rawURL); err != nil {
		slog.Warn("image attach blocked by SSRF guard",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
		return nil, model.NewSSRFBlockedError()
	}

	// 画像コンテンツの確認
	// DNS再バインディング攻撃はSSRF防止クライアントのDialer検証で防止される
	if err := s.verifyImageContent(ctx, rawURL); err != nil {
		return nil, err
	}

	image := &model.Image{
		ID:        uuid.New().String(),
		UserID:    userID,
		PostID:    postID,
		URL:       rawURL,
		CreatedAt: time.Now(),
	}

	if err := s.imageRepo.Create(ctx, image); err != nil {
		return nil, model.NewInvalidImageURLError("保存に失敗しました")
	}

	slog.Info("image attached",
		slog.String("post_id", postID),
		slog.String("user_id", userID),
	)

	return image, nil
}

// ListByPost は投稿の全画像添付を返す。
func (s *Service) ListByPost(ctx context.Context, postID string) ([]model.Image, error) {
	post, err := s.postRepo.FindByID(ctx, postID)
	if err != nil {
		return nil, model.NewPostNotFoundError(postID)
	}
	if post == nil {
		return nil, model.NewPostNotFoundError(postID)
	}

	images, err := s.imageRepo.ListByPostID(ctx, postID)
	if err != nil {
		return nil, model.NewInvalidImageURLError("画像一覧の取得に失敗しました")
	}
	return images, nil
}

// verifyImageContent はURLを実際に取得し、画像コンテンツであることを確認する。
func (s *Service) verifyImageContent(ctx context.Context, rawURL string) *model.APIError {
	client := s.ssrfGuard.NewSafeClient(s.timeout)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return model.NewInvalidImageURLError(err.Error())
	}
	req.Header.Set("User-Agent", fetchUserAgent)

	resp, err := client.Do(req)
	if err != nil {
		slog.Warn("image fetch failed", slog.String("error", err.Error()))
		return model.NewInvalidImageURLError("URLへのアクセスに失敗しました")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return model.NewInvalidImageURLError("URLが正常なレスポンスを返しませんでした")
	}

	mimeType := extractMimeType(resp.Header.Get("Content-Type"))
	if !isImageMime(mimeType) {
		// Content-Typeが欠落・不正なサーバーに備えて先頭バイトでも判定する
		head, err := io.ReadAll(io.LimitReader(resp.Body, 512))
		if err != nil || !strings.HasPrefix(http.DetectContentType(head), "image/") {
			return model.NewNotAnImageError(mimeType)
		}
		return nil
	}

	// サイズ超過チェック
	if resp.ContentLength > 0 && resp.ContentLength > s.maxSize {
		return model.NewInvalidImageURLError("画像サイズが上限を超えています")
	}

	return nil
}

// extractMimeType はContent-Typeヘッダーからメディアタイプを抽出する。
func extractMimeType(contentType string) string {
	if contentType == "" {
		return ""
	}
	// セミコロンの前の部分（charset等を除去）
	parts := strings.SplitN(contentType, ";", 2)
	return strings.TrimSpace(strings.ToLower(parts[0]))
}

// isImageMime はMIMEタイプが画像かどうかを判定する。
func isImageMime(mimeType string) bool {
	return strings.HasPrefix(mimeType, "image/")
}
