package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Oxygen12-cyber/aipromptapp/internal/model"
)

// LikeServiceInterface はいいねハンドラーが必要とするサービスインターフェース。
type LikeServiceInterface interface {
	Like(ctx context.Context, userID, postID string) (*model.Like, error)
	Unlike(ctx context.Context, userID, postID string) error
	ListPostLikes(ctx context.Context, postID string) ([]model.Like, error)
	ListLikedPosts(ctx context.Context, userID string) ([]model.PostWithLikes, error)
}

// LikeHandler はいいね管理のHTTPハンドラー。
type LikeHandler struct {
	service LikeServiceInterface
}

// NewLikeHandler はLikeHandlerを生成する。
func NewLikeHandler(service LikeServiceInterface) *LikeHandler {
	return &LikeHandler{service: service}
}

// --- レスポンス型 ---

// likeResponse はいいねのレスポンス。
type likeResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	PostID    string    `json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
}

// likeListResponse はいいね一覧のレスポンス。
type likeListResponse struct {
	Likes []likeResponse `json:"likes"`
	Count int            `json:"count"`
}

// LikePost は投稿にいいねを付与する。
// POST /api/posts/{id}/like
func (h *LikeHandler) LikePost(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	postID := chi.URLParam(r, "id")

	like, err := h.service.Like(r.Context(), userID, postID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(toLikeResponse(like))
}

// UnlikePost は投稿へのいいねを取り消す。
// DELETE /api/posts/{id}/like
func (h *LikeHandler) UnlikePost(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	postID := chi.URLParam(r, "id")

	if err := h.service.Unlike(r.Context(), userID, postID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListPostLikes は投稿のいいね一覧を取得する。
// GET /api/posts/{id}/likes
func (h *LikeHandler) ListPostLikes(w http.ResponseWriter, r *http.Request) {
	postID := chi.URLParam(r, "id")

	likes, err := h.service.ListPostLikes(r.Context(), postID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := likeListResponse{
		Likes: make([]likeResponse, len(likes)),
		Count: len(likes),
	}
	for i := range likes {
		resp.Likes[i] = toLikeResponse(&likes[i])
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// ListLikedPosts は現在のユーザーがいいねした投稿一覧を取得する。
// GET /api/users/me/likes
func (h *LikeHandler) ListLikedPosts(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	posts, err := h.service.ListLikedPosts(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writePostList(w, posts)
}

// toLikeResponse はmodel.LikeからAPIレスポンスに変換する。
func toLikeResponse(like *model.Like) likeResponse {
	return likeResponse{
		ID:        like.ID,
		UserID:    like.UserID,
		PostID:    like.PostID,
		CreatedAt: like.CreatedAt,
	}
}
