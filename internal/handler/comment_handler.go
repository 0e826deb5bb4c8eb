package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Oxygen12-cyber/aipromptapp/internal/model"
)

// CommentServiceInterface はコメントハンドラーが必要とするサービスインターフェース。
type CommentServiceInterface interface {
	Create(ctx context.Context, userID, postID, body string) (*model.Comment, error)
	ListByPost(ctx context.Context, postID string) ([]model.Comment, error)
	Delete(ctx context.Context, userID, commentID string) error
}

// CommentHandler はコメント管理のHTTPハンドラー。
type CommentHandler struct {
	service CommentServiceInterface
}

// NewCommentHandler はCommentHandlerを生成する。
func NewCommentHandler(service CommentServiceInterface) *CommentHandler {
	return &CommentHandler{service: service}
}

// --- リクエスト・レスポンス型 ---

// commentCreateRequest はコメント作成リクエストのボディ。
type commentCreateRequest struct {
	Body string `json:"body"`
}

// commentResponse はコメントのレスポンス。
type commentResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	PostID    string    `json:"post_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// commentListResponse はコメント一覧のレスポンス。
type commentListResponse struct {
	Comments []commentResponse `json:"comments"`
}

// CreateComment は投稿にコメントを作成する。
// POST /api/posts/{id}/comments
func (h *CommentHandler) CreateComment(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	postID := chi.URLParam(r, "id")

	var req commentCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, newInvalidRequestError("リクエストボディの解析に失敗しました。"))
		return
	}

	if req.Body == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, newInvalidRequestError("bodyは必須です。"))
		return
	}

	comment, err := h.service.Create(r.Context(), userID, postID, req.Body)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(toCommentResponse(comment))
}

// ListComments は投稿のコメント一覧を取得する。
// GET /api/posts/{id}/comments
func (h *CommentHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	postID := chi.URLParam(r, "id")

	comments, err := h.service.ListByPost(r.Context(), postID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := commentListResponse{Comments: make([]commentResponse, len(comments))}
	for i := range comments {
		resp.Comments[i] = toCommentResponse(&comments[i])
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// DeleteComment はコメントを削除する。
// DELETE /api/comments/{id}
func (h *CommentHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	commentID := chi.URLParam(r, "id")

	if err := h.service.Delete(r.Context(), userID, commentID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// toCommentResponse はmodel.CommentからAPIレスポンスに変換する。
func toCommentResponse(comment *model.Comment) commentResponse {
	return commentResponse{
		ID:        comment.ID,
		UserID:    comment.UserID,
		PostID:    comment.PostID,
		Body:      comment.Body,
		CreatedAt: comment.CreatedAt,
	}
}
