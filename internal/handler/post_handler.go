package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Oxygen12-cyber/aipromptapp/internal/middleware"
	"github.com/Oxygen12-cyber/aipromptapp/internal/model"
	"github.com/Oxygen12-cyber/aipromptapp/internal/post"
)

// PostServiceInterface は投稿ハンドラーが必要とするサービスインターフェース。
type PostServiceInterface interface {
	Create(ctx context.Context, userID string, input post.CreateInput) (*model.PostWithLikes, error)
	Get(ctx context.Context, postID string) (*model.PostWithLikes, error)
	List(ctx context.Context, offset, limit int) ([]model.PostWithLikes, error)
	ListByUser(ctx context.Context, userID string, offset, limit int) ([]model.PostWithLikes, error)
	Search(ctx context.Context, query string, offset, limit int) ([]model.PostWithLikes, error)
	Update(ctx context.Context, userID, postID string, update *model.PostUpdate) (*model.PostWithLikes, error)
	Delete(ctx context.Context, userID, postID string) error
}

// PostHandler は投稿管理のHTTPハンドラー。
type PostHandler struct {
	service PostServiceInterface
}

// NewPostHandler はPostHandlerを生成する。
func NewPostHandler(service PostServiceInterface) *PostHandler {
	return &PostHandler{service: service}
}

// --- リクエスト・レスポンス型 ---

// postCreateRequest は投稿作成リクエストのボディ。
type postCreateRequest struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Tags     string `json:"tags"`
	LLMModel string `json:"llm_model"`
}

// postUpdateRequest は投稿更新リクエストのボディ。nilフィールドは変更しない。
type postUpdateRequest struct {
	Title    *string `json:"title,omitempty"`
	Content  *string `json:"content,omitempty"`
	Tags     *string `json:"tags,omitempty"`
	LLMModel *string `json:"llm_model,omitempty"`
}

// postResponse は投稿のレスポンス。
type postResponse struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	Tags       string    `json:"tags"`
	LLMModel   string    `json:"llm_model"`
	LikesCount int       `json:"likes_count"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// postListResponse は投稿一覧のレスポンス。
type postListResponse struct {
	Posts []postResponse `json:"posts"`
}

// CreatePost は投稿を作成する。
// POST /api/posts
func (h *PostHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req postCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, newInvalidRequestError("リクエストボディの解析に失敗しました。"))
		return
	}

	if req.Title == "" || req.Content == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, newInvalidRequestError("titleとcontentは必須です。"))
		return
	}

	created, err := h.service.Create(r.Context(), userID, post.CreateInput{
		Title:    req.Title,
		Content:  req.Content,
		Tags:     req.Tags,
		LLMModel: req.LLMModel,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(toPostResponse(created))
}

// GetPost は投稿詳細を取得する。
// GET /api/posts/{id}
func (h *PostHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	postID := chi.URLParam(r, "id")

	found, err := h.service.Get(r.Context(), postID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toPostResponse(found))
}

// ListPosts は投稿一覧を取得する。
// GET /api/posts?offset=0&limit=20
func (h *PostHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	offset, limit := parsePageParams(r)

	posts, err := h.service.List(r.Context(), offset, limit)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writePostList(w, posts)
}

// SearchPosts は投稿を部分一致検索する。
// GET /api/posts/search?q=xxx
func (h *PostHandler) SearchPosts(w http.ResponseWriter, r *http.Request) {
	offset, limit := parsePageParams(r)
	query := r.URL.Query().Get("q")

	posts, err := h.service.Search(r.Context(), query, offset, limit)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writePostList(w, posts)
}

// ListUserPosts は指定ユーザーの投稿一覧を取得する。
// GET /api/users/{id}/posts
func (h *PostHandler) ListUserPosts(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	offset, limit := parsePageParams(r)

	posts, err := h.service.ListByUser(r.Context(), userID, offset, limit)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writePostList(w, posts)
}

// UpdatePost は投稿を部分更新する。
// PATCH /api/posts/{id}
func (h *PostHandler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	postID := chi.URLParam(r, "id")

	var req postUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, newInvalidRequestError("リクエストボディの解析に失敗しました。"))
		return
	}

	if req.Title == nil && req.Content == nil && req.Tags == nil && req.LLMModel == nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, newInvalidRequestError("更新するフィールドを指定してください。"))
		return
	}

	updated, err := h.service.Update(r.Context(), userID, postID, &model.PostUpdate{
		Title:    req.Title,
		Content:  req.Content,
		Tags:     req.Tags,
		LLMModel: req.LLMModel,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toPostResponse(updated))
}

// DeletePost は投稿を削除する。
// DELETE /api/posts/{id}
func (h *PostHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	postID := chi.URLParam(r, "id")

	if err := h.service.Delete(r.Context(), userID, postID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// --- ヘルパー関数 ---

// requireUserID はリクエストコンテキストから認証済みユーザーIDを取得する。
// 取得できない場合は401を書き込み、falseを返す。
func requireUserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthenticatedError())
		return "", false
	}
	return userID, true
}

// toPostResponse はmodel.PostWithLikesからAPIレスポンスに変換する。
func toPostResponse(p *model.PostWithLikes) postResponse {
	return postResponse{
		ID:         p.ID,
		UserID:     p.UserID,
		Title:      p.Title,
		Content:    p.Content,
		Tags:       p.Tags,
		LLMModel:   p.LLMModel,
		LikesCount: p.LikesCount,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
}

// writePostList は投稿一覧レスポンスを書き込む。
func writePostList(w http.ResponseWriter, posts []model.PostWithLikes) {
	resp := postListResponse{Posts: make([]postResponse, len(posts))}
	for i := range posts {
		resp.Posts[i] = toPostResponse(&posts[i])
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// parsePageParams はoffset・limitクエリパラメータを解析する。
// 不正な値はサービス層のデフォルトに正規化される。
func parsePageParams(r *http.Request) (offset, limit int) {
	offset, _ = strconv.Atoi(r.URL.Query().Get("offset"))
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	return offset, limit
}

// apiErrorResponse はAPIエラーレスポンスのJSON表現。
type apiErrorResponse struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Category string `json:"category"`
	Action   string `json:"action"`
}

// newInvalidRequestError はリクエスト不正エラーを生成する。
func newInvalidRequestError(message string) *model.APIError {
	return &model.APIError{
		Code:     model.ErrCodeInvalidRequest,
		Message:  message,
		Category: "validation",
		Action:   "リクエスト内容を確認してください。",
	}
}

// writeAPIErrorResponse は統一エラーフォーマットでエラーレスポンスを書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(apiErrorResponse{
		Code:     apiErr.Code,
		Message:  apiErr.Message,
		Category: apiErr.Category,
		Action:   apiErr.Action,
	})
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		statusCode := mapAPIErrorToHTTPStatus(apiErr)
		writeAPIErrorResponse(w, statusCode, apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	writeAPIErrorResponse(w, http.StatusInternalServerError, &model.APIError{
		Code:     "INTERNAL_ERROR",
		Message:  "内部エラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	})
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeUnauthenticated, model.ErrCodeInvalidCredentials:
		return http.StatusUnauthorized
	case model.ErrCodeUsernameTaken, model.ErrCodeEmailTaken, model.ErrCodeAlreadyLiked:
		return http.StatusConflict
	case model.ErrCodeEmptyPassword, model.ErrCodeInvalidRequest, model.ErrCodeCommentTooLong, model.ErrCodeInvalidImageURL, model.ErrCodeNotAnImage:
		return http.StatusBadRequest
	case model.ErrCodePostNotFound, model.ErrCodeLikeNotFound, model.ErrCodeCommentNotFound, model.ErrCodeUserNotFound:
		return http.StatusNotFound
	case model.ErrCodeNotPostOwner, model.ErrCodeSSRFBlocked:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
