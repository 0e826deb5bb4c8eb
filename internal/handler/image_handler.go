package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Oxygen12-cyber/aipromptapp/internal/model"
)

// ImageServiceInterface は画像ハンドラーが必要とするサービスインターフェース。
type ImageServiceInterface interface {
	Attach(ctx context.Context, userID, postID, rawURL string) (*model.Image, error)
	ListByPost(ctx context.Context, postID string) ([]model.Image, error)
}

// ImageHandler は画像添付のHTTPハンドラー。
type ImageHandler struct {
	service ImageServiceInterface
}

// NewImageHandler はImageHandlerを生成する。
func NewImageHandler(service ImageServiceInterface) *ImageHandler {
	return &ImageHandler{service: service}
}

// --- リクエスト・レスポンス型 ---

// imageAttachRequest は画像添付リクエストのボディ。
type imageAttachRequest struct {
	URL string `json:"url"`
}

// imageResponse は画像添付のレスポンス。
type imageResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	PostID    string    `json:"post_id"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_at"`
}

// imageListResponse は画像添付一覧のレスポンス。
type imageListResponse struct {
	Images []imageResponse `json:"images"`
}

// AttachImage は投稿に画像URLを添付する。
// POST /api/posts/{id}/images
func (h *ImageHandler) AttachImage(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	postID := chi.URLParam(r, "id")

	var req imageAttachRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, newInvalidRequestError("リクエストボディの解析に失敗しました。"))
		return
	}

	if req.URL == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, newInvalidRequestError("urlは必須です。"))
		return
	}

	image, err := h.service.Attach(r.Context(), userID, postID, req.URL)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(toImageResponse(image))
}

// ListImages は投稿の画像添付一覧を取得する。
// GET /api/posts/{id}/images
func (h *ImageHandler) ListImages(w http.ResponseWriter, r *http.Request) {
	postID := chi.URLParam(r, "id")

	images, err := h.service.ListByPost(r.Context(), postID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := imageListResponse{Images: make([]imageResponse, len(images))}
	for i := range images {
		resp.Images[i] = toImageResponse(&images[i])
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// toImageResponse はmodel.ImageからAPIレスポンスに変換する。
func toImageResponse(image *model.Image) imageResponse {
	return imageResponse{
		ID:        image.ID,
		UserID:    image.UserID,
		PostID:    image.PostID,
		URL:       image.URL,
		CreatedAt: image.CreatedAt,
	}
}
