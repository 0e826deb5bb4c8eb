package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/Oxygen12-cyber/aipromptapp/internal/middleware"
	"github.com/Oxygen12-cyber/aipromptapp/internal/model"
	"github.com/Oxygen12-cyber/aipromptapp/internal/post"
)

// mockPostService はPostServiceInterfaceのテスト用モック。
type mockPostService struct {
	createFunc     func(ctx context.Context, userID string, input post.CreateInput) (*model.PostWithLikes, error)
	getFunc        func(ctx context.Context, postID string) (*model.PostWithLikes, error)
	listFunc       func(ctx context.Context, offset, limit int) ([]model.PostWithLikes, error)
	listByUserFunc func(ctx context.Context, userID string, offset, limit int) ([]model.PostWithLikes, error)
	searchFunc     func(ctx context.Context, query string, offset, limit int) ([]model.PostWithLikes, error)
	updateFunc     func(ctx context.Context, userID, postID string, update *model.PostUpdate) (*model.PostWithLikes, error)
	deleteFunc     func(ctx context.Context, userID, postID string) error
}

func (m *mockPostService) Create(ctx context.Context, userID string, input post.CreateInput) (*model.PostWithLikes, error) {
	return m.createFunc(ctx, userID, input)
}

func (m *mockPostService) Get(ctx context.Context, postID string) (*model.PostWithLikes, error) {
	return m.getFunc(ctx, postID)
}

func (m *mockPostService) List(ctx context.Context, offset, limit int) ([]model.PostWithLikes, error) {
	return m.listFunc(ctx, offset, limit)
}

func (m *mockPostService) ListByUser(ctx context.Context, userID string, offset, limit int) ([]model.PostWithLikes, error) {
	return m.listByUserFunc(ctx, userID, offset, limit)
}

func (m *mockPostService) Search(ctx context.Context, query string, offset, limit int) ([]model.PostWithLikes, error) {
	return m.searchFunc(ctx, query, offset, limit)
}

func (m *mockPostService) Update(ctx context.Context, userID, postID string, update *model.PostUpdate) (*model.PostWithLikes, error) {
	return m.updateFunc(ctx, userID, postID, update)
}

func (m *mockPostService) Delete(ctx context.Context, userID, postID string) error {
	return m.deleteFunc(ctx, userID, postID)
}

// withChiParam はchiのURLパラメータをリクエストコンテキストに設定する。
func withChiParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// withUserID は認証済みユーザーIDをリクエストコンテキストに設定する。
func withUserID(r *http.Request, userID string) *http.Request {
	return r.WithContext(middleware.ContextWithUserID(r.Context(), userID))
}

func TestCreatePost_Success(t *testing.T) {
	svc := &mockPostService{
		createFunc: func(ctx context.Context, userID string, input post.CreateInput) (*model.PostWithLikes, error) {
			return &model.PostWithLikes{
				Post: model.Post{
					ID:       "post-1",
					UserID:   userID,
					Title:    input.Title,
					Content:  input.Content,
					Tags:     input.Tags,
					LLMModel: input.LLMModel,
				},
			}, nil
		},
	}
	h := NewPostHandler(svc)

	body := `{"title": "Haiku prompt", "content": "write a haiku", "tags": "poetry", "llm_model": "gpt-4"}`
	req := httptest.NewRequest(http.MethodPost, "/api/posts", strings.NewReader(body))
	req = withUserID(req, "user-1")
	rec := httptest.NewRecorder()

	h.CreatePost(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusCreated, rec.Body.String())
	}

	var resp postResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp.ID != "post-1" || resp.UserID != "user-1" {
		t.Errorf("response = %+v, want post-1/user-1", resp)
	}
}

func TestCreatePost_WithoutAuth(t *testing.T) {
	h := NewPostHandler(&mockPostService{})

	body := `{"title": "t", "content": "c"}`
	req := httptest.NewRequest(http.MethodPost, "/api/posts", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.CreatePost(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestCreatePost_MissingRequiredFields(t *testing.T) {
	h := NewPostHandler(&mockPostService{})

	tests := []struct {
		name string
		body string
	}{
		{"missing title", `{"content": "c"}`},
		{"missing content", `{"title": "t"}`},
		{"malformed json", `{broken`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/posts", strings.NewReader(tt.body))
			req = withUserID(req, "user-1")
			rec := httptest.NewRecorder()

			h.CreatePost(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
			}
		})
	}
}

func TestGetPost_NotFound(t *testing.T) {
	svc := &mockPostService{
		getFunc: func(ctx context.Context, postID string) (*model.PostWithLikes, error) {
			return nil, model.NewPostNotFoundError(postID)
		},
	}
	h := NewPostHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/posts/no-such-post", nil)
	req = withChiParam(req, "id", "no-such-post")
	rec := httptest.NewRecorder()

	h.GetPost(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}

	var resp apiErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp.Code != model.ErrCodePostNotFound {
		t.Errorf("code = %q, want %q", resp.Code, model.ErrCodePostNotFound)
	}
}

func TestListPosts_PassesPageParams(t *testing.T) {
	var gotOffset, gotLimit int
	svc := &mockPostService{
		listFunc: func(ctx context.Context, offset, limit int) ([]model.PostWithLikes, error) {
			gotOffset, gotLimit = offset, limit
			return []model.PostWithLikes{{Post: model.Post{ID: "post-1"}}}, nil
		},
	}
	h := NewPostHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/posts?offset=40&limit=10", nil)
	rec := httptest.NewRecorder()

	h.ListPosts(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if gotOffset != 40 || gotLimit != 10 {
		t.Errorf("page params = (%d, %d), want (40, 10)", gotOffset, gotLimit)
	}

	var resp postListResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if len(resp.Posts) != 1 {
		t.Errorf("len(posts) = %d, want 1", len(resp.Posts))
	}
}

func TestSearchPosts_PassesQuery(t *testing.T) {
	var gotQuery string
	svc := &mockPostService{
		searchFunc: func(ctx context.Context, query string, offset, limit int) ([]model.PostWithLikes, error) {
			gotQuery = query
			return nil, nil
		},
	}
	h := NewPostHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/posts/search?q=haiku", nil)
	rec := httptest.NewRecorder()

	h.SearchPosts(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if gotQuery != "haiku" {
		t.Errorf("query = %q, want %q", gotQuery, "haiku")
	}
}

func TestUpdatePost_NoFieldsSpecified(t *testing.T) {
	h := NewPostHandler(&mockPostService{})

	req := httptest.NewRequest(http.MethodPatch, "/api/posts/post-1", strings.NewReader(`{}`))
	req = withUserID(req, "user-1")
	req = withChiParam(req, "id", "post-1")
	rec := httptest.NewRecorder()

	h.UpdatePost(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestUpdatePost_NotOwner(t *testing.T) {
	svc := &mockPostService{
		updateFunc: func(ctx context.Context, userID, postID string, update *model.PostUpdate) (*model.PostWithLikes, error) {
			return nil, model.NewNotPostOwnerError()
		},
	}
	h := NewPostHandler(svc)

	req := httptest.NewRequest(http.MethodPatch, "/api/posts/post-1", strings.NewReader(`{"title": "new"}`))
	req = withUserID(req, "user-2")
	req = withChiParam(req, "id", "post-1")
	rec := httptest.NewRecorder()

	h.UpdatePost(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusForbidden)
	}
}

func TestDeletePost_Success(t *testing.T) {
	var deletedPostID string
	svc := &mockPostService{
		deleteFunc: func(ctx context.Context, userID, postID string) error {
			deletedPostID = postID
			return nil
		},
	}
	h := NewPostHandler(svc)

	req := httptest.NewRequest(http.MethodDelete, "/api/posts/post-1", nil)
	req = withUserID(req, "user-1")
	req = withChiParam(req, "id", "post-1")
	rec := httptest.NewRecorder()

	h.DeletePost(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNoContent)
	}
	if deletedPostID != "post-1" {
		t.Errorf("deleted post ID = %q, want %q", deletedPostID, "post-1")
	}
}

func TestMapAPIErrorToHTTPStatus(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{model.ErrCodeUnauthenticated, http.StatusUnauthorized},
		{model.ErrCodeInvalidCredentials, http.StatusUnauthorized},
		{model.ErrCodeUsernameTaken, http.StatusConflict},
		{model.ErrCodeEmailTaken, http.StatusConflict},
		{model.ErrCodeAlreadyLiked, http.StatusConflict},
		{model.ErrCodeEmptyPassword, http.StatusBadRequest},
		{model.ErrCodeCommentTooLong, http.StatusBadRequest},
		{model.ErrCodeNotAnImage, http.StatusBadRequest},
		{model.ErrCodePostNotFound, http.StatusNotFound},
		{model.ErrCodeLikeNotFound, http.StatusNotFound},
		{model.ErrCodeUserNotFound, http.StatusNotFound},
		{model.ErrCodeNotPostOwner, http.StatusForbidden},
		{model.ErrCodeSSRFBlocked, http.StatusForbidden},
		{"UNKNOWN_CODE", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			got := mapAPIErrorToHTTPStatus(&model.APIError{Code: tt.code})
			if got != tt.want {
				t.Errorf("mapAPIErrorToHTTPStatus(%s) = %d, want %d", tt.code, got, tt.want)
			}
		})
	}
}
