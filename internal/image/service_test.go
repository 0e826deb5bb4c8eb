package image

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Oxygen12-cyber/aipromptapp/internal/model"
)

// pngHeader はPNGファイルの先頭8バイト（マジックナンバー）。
var pngHeader = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}

// stubSSRFGuard はテストサーバーへのアクセスを通すためのスタブ。
// 本物のSSRFガードはループバックアドレスを拒否するため、
// httptestサーバーに対するテストでは検証をバイパスする。
type stubSSRFGuard struct {
	blockAll bool
}

func (g *stubSSRFGuard) NewSafeClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

func (g *stubSSRFGuard) ValidateURL(rawURL string) error {
	if g.blockAll {
		return fmt.Errorf("blocked: %s", rawURL)
	}
	return nil
}

// mockImageRepo はrepository.ImageRepositoryのテスト用インメモリ実装。
type mockImageRepo struct {
	images []*model.Image
}

func (m *mockImageRepo) Create(ctx context.Context, image *model.Image) error {
	m.images = append(m.images, image)
	return nil
}

func (m *mockImageRepo) ListByPostID(ctx context.Context, postID string) ([]model.Image, error) {
	var result []model.Image
	for _, img := range m.images {
		if img.PostID == postID {
			result = append(result, *img)
		}
	}
	return result, nil
}

// mockPostRepo は投稿の存在確認のみを提供するテスト用実装。
type mockPostRepo struct {
	posts map[string]*model.PostWithLikes
}

func newMockPostRepo() *mockPostRepo {
	return &mockPostRepo{posts: make(map[string]*model.PostWithLikes)}
}

func (m *mockPostRepo) addPost(id, ownerID string) {
	m.posts[id] = &model.PostWithLikes{Post: model.Post{ID: id, UserID: ownerID}}
}

func (m *mockPostRepo) FindByID(ctx context.Context, id string) (*model.PostWithLikes, error) {
	return m.posts[id], nil
}

func (m *mockPostRepo) List(ctx context.Context, offset, limit int) ([]model.PostWithLikes, error) {
	return nil, nil
}

func (m *mockPostRepo) ListByUserID(ctx context.Context, userID string, offset, limit int) ([]model.PostWithLikes, error) {
	return nil, nil
}

func (m *mockPostRepo) Search(ctx context.Context, query string, offset, limit int) ([]model.PostWithLikes, error) {
	return nil, nil
}

func (m *mockPostRepo) Create(ctx context.Context, post *model.Post) error { return nil }

func (m *mockPostRepo) Update(ctx context.Context, id string, update *model.PostUpdate) error {
	return nil
}

func (m *mockPostRepo) Delete(ctx context.Context, id string) error { return nil }

func newTestService(guard *stubSSRFGuard) (*Service, *mockImageRepo, *mockPostRepo) {
	imageRepo := &mockImageRepo{}
	postRepo := newMockPostRepo()
	svc := NewService(imageRepo, postRepo, guard, 5*time.Second, 5242880)
	return svc, imageRepo, postRepo
}

func TestAttach_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write(pngHeader)
	}))
	defer server.Close()

	svc, imageRepo, postRepo := newTestService(&stubSSRFGuard{})
	postRepo.addPost("post-1", "user-1")

	img, err := svc.Attach(context.Background(), "user-1", "post-1", server.URL+"/pic.png")
	if err != nil {
		t.Fatalf("Attach() error = %v", err)
	}
	if img.PostID != "post-1" || img.UserID != "user-1" {
		t.Errorf("image = %+v, want post-1/user-1", img)
	}
	if len(imageRepo.images) != 1 {
		t.Errorf("stored images = %d, want 1", len(imageRepo.images))
	}
}

func TestAttach_OwnerOnly(t *testing.T) {
	svc, _, postRepo := newTestService(&stubSSRFGuard{})
	postRepo.addPost("post-1", "user-1")

	_, err := svc.Attach(context.Background(), "user-2", "post-1", "https://example.com/pic.png")
	if err == nil {
		t.Fatal("expected error for non-owner attach")
	}

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeNotPostOwner {
		t.Errorf("error = %v, want code %s", err, model.ErrCodeNotPostOwner)
	}
}

func TestAttach_BlockedBySSRFGuard(t *testing.T) {
	svc, _, postRepo := newTestService(&stubSSRFGuard{blockAll: true})
	postRepo.addPost("post-1", "user-1")

	_, err := svc.Attach(context.Background(), "user-1", "post-1", "http://169.254.169.254/latest/meta-data/")
	if err == nil {
		t.Fatal("expected error for blocked URL")
	}

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeSSRFBlocked {
		t.Errorf("error = %v, want code %s", err, model.ErrCodeSSRFBlocked)
	}
}

func TestAttach_NonImageContentType(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, "<html><body>not an image</body></html>")
	}))
	defer server.Close()

	svc, _, postRepo := newTestService(&stubSSRFGuard{})
	postRepo.addPost("post-1", "user-1")

	_, err := svc.Attach(context.Background(), "user-1", "post-1", server.URL+"/page.html")
	if err == nil {
		t.Fatal("expected error for non-image content")
	}

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeNotAnImage {
		t.Errorf("error = %v, want code %s", err, model.ErrCodeNotAnImage)
	}
}

func TestAttach_MissingContentTypeFallsBackToSniffing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Content-Typeヘッダーを明示的に空にして先頭バイト判定を誘発する
		w.Header()["Content-Type"] = nil
		w.Write(pngHeader)
	}))
	defer server.Close()

	svc, _, postRepo := newTestService(&stubSSRFGuard{})
	postRepo.addPost("post-1", "user-1")

	if _, err := svc.Attach(context.Background(), "user-1", "post-1", server.URL+"/pic"); err != nil {
		t.Errorf("Attach() error = %v, want nil via content sniffing", err)
	}
}

func TestAttach_ErrorStatusFromServer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer server.Close()

	svc, _, postRepo := newTestService(&stubSSRFGuard{})
	postRepo.addPost("post-1", "user-1")

	_, err := svc.Attach(context.Background(), "user-1", "post-1", server.URL+"/missing.png")
	if err == nil {
		t.Fatal("expected error for 404 response")
	}

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeInvalidImageURL {
		t.Errorf("error = %v, want code %s", err, model.ErrCodeInvalidImageURL)
	}
}

func TestListByPost(t *testing.T) {
	svc, imageRepo, postRepo := newTestService(&stubSSRFGuard{})
	postRepo.addPost("post-1", "user-1")

	imageRepo.images = append(imageRepo.images, &model.Image{
		ID:     "img-1",
		PostID: "post-1",
		URL:    "https://example.com/a.png",
	})

	images, err := svc.ListByPost(context.Background(), "post-1")
	if err != nil {
		t.Fatalf("ListByPost() error = %v", err)
	}
	if len(images) != 1 {
		t.Errorf("len(images) = %d, want 1", len(images))
	}
}

func TestListByPost_PostNotFound(t *testing.T) {
	svc, _, _ := newTestService(&stubSSRFGuard{})

	_, err := svc.ListByPost(context.Background(), "no-such-post")
	if err == nil {
		t.Fatal("expected error for missing post")
	}

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodePostNotFound {
		t.Errorf("error = %v, want code %s", err, model.ErrCodePostNotFound)
	}
}

func TestExtractMimeType(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"image/png", "image/png"},
		{"image/jpeg; charset=utf-8", "image/jpeg"},
		{"IMAGE/PNG", "image/png"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := extractMimeType(tt.input); got != tt.want {
			t.Errorf("extractMimeType(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
