package like

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Oxygen12-cyber/aipromptapp/internal/model"
	"github.com/Oxygen12-cyber/aipromptapp/internal/repository"
)

// mockLikeRepo はrepository.LikeRepositoryのテスト用インメモリ実装。
// キーは userID + "/" + postID。
type mockLikeRepo struct {
	likes map[string]*model.Like
}

func newMockLikeRepo() *mockLikeRepo {
	return &mockLikeRepo{likes: make(map[string]*model.Like)}
}

func likeKey(userID, postID string) string { return userID + "/" + postID }

func (m *mockLikeRepo) Create(ctx context.Context, like *model.Like) error {
	key := likeKey(like.UserID, like.PostID)
	if _, exists := m.likes[key]; exists {
		return repository.ErrDuplicateLike
	}
	m.likes[key] = like
	return nil
}

func (m *mockLikeRepo) Delete(ctx context.Context, userID, postID string) (bool, error) {
	key := likeKey(userID, postID)
	if _, exists := m.likes[key]; !exists {
		return false, nil
	}
	delete(m.likes, key)
	return true, nil
}

func (m *mockLikeRepo) ListByPostID(ctx context.Context, postID string) ([]model.Like, error) {
	var result []model.Like
	for _, l := range m.likes {
		if l.PostID == postID {
			result = append(result, *l)
		}
	}
	return result, nil
}

func (m *mockLikeRepo) ListPostsLikedByUser(ctx context.Context, userID string) ([]model.PostWithLikes, error) {
	return nil, nil
}

// mockPostRepo は投稿の存在確認のみを提供するテスト用実装。
type mockPostRepo struct {
	posts map[string]*model.PostWithLikes
}

func newMockPostRepo(postIDs ...string) *mockPostRepo {
	m := &mockPostRepo{posts: make(map[string]*model.PostWithLikes)}
	for _, id := range postIDs {
		m.posts[id] = &model.PostWithLikes{
			Post: model.Post{ID: id, UserID: "owner", CreatedAt: time.Now()},
		}
	}
	return m
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

func TestLike_Success(t *testing.T) {
	svc := NewService(newMockLikeRepo(), newMockPostRepo("post-1"))

	like, err := svc.Like(context.Background(), "user-1", "post-1")
	if err != nil {
		t.Fatalf("Like() error = %v", err)
	}
	if like.UserID != "user-1" || like.PostID != "post-1" {
		t.Errorf("like = %+v, want user-1/post-1", like)
	}
	if like.ID == "" {
		t.Error("expected generated like ID")
	}
}

func TestLike_DuplicateReturnsAlreadyLiked(t *testing.T) {
	svc := NewService(newMockLikeRepo(), newMockPostRepo("post-1"))
	ctx := context.Background()

	if _, err := svc.Like(ctx, "user-1", "post-1"); err != nil {
		t.Fatalf("first Like() error = %v", err)
	}

	_, err := svc.Like(ctx, "user-1", "post-1")
	if err == nil {
		t.Fatal("expected error for duplicate like")
	}

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeAlreadyLiked {
		t.Errorf("error = %v, want code %s", err, model.ErrCodeAlreadyLiked)
	}
}

func TestLike_PostNotFound(t *testing.T) {
	svc := NewService(newMockLikeRepo(), newMockPostRepo())

	_, err := svc.Like(context.Background(), "user-1", "no-such-post")
	if err == nil {
		t.Fatal("expected error for missing post")
	}

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodePostNotFound {
		t.Errorf("error = %v, want code %s", err, model.ErrCodePostNotFound)
	}
}

func TestUnlike_Success(t *testing.T) {
	likeRepo := newMockLikeRepo()
	svc := NewService(likeRepo, newMockPostRepo("post-1"))
	ctx := context.Background()

	if _, err := svc.Like(ctx, "user-1", "post-1"); err != nil {
		t.Fatalf("Like() error = %v", err)
	}

	if err := svc.Unlike(ctx, "user-1", "post-1"); err != nil {
		t.Fatalf("Unlike() error = %v", err)
	}
	if len(likeRepo.likes) != 0 {
		t.Errorf("likes remaining = %d, want 0", len(likeRepo.likes))
	}
}

func TestUnlike_NotLikedReturnsLikeNotFound(t *testing.T) {
	svc := NewService(newMockLikeRepo(), newMockPostRepo("post-1"))

	err := svc.Unlike(context.Background(), "user-1", "post-1")
	if err == nil {
		t.Fatal("expected error for unliked post")
	}

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeLikeNotFound {
		t.Errorf("error = %v, want code %s", err, model.ErrCodeLikeNotFound)
	}
}

func TestListPostLikes(t *testing.T) {
	svc := NewService(newMockLikeRepo(), newMockPostRepo("post-1"))
	ctx := context.Background()

	if _, err := svc.Like(ctx, "user-1", "post-1"); err != nil {
		t.Fatalf("Like() error = %v", err)
	}
	if _, err := svc.Like(ctx, "user-2", "post-1"); err != nil {
		t.Fatalf("Like() error = %v", err)
	}

	likes, err := svc.ListPostLikes(ctx, "post-1")
	if err != nil {
		t.Fatalf("ListPostLikes() error = %v", err)
	}
	if len(likes) != 2 {
		t.Errorf("len(likes) = %d, want 2", len(likes))
	}
}
