package auth

import (
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/Oxygen12-cyber/aipromptapp/internal/model"
)

// テストではbcryptの最小コストを使用して実行時間を短縮する
func newTestHasher() *Hasher {
	return NewHasher(bcrypt.MinCost)
}

// ハッシュ化したパスワードが検証を通過することを検証
func TestHashPassword_RoundTrip(t *testing.T) {
	h := newTestHasher()

	tests := []struct {
		name     string
		password string
	}{
		{"short password", "pw"},
		{"typical password", "correct horse battery staple"},
		{"multibyte password", "パスワード123"},
		{"200 char password", strings.Repeat("a", 200)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stored, err := h.HashPassword(tt.password)
			if err != nil {
				t.Fatalf("HashPassword() error = %v", err)
			}
			if stored == tt.password {
				t.Error("stored secret should not equal the plain password")
			}
			if !h.VerifyPassword(tt.password, stored) {
				t.Error("VerifyPassword() = false, want true for original password")
			}
		})
	}
}

// 空パスワードはエラーになることを検証
func TestHashPassword_EmptyPassword(t *testing.T) {
	h := newTestHasher()

	_, err := h.HashPassword("")
	if err == nil {
		t.Fatal("expected error for empty password")
	}

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %T", err)
	}
	if apiErr.Code != model.ErrCodeEmptyPassword {
		t.Errorf("error code = %q, want %q", apiErr.Code, model.ErrCodeEmptyPassword)
	}
}

// 同一パスワードでも呼び出しごとに異なる保存用シークレットが得られることを検証
// （bcryptのランダムソルトによる）
func TestHashPassword_SaltUniqueness(t *testing.T) {
	h := newTestHasher()
	password := "correct horse battery staple"

	first, err := h.HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	second, err := h.HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}

	if first == second {
		t.Error("two hashes of the same password should differ")
	}

	// どちらの保存用シークレットでも元のパスワードが検証を通過すること
	if !h.VerifyPassword(password, first) {
		t.Error("first stored secret should verify")
	}
	if !h.VerifyPassword(password, second) {
		t.Error("second stored secret should verify")
	}
}

// 誤ったパスワードは検証に失敗することを検証
func TestVerifyPassword_WrongPassword(t *testing.T) {
	h := newTestHasher()

	stored, err := h.HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}

	if h.VerifyPassword("incorrect horse battery staple", stored) {
		t.Error("VerifyPassword() = true, want false for wrong password")
	}
}

// 不正な形式の保存用シークレットでもパニックせずfalseを返すことを検証
func TestVerifyPassword_MalformedStoredSecret(t *testing.T) {
	h := newTestHasher()

	tests := []struct {
		name   string
		stored string
	}{
		{"empty", ""},
		{"not a bcrypt hash", "plaintext"},
		{"truncated hash", "$2a$10$abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if h.VerifyPassword("password", tt.stored) {
				t.Error("VerifyPassword() = true, want false for malformed stored secret")
			}
		})
	}
}

// 空パスワードは常に検証に失敗することを検証
func TestVerifyPassword_EmptyPassword(t *testing.T) {
	h := newTestHasher()

	stored, err := h.HashPassword("password")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}

	if h.VerifyPassword("", stored) {
		t.Error("VerifyPassword() = true, want false for empty password")
	}
}

// コストが有効範囲外の場合にデフォルト値が使用されることを検証
func TestNewHasher_ClampsInvalidCost(t *testing.T) {
	tests := []struct {
		name string
		cost int
		want int
	}{
		{"too low", 0, DefaultBcryptCost},
		{"too high", 100, DefaultBcryptCost},
		{"valid", 10, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHasher(tt.cost)
			if h.cost != tt.want {
				t.Errorf("cost = %d, want %d", h.cost, tt.want)
			}
		})
	}
}
