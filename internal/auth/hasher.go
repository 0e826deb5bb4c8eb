// Package auth は認証・認可のコア機能を提供する。
// パスワードのハッシュ化・検証、JWTの発行・検証、リクエスト時の
// アイデンティティ解決を担う。
package auth

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/Oxygen12-cyber/aipromptapp/internal/model"
	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost はbcryptのデフォルトコストパラメータ。
const DefaultBcryptCost = 12

// Hasher はパスワードのハッシュ化と検証を提供する。
type Hasher struct {
	cost int
}

// NewHasher はHasherを生成する。
// costが有効範囲外（bcrypt.MinCost〜bcrypt.MaxCost）の場合はデフォルト値を使用する。
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	return &Hasher{cost: cost}
}

// preDigest はパスワードをSHA-256でハッシュし、64文字の16進文字列に正規化する。
// bcryptの72バイト入力上限を超える任意長のパスワードを、切り詰めなしで
// 扱うための前処理であり、秘匿変換ではない。
// HashPasswordとVerifyPasswordの両方がこの1つのヘルパーを経由することで、
// 呼び出し側ごとの実装ずれによる検証失敗を防ぐ。
func preDigest(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// HashPassword はパスワードから保存用シークレットを導出する。
// 空パスワードの場合のみエラーを返す。
// bcryptが呼び出しごとにランダムなソルトを生成するため、
// 同一パスワードでも呼び出しごとに異なる保存用シークレットが得られる。
func (h *Hasher) HashPassword(password string) (string, error) {
	if password == "" {
		return "", model.NewEmptyPasswordError()
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(preDigest(password)), h.cost)
	if err != nil {
		return "", err
	}

	return string(hashed), nil
}

// VerifyPassword はパスワードが保存用シークレットの導出元であるかを検証する。
// 保存用シークレットが不正な形式の場合もエラーを送出せず、falseを返す。
// ソルトは保存用シークレットに埋め込まれたものをbcryptが抽出して使用する。
func (h *Hasher) VerifyPassword(password, storedSecret string) bool {
	if password == "" || storedSecret == "" {
		return false
	}
	err := bcrypt.CompareHashAndPassword([]byte(storedSecret), []byte(preDigest(password)))
	return err == nil
}
