// Package model はドメインモデルを定義する。
package model

import "time"

// User はサービス利用ユーザーを表す。
// HashedPasswordはbcrypt由来の保存用シークレットであり、APIレスポンスには含めない。
type User struct {
	ID             string
	Username       string
	Email          string
	HashedPassword string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
