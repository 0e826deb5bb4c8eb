// Package model はドメインモデルを定義する。
package model

import "time"

// Post はユーザーが共有するAIプロンプト投稿を表す。
type Post struct {
	ID        string
	UserID    string
	Title     string
	Content   string // サニタイズ済みプレーンテキスト
	Tags      string // カテゴリ: technology, mechanics, engineering 等
	LLMModel  string // 使用LLMモデル: gpt-4, claude-3, gemini-pro 等
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PostWithLikes は投稿といいね数を結合したモデル。
// likesテーブルとのJOINで取得される。
type PostWithLikes struct {
	Post
	LikesCount int
}

// PostUpdate は投稿の部分更新を表す。
// nilフィールドは変更しない。
type PostUpdate struct {
	Title    *string
	Content  *string
	Tags     *string
	LLMModel *string
}

// Like はユーザーによる投稿へのいいねを表す。
// 同一ユーザー・同一投稿の組み合わせは1件のみ（DBのユニーク制約で担保）。
type Like struct {
	ID        string
	UserID    string
	PostID    string
	CreatedAt time.Time
}

// Comment は投稿へのコメントを表す。
type Comment struct {
	ID        string
	UserID    string
	PostID    string
	Body      string
	CreatedAt time.Time
}

// MaxCommentLength はコメント本文の最大文字数。
const MaxCommentLength = 125

// Image は投稿に添付された外部画像URLを表す。
// URLは保存前にSSRFガードによる検証を通過している。
type Image struct {
	ID        string
	UserID    string
	PostID    string
	URL       string
	CreatedAt time.Time
}
