// Package security はアプリケーションのセキュリティ機能を提供する。
//
// PromptSanitizerService はユーザーが投稿するプロンプト本文・タイトル等の
// テキストをサニタイズし、XSS攻撃などのセキュリティリスクからユーザーを保護する。
// プロンプトはプレーンテキストとして扱うため、bluemondayのStrictPolicyで
// すべてのHTMLタグを除去する。
package security

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// PromptSanitizerService はプロンプトテキストのサニタイズ機能のインターフェースを定義する。
// 投稿の保存前およびコメントの保存前に使用される。
type PromptSanitizerService interface {
	// Sanitize は入力テキストからすべてのHTMLタグを除去して返す。
	// 前後の空白も取り除く。
	// 空文字列の入力には空文字列を返す。
	// 同一入力に対して常に同一出力を返す（冪等）。
	Sanitize(raw string) string
}

// promptSanitizer はPromptSanitizerServiceの実装。
// bluemondayのポリシーを保持し、スレッドセーフにサニタイズ処理を行う。
type promptSanitizer struct {
	policy *bluemonday.Policy
}

// NewPromptSanitizer はPromptSanitizerServiceの新しいインスタンスを生成する。
// プロンプトはコードやマークアップを文字どおり共有するためのプレーンテキストであり、
// HTMLとして解釈される要素はすべて除去する（StrictPolicy）。
func NewPromptSanitizer() *promptSanitizer {
	return &promptSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// Sanitize は入力テキストからすべてのHTMLタグを除去して返す。
func (s *promptSanitizer) Sanitize(raw string) string {
	return strings.TrimSpace(s.policy.Sanitize(raw))
}
