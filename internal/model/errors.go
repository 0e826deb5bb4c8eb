// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, post, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeUnauthenticated    = "UNAUTHENTICATED"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeUsernameTaken      = "USERNAME_TAKEN"
	ErrCodeEmailTaken         = "EMAIL_TAKEN"
	ErrCodeEmptyPassword      = "EMPTY_PASSWORD"
	ErrCodeInvalidRequest     = "INVALID_REQUEST"
	ErrCodePostNotFound       = "POST_NOT_FOUND"
	ErrCodeNotPostOwner       = "NOT_POST_OWNER"
	ErrCodeAlreadyLiked       = "ALREADY_LIKED"
	ErrCodeLikeNotFound       = "LIKE_NOT_FOUND"
	ErrCodeCommentNotFound    = "COMMENT_NOT_FOUND"
	ErrCodeCommentTooLong     = "COMMENT_TOO_LONG"
	ErrCodeUserNotFound       = "USER_NOT_FOUND"
	ErrCodeInvalidImageURL    = "INVALID_IMAGE_URL"
	ErrCodeSSRFBlocked        = "SSRF_BLOCKED"
	ErrCodeNotAnImage         = "NOT_AN_IMAGE"
)

// NewUnauthenticatedError は未認証エラーを生成する。
// トークン不正・期限切れ・ユーザー不在のいずれでも同一のエラーを返し、
// 原因の区別による情報漏洩を防ぐ。
func NewUnauthenticatedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthenticated,
		Message:  "認証が必要です。",
		Category: "auth",
		Action:   "ログインし直してください。",
	}
}

// NewInvalidCredentialsError はログイン失敗エラーを生成する。
// ユーザー不在とパスワード不一致を区別しない。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCredentials,
		Message:  "ユーザー名またはパスワードが正しくありません。",
		Category: "auth",
		Action:   "入力内容を確認して再度お試しください。",
	}
}

// NewUsernameTakenError はユーザー名重複エラーを生成する。
func NewUsernameTakenError(username string) *APIError {
	return &APIError{
		Code:     ErrCodeUsernameTaken,
		Message:  fmt.Sprintf("このユーザー名は既に登録されています: %s", username),
		Category: "validation",
		Action:   "別のユーザー名を指定してください。",
	}
}

// NewEmailTakenError はメールアドレス重複エラーを生成する。
func NewEmailTakenError() *APIError {
	return &APIError{
		Code:     ErrCodeEmailTaken,
		Message:  "このメールアドレスは既に登録されています。",
		Category: "validation",
		Action:   "別のメールアドレスを指定するか、ログインしてください。",
	}
}

// NewEmptyPasswordError は空パスワードエラーを生成する。
func NewEmptyPasswordError() *APIError {
	return &APIError{
		Code:     ErrCodeEmptyPassword,
		Message:  "パスワードが指定されていません。",
		Category: "validation",
		Action:   "パスワードを入力してください。",
	}
}

// NewPostNotFoundError は投稿未検出エラーを生成する。
func NewPostNotFoundError(postID string) *APIError {
	return &APIError{
		Code:     ErrCodePostNotFound,
		Message:  fmt.Sprintf("指定された投稿が見つかりません: %s", postID),
		Category: "post",
		Action:   "投稿IDを確認してください。",
	}
}

// NewNotPostOwnerError は投稿の所有者以外による操作エラーを生成する。
func NewNotPostOwnerError() *APIError {
	return &APIError{
		Code:     ErrCodeNotPostOwner,
		Message:  "この投稿を操作する権限がありません。",
		Category: "auth",
		Action:   "自分の投稿のみ編集・削除できます。",
	}
}

// NewAlreadyLikedError はいいね重複エラーを生成する。
func NewAlreadyLikedError() *APIError {
	return &APIError{
		Code:     ErrCodeAlreadyLiked,
		Message:  "この投稿には既にいいねしています。",
		Category: "post",
		Action:   "いいねを取り消す場合はDELETEを使用してください。",
	}
}

// NewLikeNotFoundError はいいね未検出エラーを生成する。
func NewLikeNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeLikeNotFound,
		Message:  "この投稿にはいいねしていません。",
		Category: "post",
		Action:   "いいね済みの投稿のみ取り消しできます。",
	}
}

// NewCommentNotFoundError はコメント未検出エラーを生成する。
func NewCommentNotFoundError(commentID string) *APIError {
	return &APIError{
		Code:     ErrCodeCommentNotFound,
		Message:  fmt.Sprintf("指定されたコメントが見つかりません: %s", commentID),
		Category: "post",
		Action:   "コメントIDを確認してください。",
	}
}

// NewCommentTooLongError はコメント文字数超過エラーを生成する。
func NewCommentTooLongError() *APIError {
	return &APIError{
		Code:     ErrCodeCommentTooLong,
		Message:  fmt.Sprintf("コメントは%d文字以内で入力してください。", MaxCommentLength),
		Category: "validation",
		Action:   "コメントを短くして再度お試しください。",
	}
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "ユーザーが見つかりません。",
		Category: "auth",
		Action:   "ユーザーIDを確認してください。",
	}
}

// NewInvalidImageURLError は無効な画像URLエラーを生成する。
func NewInvalidImageURLError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidImageURL,
		Message:  fmt.Sprintf("無効な画像URLです: %s", reason),
		Category: "validation",
		Action:   "正しいURL形式（http:// または https:// で始まるURL）を入力してください。",
	}
}

// NewSSRFBlockedError はSSRFブロックエラーを生成する。
func NewSSRFBlockedError() *APIError {
	return &APIError{
		Code:     ErrCodeSSRFBlocked,
		Message:  "セキュリティポリシーにより、指定されたURLへのアクセスがブロックされました。",
		Category: "validation",
		Action:   "公開されているWebサイトのURLを入力してください。ローカルネットワークやプライベートIPへのアクセスは許可されていません。",
	}
}

// NewNotAnImageError は画像以外のコンテンツタイプエラーを生成する。
func NewNotAnImageError(contentType string) *APIError {
	return &APIError{
		Code:     ErrCodeNotAnImage,
		Message:  fmt.Sprintf("指定されたURLは画像ではありません: %s", contentType),
		Category: "validation",
		Action:   "画像（image/*）を指すURLを入力してください。",
	}
}
