package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SubjectClaim はトークンの主体（ユーザー名）を格納するクレーム名。
const SubjectClaim = "sub"

// ErrEmptySecret は署名シークレットが未設定の場合のエラー。
// プロセス起動時にこのエラーで失敗させ、安全でない状態での稼働を防ぐ。
var ErrEmptySecret = errors.New("auth: signing secret must not be empty")

// Codec はクレーム集合を署名付き・期限付きのベアラートークンに
// エンコード／デコードする。
// 署名シークレットとアルゴリズムはプロセス起動時に1回注入され、
// 以降イミュータブルとして扱う。ローテーションすると発行済みトークンは
// すべて無効になる（ステートレスのため許容）。
type Codec struct {
	secret     []byte
	method     jwt.SigningMethod
	defaultTTL time.Duration
}

// NewCodec はCodecを生成する。
// シークレットが空の場合はErrEmptySecretを返す。
// 署名アルゴリズムはHS256に固定される。
func NewCodec(secret string, defaultTTL time.Duration) (*Codec, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	return &Codec{
		secret:     []byte(secret),
		method:     jwt.SigningMethodHS256,
		defaultTTL: defaultTTL,
	}, nil
}

// Encode はクレーム集合に有効期限（現在時刻 + ttl）を加えて署名し、
// 自己完結型のトークン文字列を生成する。
// 呼び出し側のclaimsマップは変更しない（コピーに対して付与する）。
// ttlが0以下の場合は設定済みのデフォルトTTLを使用する。
func (c *Codec) Encode(claims map[string]any, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	mapClaims := make(jwt.MapClaims, len(claims)+1)
	for k, v := range claims {
		mapClaims[k] = v
	}
	mapClaims["exp"] = jwt.NewNumericDate(time.Now().Add(ttl))

	token := jwt.NewWithClaims(c.method, mapClaims)
	return token.SignedString(c.secret)
}

// Decode はトークンの署名と有効期限を検証し、subjectクレームを返す。
// 署名不正・形式不正・subject欠落・期限切れのいずれの場合も空文字列を返す。
// 有効期限は now >= exp で無効と判定される。
// 失敗時に例外的なエラーを返さないことで、呼び出し側は空文字列を一律に
// 「未認証」として扱える（フェイルクローズ）。
func (c *Codec) Decode(tokenString string) string {
	claims := jwt.MapClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		// アルゴリズム混同攻撃の防止: 発行時と同一のHS256のみ受理する
		if t.Method != c.method {
			return nil, jwt.ErrSignatureInvalid
		}
		return c.secret, nil
	})
	if err != nil || !token.Valid {
		return ""
	}

	subject, ok := claims[SubjectClaim].(string)
	if !ok || subject == "" {
		return ""
	}

	return subject
}
