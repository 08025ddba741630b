package middleware

import (
	"net/http"

	"github.com/hitoshi/muebles/internal/session"
)

// contentSecurityPolicy は自前の静的ファイルとGoogleのプロフィール画像のみ許可する。
// フォーム送信先はGoogleの同意画面へのリダイレクトも含める。
const contentSecurityPolicy = "default-src 'self'; img-src 'self' https:; style-src 'self' 'unsafe-inline'; frame-ancestors 'none'; form-action 'self' https://accounts.google.com"

const strictTransportSecurity = "max-age=31536000; includeSubDomains"

// securityHeaders は全レスポンスに付与するヘッダー。
var securityHeaders = [][2]string{
	{"X-Content-Type-Options", "nosniff"},
	{"X-Frame-Options", "DENY"},
	{"Referrer-Policy", "strict-origin-when-cross-origin"},
	{"Permissions-Policy", "camera=(), microphone=(), geolocation=(), payment=()"},
	{"Content-Security-Policy", contentSecurityPolicy},
}

// SecurityHeadersConfig はセキュリティヘッダーミドルウェアの設定。
type SecurityHeadersConfig struct {
	// HTTPSで配信する場合にHSTSを付与する
	StrictTransport bool
}

// NewSecurityHeadersMiddleware はセキュリティ関連のレスポンスヘッダーを付与するミドルウェアを返す。
// ログイン中のレスポンスはCache-Control: no-storeにする。セッションミドルウェアより内側に置く。
func NewSecurityHeadersMiddleware(cfg SecurityHeadersConfig) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			for _, kv := range securityHeaders {
				h.Set(kv[0], kv[1])
			}
			if cfg.StrictTransport {
				h.Set("Strict-Transport-Security", strictTransportSecurity)
			}
			if s := session.FromContext(r.Context()); s != nil && s.IsAuthenticated() {
				h.Set("Cache-Control", "no-store")
			}
			next.ServeHTTP(w, r)
		})
	}
}
