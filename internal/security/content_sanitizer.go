// Package security はアプリケーションのセキュリティ機能を提供する。
//
// DescriptionSanitizer は商品説明のHTMLをサニタイズし、
// 管理者が登録した説明文を経由したXSSを防ぐ。
// bluemondayの許可リストポリシーで書式タグと商品画像のみを通過させる。
package security

import (
	"net/url"

	"github.com/microcosm-cc/bluemonday"
)

// DescriptionSanitizer は商品説明HTMLのサニタイズ機能のインターフェース。
type DescriptionSanitizer interface {
	// Sanitize はHTMLをサニタイズして安全なHTMLを返す。
	// 許可タグ（p, br, ul, ol, li, strong, em, b, i, img）以外は除去し、テキストのみ残す。
	// imgのsrc属性はhttpsスキームのみ許可する。
	// 同一入力に対して常に同一出力を返す。
	Sanitize(rawHTML string) string
}

// descriptionSanitizer はDescriptionSanitizerの実装。
// bluemondayのポリシーはゴルーチンセーフ。
type descriptionSanitizer struct {
	policy *bluemonday.Policy
}

// NewDescriptionSanitizer はDescriptionSanitizerの新しいインスタンスを生成する。
func NewDescriptionSanitizer() DescriptionSanitizer {
	p := bluemonday.NewPolicy()

	p.AllowElements(
		"p", "br", "ul", "ol", "li",
		"strong", "em", "b", "i",
	)

	// 商品画像はhttpsの絶対URLのみ
	p.AllowAttrs("src", "alt").OnElements("img")
	p.AllowRelativeURLs(false)
	p.AllowURLSchemeWithCustomPolicy("https", func(u *url.URL) bool {
		return u.Host != ""
	})

	return &descriptionSanitizer{
		policy: p,
	}
}

// Sanitize はHTMLをサニタイズして安全なHTMLを返す。
func (s *descriptionSanitizer) Sanitize(rawHTML string) string {
	if rawHTML == "" {
		return ""
	}
	return s.policy.Sanitize(rawHTML)
}
