// Package session はサーバー側セッションと署名付きCookieを管理する。
//
// セッションの中身はsessionsテーブルにJSONで保存し、
// CookieにはセッションIDのみを署名付きで載せる。
package session

import (
	"context"
	"strconv"

	"github.com/hitoshi/muebles/internal/model"
)

// Data はセッションに保存する値。
// UserIDが空の場合は未認証として扱う。
type Data struct {
	UserID      string         `json:"user_id,omitempty"`
	UserName    string         `json:"user_name,omitempty"`
	UserEmail   string         `json:"user_email,omitempty"`
	UserPicture string         `json:"user_picture,omitempty"`
	GoogleAuth  bool           `json:"google_auth,omitempty"`
	OAuthState  string         `json:"oauth_state,omitempty"`
	Flashes     []model.Notice `json:"flashes,omitempty"`
}

func (d Data) isEmpty() bool {
	return d.UserID == "" && d.OAuthState == "" && len(d.Flashes) == 0
}

// Session はリクエスト単位で扱うセッション。
type Session struct {
	ID   string
	Data Data

	isNew bool
}

// IsAuthenticated はログイン済みかどうかを返す。
func (s *Session) IsAuthenticated() bool {
	return s.Data.UserID != ""
}

// IsNew はまだ保存されていないセッションかどうかを返す。
func (s *Session) IsNew() bool {
	return s.isNew
}

// SetLocalUser はローカル認証したユーザーをセッションに設定する。
func (s *Session) SetLocalUser(user *model.User) {
	s.Data.UserID = strconv.FormatInt(user.ID, 10)
	s.Data.UserName = user.Name
	s.Data.UserEmail = ""
	s.Data.UserPicture = ""
	s.Data.GoogleAuth = false
}

// SetGoogleUser はGoogleで認証したユーザーをセッションに設定する。
// ユーザーIDにはGoogleのsubjectをそのまま使う。
func (s *Session) SetGoogleUser(subject, name, email, picture string) {
	s.Data.UserID = subject
	s.Data.UserName = name
	s.Data.UserEmail = email
	s.Data.UserPicture = picture
	s.Data.GoogleAuth = true
}

// SetOAuthState はOAuthのstateを保存する。
func (s *Session) SetOAuthState(state string) {
	s.Data.OAuthState = state
}

// OAuthState は保存済みのstateを返す。未保存の場合は空文字。
func (s *Session) OAuthState() string {
	return s.Data.OAuthState
}

// ClearOAuthState はstateを削除する。stateは1回限り有効。
func (s *Session) ClearOAuthState() {
	s.Data.OAuthState = ""
}

// AddFlash は次に描画するページで表示するメッセージを追加する。
func (s *Session) AddFlash(level, message string) {
	s.Data.Flashes = append(s.Data.Flashes, model.Notice{Level: level, Message: message})
}

// AddNotice はNoticeをそのままフラッシュとして追加する。
func (s *Session) AddNotice(n *model.Notice) {
	if n == nil {
		return
	}
	s.AddFlash(n.Level, n.Message)
}

// PopFlashes は溜まったメッセージを返し、セッションから取り除く。
func (s *Session) PopFlashes() []model.Notice {
	flashes := s.Data.Flashes
	s.Data.Flashes = nil
	return flashes
}

type contextKey struct{}

// NewContext はセッションを格納したコンテキストを返す。
func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext はコンテキストからセッションを取り出す。
// セッションミドルウェアを通過していない場合はnilを返す。
func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(contextKey{}).(*Session)
	return s
}
