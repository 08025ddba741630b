package handler

import (
	"net/http"
)

// demoUserNames は/users/で表示する固定のユーザー名。
var demoUserNames = []string{"Santi", "pronzito", "Inge"}

// UserHandler は固定のユーザー名一覧を表示するHTTPハンドラー。
type UserHandler struct {
	renderer *Renderer
}

// NewUserHandler はUserHandlerを生成する。
func NewUserHandler(renderer *Renderer) *UserHandler {
	return &UserHandler{renderer: renderer}
}

// List は固定のユーザー名一覧を表示する。
// GET /users/
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, r, http.StatusOK, pageUsers, usersPage{Names: demoUserNames})
}

// RedirectToList は末尾スラッシュなしのパスを一覧へ恒久リダイレクトする。
// GET /users
func (h *UserHandler) RedirectToList(w http.ResponseWriter, r *http.Request) {
	target := "/users/"
	if r.URL.RawQuery != "" {
		target += "?" + r.URL.RawQuery
	}
	http.Redirect(w, r, target, http.StatusMovedPermanently)
}
