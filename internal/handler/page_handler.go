package handler

import (
	"log/slog"
	"net/http"

	"github.com/hitoshi/muebles/internal/model"
)

// usersPage はusuarios.htmlに渡すデータ。
// UsuariosはDBのユーザー、Namesは固定の名前一覧を表示する。
type usersPage struct {
	Usuarios []*model.User
	Names    []string
}

// PageHandler はサイトの各ページのHTTPハンドラー。
type PageHandler struct {
	users    UserServiceInterface
	catalog  CatalogServiceInterface
	sessions SessionManager
	renderer *Renderer
}

// NewPageHandler はPageHandlerを生成する。
func NewPageHandler(users UserServiceInterface, catalog CatalogServiceInterface, sessions SessionManager, renderer *Renderer) *PageHandler {
	return &PageHandler{
		users:    users,
		catalog:  catalog,
		sessions: sessions,
		renderer: renderer,
	}
}

// Index はトップページを表示する。
// GET /
func (h *PageHandler) Index(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, r, http.StatusOK, pageIndex, nil)
}

// Products は商品一覧を表示する。
// GET /productos
func (h *PageHandler) Products(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.ListProducts(r.Context())
	if err != nil {
		slog.Error("failed to list products", slog.String("error", err.Error()))
		h.renderError(w, r, err, pageProducts)
		return
	}
	h.renderer.Render(w, r, http.StatusOK, pageProducts, products)
}

// Contact は問い合わせページを表示する。
// GET /contacto
func (h *PageHandler) Contact(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, r, http.StatusOK, pageContact, nil)
}

// Home はログイン済みユーザー向けに登録ユーザー一覧を表示する。
// 認証はルーター側のRequireAuthミドルウェアで確認済み。
// GET /home
func (h *PageHandler) Home(w http.ResponseWriter, r *http.Request) {
	h.listUsers(w, r)
}

// UsersDB は登録ユーザー一覧を表示する。認証は要求しない。
// GET /usuariosBD
func (h *PageHandler) UsersDB(w http.ResponseWriter, r *http.Request) {
	h.listUsers(w, r)
}

func (h *PageHandler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListUsers(r.Context())
	if err != nil {
		slog.Error("failed to list users", slog.String("error", err.Error()))
		h.renderError(w, r, err, pageUsers)
		return
	}
	h.renderer.Render(w, r, http.StatusOK, pageUsers, usersPage{Usuarios: users})
}

// Submit はトップページのフォーム送信を受け付ける。内容は保存しない。
// POST /submit
func (h *PageHandler) Submit(w http.ResponseWriter, r *http.Request) {
	form := credentialsForm{
		Nombre: r.PostFormValue("nombre"),
		Email:  r.PostFormValue("email"),
	}
	slog.Debug("contact form submitted",
		slog.Bool("has_name", form.Nombre != ""),
		slog.Bool("has_email", form.Email != ""),
	)
	h.renderer.Render(w, r, http.StatusOK, pageIndex, form)
}

// renderError は汎用エラーメッセージ付きでページを描画する。
func (h *PageHandler) renderError(w http.ResponseWriter, r *http.Request, err error, page string) {
	currentSession(r, h.sessions).AddNotice(model.NoticeForError(err))
	h.renderer.Render(w, r, http.StatusInternalServerError, page, nil)
}
