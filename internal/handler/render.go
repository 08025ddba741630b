package handler

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/hitoshi/muebles/internal/middleware"
	"github.com/hitoshi/muebles/internal/model"
	"github.com/hitoshi/muebles/internal/session"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// ページテンプレート名
const (
	pageIndex    = "index.html"
	pageLogin    = "form.html"
	pageRegister = "registro.html"
	pageProducts = "muebles.html"
	pageContact  = "contacto.html"
	pageUsers    = "usuarios.html"
)

var pageNames = []string{pageIndex, pageLogin, pageRegister, pageProducts, pageContact, pageUsers}

var templateFuncs = template.FuncMap{
	// safeHTML はサニタイズ済みの商品説明にのみ使う。
	"safeHTML": func(s string) template.HTML { return template.HTML(s) },
}

// currentUser はレイアウトに表示するログインユーザー。
type currentUser struct {
	Authenticated bool
	Name          string
	Picture       string
}

// pageData は全ページ共通のテンプレートデータ。
type pageData struct {
	Flashes   []model.Notice
	CSRFToken string
	User      currentUser
	Data      any
}

// Renderer はレイアウトと各ページを組み合わせたテンプレートを描画する。
type Renderer struct {
	pages    map[string]*template.Template
	sessions SessionManager
}

// NewRenderer は埋め込みテンプレートを読み込んでRendererを生成する。
func NewRenderer(sessions SessionManager) (*Renderer, error) {
	layout, err := template.New("layout.html").Funcs(templateFuncs).ParseFS(templateFS, "templates/layout.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse layout: %w", err)
	}

	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		t, err := layout.Clone()
		if err != nil {
			return nil, fmt.Errorf("failed to clone layout: %w", err)
		}
		if _, err := t.ParseFS(templateFS, "templates/"+name); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", name, err)
		}
		pages[name] = t
	}

	return &Renderer{pages: pages, sessions: sessions}, nil
}

// Render はページを描画する。セッションに溜まったフラッシュはここで取り出して表示する。
func (rd *Renderer) Render(w http.ResponseWriter, r *http.Request, status int, page string, data any) {
	t, ok := rd.pages[page]
	if !ok {
		slog.Error("unknown template", slog.String("page", page))
		middleware.WriteInternalServerError(w)
		return
	}

	pd := pageData{
		CSRFToken: middleware.CSRFTokenFromContext(r.Context()),
		Data:      data,
	}

	if s := session.FromContext(r.Context()); s != nil {
		pd.User = currentUser{
			Authenticated: s.IsAuthenticated(),
			Name:          s.Data.UserName,
			Picture:       s.Data.UserPicture,
		}
		pd.Flashes = s.PopFlashes()
		if len(pd.Flashes) > 0 {
			if err := rd.sessions.Save(r.Context(), w, s); err != nil {
				slog.Error("failed to save session", slog.String("error", err.Error()))
			}
		}
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", pd); err != nil {
		slog.Error("failed to render template",
			slog.String("page", page),
			slog.String("error", err.Error()),
		)
		middleware.WriteInternalServerError(w)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// staticHandler は埋め込みの静的ファイルを/static/配下で配信する。
func staticHandler() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
}
