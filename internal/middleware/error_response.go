package middleware

import (
	"html/template"
	"log/slog"
	"net/http"

	"github.com/hitoshi/muebles/internal/model"
)

var errorPageTemplate = template.Must(template.New("error").Parse(`<!DOCTYPE html>
<html lang="es">
<head><meta charset="utf-8"><title>{{.Status}} - DecOnline</title></head>
<body>
<div class="alert alert-{{.Notice.Level}}">{{.Notice.Message}}</div>
<p><a href="/">Volver al inicio</a></p>
</body>
</html>
`))

// WriteErrorPage はステータスコードとメッセージを含む簡易HTMLページを書き込む。
// テンプレート描画に依存しないため、パニック復帰時にも使える。
func WriteErrorPage(w http.ResponseWriter, statusCode int, notice *model.Notice) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusCode)
	if err := errorPageTemplate.Execute(w, struct {
		Status int
		Notice *model.Notice
	}{statusCode, notice}); err != nil {
		slog.Error("failed to write error page", slog.String("error", err.Error()))
	}
}

// WriteInternalServerError は内部エラーページを書き込む。
// 詳細はログのみに記録し、ユーザーには一般的なメッセージを返す。
func WriteInternalServerError(w http.ResponseWriter) {
	WriteErrorPage(w, http.StatusInternalServerError, model.NewNotice(model.LevelDanger, model.MsgInternalError))
}
