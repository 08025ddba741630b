package model

import (
	"errors"
	"fmt"
)

// 定義済みエラー
var (
	// ErrEmailAlreadyExists はメールアドレスの一意制約違反を表す。
	ErrEmailAlreadyExists = errors.New("email already exists")
	// ErrInvalidCredentials はメールアドレスまたはパスワードの不一致を表す。
	// どちらが誤りかは区別しない。
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidInput は入力値の検証エラーを表す。
	ErrInvalidInput = errors.New("invalid input")
	// ErrOAuthNotConfigured はOAuthクライアント情報が未設定であることを表す。
	ErrOAuthNotConfigured = errors.New("oauth client is not configured")
	// ErrStateMissing はセッションにOAuth stateが存在しないことを表す。
	ErrStateMissing = errors.New("oauth state missing from session")
	// ErrStateMismatch はコールバックのstateがセッションの値と一致しないことを表す。
	ErrStateMismatch = errors.New("oauth state mismatch")
	// ErrTokenVerification はIDトークンの検証失敗を表す。
	ErrTokenVerification = errors.New("id token verification failed")
)

// Flashのレベル。テンプレートのCSSクラスとしてそのまま使う。
const (
	LevelSuccess = "success"
	LevelInfo    = "info"
	LevelWarning = "warning"
	LevelDanger  = "danger"
)

// Notice はユーザーに一度だけ表示するメッセージ（flash）を表す。
type Notice struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// Error はerrorインターフェースを実装する。
func (n *Notice) Error() string {
	return fmt.Sprintf("[%s] %s", n.Level, n.Message)
}

// 画面に表示するメッセージ
const (
	MsgAlreadyLoggedIn    = "Ya iniciaste sesión."
	MsgLoginSuccess       = "Login exitoso"
	MsgLoginFailed        = "Email o contraseña incorrectos"
	MsgLoggedOut          = "Has cerrado sesión exitosamente"
	MsgLoginRequired      = "Debes iniciar sesión para ver esta página"
	MsgOAuthNotConfigured = "Faltan configurar GOOGLE_CLIENT_ID o GOOGLE_CLIENT_SECRET en el .env"
	MsgOAuthStateExpired  = "La sesión de autenticación ha expirado. Por favor, intenta de nuevo."
	MsgOAuthVerifyFailed  = "Error al verificar el token de Google. Intenta nuevamente."
	MsgOAuthSuccess       = "Inicio de sesión con Google exitoso."
	MsgRegisterSuccess    = "Registro exitoso. Ya puedes iniciar sesión."
	MsgEmailAlreadyExists = "Ya existe una cuenta con ese email"
	MsgRegisterInvalid    = "Datos de registro inválidos"
	MsgInternalError      = "Ocurrió un error inesperado. Intenta nuevamente."
	MsgInvalidRequest     = "La solicitud no es válida. Recarga la página e intenta de nuevo."
)

// NewNotice はNoticeを生成する。
func NewNotice(level, message string) *Notice {
	return &Notice{Level: level, Message: message}
}

// NoticeForError はサービス層のエラーを画面表示用のNoticeに変換する。
// 内部の詳細はメッセージに含めない。
func NoticeForError(err error) *Notice {
	var n *Notice
	switch {
	case errors.As(err, &n):
		return n
	case errors.Is(err, ErrInvalidCredentials):
		return NewNotice(LevelDanger, MsgLoginFailed)
	case errors.Is(err, ErrEmailAlreadyExists):
		return NewNotice(LevelDanger, MsgEmailAlreadyExists)
	case errors.Is(err, ErrInvalidInput):
		return NewNotice(LevelDanger, MsgRegisterInvalid)
	case errors.Is(err, ErrOAuthNotConfigured):
		return NewNotice(LevelDanger, MsgOAuthNotConfigured)
	case errors.Is(err, ErrStateMissing):
		return NewNotice(LevelWarning, MsgOAuthStateExpired)
	case errors.Is(err, ErrStateMismatch), errors.Is(err, ErrTokenVerification):
		return NewNotice(LevelDanger, MsgOAuthVerifyFailed)
	default:
		return NewNotice(LevelDanger, MsgInternalError)
	}
}
