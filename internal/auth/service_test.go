package auth

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/hitoshi/muebles/internal/model"
)

// --- モック ---

type mockProvider struct {
	authCodeURLFn func(state string) string
	exchangeFn    func(ctx context.Context, code string) (string, error)
	verifyFn      func(ctx context.Context, raw string) (*Claims, error)
}

func (m *mockProvider) AuthCodeURL(state string) string {
	if m.authCodeURLFn != nil {
		return m.authCodeURLFn(state)
	}
	return "https://accounts.example.com/auth?state=" + url.QueryEscape(state)
}
func (m *mockProvider) Exchange(ctx context.Context, code string) (string, error) {
	return m.exchangeFn(ctx, code)
}
func (m *mockProvider) VerifyIDToken(ctx context.Context, raw string) (*Claims, error) {
	return m.verifyFn(ctx, raw)
}

// --- テスト ---

func TestService_BeginLogin_NotConfigured(t *testing.T) {
	svc := NewService(nil)

	if svc.Enabled() {
		t.Error("Enabled() = true, want false")
	}
	if _, _, err := svc.BeginLogin(); !errors.Is(err, model.ErrOAuthNotConfigured) {
		t.Fatalf("err = %v, want ErrOAuthNotConfigured", err)
	}
}

func TestService_BeginLogin_GeneratesUniqueState(t *testing.T) {
	svc := NewService(&mockProvider{})

	authURL, state1, err := svc.BeginLogin()
	if err != nil {
		t.Fatalf("BeginLogin returned error: %v", err)
	}
	if len(state1) != 64 {
		t.Errorf("len(state) = %d, want 64", len(state1))
	}
	u, err := url.Parse(authURL)
	if err != nil {
		t.Fatalf("invalid url: %v", err)
	}
	if u.Query().Get("state") != state1 {
		t.Error("auth url must embed the state")
	}

	_, state2, err := svc.BeginLogin()
	if err != nil {
		t.Fatalf("BeginLogin returned error: %v", err)
	}
	if state1 == state2 {
		t.Error("state must be unique per login")
	}
}

func TestService_CompleteLogin_MissingStateNeverExchanges(t *testing.T) {
	exchanged := false
	svc := NewService(&mockProvider{
		exchangeFn: func(ctx context.Context, code string) (string, error) {
			exchanged = true
			return "raw", nil
		},
	})

	_, err := svc.CompleteLogin(context.Background(), "", "query-state", "code")
	if !errors.Is(err, model.ErrStateMissing) {
		t.Fatalf("err = %v, want ErrStateMissing", err)
	}
	if exchanged {
		t.Error("token exchange must not be attempted without stored state")
	}
}

func TestService_CompleteLogin_StateMismatch(t *testing.T) {
	exchanged := false
	svc := NewService(&mockProvider{
		exchangeFn: func(ctx context.Context, code string) (string, error) {
			exchanged = true
			return "raw", nil
		},
	})

	_, err := svc.CompleteLogin(context.Background(), "stored", "forged", "code")
	if !errors.Is(err, model.ErrStateMismatch) {
		t.Fatalf("err = %v, want ErrStateMismatch", err)
	}
	if exchanged {
		t.Error("token exchange must not be attempted on state mismatch")
	}
}

func TestService_CompleteLogin_Success(t *testing.T) {
	want := &Claims{Subject: "sub-1", Name: "Ana", Email: "ana@gmail.com", Picture: "https://example.com/p.png"}
	svc := NewService(&mockProvider{
		exchangeFn: func(ctx context.Context, code string) (string, error) {
			if code != "auth-code" {
				t.Errorf("code = %q, want auth-code", code)
			}
			return "raw-id-token", nil
		},
		verifyFn: func(ctx context.Context, raw string) (*Claims, error) {
			if raw != "raw-id-token" {
				t.Errorf("raw = %q, want raw-id-token", raw)
			}
			return want, nil
		},
	})

	got, err := svc.CompleteLogin(context.Background(), "state", "state", "auth-code")
	if err != nil {
		t.Fatalf("CompleteLogin returned error: %v", err)
	}
	if *got != *want {
		t.Errorf("claims = %+v, want %+v", got, want)
	}
}

func TestService_CompleteLogin_ProviderFailures(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		exchange func(ctx context.Context, code string) (string, error)
		verify   func(ctx context.Context, raw string) (*Claims, error)
	}{
		{
			name: "missing code",
			code: "",
		},
		{
			name: "exchange error",
			code: "code",
			exchange: func(ctx context.Context, code string) (string, error) {
				return "", errors.New("invalid_grant")
			},
		},
		{
			name: "verify error",
			code: "code",
			exchange: func(ctx context.Context, code string) (string, error) {
				return "raw", nil
			},
			verify: func(ctx context.Context, raw string) (*Claims, error) {
				return nil, errors.New("bad signature")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(&mockProvider{exchangeFn: tt.exchange, verifyFn: tt.verify})
			_, err := svc.CompleteLogin(context.Background(), "state", "state", tt.code)
			if !errors.Is(err, model.ErrTokenVerification) {
				t.Fatalf("err = %v, want ErrTokenVerification", err)
			}
		})
	}
}

func TestService_CompleteLogin_DropsUnsafePicture(t *testing.T) {
	svc := NewService(&mockProvider{
		exchangeFn: func(ctx context.Context, code string) (string, error) {
			return "raw-id-token", nil
		},
		verifyFn: func(ctx context.Context, raw string) (*Claims, error) {
			return &Claims{Subject: "sub-1", Name: "Ana", Picture: "javascript:alert(1)"}, nil
		},
	})

	got, err := svc.CompleteLogin(context.Background(), "state", "state", "auth-code")
	if err != nil {
		t.Fatalf("CompleteLogin returned error: %v", err)
	}
	if got.Picture != "" {
		t.Errorf("Picture = %q, want empty", got.Picture)
	}
	if got.Subject != "sub-1" || got.Name != "Ana" {
		t.Errorf("claims = %+v", got)
	}
}
