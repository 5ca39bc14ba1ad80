package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tendant/simple-notes-saas/pkg/auth"
	"github.com/tendant/simple-notes-saas/pkg/notes"
	"github.com/tendant/simple-notes-saas/pkg/store"
	"github.com/tendant/simple-notes-saas/pkg/tenant"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	hash, err := auth.HashPassword(store.SeedPassword)
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	st := store.NewMemoryStore(hash)

	tokens := auth.NewTokenService(auth.TokenConfig{Secret: []byte("test-secret"), Issuer: "test"})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return NewRouter(RouterConfig{
		Logger:         logger,
		TokenService:   tokens,
		LoginService:   auth.NewLoginService(st, tokens),
		NotesService:   notes.NewService(st),
		TenantsService: tenant.NewService(st),
	})
}

func doJSON(t *testing.T, router http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func login(t *testing.T, router http.Handler, email string) string {
	t.Helper()

	rec := doJSON(t, router, http.MethodPost, "/v1/auth/login", "", map[string]string{
		"email":    email,
		"password": store.SeedPassword,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login as %s: status = %d, body = %s", email, rec.Code, rec.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	return resp.Token
}

func TestEndToEnd_QuotaAndUpgrade(t *testing.T) {
	router := newTestRouter(t)
	token := login(t, router, "admin@acme.test")

	// Three creates succeed with ids 1..3.
	for i := 1; i <= 3; i++ {
		rec := doJSON(t, router, http.MethodPost, "/v1/notes", token, map[string]string{
			"title":   fmt.Sprintf("note %d", i),
			"content": "content",
		})
		if rec.Code != http.StatusCreated {
			t.Fatalf("create %d: status = %d, body = %s", i, rec.Code, rec.Body.String())
		}
		var note struct {
			ID int64 `json:"id"`
		}
		json.NewDecoder(rec.Body).Decode(&note)
		if note.ID != int64(i) {
			t.Errorf("create %d returned id %d", i, note.ID)
		}
	}

	// Fourth create hits the free-plan limit.
	rec := doJSON(t, router, http.MethodPost, "/v1/notes", token, map[string]string{
		"title": "note 4", "content": "content",
	})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("fourth create: status = %d, want 403", rec.Code)
	}

	// Count is still three.
	rec = doJSON(t, router, http.MethodGet, "/v1/notes", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: status = %d", rec.Code)
	}
	var list []json.RawMessage
	json.NewDecoder(rec.Body).Decode(&list)
	if len(list) != 3 {
		t.Fatalf("list returned %d notes, want 3", len(list))
	}

	// Admin upgrades the tenant.
	rec = doJSON(t, router, http.MethodPost, "/v1/tenants/acme/upgrade", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("upgrade: status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var upgrade struct {
		Plan string `json:"plan"`
	}
	json.NewDecoder(rec.Body).Decode(&upgrade)
	if upgrade.Plan != "pro" {
		t.Errorf("upgrade plan = %q, want pro", upgrade.Plan)
	}

	// The same already-issued token now creates a fourth note, id 4.
	rec = doJSON(t, router, http.MethodPost, "/v1/notes", token, map[string]string{
		"title": "note 4", "content": "content",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create after upgrade: status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var note struct {
		ID int64 `json:"id"`
	}
	json.NewDecoder(rec.Body).Decode(&note)
	if note.ID != 4 {
		t.Errorf("note id = %d, want 4", note.ID)
	}
}

func TestEndToEnd_TenantIsolation(t *testing.T) {
	router := newTestRouter(t)
	acmeToken := login(t, router, "admin@acme.test")
	globexToken := login(t, router, "admin@globex.test")

	rec := doJSON(t, router, http.MethodPost, "/v1/notes", acmeToken, map[string]string{
		"title": "acme secret", "content": "content",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: status = %d", rec.Code)
	}
	var note struct {
		ID int64 `json:"id"`
	}
	json.NewDecoder(rec.Body).Decode(&note)

	// Globex sees an empty list and 404 on every direct access, whether or
	// not the note exists under acme.
	rec = doJSON(t, router, http.MethodGet, "/v1/notes", globexToken, nil)
	var list []json.RawMessage
	json.NewDecoder(rec.Body).Decode(&list)
	if len(list) != 0 {
		t.Errorf("globex list has %d notes, want 0", len(list))
	}

	paths := []struct {
		method string
		path   string
		body   any
	}{
		{http.MethodGet, fmt.Sprintf("/v1/notes/%d", note.ID), nil},
		{http.MethodPut, fmt.Sprintf("/v1/notes/%d", note.ID), map[string]string{"title": "x", "content": "y"}},
		{http.MethodDelete, fmt.Sprintf("/v1/notes/%d", note.ID), nil},
	}
	for _, p := range paths {
		rec := doJSON(t, router, p.method, p.path, globexToken, p.body)
		if rec.Code != http.StatusNotFound {
			t.Errorf("%s %s as globex: status = %d, want 404", p.method, p.path, rec.Code)
		}
	}

	// The note is still intact for acme.
	rec = doJSON(t, router, http.MethodGet, fmt.Sprintf("/v1/notes/%d", note.ID), acmeToken, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("acme read after globex attempts: status = %d", rec.Code)
	}
}

func TestEndToEnd_AuthAndRoles(t *testing.T) {
	router := newTestRouter(t)

	// No token.
	rec := doJSON(t, router, http.MethodGet, "/v1/notes", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("no token: status = %d, want 401", rec.Code)
	}

	// Bad credentials.
	rec = doJSON(t, router, http.MethodPost, "/v1/auth/login", "", map[string]string{
		"email": "admin@acme.test", "password": "wrong",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("bad credentials: status = %d, want 401", rec.Code)
	}

	// Member cannot upgrade.
	memberToken := login(t, router, "user@acme.test")
	rec = doJSON(t, router, http.MethodPost, "/v1/tenants/acme/upgrade", memberToken, nil)
	if rec.Code != http.StatusForbidden {
		t.Errorf("member upgrade: status = %d, want 403", rec.Code)
	}

	// Admin of another tenant cannot upgrade acme: the slug is checked
	// against the principal's tenant.
	globexToken := login(t, router, "admin@globex.test")
	rec = doJSON(t, router, http.MethodPost, "/v1/tenants/acme/upgrade", globexToken, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("cross-tenant upgrade: status = %d, want 404", rec.Code)
	}
}

func TestEndToEnd_Validation(t *testing.T) {
	router := newTestRouter(t)
	token := login(t, router, "user@acme.test")

	tests := []struct {
		name string
		body map[string]string
	}{
		{"missing title", map[string]string{"content": "c"}},
		{"missing content", map[string]string{"title": "t"}},
		{"whitespace only", map[string]string{"title": "  ", "content": "c"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, router, http.MethodPost, "/v1/notes", token, tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestHealth(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/health", "", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("health: status = %d, want 200", rec.Code)
	}
}
