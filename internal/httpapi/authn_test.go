package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"taskdeck.org/internal/auth"
)

func setTokenSecret(t *testing.T) {
	t.Helper()
	t.Setenv("TASKDECK_AUTH_SECRET", "httpapi-test-secret")
	auth.ResetSecretForTests()
	t.Cleanup(auth.ResetSecretForTests)
}

func TestWithAuthRejectsMissingToken(t *testing.T) {
	setTokenSecret(t)
	api := New(ReadyProbe{}, "test", &stubTaskService{}, &stubLoginService{})
	h := api.withAuth(api.mux)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/tasks", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestWithAuthRejectsGarbageToken(t *testing.T) {
	setTokenSecret(t)
	api := New(ReadyProbe{}, "test", &stubTaskService{}, &stubLoginService{})
	h := api.withAuth(api.mux)

	req := httptest.NewRequest(http.MethodGet, "/v1/tasks", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestWithAuthAcceptsValidToken(t *testing.T) {
	setTokenSecret(t)
	p := auth.Principal{SubjectID: "user-1", Role: auth.RoleViewer, OrgID: "org-a"}
	token, err := auth.GenerateToken(p, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	var got auth.Principal
	api := New(ReadyProbe{}, "test", &stubTaskService{}, &stubLoginService{})
	h := api.withAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = auth.PrincipalFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/tasks", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if got != p {
		t.Fatalf("principal = %+v, want %+v", got, p)
	}
}

func TestWithAuthSkipsPublicPaths(t *testing.T) {
	setTokenSecret(t)
	api := New(ReadyProbe{}, "test", &stubTaskService{}, &stubLoginService{token: "x"})
	h := api.withAuth(api.mux)

	for _, path := range []string{"/healthz", "/readyz", "/metrics"} {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code == http.StatusUnauthorized {
			t.Fatalf("public path %s required auth", path)
		}
	}
}

func TestExtractBearerToken(t *testing.T) {
	cases := []struct {
		name    string
		header  string
		want    string
		wantErr bool
	}{
		{name: "valid", header: "Bearer abc.def.ghi", want: "abc.def.ghi"},
		{name: "case insensitive scheme", header: "bearer abc", want: "abc"},
		{name: "empty", header: "", wantErr: true},
		{name: "wrong scheme", header: "Basic dXNlcg==", wantErr: true},
		{name: "scheme only", header: "Bearer ", wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := extractBearerToken(tc.header)
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("extractBearerToken: %v", err)
			}
			if got != tc.want {
				t.Fatalf("token = %q, want %q", got, tc.want)
			}
		})
	}
}
