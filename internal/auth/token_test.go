package auth

import (
	"errors"
	"testing"
	"time"
)

func setSecret(t *testing.T, value string) {
	t.Helper()
	t.Setenv(secretEnvVariable, value)
	ResetSecretForTests()
	t.Cleanup(ResetSecretForTests)
}

func TestGenerateAndParseToken(t *testing.T) {
	setSecret(t, "unit-test-secret")

	p := Principal{SubjectID: "user-42", Role: RoleAdmin, OrgID: "org-a"}
	token, err := GenerateToken(p, 30*time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	got, err := ParseAndValidate(token)
	if err != nil {
		t.Fatalf("ParseAndValidate: %v", err)
	}
	if got != p {
		t.Fatalf("principal = %+v, want %+v", got, p)
	}
}

func TestParseRejectsExpiredToken(t *testing.T) {
	setSecret(t, "unit-test-secret")

	p := Principal{SubjectID: "user-42", Role: RoleViewer, OrgID: "org-a"}
	token, err := GenerateToken(p, time.Millisecond)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	if _, err := ParseAndValidate(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestParseRejectsTamperedToken(t *testing.T) {
	setSecret(t, "unit-test-secret")

	p := Principal{SubjectID: "user-42", Role: RoleViewer, OrgID: "org-a"}
	token, err := GenerateToken(p, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	tampered := token[:len(token)-2] + "xx"

	if _, err := ParseAndValidate(tampered); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for tampered token, got %v", err)
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	setSecret(t, "first-secret")
	p := Principal{SubjectID: "user-42", Role: RoleOwner, OrgID: "org-a"}
	token, err := GenerateToken(p, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	setSecret(t, "second-secret")
	if _, err := ParseAndValidate(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken under rotated secret, got %v", err)
	}
}

func TestGenerateTokenRequiresSecret(t *testing.T) {
	setSecret(t, "")

	p := Principal{SubjectID: "user-42", Role: RoleOwner, OrgID: "org-a"}
	if _, err := GenerateToken(p, time.Hour); !errors.Is(err, errMissingSecret) {
		t.Fatalf("expected missing-secret error, got %v", err)
	}
}

func TestGenerateTokenValidatesPrincipal(t *testing.T) {
	setSecret(t, "unit-test-secret")

	cases := []struct {
		name string
		p    Principal
		ttl  time.Duration
	}{
		{name: "empty subject", p: Principal{Role: RoleAdmin, OrgID: "org-a"}, ttl: time.Hour},
		{name: "bad role", p: Principal{SubjectID: "u", Role: Role("Root"), OrgID: "org-a"}, ttl: time.Hour},
		{name: "empty org", p: Principal{SubjectID: "u", Role: RoleAdmin}, ttl: time.Hour},
		{name: "zero ttl", p: Principal{SubjectID: "u", Role: RoleAdmin, OrgID: "org-a"}, ttl: 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := GenerateToken(tc.p, tc.ttl); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
