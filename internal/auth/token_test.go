package auth

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestIssueAndParseToken(t *testing.T) {
	secret := []byte("secret")
	issued, err := IssueToken(secret, NewClaims("editor", "editor", time.Hour))
	if err != nil {
		t.Fatalf("IssueToken() error = %v", err)
	}
	claims, err := ParseToken(secret, issued)
	if err != nil {
		t.Fatalf("ParseToken() error = %v", err)
	}
	if claims.Sub != "editor" || claims.Role != "editor" || !strings.HasPrefix(claims.JTI, "tok_") {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestParseTokenRejectsExpired(t *testing.T) {
	secret := []byte("secret")
	issued, err := IssueToken(secret, NewClaims("editor", "editor", -time.Minute))
	if err != nil {
		t.Fatalf("IssueToken() error = %v", err)
	}
	if _, err := ParseToken(secret, issued); !errors.Is(err, ErrExpiredToken) {
		t.Fatalf("expected ErrExpiredToken, got %v", err)
	}
}

func TestParseTokenRejectsTampering(t *testing.T) {
	issued, err := IssueToken([]byte("secret"), NewClaims("editor", "editor", time.Hour))
	if err != nil {
		t.Fatalf("IssueToken() error = %v", err)
	}
	tests := map[string]string{
		"wrong secret":  issued,
		"no separator":  strings.ReplaceAll(issued, ".", ""),
		"extra segment": issued + ".x",
		"empty":         "",
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			secret := []byte("secret")
			if name == "wrong secret" {
				secret = []byte("other")
			}
			if _, err := ParseToken(secret, token); !errors.Is(err, ErrInvalidToken) {
				t.Fatalf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}

func TestBearerToken(t *testing.T) {
	if got := BearerToken("Bearer abc.def"); got != "abc.def" {
		t.Fatalf("unexpected %q", got)
	}
	if got := BearerToken("bearer  abc"); got != "abc" {
		t.Fatalf("unexpected %q", got)
	}
	if got := BearerToken("Basic abc"); got != "" {
		t.Fatalf("unexpected %q", got)
	}
}

func TestCheckKey(t *testing.T) {
	hash, err := HashKey("correct horse")
	if err != nil {
		t.Fatalf("HashKey() error = %v", err)
	}
	if err := CheckKey(hash, "correct horse"); err != nil {
		t.Fatalf("CheckKey() error = %v", err)
	}
	if err := CheckKey(hash, "wrong"); !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("expected ErrInvalidKey, got %v", err)
	}
	if err := CheckKey(hash, ""); !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("expected ErrInvalidKey, got %v", err)
	}
	if err := CheckKey("", "anything"); !errors.Is(err, ErrLoginDisabled) {
		t.Fatalf("expected ErrLoginDisabled, got %v", err)
	}
}
