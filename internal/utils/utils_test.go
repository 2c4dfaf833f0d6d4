package utils

import (
	"errors"
	"testing"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	tok, err := NewAccessToken("secret", "user", "user", "sid-1", 5)
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}
	claims, err := ParseAccessToken("secret", tok.Token)
	if err != nil {
		t.Fatalf("ParseAccessToken: %v", err)
	}
	if claims["sub"] != "user" || claims["role"] != "user" || claims["sid"] != "sid-1" {
		t.Fatalf("unexpected claims: %v", claims)
	}
	if _, err := ParseAccessToken("other", tok.Token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("wrong secret accepted: %v", err)
	}
}

func TestAccessTokenExpired(t *testing.T) {
	tok, err := NewAccessToken("secret", "user", "user", "sid-1", -1)
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}
	if _, err := ParseAccessToken("secret", tok.Token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expired token accepted: %v", err)
	}
}

func TestAccessTokenRequiresSession(t *testing.T) {
	tok, _ := NewAccessToken("secret", "user", "user", "", 5)
	if _, err := ParseAccessToken("secret", tok.Token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("token without sid accepted: %v", err)
	}
}

func TestNewSessionID(t *testing.T) {
	a, err := NewSessionID()
	if err != nil {
		t.Fatalf("NewSessionID: %v", err)
	}
	b, _ := NewSessionID()
	if len(a) != 32 || a == b {
		t.Fatalf("unexpected ids %q %q", a, b)
	}
}

func TestPassword(t *testing.T) {
	h, err := HashPassword("pw", 4)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !VerifyPassword(h, "pw") || VerifyPassword(h, "nope") {
		t.Fatalf("VerifyPassword mismatch")
	}
}
