package httpapi

import (
	"testing"
	"time"
)

func TestTokenAuthLogin(t *testing.T) {
	auth := NewTokenAuth("cdk_pacitan", "pacitan2024")

	token, err := auth.Login("cdk_pacitan", "pacitan2024")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if !auth.Valid(token) {
		t.Fatalf("fresh token must validate")
	}
	if auth.Valid("deadbeef") {
		t.Fatalf("unknown token must not validate")
	}

	if _, err := auth.Login("cdk_pacitan", "salah"); err == nil {
		t.Fatalf("wrong password must fail")
	}
	if _, err := auth.Login("intruder", "pacitan2024"); err == nil {
		t.Fatalf("wrong username must fail")
	}

	other, err := auth.Login("cdk_pacitan", "pacitan2024")
	if err != nil {
		t.Fatalf("second login: %v", err)
	}
	if other == token {
		t.Fatalf("tokens must be unique per login")
	}
}

func TestTokenAuthExpiry(t *testing.T) {
	auth := NewTokenAuth("cdk_pacitan", "pacitan2024")
	now := time.Now()
	auth.nowFn = func() time.Time { return now }

	token, err := auth.Login("cdk_pacitan", "pacitan2024")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if !auth.Valid(token) {
		t.Fatalf("token must be live before expiry")
	}

	now = now.Add(tokenTTL + time.Minute)
	if auth.Valid(token) {
		t.Fatalf("expired token must not validate")
	}
	if auth.Valid(token) {
		t.Fatalf("expired token stays invalid after eviction")
	}
}
