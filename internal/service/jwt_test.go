package service

import (
	"errors"
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	iss := NewTokenIssuer("test-secret")

	tok, err := iss.Generate("camera-1", time.Minute)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	sub, err := iss.Parse(tok)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if sub != "camera-1" {
		t.Fatalf("subject = %q", sub)
	}
}

func TestTokenRejected(t *testing.T) {
	iss := NewTokenIssuer("test-secret")
	other := NewTokenIssuer("other-secret")

	foreign, _ := other.Generate("camera-1", time.Minute)
	expired, _ := iss.Generate("camera-1", -time.Minute)
	noSubject, _ := iss.Generate("", time.Minute)

	for name, tok := range map[string]string{
		"foreign":    foreign,
		"expired":    expired,
		"no subject": noSubject,
		"garbage":    "not.a.token",
	} {
		if _, err := iss.Parse(tok); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("%s: expected ErrInvalidToken, got %v", name, err)
		}
	}
}

func TestDisabledIssuer(t *testing.T) {
	iss := NewTokenIssuer("")
	if iss.Enabled() {
		t.Fatal("empty secret should disable auth")
	}
	if _, err := iss.Generate("x", time.Minute); !errors.Is(err, ErrAuthDisabled) {
		t.Fatalf("expected ErrAuthDisabled, got %v", err)
	}
}
