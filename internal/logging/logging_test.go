package logging

import (
	"testing"
	"unicode/utf8"
)

func TestNewRejectsUnknownLevel(t *testing.T) {
	if _, err := New("loud"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
	logger, err := New("debug")
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	_ = logger.Sync()
}

func TestPasskeyTruncates(t *testing.T) {
	if got := Passkey("pk_test_1234567").String; got != "pk_tes…" {
		t.Fatalf("truncated passkey = %q", got)
	}
	if got := Passkey("short").String; got != "short" {
		t.Fatalf("short passkey = %q", got)
	}
	got := Passkey("pk_日本語テスト").String
	if got != "pk_日本語…" {
		t.Fatalf("multi-byte passkey = %q", got)
	}
	if !utf8.ValidString(got) {
		t.Fatalf("truncated passkey is not valid UTF-8: %q", got)
	}
}
