package vcs

import (
	"context"
	"errors"
	"strings"
	"testing"

	apperrors "topicsdk/internal/core/errors"
)

func TestNewCommandCheckoutValidates(t *testing.T) {
	for _, cmd := range []string{"", "   ", "sd edit"} {
		if _, err := NewCommandCheckout(cmd, 10, 1); !apperrors.IsCode(err, apperrors.CodeValidationError) {
			t.Fatalf("expected validation error for %q, got %v", cmd, err)
		}
	}
}

func TestCheckoutSubstitutesPath(t *testing.T) {
	c, err := NewCommandCheckout("sd edit {path}", 0, 1)
	if err != nil {
		t.Fatal(err)
	}
	var gotName string
	var gotArgs []string
	c.run = func(_ context.Context, name string, args ...string) ([]byte, error) {
		gotName, gotArgs = name, args
		return nil, nil
	}
	if err := c.Checkout(context.Background(), "/enl/w_foo/a.xml"); err != nil {
		t.Fatal(err)
	}
	if gotName != "sd" || strings.Join(gotArgs, " ") != "edit /enl/w_foo/a.xml" {
		t.Fatalf("unexpected command %s %v", gotName, gotArgs)
	}
}

func TestCheckoutReportsCommandOutput(t *testing.T) {
	c, err := NewCommandCheckout("sd edit {path}", 0, 1)
	if err != nil {
		t.Fatal(err)
	}
	c.run = func(context.Context, string, ...string) ([]byte, error) {
		return []byte("file not on client\n"), errors.New("exit status 1")
	}
	err = c.Checkout(context.Background(), "a.xml")
	if !apperrors.IsCode(err, apperrors.CodeIO) || !strings.Contains(err.Error(), "file not on client") {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestCheckoutHonoursCancellation(t *testing.T) {
	c, err := NewCommandCheckout("sd edit {path}", 0.001, 1)
	if err != nil {
		t.Fatal(err)
	}
	c.run = func(context.Context, string, ...string) ([]byte, error) { return nil, nil }
	if err := c.Checkout(context.Background(), "a.xml"); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := c.Checkout(ctx, "b.xml"); err == nil {
		t.Fatal("expected cancelled checkout to fail")
	}
}
