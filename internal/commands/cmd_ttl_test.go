package commands

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/urfave/cli/v3"
)

func TestTTL_ShowNone(t *testing.T) {
	flags, ksApp := newTestApp(t)
	ctx := context.Background()

	if err := ksApp.Store.StringSet(ctx, "k", "v"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	var buf bytes.Buffer
	cmd := NewTTLCmd(flags, ksApp)
	app := &cli.Command{
		Name:   "keyscope",
		Writer: &buf,
	}
	cmd.Register(app)

	err := app.Run(ctx, []string{"keyscope", "ttl", "k"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := strings.TrimSpace(buf.String()); got != "none" {
		t.Errorf("expected none, got %q", got)
	}
}

func TestTTL_SetThenShow(t *testing.T) {
	flags, ksApp := newTestApp(t)
	ctx := context.Background()

	if err := ksApp.Store.StringSet(ctx, "k", "v"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	{
		var buf bytes.Buffer
		cmd := NewTTLCmd(flags, ksApp)
		app := &cli.Command{Name: "keyscope", Writer: &buf}
		cmd.Register(app)

		if err := app.Run(ctx, []string{"keyscope", "ttl", "k", "1h"}); err != nil {
			t.Fatalf("set ttl: %v", err)
		}
	}

	var buf bytes.Buffer
	cmd := NewTTLCmd(flags, ksApp)
	app := &cli.Command{Name: "keyscope", Writer: &buf}
	cmd.Register(app)

	if err := app.Run(ctx, []string{"keyscope", "ttl", "k"}); err != nil {
		t.Fatalf("show ttl: %v", err)
	}

	d, err := time.ParseDuration(strings.TrimSpace(buf.String()))
	if err != nil {
		t.Fatalf("output %q is not a duration: %v", buf.String(), err)
	}
	if d > time.Hour || d < 59*time.Minute {
		t.Errorf("ttl %v outside expected window", d)
	}
}

func TestTTL_Clear(t *testing.T) {
	flags, ksApp := newTestApp(t)
	ctx := context.Background()

	if err := ksApp.Store.StringSet(ctx, "k", "v"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := ksApp.Store.Expire(ctx, "k", time.Hour); err != nil {
		t.Fatalf("seed expiry: %v", err)
	}

	var buf bytes.Buffer
	cmd := NewTTLCmd(flags, ksApp)
	app := &cli.Command{
		Name:   "keyscope",
		Writer: &buf,
	}
	cmd.Register(app)

	err := app.Run(ctx, []string{"keyscope", "ttl", "k", "none"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, ok, err := ksApp.Store.TTL(ctx, "k")
	if err != nil {
		t.Fatalf("ttl: %v", err)
	}
	if ok {
		t.Error("expected the expiry to be cleared")
	}
}

func TestTTL_RejectsBadDuration(t *testing.T) {
	flags, ksApp := newTestApp(t)

	var buf bytes.Buffer
	cmd := NewTTLCmd(flags, ksApp)
	app := &cli.Command{
		Name:   "keyscope",
		Writer: &buf,
	}
	cmd.Register(app)

	err := app.Run(context.Background(), []string{"keyscope", "ttl", "k", "whenever"})
	if err == nil {
		t.Fatal("expected an error for a malformed duration")
	}
	if !strings.Contains(err.Error(), "invalid duration") {
		t.Errorf("unexpected error message: %v", err)
	}
}
