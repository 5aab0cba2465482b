package commands

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/urfave/cli/v3"
)

func TestSet_String(t *testing.T) {
	flags, ksApp := newTestApp(t)
	ctx := context.Background()

	var buf bytes.Buffer
	cmd := NewSetCmd(flags, ksApp)
	app := &cli.Command{
		Name:   "keyscope",
		Writer: &buf,
	}
	cmd.Register(app)

	err := app.Run(ctx, []string{"keyscope", "set", "greeting", "hello"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	v, err := ksApp.Store.StringGet(ctx, "greeting")
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if v != "hello" {
		t.Errorf("expected %q, got %q", "hello", v)
	}
}

func TestSet_HashField(t *testing.T) {
	flags, ksApp := newTestApp(t)
	ctx := context.Background()

	var buf bytes.Buffer
	cmd := NewSetCmd(flags, ksApp)
	app := &cli.Command{
		Name:   "keyscope",
		Writer: &buf,
	}
	cmd.Register(app)

	err := app.Run(ctx, []string{"keyscope", "set", "profile", "admin", "--field", "role"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	fields, err := ksApp.Store.HashGetAll(ctx, "profile")
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if fields["role"] != "admin" {
		t.Errorf("expected role=admin, got %v", fields)
	}
}

func TestSet_ZSetMember(t *testing.T) {
	flags, ksApp := newTestApp(t)
	ctx := context.Background()

	var buf bytes.Buffer
	cmd := NewSetCmd(flags, ksApp)
	app := &cli.Command{
		Name:   "keyscope",
		Writer: &buf,
	}
	cmd.Register(app)

	err := app.Run(ctx, []string{"keyscope", "set", "scores", "--member", "alice", "--score", "4.5"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	members, err := ksApp.Store.ZSetRange(ctx, "scores", 0, -1)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(members) != 1 || members[0].Member != "alice" || members[0].Score != 4.5 {
		t.Errorf("unexpected members: %+v", members)
	}
}

func TestSet_PushThenIndex(t *testing.T) {
	flags, ksApp := newTestApp(t)
	ctx := context.Background()

	for _, args := range [][]string{
		{"keyscope", "set", "queue", "first", "--push"},
		{"keyscope", "set", "queue", "second", "--push"},
		// Overwrite the head element in place.
		{"keyscope", "set", "queue", "replaced", "--index", "0"},
	} {
		var buf bytes.Buffer
		cmd := NewSetCmd(flags, ksApp)
		app := &cli.Command{Name: "keyscope", Writer: &buf}
		cmd.Register(app)
		if err := app.Run(ctx, args); err != nil {
			t.Fatalf("run %v: %v", args, err)
		}
	}

	items, err := ksApp.Store.ListRange(ctx, "queue", 0, -1)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(items) != 2 || items[0] != "replaced" || items[1] != "second" {
		t.Errorf("unexpected list: %v", items)
	}
}

func TestSet_TTLFlag(t *testing.T) {
	flags, ksApp := newTestApp(t)
	ctx := context.Background()

	var buf bytes.Buffer
	cmd := NewSetCmd(flags, ksApp)
	app := &cli.Command{
		Name:   "keyscope",
		Writer: &buf,
	}
	cmd.Register(app)

	err := app.Run(ctx, []string{"keyscope", "set", "session", "abc", "--ttl", "1h"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ttl, ok, err := ksApp.Store.TTL(ctx, "session")
	if err != nil {
		t.Fatalf("ttl: %v", err)
	}
	if !ok {
		t.Fatal("expected an expiry to be set")
	}
	if ttl > time.Hour || ttl < 59*time.Minute {
		t.Errorf("ttl %v outside expected window", ttl)
	}
}

func TestSet_RejectsCombinedModes(t *testing.T) {
	flags, ksApp := newTestApp(t)

	var buf bytes.Buffer
	cmd := NewSetCmd(flags, ksApp)
	app := &cli.Command{
		Name:   "keyscope",
		Writer: &buf,
	}
	cmd.Register(app)

	err := app.Run(context.Background(), []string{"keyscope", "set", "k", "v", "--add", "--push"})
	if err == nil {
		t.Fatal("expected an error for combined mode flags")
	}
	if !strings.Contains(err.Error(), "at most one") {
		t.Errorf("unexpected error message: %v", err)
	}
}

func TestSet_ScoreRequiresMember(t *testing.T) {
	flags, ksApp := newTestApp(t)

	var buf bytes.Buffer
	cmd := NewSetCmd(flags, ksApp)
	app := &cli.Command{
		Name:   "keyscope",
		Writer: &buf,
	}
	cmd.Register(app)

	err := app.Run(context.Background(), []string{"keyscope", "set", "scores", "--score", "1.5"})
	if err == nil {
		t.Fatal("expected an error when --score has no --member")
	}
	if !strings.Contains(err.Error(), "--member") {
		t.Errorf("unexpected error message: %v", err)
	}
}

func TestSet_RequiresValue(t *testing.T) {
	flags, ksApp := newTestApp(t)

	var buf bytes.Buffer
	cmd := NewSetCmd(flags, ksApp)
	app := &cli.Command{
		Name:   "keyscope",
		Writer: &buf,
	}
	cmd.Register(app)

	err := app.Run(context.Background(), []string{"keyscope", "set", "lonely"})
	if err == nil {
		t.Fatal("expected an error for a missing value")
	}
}
