package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/keyscope/internal/core/keyspace"
)

func TestGet_PrintsDocument(t *testing.T) {
	flags, ksApp := newTestApp(t)
	ctx := context.Background()

	if err := ksApp.Store.HashSet(ctx, "cfg", map[string]string{"host": "localhost", "port": "6379"}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	var buf bytes.Buffer
	cmd := NewGetCmd(flags, ksApp)
	app := &cli.Command{
		Name:   "keyscope",
		Writer: &buf,
	}
	cmd.Register(app)

	err := app.Run(ctx, []string{"keyscope", "get", "cfg"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	doc, err := keyspace.DecodeDocument(buf.Bytes())
	if err != nil {
		t.Fatalf("output is not a document: %v\n%s", err, buf.String())
	}
	if doc.Key != "cfg" || doc.Type != keyspace.TypeHash {
		t.Errorf("unexpected document header: %+v", doc)
	}
	if doc.TTLSeconds != nil {
		t.Errorf("cfg has no expiry, got ttlSeconds %v", *doc.TTLSeconds)
	}

	var fields map[string]string
	if err := json.Unmarshal(doc.Value, &fields); err != nil {
		t.Fatalf("decode value: %v", err)
	}
	if fields["host"] != "localhost" || fields["port"] != "6379" {
		t.Errorf("unexpected fields: %v", fields)
	}
}

func TestGet_MissingKey(t *testing.T) {
	flags, ksApp := newTestApp(t)

	var buf bytes.Buffer
	cmd := NewGetCmd(flags, ksApp)
	app := &cli.Command{
		Name:   "keyscope",
		Writer: &buf,
	}
	cmd.Register(app)

	err := app.Run(context.Background(), []string{"keyscope", "get", "ghost"})
	if !errors.Is(err, keyspace.ErrKeyNotFound) {
		t.Errorf("expected ErrKeyNotFound, got %v", err)
	}
}

func TestGet_RequiresKey(t *testing.T) {
	flags, ksApp := newTestApp(t)

	var buf bytes.Buffer
	cmd := NewGetCmd(flags, ksApp)
	app := &cli.Command{
		Name:   "keyscope",
		Writer: &buf,
	}
	cmd.Register(app)

	err := app.Run(context.Background(), []string{"keyscope", "get"})
	if err == nil {
		t.Fatal("expected an error for a missing key argument")
	}
}
