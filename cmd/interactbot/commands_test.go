package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"interactbot/pkg/commands"
	"interactbot/pkg/handlers"
	"interactbot/pkg/logger"
	"interactbot/pkg/router"
)

func builtinRegistry(t *testing.T) *commands.Registry {
	t.Helper()
	registry := commands.NewRegistry(nil, "", logger.Nop())
	if err := handlers.Register(registry, router.New(logger.Nop())); err != nil {
		t.Fatalf("Register: %v", err)
	}
	return registry
}

func TestExportJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := exportCommands(&buf, builtinRegistry(t), "json"); err != nil {
		t.Fatalf("export: %v", err)
	}

	var got []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 2 || got[0]["name"] != "test" || got[0]["dm_permission"] != true {
		t.Fatalf("unexpected export %v", got)
	}
}

func TestExportYAML(t *testing.T) {
	var buf bytes.Buffer
	if err := exportCommands(&buf, builtinRegistry(t), "yaml"); err != nil {
		t.Fatalf("export: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"- name: test", "description: Test command.", "dm_permission: true", "- name: example"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in:\n%s", want, out)
		}
	}
	if strings.Contains(out, "{") {
		t.Fatalf("expected block style yaml:\n%s", out)
	}
}

func TestExportUnknownFormat(t *testing.T) {
	if err := exportCommands(&bytes.Buffer{}, builtinRegistry(t), "toml"); err == nil {
		t.Fatal("expected error for unknown format")
	}
}
