package msgcat

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestEmbeddedDefaults(t *testing.T) {
	c, err := New("")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got, err := c.Render("error.room_not_found", map[string]any{"Room": "ABC123"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(got, "ABC123") {
		t.Fatalf("rendered %q", got)
	}
	if _, err := c.Render("error.not_a_thing", nil); err == nil {
		t.Fatal("unknown key rendered")
	}
}

func TestRenderMissingDataFails(t *testing.T) {
	c, err := New("")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	// Placeholder with no data must fail, not render "<no value>".
	if _, err := c.Render("error.room_not_found", nil); err == nil {
		t.Fatal("missing template data accepted")
	}
}

func TestRenderOrFallsBack(t *testing.T) {
	c, err := New("")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := c.RenderOr("error.nope", "fallback text", nil); got != "fallback text" {
		t.Fatalf("got %q", got)
	}
	if got := c.RenderOr("error.out_of_turn", "fallback", nil); got == "fallback" {
		t.Fatal("existing key fell back")
	}
}

func TestOverrideDir(t *testing.T) {
	dir := t.TempDir()
	override := "error:\n  out_of_turn: \"Wait for {{.Opponent}} to move.\"\n"
	if err := os.WriteFile(filepath.Join(dir, "10-local.yaml"), []byte(override), 0o644); err != nil {
		t.Fatalf("write override: %v", err)
	}

	c, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got, err := c.Render("error.out_of_turn", map[string]any{"Opponent": "bob"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got != "Wait for bob to move." {
		t.Fatalf("rendered %q", got)
	}
	// Untouched keys keep their embedded defaults.
	if _, err := c.Render("error.illegal_move", nil); err != nil {
		t.Fatalf("default lost: %v", err)
	}
}

func TestOverrideDirMissing(t *testing.T) {
	if _, err := New(filepath.Join(t.TempDir(), "absent")); err == nil {
		t.Fatal("missing override dir accepted")
	}
}
