package corpus

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestResolvePicksFirstExisting(t *testing.T) {
	dir := t.TempDir()
	second := writeFile(t, dir, "second.json", "[]")
	third := writeFile(t, dir, "third.json", "[]")

	got, err := Resolve([]string{filepath.Join(dir, "missing.json"), second, third})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != second {
		t.Errorf("Resolve = %q, want %q", got, second)
	}
}

func TestResolveNoneFound(t *testing.T) {
	dir := t.TempDir()
	_, err := Resolve([]string{filepath.Join(dir, "a.json"), filepath.Join(dir, "b.json")})
	if err == nil {
		t.Fatal("expected error when no candidate exists")
	}
}

func TestLoadParsesRecords(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "corpus.json", `[
		{"scheme_name": "PM Scholarship", "details": "For students aged 18 to 25"},
		{"name": "Widow Pension", "description": "Monthly pension for widows"}
	]`)

	records, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0]["scheme_name"] != "PM Scholarship" {
		t.Errorf("first record name = %q", records[0]["scheme_name"])
	}
	if records[1]["description"] != "Monthly pension for widows" {
		t.Errorf("second record description = %q", records[1]["description"])
	}
}

func TestLoadRecoversFromControlCharacters(t *testing.T) {
	dir := t.TempDir()
	// A raw control byte inside a JSON string is invalid; the loader should
	// strip it and retry.
	path := writeFile(t, dir, "dirty.json", "[{\"scheme_name\": \"Bad\x01Scheme\"}]")

	records, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	if records[0]["scheme_name"] != "BadScheme" {
		t.Errorf("name = %q, want control char stripped", records[0]["scheme_name"])
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestCoerceString(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"text", "text"},
		{float64(12000), "12000"},
		{12.5, "12.5"},
		{[]any{"a", "b", float64(3)}, "a b 3"},
		{true, "true"},
	}
	for _, tt := range tests {
		if got := coerceString(tt.in); got != tt.want {
			t.Errorf("coerceString(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
