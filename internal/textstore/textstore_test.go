package textstore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func sampleData() Data {
	return Data{
		Flights: map[string]map[string]map[string]string{
			"命宮": {
				"忌": {"福德宮": "命忌入福德", "官祿": "命忌入事業"},
				"祿": {"田宅": "命祿入田宅"},
			},
			"兄弟宮": {
				"祿": {"命宮": "兄弟祿入命"},
			},
		},
		Self: map[string]map[string]string{
			"田宅宮": {"忌": "田宅自化忌"},
		},
		Birth: map[string]map[string]string{
			"夫妻": {"祿": "夫妻坐生年祿"},
		},
	}
}

func TestKeyMatcher(t *testing.T) {
	t.Parallel()

	keys := map[string]bool{"命宮": true, "兄弟": true, "宮": true}
	has := func(k string) bool { return keys[k] }

	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{"命宮", "命宮", true},
		{"命", "命宮", true},
		{"兄弟宮", "兄弟", true},
		{"兄弟", "兄弟", true},
		{"夫妻", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := KeyMatcher{}.Resolve(tt.in, has)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("Resolve(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

// checkStore exercises the lookups shared by every Store implementation.
func checkStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	flights := []struct {
		source, kind, target string
		want                 string
	}{
		{"命宮", "忌", "福德", "命忌入福德"},
		{"命", "忌", "福德宮", "命忌入福德"},
		{"命宮", "忌", "事業", "命忌入事業"},
		{"命宮", "祿", "田宅宮", "命祿入田宅"},
		{"兄弟", "祿", "命宮", "兄弟祿入命"},
	}
	for _, f := range flights {
		got, err := s.Flight(ctx, f.source, f.kind, f.target)
		if err != nil || got != f.want {
			t.Errorf("Flight(%s, %s, %s) = %q, %v; want %q", f.source, f.kind, f.target, got, err, f.want)
		}
	}

	if _, err := s.Flight(ctx, "命宮", "科", "福德"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing kind err = %v, want ErrNotFound", err)
	}
	if _, err := s.Flight(ctx, "父母", "忌", "命宮"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing source err = %v, want ErrNotFound", err)
	}

	if got, err := s.Self(ctx, "田宅", "忌"); err != nil || got != "田宅自化忌" {
		t.Errorf("Self(田宅, 忌) = %q, %v", got, err)
	}
	if _, err := s.Self(ctx, "田宅", "祿"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Self(田宅, 祿) err = %v", err)
	}
	if got, err := s.Birth(ctx, "夫妻宮", "祿"); err != nil || got != "夫妻坐生年祿" {
		t.Errorf("Birth(夫妻宮, 祿) = %q, %v", got, err)
	}
}

func TestMemoryStore(t *testing.T) {
	t.Parallel()
	checkStore(t, NewMemoryStore(sampleData()))
}

func TestLoad_TOML(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "texts.toml")
	content := `
[flights."命宮"."忌"]
"福德宮" = "命忌入福德"
"官祿" = "命忌入事業"

[flights."命宮"."祿"]
"田宅" = "命祿入田宅"

[flights."兄弟宮"."祿"]
"命宮" = "兄弟祿入命"

[self."田宅宮"]
"忌" = "田宅自化忌"

[birth."夫妻"]
"祿" = "夫妻坐生年祿"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	checkStore(t, s)

	if _, err := Load(filepath.Join(t.TempDir(), "texts.csv")); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func testSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "texts.db")
	s, err := OpenSQLite(context.Background(), dbPath)
	if err != nil {
		t.Fatalf("OpenSQLite(%q): %v", dbPath, err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteStore(t *testing.T) {
	t.Parallel()

	s := testSQLite(t)
	n, err := s.Import(context.Background(), sampleData())
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if n != 6 {
		t.Errorf("imported %d rows, want 6", n)
	}
	checkStore(t, s)

	// Re-importing upserts instead of duplicating.
	d := Data{Self: map[string]map[string]string{"田宅宮": {"忌": "updated"}}}
	if _, err := s.Import(context.Background(), d); err != nil {
		t.Fatal(err)
	}
	if got, err := s.Self(context.Background(), "田宅", "忌"); err != nil || got != "updated" {
		t.Errorf("after upsert Self = %q, %v", got, err)
	}
}
