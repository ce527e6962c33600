package manifest

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/AnyUserName/printcurate-cli/internal/candidate"
	"github.com/AnyUserName/printcurate-cli/internal/phash"
	"github.com/AnyUserName/printcurate-cli/internal/printformat"
	"github.com/AnyUserName/printcurate-cli/internal/render"
	"github.com/AnyUserName/printcurate-cli/internal/testimage"
)

var twilight = candidate.Role{Name: "Twilight", Celebrity: "Kristen Stewart", Character: "Bella Swan"}

// renderSet writes real outputs so Validate has files to check.
func renderSet(t *testing.T, root string) []render.Output {
	t.Helper()
	r := render.New(root)
	var outs []render.Output
	srcs := []struct {
		w, h int
		f    printformat.Format
	}{
		{400, 500, printformat.Print8x10},
		{500, 400, printformat.Print8x10},
		{330, 510, printformat.Print11x17},
	}
	for i, s := range srcs {
		img := testimage.Blocks(s.w, s.h, int64(i+1), int64(i+1))
		fp, err := phash.Compute(img)
		if err != nil {
			t.Fatalf("fingerprint: %v", err)
		}
		o, err := r.Render(img, s.f, i+1, render.Names{Celebrity: twilight.Celebrity, Show: twilight.Name})
		if err != nil {
			t.Fatalf("render: %v", err)
		}
		o.Source = candidate.Image{Path: filepath.Join("in", "cand"+string(rune('a'+i))+".jpg"), SourceURL: "https://example.org/x.jpg", Role: twilight}
		o.Fingerprint = fp
		outs = append(outs, o)
	}
	return outs
}

func TestBuildCounts(t *testing.T) {
	root := t.TempDir()
	outs := renderSet(t, root)
	m := Build(outs, Info{
		Celebrity: "Kristen Stewart",
		Roles:     []string{"Twilight", "Panic Room"},
		Generated: time.Date(2026, 1, 2, 3, 4, 5, 0, time.FixedZone("x", 3600)),
	})

	if m.TotalImages != 3 || len(m.Images) != 3 {
		t.Fatalf("total: got %d/%d, want 3", m.TotalImages, len(m.Images))
	}
	if m.Formats["8x10"] != 2 || m.Formats["11x17"] != 1 {
		t.Errorf("formats: %v", m.Formats)
	}
	if m.Roles["Twilight"] != 3 {
		t.Errorf("roles: %v", m.Roles)
	}
	if n, ok := m.Roles["Panic Room"]; !ok || n != 0 {
		t.Errorf("empty role should be listed with zero, got %v", m.Roles)
	}
	if got := m.EmptyRoles(); len(got) != 1 || got[0] != "Panic Room" {
		t.Errorf("empty roles: %v", got)
	}
	if m.Generated != "2026-01-02T02:04:05Z" {
		t.Errorf("generated: got %q", m.Generated)
	}

	e := m.Images[1]
	if e.Orientation != "landscape" || e.Dimensions.Width != 3000 || e.Dimensions.Height != 2400 {
		t.Errorf("landscape entry: %+v", e)
	}
	if e.OriginalFilename != "candb.jpg" || e.Role != "Twilight" {
		t.Errorf("provenance: %+v", e)
	}
	if !strings.HasPrefix(e.Hash, "p:") {
		t.Errorf("hash: %q", e.Hash)
	}
	if !strings.Contains(strings.Join(e.Tags, ","), "Bella Swan") {
		t.Errorf("tags: %v", e.Tags)
	}
}

func TestBuildIDsStable(t *testing.T) {
	root := t.TempDir()
	outs := renderSet(t, root)
	a := Build(outs, Info{Celebrity: "x"})
	b := Build(outs, Info{Celebrity: "x"})
	seen := map[string]bool{}
	for i := range a.Images {
		if a.Images[i].ID != b.Images[i].ID {
			t.Errorf("id %d not stable: %s vs %s", i, a.Images[i].ID, b.Images[i].ID)
		}
		if seen[a.Images[i].ID] {
			t.Errorf("duplicate id %s", a.Images[i].ID)
		}
		seen[a.Images[i].ID] = true
	}
}

func TestWriteReadValidate(t *testing.T) {
	root := t.TempDir()
	m := Build(renderSet(t, root), Info{Celebrity: "Kristen Stewart", Roles: []string{"Twilight"}})

	path := filepath.Join(root, FileName)
	if err := WriteJSON(m, path); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, base, err := Read(root)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if base != root {
		t.Errorf("base: got %q, want %q", base, root)
	}
	if got.TotalImages != 3 || got.Celebrity != "Kristen Stewart" {
		t.Errorf("round trip: %+v", got)
	}
	if errs := Validate(got, base); len(errs) != 0 {
		t.Fatalf("expected valid manifest, got %v", errs)
	}
}

func TestWriteJSONStable(t *testing.T) {
	root := t.TempDir()
	m := Build(renderSet(t, root), Info{Celebrity: "x", Generated: time.Unix(0, 0)})
	p1, p2 := filepath.Join(root, "a.json"), filepath.Join(root, "b.json")
	if err := WriteJSON(m, p1); err != nil {
		t.Fatal(err)
	}
	if err := WriteJSON(m, p2); err != nil {
		t.Fatal(err)
	}
	d1, _ := os.ReadFile(p1)
	d2, _ := os.ReadFile(p2)
	if string(d1) != string(d2) {
		t.Error("manifest serialization is not stable")
	}
}

func TestValidateDetectsProblems(t *testing.T) {
	root := t.TempDir()
	m := Build(renderSet(t, root), Info{Celebrity: "x", Roles: []string{"Twilight"}})

	m.TotalImages = 4
	m.Images[0].Dimensions.Width = 1
	m.Images[1].ID = m.Images[2].ID
	if err := os.Remove(filepath.Join(root, filepath.FromSlash(m.Images[2].RelPath()))); err != nil {
		t.Fatal(err)
	}

	errs := strings.Join(Validate(m, root), "\n")
	for _, want := range []string{"totalImages mismatch", "dimensions mismatch", "duplicate id", "file not found"} {
		if !strings.Contains(errs, want) {
			t.Errorf("missing %q in:\n%s", want, errs)
		}
	}
}

func TestManifestIgnoresUnknownFields(t *testing.T) {
	raw := `{
		"celebrity": "x",
		"generated": "2025-01-01T00:00:00Z",
		"totalImages": 0,
		"formats": {},
		"roles": {"Twilight": 0},
		"images": [],
		"future_field": true
	}`
	var m Manifest
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		t.Fatalf("unmarshal with unknown fields: %v", err)
	}
	if m.Roles["Twilight"] != 0 || m.Celebrity != "x" {
		t.Errorf("parsed: %+v", m)
	}
}
