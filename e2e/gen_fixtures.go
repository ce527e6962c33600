//go:build ignore

// gen_fixtures writes a small candidates set and candidates.yaml for an
// end-to-end smoke run of printcurate build.
// Usage: go run gen_fixtures.go <output_dir>
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/AnyUserName/printcurate-cli/internal/testimage"
)

type fixture struct {
	Path      string `yaml:"path"`
	SourceURL string `yaml:"sourceUrl,omitempty"`
	Title     string `yaml:"title,omitempty"`
}

type role struct {
	Name       string    `yaml:"name"`
	Celebrity  string    `yaml:"celebrity"`
	Character  string    `yaml:"character,omitempty"`
	VoiceRole  bool      `yaml:"voiceRole,omitempty"`
	Candidates []fixture `yaml:"candidates"`
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: gen_fixtures <output_dir>")
		os.Exit(1)
	}
	dir := os.Args[1]
	raw := filepath.Join(dir, "raw")
	if err := os.MkdirAll(raw, 0o755); err != nil {
		fail(err)
	}

	twilight := role{Name: "Twilight", Celebrity: "Kristen Stewart", Character: "Bella Swan"}
	for i := int64(1); i <= 10; i++ {
		w, h, layout := 2400, 3000, i
		switch i {
		case 7:
			layout = 3 // near-duplicate of #3
		case 9:
			w, h = 800, 600 // too small for any print
		}
		name := fmt.Sprintf("twilight-%02d.jpg", i)
		write(filepath.Join(raw, name), w, h, layout, i)
		twilight.Candidates = append(twilight.Candidates, fixture{
			Path:      "raw/" + name,
			SourceURL: "https://images.example.org/twilight/" + name,
			Title:     "Twilight (2008) Kristen Stewart as Bella Swan",
		})
	}

	pokemon := role{Name: "Pokémon", Celebrity: "Ikue Otani", Character: "Pikachu", VoiceRole: true}
	for i, name := range []string{"pikachu-official-art.jpg", "ash-ketchum-actor-headshot.jpg"} {
		write(filepath.Join(raw, name), 3300, 5100, int64(20+i), int64(i))
		pokemon.Candidates = append(pokemon.Candidates, fixture{Path: "raw/" + name})
	}

	data, err := yaml.Marshal(map[string][]role{"roles": {twilight, pokemon}})
	if err != nil {
		fail(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "candidates.yaml"), data, 0o644); err != nil {
		fail(err)
	}
	fmt.Fprintf(os.Stderr, "[gen_fixtures] created 12 candidates in %s\n", dir)
}

func write(path string, w, h int, layout, grain int64) {
	if err := testimage.WriteJPEG(path, testimage.Blocks(w, h, layout, grain), 92); err != nil {
		fail(err)
	}
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "[gen_fixtures]", err)
	os.Exit(1)
}
