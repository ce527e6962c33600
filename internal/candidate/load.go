package candidate

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// File is the on-disk shape of a candidates list. JSON files parse too,
// since YAML is a superset of JSON.
type File struct {
	Roles []fileRole `yaml:"roles"`
}

type fileRole struct {
	Role       `yaml:",inline"`
	Candidates []Image `yaml:"candidates"`
}

// Load reads a candidates file and returns one Batch per role in file order.
// Relative candidate paths are resolved against the file's directory.
func Load(path string) ([]Batch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read candidates: %w", err)
	}
	batches, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	base := filepath.Dir(path)
	for i := range batches {
		for j := range batches[i].Candidates {
			p := batches[i].Candidates[j].Path
			if !filepath.IsAbs(p) {
				batches[i].Candidates[j].Path = filepath.Join(base, p)
			}
		}
	}
	return batches, nil
}

// Parse decodes a candidates document.
func Parse(data []byte) ([]Batch, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	if len(f.Roles) == 0 {
		return nil, errors.New("no roles defined")
	}

	batches := make([]Batch, 0, len(f.Roles))
	for i, r := range f.Roles {
		r.Role.Name = strings.TrimSpace(r.Role.Name)
		if r.Role.Name == "" {
			return nil, fmt.Errorf("role[%d]: missing name", i)
		}
		b := Batch{Role: r.Role, Candidates: make([]Image, 0, len(r.Candidates))}
		for j, c := range r.Candidates {
			if strings.TrimSpace(c.Path) == "" {
				return nil, fmt.Errorf("role %q candidate[%d]: missing path", r.Role.Name, j)
			}
			switch c.Vision {
			case "", VisionAccept, VisionReject:
			default:
				return nil, fmt.Errorf("role %q candidate[%d]: unknown vision verdict %q", r.Role.Name, j, c.Vision)
			}
			c.Role = b.Role
			b.Candidates = append(b.Candidates, c)
		}
		batches = append(batches, b)
	}
	return batches, nil
}
