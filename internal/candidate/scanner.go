package candidate

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// imageExtensions lists file extensions picked up by ScanDir. Formats the
// inspector does not accept are still collected so they get a verdict.
var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".webp": true,
	".gif":  true,
	".bmp":  true,
	".tiff": true,
	".tif":  true,
}

// ScanDir walks dir and returns a single-role batch of every image file,
// sorted by relative path so repeated scans yield the same order.
func ScanDir(dir string, role Role) (Batch, error) {
	var paths []string

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			// Skip hidden directories.
			if strings.HasPrefix(d.Name(), ".") && path != dir {
				return filepath.SkipDir
			}
			return nil
		}
		if !imageExtensions[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return Batch{}, err
	}

	sort.Strings(paths)
	b := Batch{Role: role, Candidates: make([]Image, 0, len(paths))}
	for _, p := range paths {
		b.Candidates = append(b.Candidates, Image{Path: p, Title: strings.TrimSuffix(filepath.Base(p), filepath.Ext(p)), Role: role})
	}
	return b, nil
}
