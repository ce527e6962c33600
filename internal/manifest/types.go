package manifest

// FileName is the manifest's name in the output root.
const FileName = "manifest.json"

// Manifest describes the final deliverable set of one pipeline run.
// It is immutable once written.
type Manifest struct {
	Celebrity   string         `json:"celebrity"`
	Generated   string         `json:"generated"` // RFC 3339, UTC
	RunID       string         `json:"runId,omitempty"`
	TotalImages int            `json:"totalImages"`
	Formats     map[string]int `json:"formats"`
	Roles       map[string]int `json:"roles"` // zero-count roles are listed
	Images      []Entry        `json:"images"`
}

// Entry is one output file.
type Entry struct {
	ID               string     `json:"id"` // 8 hex chars
	Filename         string     `json:"filename"`
	OriginalFilename string     `json:"originalFilename"`
	Role             string     `json:"role"`
	Format           string     `json:"format"`
	Dimensions       Dimensions `json:"dimensions"`
	Tags             []string   `json:"tags"`
	SourceURL        string     `json:"sourceUrl"`
	Orientation      string     `json:"orientation"` // landscape, portrait or square
	FileSize         int64      `json:"fileSize"`
	Hash             string     `json:"hash"` // perceptual fingerprint of the source
}

// Dimensions are output pixel sizes.
type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// RelPath is the entry's location relative to the output root.
func (e Entry) RelPath() string {
	return "resized/" + e.Format + "/" + e.Filename
}
