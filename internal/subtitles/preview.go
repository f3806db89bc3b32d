package subtitles

// DefaultPreviewLimit caps how many cues a preview shows.
const DefaultPreviewLimit = 100

// PreviewResult is a bounded view of a Document.
type PreviewResult struct {
	Format    string `json:"format"`
	Entries   []Cue  `json:"entries"`
	Total     int    `json:"total"`
	Truncated bool   `json:"truncated"`
	Error     string `json:"error,omitempty"`
}

// Preview returns at most limit cues from doc plus the total count; limit <= 0
// uses DefaultPreviewLimit.
func Preview(doc Document, limit int) PreviewResult {
	if limit <= 0 {
		limit = DefaultPreviewLimit
	}
	entries := doc.Entries
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return PreviewResult{
		Format:    doc.Format,
		Entries:   append([]Cue{}, entries...),
		Total:     len(doc.Entries),
		Truncated: len(doc.Entries) > limit,
		Error:     doc.Error,
	}
}
