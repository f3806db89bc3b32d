package ffprobe

import (
	"fmt"
	"strings"
)

// UnknownLanguage is recorded when a stream line carries no language tag.
const UnknownLanguage = "unknown"

// TrackDescriptor describes one subtitle stream inside the container.
type TrackDescriptor struct {
	// Index is the container stream index exactly as ffprobe printed it.
	Index    int    `json:"index"`
	Language string `json:"language"`
	// Format is the codec text up to the first comma.
	Format string `json:"format"`
}

// Description renders a one-line label for listings.
func (t TrackDescriptor) Description() string {
	lang := t.Language
	if strings.TrimSpace(lang) == "" {
		lang = UnknownLanguage
	}
	return fmt.Sprintf("Track %d: %s (%s)", t.Index+1, lang, t.Format)
}

// Codec returns the leading codec token in lower case ("ass (default)" -> "ass").
func (t TrackDescriptor) Codec() string {
	fields := strings.Fields(strings.ToLower(t.Format))
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// AttachmentDescriptor describes one embedded file worth offering for extraction.
type AttachmentDescriptor struct {
	Filename   string `json:"filename"`
	MimeType   string `json:"mimetype"`
	IsSubtitle bool   `json:"is_subtitle"`
	IsFont     bool   `json:"is_font"`
}

// Kind names the attachment class for listings.
func (a AttachmentDescriptor) Kind() string {
	switch {
	case a.IsSubtitle:
		return "subtitle"
	case a.IsFont:
		return "font"
	default:
		return "other"
	}
}

// Result holds the tracks and attachments found in one report, in source order.
type Result struct {
	Tracks      []TrackDescriptor      `json:"tracks"`
	Attachments []AttachmentDescriptor `json:"attachments"`
	// Diagnostic is the raw report the result was parsed from.
	Diagnostic string `json:"-"`
}

// Empty reports whether the report yielded nothing extractable.
func (r Result) Empty() bool {
	return len(r.Tracks) == 0 && len(r.Attachments) == 0
}

// ItemKind tags a SelectionItem.
type ItemKind string

const (
	KindTrack      ItemKind = "track"
	KindAttachment ItemKind = "attachment"
)

// SelectionItem is either a track or an attachment; exactly one pointer is set.
type SelectionItem struct {
	Kind       ItemKind              `json:"kind"`
	Track      *TrackDescriptor      `json:"track,omitempty"`
	Attachment *AttachmentDescriptor `json:"attachment,omitempty"`
}

// Label renders the item for listings.
func (s SelectionItem) Label() string {
	switch s.Kind {
	case KindTrack:
		if s.Track != nil {
			return s.Track.Description()
		}
	case KindAttachment:
		if s.Attachment != nil {
			return fmt.Sprintf("Attachment: %s (%s)", s.Attachment.Filename, s.Attachment.Kind())
		}
	}
	return string(s.Kind)
}

// TrackItem wraps a track as a selection.
func TrackItem(track TrackDescriptor) SelectionItem {
	return SelectionItem{Kind: KindTrack, Track: &track}
}

// AttachmentItem wraps an attachment as a selection.
func AttachmentItem(attachment AttachmentDescriptor) SelectionItem {
	return SelectionItem{Kind: KindAttachment, Attachment: &attachment}
}

// Items lists tracks first, then attachments, preserving report order.
func Items(result Result) []SelectionItem {
	items := make([]SelectionItem, 0, len(result.Tracks)+len(result.Attachments))
	for _, track := range result.Tracks {
		items = append(items, TrackItem(track))
	}
	for _, attachment := range result.Attachments {
		items = append(items, AttachmentItem(attachment))
	}
	return items
}
