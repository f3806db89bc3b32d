package ffprobe

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

var (
	trackPrimary   = regexp.MustCompile(`Stream #\d+:(\d+)(?:\(([^)]+)\))?: Subtitle: ([^,]+)(.*)`)
	trackSecondary = regexp.MustCompile(`Stream #\d+:(\d+)(?:\[[^\]]*\])?(?:\(([^)]+)\))?.*?Subtitle:? ([^,]+)`)

	attachmentPrimary   = regexp.MustCompile(`(?i)\s*Attachment:\s+([^,]+),\s+mimetype:\s+([^,\s]+)`)
	attachmentLocalized = regexp.MustCompile(`(?i)^\s*(.+?)\s*\([^)]*(?:附件|attachment)[^)]*,\s*mimetype:\s*([^)]+)\)`)

	attachmentStream = regexp.MustCompile(`Stream #\d+:\d+(?:\[[^\]]*\])?(?:\([^)]*\))?: Attachment\b`)
	metadataLine     = regexp.MustCompile(`(?i)^\s*(filename|mimetype)\s*:\s*(.*?)\s*$`)
	streamLine       = regexp.MustCompile(`^\s*Stream #`)
)

var (
	subtitleExtensions = map[string]struct{}{"srt": {}, "ass": {}, "ssa": {}, "vtt": {}}
	fontExtensions     = map[string]struct{}{"ttf": {}, "otf": {}}
)

// ParseDiagnostics extracts subtitle tracks and classified attachments from an
// ffprobe stream report. It never fails; unrecognized text yields an empty Result.
func ParseDiagnostics(text string) Result {
	result := Result{
		Tracks:      []TrackDescriptor{},
		Attachments: []AttachmentDescriptor{},
	}
	var pending *AttachmentDescriptor

	flush := func() {
		if pending != nil {
			result.addAttachment(pending.Filename, pending.MimeType)
			pending = nil
		}
	}

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimRight(raw, "\r")

		if pending != nil {
			if m := metadataLine.FindStringSubmatch(line); m != nil {
				switch strings.ToLower(m[1]) {
				case "filename":
					pending.Filename = m[2]
				case "mimetype":
					pending.MimeType = m[2]
				}
				continue
			}
			if streamLine.MatchString(line) || !startsIndented(line) {
				flush()
			}
		}

		if track, ok := parseTrackLine(line); ok {
			result.Tracks = append(result.Tracks, track)
			continue
		}
		if m := attachmentPrimary.FindStringSubmatch(line); m != nil {
			result.addAttachment(m[1], m[2])
			continue
		}
		if attachmentStream.MatchString(line) {
			pending = &AttachmentDescriptor{}
			continue
		}
		if m := attachmentLocalized.FindStringSubmatch(line); m != nil {
			result.addAttachment(m[1], m[2])
		}
	}
	flush()
	return result
}

func parseTrackLine(line string) (TrackDescriptor, bool) {
	m := trackPrimary.FindStringSubmatch(line)
	if m == nil {
		m = trackSecondary.FindStringSubmatch(line)
	}
	if m == nil {
		return TrackDescriptor{}, false
	}
	index, err := strconv.Atoi(m[1])
	if err != nil {
		return TrackDescriptor{}, false
	}
	format := strings.TrimSpace(m[3])
	if format == "" {
		return TrackDescriptor{}, false
	}
	lang := strings.TrimSpace(m[2])
	if lang == "" {
		lang = UnknownLanguage
	}
	return TrackDescriptor{Index: index, Language: lang, Format: format}, true
}

func (r *Result) addAttachment(filename, mimeType string) {
	filename = strings.TrimSpace(filename)
	mimeType = strings.TrimSpace(mimeType)
	if filename == "" {
		return
	}
	isSubtitle, isFont := ClassifyAttachment(filename, mimeType)
	if !isSubtitle && !isFont {
		return
	}
	r.Attachments = append(r.Attachments, AttachmentDescriptor{
		Filename:   filename,
		MimeType:   mimeType,
		IsSubtitle: isSubtitle,
		IsFont:     isFont,
	})
}

// ClassifyAttachment decides by extension; the MIME type only matters when
// the filename has no extension at all.
func ClassifyAttachment(filename, mimeType string) (isSubtitle, isFont bool) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	if ext != "" {
		_, isSubtitle = subtitleExtensions[ext]
		_, isFont = fontExtensions[ext]
		return isSubtitle, isFont
	}
	mime := strings.ToLower(mimeType)
	switch {
	case strings.Contains(mime, "font"), strings.Contains(mime, "truetype"), strings.Contains(mime, "opentype"):
		return false, true
	case strings.Contains(mime, "subrip"), strings.Contains(mime, "x-ass"), strings.Contains(mime, "x-ssa"),
		strings.Contains(mime, "text/vtt"), strings.Contains(mime, "x-subtitle"):
		return true, false
	}
	return false, false
}

func startsIndented(line string) bool {
	return line != "" && (line[0] == ' ' || line[0] == '\t')
}
