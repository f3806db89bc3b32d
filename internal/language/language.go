package language

import (
	"strings"

	xlanguage "golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// bibliographic maps ISO 639-2/B codes, common in Matroska headers, onto
// their terminology equivalents that x/text understands.
var bibliographic = map[string]string{
	"alb": "sqi",
	"arm": "hye",
	"baq": "eus",
	"bur": "mya",
	"chi": "zho",
	"cze": "ces",
	"dut": "nld",
	"fre": "fra",
	"geo": "kat",
	"ger": "deu",
	"gre": "ell",
	"ice": "isl",
	"mac": "mkd",
	"mao": "mri",
	"may": "msa",
	"per": "fas",
	"rum": "ron",
	"slo": "slk",
	"tib": "bod",
	"wel": "cym",
}

// undetermined covers the placeholders containers use for "no language".
var undetermined = map[string]struct{}{
	"":        {},
	"und":     {},
	"unknown": {},
	"mis":     {},
	"mul":     {},
	"zxx":     {},
}

var namer = display.English.Languages()

// Parse converts a stream language code into a tag. ok is false for empty,
// undetermined or unrecognized codes.
func Parse(code string) (xlanguage.Tag, bool) {
	code = strings.ToLower(strings.TrimSpace(code))
	if _, skip := undetermined[code]; skip {
		return xlanguage.Und, false
	}
	if mapped, found := bibliographic[code]; found {
		code = mapped
	}
	tag, err := xlanguage.Parse(code)
	if err != nil || tag == xlanguage.Und {
		return xlanguage.Und, false
	}
	return tag, true
}

// ToISO2 converts any recognized language code to ISO 639-1 (2-letter).
// Returns empty string for unrecognized input or languages without a 2-letter code.
func ToISO2(code string) string {
	tag, ok := Parse(code)
	if !ok {
		return ""
	}
	base, _ := tag.Base()
	if s := base.String(); len(s) == 2 {
		return s
	}
	return ""
}

// ToISO3 converts any recognized language code to ISO 639-2/T (3-letter).
// Returns "und" for unrecognized input.
func ToISO3(code string) string {
	tag, ok := Parse(code)
	if !ok {
		return "und"
	}
	base, _ := tag.Base()
	return base.ISO3()
}

// DisplayName returns a human-readable English language name.
// Returns "Unknown" for empty or undetermined input, or the uppercased code for unrecognized input.
func DisplayName(code string) string {
	tag, ok := Parse(code)
	if !ok {
		trimmed := strings.TrimSpace(code)
		if _, skip := undetermined[strings.ToLower(trimmed)]; skip {
			return "Unknown"
		}
		return strings.ToUpper(trimmed)
	}
	if name := namer.Name(tag); name != "" {
		return name
	}
	return strings.ToUpper(strings.TrimSpace(code))
}

// Equal reports whether two codes name the same base language ("eng" == "en").
func Equal(a, b string) bool {
	ta, okA := Parse(a)
	tb, okB := Parse(b)
	if !okA || !okB {
		return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
	}
	baseA, _ := ta.Base()
	baseB, _ := tb.Base()
	return baseA == baseB
}
