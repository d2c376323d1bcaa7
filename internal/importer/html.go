package importer

import (
	"regexp"
	"strings"
)

var (
	hrefDoubleQuoted = regexp.MustCompile(`href="([^"]+)"`)
	hrefSingleQuoted = regexp.MustCompile(`href='([^']+)'`)
	hrefBare         = regexp.MustCompile(`href=([^\s>]+)`)
	anchorText       = regexp.MustCompile(`>([^<>]*)</a>`)
	lastTagText      = regexp.MustCompile(`>([^<>]+)(<|$)`)
	tagSpan          = regexp.MustCompile(`<[^>]*>`)
)

// ExtractNameAndImage pulls a display name and an optional image URL out of
// a text field that may carry raw anchor-tag markup. The function is total:
// the worst case is ("Unknown", nil).
func ExtractNameAndImage(raw string) (string, *string) {
	trimmed := strings.TrimSpace(raw)
	if !strings.Contains(trimmed, "<a") && !strings.Contains(trimmed, "href") {
		if trimmed == "" {
			return "Unknown", nil
		}
		return trimmed, nil
	}

	var imageURL *string
	for _, re := range []*regexp.Regexp{hrefDoubleQuoted, hrefSingleQuoted, hrefBare} {
		if m := re.FindStringSubmatch(trimmed); m != nil {
			url := m[1]
			imageURL = &url
			break
		}
	}

	name := ""
	if m := anchorText.FindStringSubmatch(trimmed); m != nil {
		name = strings.TrimSpace(m[1])
	}
	if name == "" {
		if m := lastTagText.FindStringSubmatch(trimmed); m != nil {
			name = strings.TrimSpace(m[1])
		}
	}
	if name == "" {
		name = strings.TrimSpace(tagSpan.ReplaceAllString(trimmed, ""))
	}
	if name == "" {
		name = "Unknown"
	}
	return name, imageURL
}
