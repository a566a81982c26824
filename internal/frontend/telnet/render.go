package telnet

import (
	"html"
	"regexp"
	"strings"
)

var (
	headingRe = regexp.MustCompile(`(?is)<h[1-6][^>]*>(.*?)</h[1-6]>`)
	blockEnd  = regexp.MustCompile(`(?i)</p>|<br\s*/?>`)
	anyTag    = regexp.MustCompile(`<[^>]*>`)
)

// RenderHTML converts a game message written for the web client into
// Telnet text: headings become bright yellow lines, paragraphs become lines,
// other markup is dropped, and entities are decoded. Blank lines are removed
// and lines are joined with "\r\n" without a trailing terminator.
func RenderHTML(content string) string {
	s := headingRe.ReplaceAllStringFunc(content, func(m string) string {
		inner := headingRe.FindStringSubmatch(m)[1]
		return "\n" + Colorize(BrightYellow, strings.TrimSpace(anyTag.ReplaceAllString(inner, ""))) + "\n"
	})
	s = blockEnd.ReplaceAllString(s, "\n")
	s = stripTags(s)

	var lines []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if StripANSI(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\r\n")
}

func stripTags(s string) string {
	return html.UnescapeString(anyTag.ReplaceAllString(s, ""))
}
