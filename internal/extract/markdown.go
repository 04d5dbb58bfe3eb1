package extract

import (
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
)

// Markdown converts article HTML to markdown. Conversion failures fall
// back to the HTML's visible text.
func Markdown(content string) string {
	if strings.TrimSpace(content) == "" {
		return ""
	}
	converter := md.NewConverter("", true, nil)
	out, err := converter.ConvertString(content)
	if err != nil {
		if fb, fbErr := bodyFallback([]byte(content)); fbErr == nil {
			return fb.TextContent
		}
		return content
	}
	return tidyMarkdown(out)
}

// tidyMarkdown trims lines and squeezes runs of blank lines.
func tidyMarkdown(s string) string {
	lines := strings.Split(s, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimRight(line, " \t")
		if strings.TrimSpace(line) == "" {
			if len(cleaned) > 0 && cleaned[len(cleaned)-1] != "" {
				cleaned = append(cleaned, "")
			}
			continue
		}
		cleaned = append(cleaned, line)
	}
	return strings.TrimSpace(strings.Join(cleaned, "\n"))
}
