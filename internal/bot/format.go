package bot

import (
	"fmt"
	"strings"

	"github.com/bull/askdocs/internal/query"
)

// DefaultMaxLinks is how many distinct links a reply lists.
const DefaultMaxLinks = 3

// DedupeLinks returns the first n distinct non-empty links, in their original order.
func DedupeLinks(links []string, n int) []string {
	seen := make(map[string]struct{}, len(links))
	out := make([]string, 0, n)
	for _, link := range links {
		if len(out) == n {
			break
		}
		if link == "" {
			continue
		}
		if _, dup := seen[link]; dup {
			continue
		}
		seen[link] = struct{}{}
		out = append(out, link)
	}
	return out
}

// FormatReply renders an answer and up to maxLinks of its sources as chat markdown.
func FormatReply(answer query.Answer, maxLinks int) string {
	links := DedupeLinks(answer.DocumentLinks, maxLinks)

	lines := make([]string, len(links))
	for i, link := range links {
		lines[i] = fmt.Sprintf("**Link %d:** <%s>", i+1, link)
	}

	return fmt.Sprintf("\n**Answer:**\n %s\n**Useful resources:**\n%s", answer.Text, strings.Join(lines, "\n"))
}
