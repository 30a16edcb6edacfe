package markdown

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"go.abhg.dev/goldmark/toc"
)

// Section is the part of a markdown document that belongs to one H1 or H2 heading.
type Section struct {
	HeaderPath string // Hierarchy: "# Doc Title > ## Section Name"
	Content    string // Raw text, heading line included
	StartLine  int    // 1-based line of the first byte of Content
}

// Splitter cuts markdown documents at H1 and H2 boundaries.
type Splitter struct {
	parser goldmark.Markdown
}

// NewSplitter creates a new markdown splitter configured with goldmark parser.
func NewSplitter() *Splitter {
	md := goldmark.New(
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
	)
	return &Splitter{parser: md}
}

// Sections splits source at top-level H1 and H2 headings. Text before the first
// heading becomes a section with an empty header path. Sections never overlap,
// so concatenating their contents yields the source minus trailing blank space.
func (s *Splitter) Sections(source []byte) ([]Section, error) {
	if len(bytes.TrimSpace(source)) == 0 {
		return nil, nil
	}

	doc := s.parser.Parser().Parse(text.NewReader(source))

	tree, err := toc.Inspect(doc, source,
		toc.MinDepth(1),
		toc.MaxDepth(2),
		toc.Compact(true),
	)
	if err != nil {
		return nil, fmt.Errorf("inspect TOC: %w", err)
	}
	titles := make(map[string]string)
	collectTitles(tree.Items, titles)

	type boundary struct {
		offset int
		path   string
	}
	var bounds []boundary

	var h1 string
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		heading, ok := n.(*ast.Heading)
		if !ok || heading.Level > 2 || heading.Lines().Len() == 0 {
			continue
		}

		title := titles[headingID(heading)]
		var path string
		if heading.Level == 1 {
			h1 = title
			path = formatHeaderPath(title)
		} else {
			path = formatHeaderPath(h1, title)
		}

		bounds = append(bounds, boundary{
			offset: lineStart(source, heading.Lines().At(0).Start),
			path:   path,
		})
	}

	if len(bounds) == 0 || bounds[0].offset > 0 {
		bounds = append([]boundary{{offset: 0}}, bounds...)
	}

	sections := make([]Section, 0, len(bounds))
	for i, b := range bounds {
		end := len(source)
		if i+1 < len(bounds) {
			end = bounds[i+1].offset
		}

		content := strings.TrimRight(string(source[b.offset:end]), " \t\r\n")
		if strings.TrimSpace(content) == "" {
			continue
		}
		sections = append(sections, Section{
			HeaderPath: b.path,
			Content:    content,
			StartLine:  bytes.Count(source[:b.offset], []byte("\n")) + 1,
		})
	}
	return sections, nil
}

func collectTitles(items toc.Items, titles map[string]string) {
	for _, item := range items {
		if len(item.ID) > 0 {
			titles[string(item.ID)] = string(item.Title)
		}
		collectTitles(item.Items, titles)
	}
}

func headingID(heading *ast.Heading) string {
	id, ok := heading.AttributeString("id")
	if !ok {
		return ""
	}
	b, _ := id.([]byte)
	return string(b)
}

// lineStart returns the offset of the beginning of the line containing pos.
func lineStart(source []byte, pos int) int {
	return bytes.LastIndexByte(source[:pos], '\n') + 1
}

// formatHeaderPath builds a header hierarchy string, skipping empty levels.
// Example: ["Installation", "Prerequisites"] -> "# Installation > ## Prerequisites"
func formatHeaderPath(path ...string) string {
	var parts []string
	for i, segment := range path {
		if segment == "" {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s %s", strings.Repeat("#", i+1), segment))
	}
	return strings.Join(parts, " > ")
}
