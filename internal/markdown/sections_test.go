package markdown

import (
	"strings"
	"testing"
)

// TestSections_BasicHeaders tests splitting with H1 and multiple H2s.
func TestSections_BasicHeaders(t *testing.T) {
	input := `# Getting Started

Introduction text here.

## Installation

Install steps here.

## Configuration

Config details here.
`

	sections, err := NewSplitter().Sections([]byte(input))
	if err != nil {
		t.Fatalf("Sections failed: %v", err)
	}

	if len(sections) != 3 {
		t.Fatalf("Expected 3 sections, got %d", len(sections))
	}

	want := []struct {
		path      string
		startLine int
		contains  string
	}{
		{"# Getting Started", 1, "Introduction text here."},
		{"# Getting Started > ## Installation", 5, "Install steps here."},
		{"# Getting Started > ## Configuration", 9, "Config details here."},
	}
	for i, w := range want {
		if sections[i].HeaderPath != w.path {
			t.Errorf("Section %d HeaderPath: expected %q, got %q", i, w.path, sections[i].HeaderPath)
		}
		if sections[i].StartLine != w.startLine {
			t.Errorf("Section %d StartLine: expected %d, got %d", i, w.startLine, sections[i].StartLine)
		}
		if !strings.Contains(sections[i].Content, w.contains) {
			t.Errorf("Section %d missing %q", i, w.contains)
		}
	}

	// Sections do not overlap: the H1 section stops at the first H2.
	if strings.Contains(sections[0].Content, "Install steps") {
		t.Errorf("H1 section leaked into its H2 child")
	}
	if !strings.HasPrefix(sections[1].Content, "## Installation") {
		t.Errorf("Section content should start with the heading line, got %q", sections[1].Content)
	}
}

// TestSections_NestedContent tests that H3 and code blocks stay inside their H2.
func TestSections_NestedContent(t *testing.T) {
	input := `# API Reference

Overview of the API.

## Methods

Available methods:

` + "```go" + `
# not a heading
func DoSomething() error {
    return nil
}
` + "```" + `

### Details

Some details here.

- List item 1
- List item 2
`

	sections, err := NewSplitter().Sections([]byte(input))
	if err != nil {
		t.Fatalf("Sections failed: %v", err)
	}

	if len(sections) != 2 {
		t.Fatalf("Expected 2 sections, got %d", len(sections))
	}

	methods := sections[1].Content
	for _, want := range []string{"func DoSomething()", "# not a heading", "### Details", "List item 2"} {
		if !strings.Contains(methods, want) {
			t.Errorf("Methods section missing %q", want)
		}
	}
}

// TestSections_Preamble tests text before the first heading.
func TestSections_Preamble(t *testing.T) {
	input := "Link: https://example.com/guide\n\n# Guide\n\nBody.\n"

	sections, err := NewSplitter().Sections([]byte(input))
	if err != nil {
		t.Fatalf("Sections failed: %v", err)
	}

	if len(sections) != 2 {
		t.Fatalf("Expected 2 sections, got %d", len(sections))
	}
	if sections[0].HeaderPath != "" || sections[0].StartLine != 1 {
		t.Errorf("Preamble: got path %q line %d", sections[0].HeaderPath, sections[0].StartLine)
	}
	if sections[0].Content != "Link: https://example.com/guide" {
		t.Errorf("Preamble content: got %q", sections[0].Content)
	}
	if sections[1].StartLine != 3 {
		t.Errorf("Guide StartLine: expected 3, got %d", sections[1].StartLine)
	}
}

// TestSections_NoHeaders tests a document with no headers.
func TestSections_NoHeaders(t *testing.T) {
	input := `This is a document with no headers.

Just plain text content.
`

	sections, err := NewSplitter().Sections([]byte(input))
	if err != nil {
		t.Fatalf("Sections failed: %v", err)
	}

	if len(sections) != 1 {
		t.Fatalf("Expected 1 section, got %d", len(sections))
	}
	if sections[0].HeaderPath != "" {
		t.Errorf("Expected empty HeaderPath, got %q", sections[0].HeaderPath)
	}
	if sections[0].Content != strings.TrimSpace(input) {
		t.Errorf("Unexpected content %q", sections[0].Content)
	}
}

// TestSections_MultipleH1s tests multiple top-level sections.
func TestSections_MultipleH1s(t *testing.T) {
	input := `# First Section

First content.

## First Subsection

First subsection content.

# Second Section

Second content.

## Second Subsection

Second subsection content.
`

	sections, err := NewSplitter().Sections([]byte(input))
	if err != nil {
		t.Fatalf("Sections failed: %v", err)
	}

	expectedPaths := []string{
		"# First Section",
		"# First Section > ## First Subsection",
		"# Second Section",
		"# Second Section > ## Second Subsection",
	}
	if len(sections) != len(expectedPaths) {
		t.Fatalf("Expected %d sections, got %d", len(expectedPaths), len(sections))
	}
	for i, expectedPath := range expectedPaths {
		if sections[i].HeaderPath != expectedPath {
			t.Errorf("Section %d: expected path %q, got %q", i, expectedPath, sections[i].HeaderPath)
		}
	}
}

// TestSections_OrphanH2 tests an H2 with no H1 above it.
func TestSections_OrphanH2(t *testing.T) {
	sections, err := NewSplitter().Sections([]byte("## Lonely\n\nText.\n"))
	if err != nil {
		t.Fatalf("Sections failed: %v", err)
	}
	if len(sections) != 1 {
		t.Fatalf("Expected 1 section, got %d", len(sections))
	}
	if sections[0].HeaderPath != "## Lonely" {
		t.Errorf("Expected %q, got %q", "## Lonely", sections[0].HeaderPath)
	}
}

func TestSections_Empty(t *testing.T) {
	sections, err := NewSplitter().Sections([]byte("  \n\n"))
	if err != nil {
		t.Fatalf("Sections failed: %v", err)
	}
	if len(sections) != 0 {
		t.Errorf("Expected no sections, got %d", len(sections))
	}
}
