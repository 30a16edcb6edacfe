package chunker

import (
	"strings"
	"unicode/utf8"
)

// DefaultChunkSize is the soft ceiling, in characters, for a chunk.
const DefaultChunkSize = 1000

// DefaultSeparators go from paragraph to line to word to single character.
var DefaultSeparators = []string{"\n\n", "\n", " ", ""}

// RecursiveSplitter splits text on the coarsest separator that occurs in it and
// recurses with finer separators into pieces that are still too long. Adjacent
// pieces are merged greedily up to ChunkSize; chunks do not overlap.
type RecursiveSplitter struct {
	ChunkSize  int
	Separators []string
}

// NewRecursiveSplitter returns a splitter with the default separators.
func NewRecursiveSplitter(chunkSize int) *RecursiveSplitter {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &RecursiveSplitter{ChunkSize: chunkSize, Separators: DefaultSeparators}
}

// Split returns the chunks of text in order. Whitespace-only chunks are dropped.
func (s *RecursiveSplitter) Split(text string) []string {
	return s.split(text, s.Separators)
}

func (s *RecursiveSplitter) split(text string, separators []string) []string {
	separator := ""
	var finer []string
	for i, sep := range separators {
		if sep == "" || strings.Contains(text, sep) {
			separator = sep
			finer = separators[i+1:]
			break
		}
	}

	var pieces []string
	if separator == "" {
		pieces = strings.Split(text, "")
	} else {
		pieces = strings.Split(text, separator)
	}

	var chunks, pending []string
	for _, piece := range pieces {
		if length(piece) < s.ChunkSize {
			pending = append(pending, piece)
			continue
		}

		if len(pending) > 0 {
			chunks = append(chunks, s.merge(pending, separator)...)
			pending = nil
		}
		if len(finer) == 0 {
			chunks = append(chunks, piece)
		} else {
			chunks = append(chunks, s.split(piece, finer)...)
		}
	}
	if len(pending) > 0 {
		chunks = append(chunks, s.merge(pending, separator)...)
	}
	return chunks
}

// merge joins pieces with separator into chunks no longer than ChunkSize.
func (s *RecursiveSplitter) merge(pieces []string, separator string) []string {
	sepLen := length(separator)

	var chunks, current []string
	total := 0
	flush := func() {
		if chunk := strings.TrimSpace(strings.Join(current, separator)); chunk != "" {
			chunks = append(chunks, chunk)
		}
		current = current[:0]
		total = 0
	}

	for _, piece := range pieces {
		n := length(piece)
		extra := 0
		if len(current) > 0 {
			extra = sepLen
		}
		if len(current) > 0 && total+extra+n > s.ChunkSize {
			flush()
			extra = 0
		}
		current = append(current, piece)
		total += extra + n
	}
	flush()
	return chunks
}

func length(s string) int {
	return utf8.RuneCountInString(s)
}
