package deliver

import (
	"strings"
	"unicode/utf8"
)

const paragraphSep = "\n\n"

// Split packs blank-line separated paragraphs into chunks of at most max runes.
// A single paragraph longer than max becomes its own oversized chunk.
// Joining the chunks with "\n\n" always yields content.
func Split(content string, max int) []string {
	if max <= 0 || utf8.RuneCountInString(content) <= max {
		return []string{content}
	}

	var (
		chunks  []string
		current []string
		size    int
	)

	flush := func() {
		chunks = append(chunks, strings.Join(current, paragraphSep))
		current = current[:0]
		size = 0
	}

	sepLen := utf8.RuneCountInString(paragraphSep)
	for _, p := range strings.Split(content, paragraphSep) {
		n := utf8.RuneCountInString(p)
		if len(current) > 0 && size+sepLen+n > max {
			flush()
		}
		if len(current) > 0 {
			size += sepLen
		}
		current = append(current, p)
		size += n
	}
	if len(current) > 0 {
		flush()
	}

	return chunks
}
