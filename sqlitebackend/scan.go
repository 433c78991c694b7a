package sqlitebackend

import (
	"strconv"
	"strings"
	"unicode"
)

// scanner walks SQL text outside of literals, quoted identifiers and
// comments.
type scanner struct {
	s string
	i int
}

// next returns the position of the next significant byte, or -1 at the end.
func (sc *scanner) next() int {
	for sc.i < len(sc.s) {
		c := sc.s[sc.i]
		switch {
		case c == '\'' || c == '"' || c == '`':
			sc.skipQuoted(c, c)
		case c == '[':
			sc.skipQuoted('[', ']')
		case c == '-' && strings.HasPrefix(sc.s[sc.i:], "--"):
			if end := strings.IndexByte(sc.s[sc.i:], '\n'); end >= 0 {
				sc.i += end + 1
			} else {
				sc.i = len(sc.s)
			}
		case c == '/' && strings.HasPrefix(sc.s[sc.i:], "/*"):
			if end := strings.Index(sc.s[sc.i+2:], "*/"); end >= 0 {
				sc.i += end + 4
			} else {
				sc.i = len(sc.s)
			}
		default:
			pos := sc.i
			sc.i++

			return pos
		}
	}

	return -1
}

func (sc *scanner) skipQuoted(open, closing byte) {
	sc.i++
	for sc.i < len(sc.s) {
		if sc.s[sc.i] == closing {
			// a doubled quote is an escaped one
			if open == closing && sc.i+1 < len(sc.s) && sc.s[sc.i+1] == closing {
				sc.i += 2

				continue
			}
			sc.i++

			return
		}
		sc.i++
	}
}

func isIdentByte(c byte) bool {
	return c == '_' || c == '$' || c >= 0x80 || unicode.IsLetter(rune(c)) || unicode.IsDigit(rune(c))
}

// countParameters returns the number of parameters of a statement following
// SQLite numbering: a bare ? takes the largest index so far plus one, ?NNN
// takes NNN and every distinct :name, @name or $name takes a fresh index.
func countParameters(query string) int {
	var (
		sc      = scanner{s: query}
		largest int
		names   = map[string]struct{}{}
	)
	for pos := sc.next(); pos >= 0; pos = sc.next() {
		switch c := query[pos]; c {
		case '?':
			end := pos + 1
			for end < len(query) && query[end] >= '0' && query[end] <= '9' {
				end++
			}
			if end == pos+1 {
				largest++

				continue
			}
			if n, err := strconv.Atoi(query[pos+1 : end]); err == nil && n > largest {
				largest = n
			}
			sc.i = end
		case ':', '@', '$':
			end := pos + 1
			for end < len(query) && isIdentByte(query[end]) {
				end++
			}
			if end == pos+1 {
				continue
			}
			name := query[pos:end]
			if _, ok := names[name]; !ok {
				names[name] = struct{}{}
				largest++
			}
			sc.i = end
		}
	}

	return largest
}

var rowKeywords = map[string]bool{
	"SELECT":  true,
	"WITH":    true,
	"VALUES":  true,
	"PRAGMA":  true,
	"EXPLAIN": true,
}

// producesRows reports whether a statement is expected to return rows.
func producesRows(query string) bool {
	sc := scanner{s: query}
	first := true
	for pos := sc.next(); pos >= 0; pos = sc.next() {
		if !isIdentByte(query[pos]) || (pos > 0 && isIdentByte(query[pos-1])) {
			continue
		}
		end := pos
		for end < len(query) && isIdentByte(query[end]) {
			end++
		}
		word := strings.ToUpper(query[pos:end])
		sc.i = end
		if first {
			if rowKeywords[word] {
				return true
			}
			first = false
		}
		if word == "RETURNING" {
			return true
		}
	}

	return false
}
