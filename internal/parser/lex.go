package parser

import "bytes"

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentStart(c byte) bool {
	return isLetter(c) || c == '_'
}

func isIdentChar(c byte) bool {
	return isIdentStart(c) || isDigit(c) || c == '\'' || c == '-'
}

func isPathChar(c byte) bool {
	return isLetter(c) || isDigit(c) || c == '.' || c == '_' || c == '-' || c == '+'
}

func isSchemeChar(c byte) bool {
	return isLetter(c) || isDigit(c) || c == '+' || c == '-' || c == '.'
}

func isURIChar(c byte) bool {
	if isLetter(c) || isDigit(c) {
		return true
	}
	switch c {
	case '%', '/', '?', ':', '@', '&', '=', '+', '$', ',', '-', '_', '.', '!', '~', '*', '\'':
		return true
	}
	return false
}

// scanIdent returns the end of the identifier starting at i
func scanIdent(src []byte, i int) int {
	for i < len(src) && isIdentChar(src[i]) {
		i++
	}
	return i
}

// skipSpace returns the index of the next non-whitespace byte at or after i
func skipSpace(src []byte, i int) int {
	for i < len(src) && isSpace(src[i]) {
		i++
	}
	return i
}

// scanPath returns the end of a path literal such as ./a/b.nix, ~/x or
// /abs/path. Interpolations inside the path are skipped.
func scanPath(src []byte, i int) int {
	for i < len(src) {
		c := src[i]
		switch {
		case isPathChar(c) || c == '/' || c == '~':
			i++
		case c == '$' && i+1 < len(src) && src[i+1] == '{':
			end, ok := skipInterpolation(src, i+2)
			if !ok {
				return len(src)
			}
			i = end
		default:
			return i
		}
	}
	return i
}

// scanSearchPath matches <nixpkgs> or <nixpkgs/lib> starting at '<'
func scanSearchPath(src []byte, i int) (int, bool) {
	j := i + 1
	for j < len(src) && (isPathChar(src[j]) || src[j] == '/') {
		j++
	}
	if j == i+1 || j >= len(src) || src[j] != '>' {
		return i, false
	}
	return j + 1, true
}

// scanURI returns the end of a URI whose scheme spans [start, colon). The
// result equals colon+1 when no URI characters follow the colon.
func scanURI(src []byte, start, colon int) int {
	if !isLetter(src[start]) {
		return colon + 1
	}
	for k := start + 1; k < colon; k++ {
		if !isSchemeChar(src[k]) {
			return colon + 1
		}
	}
	j := colon + 1
	for j < len(src) && isURIChar(src[j]) {
		j++
	}
	return j
}

// skipBlockComment returns the index just past the '*/' closing the comment
// that opens at i
func skipBlockComment(src []byte, i int) (int, bool) {
	idx := bytes.Index(src[i+2:], []byte("*/"))
	if idx < 0 {
		return len(src), false
	}
	return i + 2 + idx + 2, true
}

// skipString returns the index just past the closing quote of the string
// literal opening at i
func skipString(src []byte, i int) (int, bool) {
	j := i + 1
	for j < len(src) {
		switch src[j] {
		case '\\':
			j += 2
		case '"':
			return j + 1, true
		case '$':
			if j+1 < len(src) && src[j+1] == '$' {
				j += 2
				continue
			}
			if j+1 < len(src) && src[j+1] == '{' {
				end, ok := skipInterpolation(src, j+2)
				if !ok {
					return len(src), false
				}
				j = end
				continue
			}
			j++
		default:
			j++
		}
	}
	return len(src), false
}

// skipIndentedString returns the index just past the closing '' of the
// indented string opening at i
func skipIndentedString(src []byte, i int) (int, bool) {
	j := i + 2
	for j < len(src) {
		c := src[j]
		if c == '\'' && j+1 < len(src) && src[j+1] == '\'' {
			if j+2 < len(src) {
				switch src[j+2] {
				case '\'', '$':
					j += 3
					continue
				case '\\':
					j += 4
					continue
				}
			}
			return j + 2, true
		}
		if c == '$' && j+1 < len(src) {
			if src[j+1] == '$' {
				j += 2
				continue
			}
			if src[j+1] == '{' {
				end, ok := skipInterpolation(src, j+2)
				if !ok {
					return len(src), false
				}
				j = end
				continue
			}
		}
		j++
	}
	return len(src), false
}

// skipInterpolation returns the index just past the '}' closing an
// interpolation whose body starts at i (right after "${")
func skipInterpolation(src []byte, i int) (int, bool) {
	depth := 1
	j := i
	for j < len(src) {
		c := src[j]
		switch {
		case c == '{':
			depth++
			j++
		case c == '}':
			depth--
			j++
			if depth == 0 {
				return j, true
			}
		case c == '"':
			end, ok := skipString(src, j)
			if !ok {
				return len(src), false
			}
			j = end
		case c == '\'' && j+1 < len(src) && src[j+1] == '\'':
			end, ok := skipIndentedString(src, j)
			if !ok {
				return len(src), false
			}
			j = end
		case c == '#':
			for j < len(src) && src[j] != '\n' {
				j++
			}
		case c == '/' && j+1 < len(src) && src[j+1] == '*':
			end, ok := skipBlockComment(src, j)
			if !ok {
				return len(src), false
			}
			j = end
		default:
			j++
		}
	}
	return len(src), false
}

// matchFormals looks ahead from the '{' at i for the matching '}' of a
// formals set and returns the index just past it. The lookahead gives up as
// soon as it sees a ';' or a lone '=' at the top level, which only occur in
// attribute sets, so it never runs past the first binding of a set.
func matchFormals(src []byte, i int) (int, bool) {
	depth := 0
	j := i
	for j < len(src) {
		c := src[j]
		switch {
		case c == '{' || c == '(' || c == '[':
			depth++
			j++
		case c == '}' || c == ')' || c == ']':
			depth--
			j++
			if depth == 0 {
				return j, c == '}'
			}
		case depth == 1 && c == ';':
			return j, false
		case depth == 1 && c == '=':
			prev := byte(0)
			if j > 0 {
				prev = src[j-1]
			}
			if (j+1 < len(src) && src[j+1] == '=') || prev == '=' || prev == '!' || prev == '<' || prev == '>' {
				j++
				continue
			}
			return j, false
		case c == '"':
			end, ok := skipString(src, j)
			if !ok {
				return len(src), false
			}
			j = end
		case c == '\'' && j+1 < len(src) && src[j+1] == '\'':
			end, ok := skipIndentedString(src, j)
			if !ok {
				return len(src), false
			}
			j = end
		case c == '#':
			for j < len(src) && src[j] != '\n' {
				j++
			}
		case c == '/' && j+1 < len(src) && src[j+1] == '*':
			end, ok := skipBlockComment(src, j)
			if !ok {
				return len(src), false
			}
			j = end
		default:
			j++
		}
	}
	return len(src), false
}
