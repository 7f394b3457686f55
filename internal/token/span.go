package token

import (
	"fmt"
	"strconv"
	"strings"
)

// Position is a 1-based line/column pair.
type Position struct {
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Before reports whether p comes strictly before q.
func (p Position) Before(q Position) bool {
	return p.Line < q.Line || (p.Line == q.Line && p.Column < q.Column)
}

// Span is a source range. It is a plain value and is used as a map key,
// so it must stay comparable.
type Span struct {
	File  string
	Start Position
	End   Position
}

// NewSpan builds a span inside file.
func NewSpan(file string, startLine, startCol, endLine, endCol int) Span {
	return Span{
		File:  file,
		Start: Position{Line: startLine, Column: startCol},
		End:   Position{Line: endLine, Column: endCol},
	}
}

// IsZero reports whether the span carries no location at all.
func (s Span) IsZero() bool {
	return s == Span{}
}

func (s Span) String() string {
	if s.IsZero() {
		return "<unknown>"
	}
	loc := s.Start.String()
	if s.End != s.Start && s.End != (Position{}) {
		loc += "-" + s.End.String()
	}
	if s.File == "" {
		return loc
	}
	return s.File + ":" + loc
}

// ParseSpan reads "line:col" or "line:col-line:col" relative to file.
// A leading "path:" overrides file when the text has more than the
// expected number of separators.
func ParseSpan(file, text string) (Span, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Span{}, fmt.Errorf("empty span")
	}

	startText, endText, ranged := text, "", false
	if i := strings.LastIndex(text, "-"); i >= 0 && isLineCol(text[i+1:]) {
		startText, endText, ranged = text[:i], text[i+1:], true
	}

	parts := strings.Split(startText, ":")
	if len(parts) > 2 {
		file = strings.Join(parts[:len(parts)-2], ":")
		parts = parts[len(parts)-2:]
	}
	if len(parts) != 2 {
		return Span{}, fmt.Errorf("span %q: want line:col", text)
	}
	start, err := parsePosition(parts[0], parts[1])
	if err != nil {
		return Span{}, fmt.Errorf("span %q: %w", text, err)
	}

	end := start
	if ranged {
		endParts := strings.Split(endText, ":")
		if len(endParts) != 2 {
			return Span{}, fmt.Errorf("span %q: want line:col after '-'", text)
		}
		end, err = parsePosition(endParts[0], endParts[1])
		if err != nil {
			return Span{}, fmt.Errorf("span %q: %w", text, err)
		}
		if end.Before(start) {
			return Span{}, fmt.Errorf("span %q: end before start", text)
		}
	}

	return Span{File: file, Start: start, End: end}, nil
}

func parsePosition(line, col string) (Position, error) {
	l, err := strconv.Atoi(line)
	if err != nil {
		return Position{}, fmt.Errorf("bad line %q", line)
	}
	c, err := strconv.Atoi(col)
	if err != nil {
		return Position{}, fmt.Errorf("bad column %q", col)
	}
	if l < 1 || c < 1 {
		return Position{}, fmt.Errorf("positions are 1-based")
	}
	return Position{Line: l, Column: c}, nil
}

func isLineCol(s string) bool {
	line, col, ok := strings.Cut(s, ":")
	if !ok {
		return false
	}
	_, err1 := strconv.Atoi(line)
	_, err2 := strconv.Atoi(col)
	return err1 == nil && err2 == nil
}
