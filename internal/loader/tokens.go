package loader

import (
	"github.com/viant/parsly"
)

// Token codes start at 1 to avoid clashing with parsly.EOF.
const (
	blankCode = iota + 1
	newlineCode
	integerCode
)

var (
	blankToken   = parsly.NewToken(blankCode, "Blank", &blankMatcher{})
	newlineToken = parsly.NewToken(newlineCode, "Newline", &newlineMatcher{})
	integerToken = parsly.NewToken(integerCode, "Integer", &integerMatcher{})
)

// blankMatcher matches spaces and tabs, but not line breaks: records are line oriented.
type blankMatcher struct{}

func (m *blankMatcher) Match(cursor *parsly.Cursor) int {
	matched := 0
	for i := cursor.Pos; i < cursor.InputSize; i++ {
		switch cursor.Input[i] {
		case ' ', '\t', '\v', '\f':
			matched++
			continue
		}
		break
	}
	return matched
}

type newlineMatcher struct{}

func (m *newlineMatcher) Match(cursor *parsly.Cursor) int {
	input := cursor.Input
	pos := cursor.Pos
	if pos >= cursor.InputSize {
		return 0
	}
	switch input[pos] {
	case '\n':
		return 1
	case '\r':
		if pos+1 < cursor.InputSize && input[pos+1] == '\n' {
			return 2
		}
		return 1
	}
	return 0
}

// integerMatcher matches an optionally signed decimal integer that ends at
// a blank, a line break or the end of input.
type integerMatcher struct{}

func (m *integerMatcher) Match(cursor *parsly.Cursor) int {
	input := cursor.Input
	pos := cursor.Pos
	size := cursor.InputSize

	if pos >= size {
		return 0
	}
	i := pos
	if input[i] == '-' || input[i] == '+' {
		i++
	}
	digits := 0
	for ; i < size && isDigit(input[i]); i++ {
		digits++
	}
	if digits == 0 {
		return 0
	}
	if i < size && !isSeparator(input[i]) {
		return 0
	}
	return i - pos
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isSeparator(c byte) bool {
	switch c {
	case ' ', '\t', '\v', '\f', '\r', '\n':
		return true
	}
	return false
}
