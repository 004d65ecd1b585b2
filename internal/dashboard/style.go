package dashboard

import (
	"strings"

	"tablero/internal/domain"
	"tablero/internal/highlight"
)

// Class tokens. Renderers map these onto their own palette.
const (
	ClassIncrease = "hl-increase"
	ClassDecrease = "hl-decrease"
	ClassPositive = "fg-positive"
	ClassNegative = "fg-negative"
	ClassMuted    = "fg-muted"
	ClassWarnBold = "fg-warn-bold"
	ClassStrong   = "fg-strong"
)

// HighlightClass maps a diff tag to its class token.
func HighlightClass(tag highlight.Tag) string {
	switch tag {
	case highlight.Increase:
		return ClassIncrease
	case highlight.Decrease:
		return ClassDecrease
	default:
		return ""
	}
}

// ResolveCellClass joins the cell's highlight class and the column's static
// class, in that order. Both are kept when both apply; a renderer painting
// classes in order lets the static class win.
func ResolveCellClass(styles highlight.StyleMap, rowIndex int, col Column, value domain.Value, row domain.Row) string {
	hl := HighlightClass(styles.Tag(rowIndex, col.Key))
	static := ""
	if col.Class != nil {
		static = strings.TrimSpace(col.Class(value, row, rowIndex))
	}
	switch {
	case hl == "":
		return static
	case static == "":
		return hl
	default:
		return hl + " " + static
	}
}

// Classes splits a resolved class string into tokens.
func Classes(class string) []string {
	return strings.Fields(class)
}

// signClass returns the positive or negative class for numbers, and "" for
// zero and non-numbers.
func signClass(v domain.Value, _ domain.Row, _ int) string {
	f, ok := v.Float()
	switch {
	case !ok:
		return ""
	case f > 0:
		return ClassPositive
	case f < 0:
		return ClassNegative
	default:
		return ""
	}
}

// negativeClass flags negative numbers only.
func negativeClass(v domain.Value, _ domain.Row, _ int) string {
	if f, ok := v.Float(); ok && f < 0 {
		return ClassNegative
	}
	return ""
}

// totalClass is signClass with a muted class for zero or missing totals.
func totalClass(v domain.Value) string {
	if c := signClass(v, nil, 0); c != "" {
		return c
	}
	return ClassMuted
}
