// Package plate turns the characters found by the OCR model into a plate
// string, handling both one-line and two-line plates.
package plate

import (
	"math"
	"slices"
	"strings"
	"unicode"
)

const (
	MinChars = 7
	MaxChars = 10

	// lineTolerance is how far, in pixels, a character center may sit off the
	// line through the outermost characters before the plate counts as two-line.
	lineTolerance = 3.0
)

// Char is one character detection from the OCR model.
type Char struct {
	CenterX float64
	CenterY float64
	Label   string
}

// Assemble orders chars into a plate string. It returns "" when the number of
// characters cannot make up a plate.
func Assemble(chars []Char) string {
	if len(chars) < MinChars || len(chars) > MaxChars {
		return ""
	}

	if !twoLine(chars) {
		return join(chars)
	}

	var sum float64
	for _, c := range chars {
		sum += c.CenterY
	}
	meanY := math.Floor(sum / float64(len(chars)))

	var top, bottom []Char
	for _, c := range chars {
		if math.Floor(c.CenterY) > meanY {
			bottom = append(bottom, c)
		} else {
			top = append(top, c)
		}
	}
	return join(top) + "-" + join(bottom)
}

func twoLine(chars []Char) bool {
	left, right := chars[0], chars[0]
	for _, c := range chars {
		if c.CenterX < left.CenterX {
			left = c
		}
		if c.CenterX > right.CenterX {
			right = c
		}
	}
	if left.CenterX == right.CenterX {
		return false
	}

	slope := (right.CenterY - left.CenterY) / (right.CenterX - left.CenterX)
	intercept := left.CenterY - slope*left.CenterX
	for _, c := range chars {
		if math.Abs(slope*c.CenterX+intercept-c.CenterY) > lineTolerance {
			return true
		}
	}
	return false
}

func join(chars []Char) string {
	sorted := slices.Clone(chars)
	slices.SortStableFunc(sorted, func(a, b Char) int {
		switch {
		case a.CenterX < b.CenterX:
			return -1
		case a.CenterX > b.CenterX:
			return 1
		}
		return 0
	})

	var b strings.Builder
	for _, c := range sorted {
		b.WriteString(c.Label)
	}
	return b.String()
}

// Normalize upper-cases s and drops any whitespace.
func Normalize(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToUpper(r)
	}, s)
}
