/*
parse.go - Locale-aware numeric token extraction

PURPOSE:
  The official sources publish numbers in pt-BR notation: "." groups
  thousands and "," marks decimals ("1.234,56"), the swap of the machine
  default. This file is the single place that converts such text into
  exact decimal values, plus the formatter used to render report rows in
  the same notation (round-trip tested).

TOKEN PATTERNS:
  Money:   R$ 1.621,00        (currency marker, grouped, two decimals)
  Percent: 7,5 %  /  14%      (one or two digits, optional decimals)
  Open bound: "acima" / "a partir" marks the top-open bracket
*/
package taxsync

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	moneyTokenRe = regexp.MustCompile(`R\$\s*([0-9.]+,[0-9]{2})`)
	percentRe    = regexp.MustCompile(`([0-9]{1,2}(?:,[0-9]+)?)\s*%`)
	openBoundRe  = regexp.MustCompile(`(?i)acima|a partir`)

	oneHundred = decimal.NewFromInt(100)
)

// ParseDecimalBR converts pt-BR numeric text ("1.234,56") into a decimal.
// Currency markers and non-breaking spaces are tolerated.
func ParseDecimalBR(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "R$", "")
	s = strings.ReplaceAll(s, " ", " ")
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", ".")

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse pt-BR decimal %q: %w", s, err)
	}
	return d, nil
}

// FormatDecimalBR renders a decimal in pt-BR notation with two decimal
// places: 1621 -> "1.621,00". Inverse of ParseDecimalBR for money values.
func FormatDecimalBR(d decimal.Decimal) string {
	s := d.StringFixed(2)

	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	intPart, fracPart, _ := strings.Cut(s, ".")

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	b.WriteByte(',')
	b.WriteString(fracPart)
	return b.String()
}

// MoneyTokens extracts every "R$ ..." value from text, in order.
func MoneyTokens(text string) []decimal.Decimal {
	var vals []decimal.Decimal
	for _, m := range moneyTokenRe.FindAllStringSubmatch(text, -1) {
		d, err := ParseDecimalBR(m[1])
		if err != nil {
			continue
		}
		vals = append(vals, d)
	}
	return vals
}

// PercentToken extracts the first percentage from text as a fraction
// (7,5% -> 0.075). The second return is false when no token matches.
func PercentToken(text string) (decimal.Decimal, bool) {
	m := percentRe.FindStringSubmatch(text)
	if m == nil {
		return decimal.Zero, false
	}
	d, err := ParseDecimalBR(m[1])
	if err != nil {
		return decimal.Zero, false
	}
	return d.Div(oneHundred), true
}

// LeadingPercentToken matches a percentage at the very start of text, the
// shape narrative bullets use ("7,5% para quem ganha ...").
func LeadingPercentToken(text string) (decimal.Decimal, bool) {
	text = strings.TrimSpace(text)
	m := percentRe.FindStringSubmatch(text)
	if m == nil || !strings.HasPrefix(text, m[1]) {
		return decimal.Zero, false
	}
	d, err := ParseDecimalBR(m[1])
	if err != nil {
		return decimal.Zero, false
	}
	return d.Div(oneHundred), true
}

// IsOpenBound reports whether text describes a top-open bracket.
func IsOpenBound(text string) bool { return openBoundRe.MatchString(text) }

var (
	tagRe    = regexp.MustCompile(`(?is)<(script|style)[^>]*>.*?</(script|style)>`)
	markupRe = regexp.MustCompile(`<[^>]*>`)
	spaceRe  = regexp.MustCompile(`[ \t]+`)
)

// StripMarkup flattens HTML into whitespace-normalized text, preserving
// line breaks so line-oriented extraction still works.
func StripMarkup(html string) string {
	text := tagRe.ReplaceAllString(html, " ")
	text = markupRe.ReplaceAllString(text, " ")
	text = strings.ReplaceAll(text, "&nbsp;", " ")
	text = spaceRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
