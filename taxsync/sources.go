/*
sources.go - Ranked extraction providers

PURPOSE:
  Each tax kind has an ordered chain of providers:
    structured page -> narrative text -> document
  A provider fetches its URL and extracts bracket rows; failures are
  returned as values (never panics, never exceptions between providers)
  so the synchronizer can walk the chain with one uniform guard-rail.

GUARD-RAIL:
  Fewer than MinRows extracted rows is an extraction failure regardless
  of source. Statutory tables always carry several brackets; a tiny
  result means we scraped the wrong table or the page format changed,
  and persisting it would corrupt estimates.

EXTRACTION SHAPES:
  structured: <tr>/<td> cells; first cell holds the salary range, last
              cell the rate; withholding rows also carry the deduction
              parcel as the row's last money token.
  narrative:  bullet list ("•") where each item leads with the rate and
              mentions the range; the last money token is the bound.
  document:   plain-text lines containing both a money and a percent
              token (normative documents served as text).
*/
package taxsync

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/warp/payroll-engine/tax"
)

// MinRows is the guard-rail: a valid statutory table never has fewer rows.
const MinRows = 3

// Source tier names, also used in reports.
const (
	SourceStructured = "structured"
	SourceNarrative  = "narrative"
	SourceDocument   = "document"
)

// Official source URLs. The chain order encodes reliability: the
// structured page parses cleanly when unchanged, the narrative news page
// survives layout churn, the published document is the last resort.
const (
	pensionStructuredURL = "https://www.gov.br/inss/pt-br/direitos-e-deveres/inscricao-e-contribuicao/tabela-de-contribuicao-mensal"
	pensionNarrativeURL  = "https://www.gov.br/inss/pt-br/assuntos/noticias/reajuste-das-faixas-de-contribuicao"
	pensionDocumentURL   = "https://www.gov.br/previdencia/pt-br/assuntos/rpps/documentos/portaria-interministerial-valores"

	withholdingStructuredURL = "https://www.gov.br/receitafederal/pt-br/assuntos/meu-imposto-de-renda/tabelas"
	withholdingNarrativeURL  = "https://www.gov.br/receitafederal/pt-br/assuntos/noticias/tabela-progressiva-mensal"
	withholdingDocumentURL   = "https://www.gov.br/receitafederal/pt-br/legislacao/instrucao-normativa-tabelas"
)

var dependentDeductionRe = regexp.MustCompile(`(?i)dedu[cç][aã]o mensal por dependente:?\s*R\$\s*([0-9.]+,[0-9]{2})`)

// Extracted is the outcome of one successful provider attempt.
// DependentDeduction is present only for the withholding kind.
type Extracted struct {
	Rows               []tax.BracketRow
	DependentDeduction *decimal.Decimal
}

// Provider is one ranked source for one tax kind.
type Provider struct {
	Name string
	URL  string

	parse func(kind tax.Kind, text string) ([]tax.BracketRow, error)
	kind  tax.Kind
}

// Extract fetches the provider's URL and runs its extraction, applying
// the shared dedupe/sort/guard-rail pipeline. All failures come back as
// *tax.ExtractionError values.
func (p Provider) Extract(ctx context.Context, f *Fetcher) (*Extracted, error) {
	text, err := f.GetText(ctx, p.URL)
	if err != nil {
		return nil, &tax.ExtractionError{Source: p.Name, Reason: "fetch failed", Err: err}
	}

	rows, err := p.parse(p.kind, text)
	if err != nil {
		return nil, err
	}

	rows = dedupeAndSort(rows)
	if len(rows) < MinRows {
		return nil, &tax.ExtractionError{
			Source: p.Name,
			Rows:   len(rows),
			Reason: fmt.Sprintf("extracted only %d rows (minimum %d); refusing partial table", len(rows), MinRows),
		}
	}

	ext := &Extracted{Rows: rows}
	if p.kind == tax.KindWithholding {
		dep, ok := findDependentDeduction(text)
		if !ok {
			return nil, &tax.ExtractionError{Source: p.Name, Reason: "dependent deduction not found"}
		}
		ext.DependentDeduction = &dep
	}
	return ext, nil
}

// NewProviderChain builds the ranked chain for a kind with explicit URLs
// (tests point these at local fixtures).
func NewProviderChain(kind tax.Kind, structuredURL, narrativeURL, documentURL string) []Provider {
	return []Provider{
		{Name: SourceStructured, URL: structuredURL, parse: parseStructured, kind: kind},
		{Name: SourceNarrative, URL: narrativeURL, parse: parseNarrative, kind: kind},
		{Name: SourceDocument, URL: documentURL, parse: parseDocument, kind: kind},
	}
}

// DefaultProviders returns the official chains for both tax kinds.
func DefaultProviders() map[tax.Kind][]Provider {
	return map[tax.Kind][]Provider{
		tax.KindPension:     NewProviderChain(tax.KindPension, pensionStructuredURL, pensionNarrativeURL, pensionDocumentURL),
		tax.KindWithholding: NewProviderChain(tax.KindWithholding, withholdingStructuredURL, withholdingNarrativeURL, withholdingDocumentURL),
	}
}

// =============================================================================
// EXTRACTION - structured page
// =============================================================================

var (
	trRe   = regexp.MustCompile(`(?is)<tr[^>]*>(.*?)</tr>`)
	cellRe = regexp.MustCompile(`(?is)<t[dh][^>]*>(.*?)</t[dh]>`)
)

func parseStructured(kind tax.Kind, html string) ([]tax.BracketRow, error) {
	var rows []tax.BracketRow
	for _, tr := range trRe.FindAllStringSubmatch(html, -1) {
		var cols []string
		for _, cell := range cellRe.FindAllStringSubmatch(tr[1], -1) {
			if text := StripMarkup(cell[1]); text != "" {
				cols = append(cols, text)
			}
		}
		if len(cols) < 2 {
			continue
		}
		if isHeaderText(cols[0]) || isHeaderText(cols[len(cols)-1]) {
			continue
		}

		line := strings.Join(cols, " ")
		if row, ok := rowFromText(kind, cols[0], line); ok {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

func isHeaderText(s string) bool {
	return strings.Contains(s, "Alíquota") || strings.Contains(s, "Aliquota")
}

// =============================================================================
// EXTRACTION - narrative text
// =============================================================================

func parseNarrative(kind tax.Kind, html string) ([]tax.BracketRow, error) {
	text := StripMarkup(html)

	var rows []tax.BracketRow
	for _, part := range strings.Split(text, "•") {
		part = strings.TrimSpace(part)
		rate, ok := LeadingPercentToken(part)
		if !ok {
			continue
		}
		money := MoneyTokens(part)
		if len(money) == 0 {
			continue
		}
		rows = append(rows, buildRow(kind, part, rate, money))
	}
	return rows, nil
}

// =============================================================================
// EXTRACTION - document (plain text lines)
// =============================================================================

func parseDocument(kind tax.Kind, body string) ([]tax.BracketRow, error) {
	var rows []tax.BracketRow
	for _, line := range strings.Split(StripMarkup(body), "\n") {
		if !strings.Contains(line, "R$") || !strings.Contains(line, "%") {
			continue
		}
		if row, ok := rowFromText(kind, line, line); ok {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

// =============================================================================
// SHARED ROW BUILDING
// =============================================================================

// rowFromText parses one table row: boundText carries the salary range
// (and open-bound wording); fullText carries the rate and, for the
// withholding kind, the deduction parcel as its last money token.
func rowFromText(kind tax.Kind, boundText, fullText string) (tax.BracketRow, bool) {
	rate, ok := PercentToken(fullText)
	if !ok {
		return tax.BracketRow{}, false
	}

	tokenText := boundText
	if kind == tax.KindWithholding {
		tokenText = fullText
	}
	money := MoneyTokens(tokenText)
	if len(money) == 0 {
		return tax.BracketRow{}, false
	}
	return buildRow(kind, boundText, rate, money), true
}

func buildRow(kind tax.Kind, boundText string, rate decimal.Decimal, money []decimal.Decimal) tax.BracketRow {
	row := tax.BracketRow{Rate: rate}

	switch kind {
	case tax.KindWithholding:
		// First token bounds the bracket; a second token is the parcel.
		upper := money[0]
		row.UpperBound = &upper
		if len(money) >= 2 {
			row.DeductionParcel = money[len(money)-1]
		}
	default:
		// Ranges read "de R$ A até R$ B": the last token is the bound.
		upper := money[len(money)-1]
		row.UpperBound = &upper
	}

	if IsOpenBound(boundText) {
		row.UpperBound = nil
	}
	return row
}

// dedupeAndSort removes repeated (bound, rate, parcel) rows and sorts
// ascending by upper bound, the open bracket last.
func dedupeAndSort(rows []tax.BracketRow) []tax.BracketRow {
	seen := make(map[string]bool)
	out := rows[:0]
	for _, r := range rows {
		key := "open"
		if r.UpperBound != nil {
			key = r.UpperBound.String()
		}
		key += "|" + r.Rate.String() + "|" + r.DeductionParcel.String()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, r)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].UpperBound == nil {
			return false
		}
		if out[j].UpperBound == nil {
			return true
		}
		return out[i].UpperBound.LessThan(*out[j].UpperBound)
	})
	return out
}

func findDependentDeduction(text string) (decimal.Decimal, bool) {
	m := dependentDeductionRe.FindStringSubmatch(StripMarkup(text))
	if m == nil {
		return decimal.Zero, false
	}
	d, err := ParseDecimalBR(m[1])
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}
