// Package extractor derives candidate documentation requirements from the
// plain text of a tender notice. It is a best-effort heuristic: results are
// advisory and are reviewed by a person.
package extractor

import (
	"regexp"
	"strings"
)

const (
	LegalQualification     = "Legal Qualification"
	TechnicalQualification = "Technical Qualification"
	EconomicQualification  = "Economic-Financial Qualification"
	FiscalLaborRegularity  = "Fiscal and Labor Regularity"
	RequiredDocument       = "Required Document"
)

// Candidate - требование, найденное в тексте извещения.
type Candidate struct {
	Type        string
	Description string
}

type sectionPattern struct {
	kind string
	re   *regexp.Regexp
}

// Захватывается текст после заголовка до ближайшего конца предложения включительно.
const sentenceTail = `\s*([^.;\n]+\.?)`

var sectionPatterns = []sectionPattern{
	{LegalQualification, regexp.MustCompile(`(?i)habilita[çc][ãa]o\s+jur[íi]dica\s*:` + sentenceTail)},
	{TechnicalQualification, regexp.MustCompile(`(?i)(?:qualifica[çc][ãa]o\s+)?t[ée]cnica\s*:` + sentenceTail)},
	{EconomicQualification, regexp.MustCompile(`(?i)(?:qualifica[çc][ãa]o\s+)?econ[ôo]mico[\s-]*financeira\s*:` + sentenceTail)},
	{FiscalLaborRegularity, regexp.MustCompile(`(?i)regularidade\s+fiscal(?:\s+e\s+trabalhista)?\s*:` + sentenceTail)},
}

var documentKeywords = []string{
	"contrato social",
	"certidão negativa",
	"balanço patrimonial",
	"atestado de capacidade",
	"alvará",
	"procuração",
	"declaração",
	"certidão",
	"certificado",
}

var keywordPatterns = compileKeywords(documentKeywords)

func compileKeywords(keywords []string) []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, 0, len(keywords))
	for _, kw := range keywords {
		patterns = append(patterns, regexp.MustCompile(`(?i)[^.;\n]*`+regexp.QuoteMeta(kw)+`[^.;\n]*\.?`))
	}
	return patterns
}

// Extract возвращает кандидатов из обоих проходов: сначала заголовки разделов,
// затем предложения с ключевыми словами. Дубликаты не отфильтровываются.
func Extract(text string) []Candidate {
	var candidates []Candidate

	for _, p := range sectionPatterns {
		for _, m := range p.re.FindAllStringSubmatch(text, -1) {
			desc := strings.TrimSpace(m[1])
			if desc == "" || desc == "." {
				continue
			}
			candidates = append(candidates, Candidate{Type: p.kind, Description: desc})
		}
	}

	for _, re := range keywordPatterns {
		for _, sentence := range re.FindAllString(text, -1) {
			desc := strings.TrimSpace(sentence)
			if desc == "" {
				continue
			}
			candidates = append(candidates, Candidate{Type: RequiredDocument, Description: desc})
		}
	}

	return candidates
}
