package transform

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"jobwarehouse/etl-service/internal/refdata"
)

// RE2's \b is ASCII-only, which breaks boundaries around accented French
// words ("confirmé", "santé"). Word edges are therefore spelled out against
// the full Unicode letter/digit classes.
const (
	wordStart = `(?:^|[^\p{L}\p{N}_])`
	wordEnd   = `(?:[^\p{L}\p{N}_]|$)`
)

// wordPattern compiles a whole-word, literal-phrase pattern for a term.
// Matching is done against the lower-cased description, so terms are
// lower-cased here rather than matched case-insensitively.
func wordPattern(term string) *regexp.Regexp {
	return regexp.MustCompile(wordStart + regexp.QuoteMeta(strings.ToLower(term)) + wordEnd)
}

// Seniority keywords are scanned in this order; hits are appended in list
// order, not description order. The experience regex result, if any, comes
// last.
var seniorityLevels = []string{"junior", "confirmé", "sénior", "lead", "manager"}

var (
	seniorityPatterns = compileWordPatterns(seniorityLevels)
	experiencePattern = regexp.MustCompile(`(\d+)\+?\s*(an[née]{0,3}s|years?)`)
)

// Amounts in 3-digit groups separated by space, comma, period or NBSP,
// followed by a euro marker.
var salaryPattern = regexp.MustCompile(`(\d{2,3}(?:[ ,.\x{00A0}]\d{3})*(?:[ ,.\x{00A0}]\d{3})?)\s*(?:€|euros?)`)

var salarySeparators = strings.NewReplacer(" ", "", " ", "", ",", "", ".", "")

// Remote-work keywords come first in the benefits list, then the misc
// benefit patterns, both in this fixed order. No deduplication: "full
// remote" in a description yields entries for both "remote" and "full
// remote".
var remoteWorkKeywords = []string{"remote", "télétravail", "hybride", "full remote", "100% remote"}

var remoteWorkPatterns = compileWordPatterns(remoteWorkKeywords)

var miscBenefits = []struct {
	name    string
	pattern *regexp.Regexp
}{
	{"cse", regexp.MustCompile(wordStart + `cse` + wordEnd)},
	{"tickets restaurant", regexp.MustCompile(wordStart + `tickets?-?\s?restaurant` + wordEnd)},
	{"assurance santé", regexp.MustCompile(wordStart + `assurance\s+santé` + wordEnd)},
	{"mutuelle", regexp.MustCompile(wordStart + `mutuelle` + wordEnd)},
	{"rtt", regexp.MustCompile(wordStart + `rtt` + wordEnd)},
	{"prime", regexp.MustCompile(wordStart + `primes?` + wordEnd)},
	{"intéressement", regexp.MustCompile(wordStart + `intéressement` + wordEnd)},
	{"participation", regexp.MustCompile(wordStart + `participation` + wordEnd)},
	{"13ème mois", regexp.MustCompile(wordStart + `13[èe]?me?\s+mois` + wordEnd)},
}

func compileWordPatterns(terms []string) []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, len(terms))
	for i, term := range terms {
		patterns[i] = wordPattern(term)
	}
	return patterns
}

// Annotations is the structured result of scanning one job description.
type Annotations struct {
	Technologies     []string
	SenioritySignals []string
	SalaryMentions   []int
	Benefits         []string
}

// Annotator scans job descriptions against the technology catalogs and the
// fixed seniority/salary/benefit pattern sets. Technology patterns are
// compiled once per catalog load, not per record.
type Annotator struct {
	techTerms    []string
	techPatterns []*regexp.Regexp
}

// NewAnnotator precompiles a whole-word pattern for every term across the
// landscape catalog and the flat technology list.
func NewAnnotator(cat *refdata.Catalogs) *Annotator {
	seen := make(map[string]bool)
	var terms []string
	for _, tools := range cat.Landscape {
		for _, tech := range tools {
			if !seen[tech] {
				seen[tech] = true
				terms = append(terms, tech)
			}
		}
	}
	for _, tech := range cat.Technologies {
		if !seen[tech] {
			seen[tech] = true
			terms = append(terms, tech)
		}
	}

	return &Annotator{
		techTerms:    terms,
		techPatterns: compileWordPatterns(terms),
	}
}

// Annotate runs the four extraction passes over description. The passes are
// independent and all tolerate an empty description by returning empty
// results. Nothing here ever fails: a malformed salary token is skipped, not
// reported.
func (a *Annotator) Annotate(description string) Annotations {
	text := strings.ToLower(description)

	return Annotations{
		Technologies:     a.matchTechnologies(text),
		SenioritySignals: matchSeniority(text),
		SalaryMentions:   extractSalaries(text),
		Benefits:         matchBenefits(text),
	}
}

// matchTechnologies unions all whole-word term hits into a deduplicated set.
// The set is sorted so downstream output is stable across runs.
func (a *Annotator) matchTechnologies(text string) []string {
	var found []string
	for i, pattern := range a.techPatterns {
		if pattern.MatchString(text) {
			found = append(found, a.techTerms[i])
		}
	}
	sort.Strings(found)
	return found
}

func matchSeniority(text string) []string {
	var found []string
	for i, pattern := range seniorityPatterns {
		if pattern.MatchString(text) {
			found = append(found, seniorityLevels[i])
		}
	}
	if m := experiencePattern.FindString(text); m != "" {
		found = append(found, m)
	}
	return found
}

// extractSalaries keeps first-occurrence order and does not deduplicate.
// Tokens that fail integer parsing after separator stripping are skipped.
func extractSalaries(text string) []int {
	var found []int
	for _, m := range salaryPattern.FindAllStringSubmatch(text, -1) {
		amount, err := strconv.Atoi(salarySeparators.Replace(m[1]))
		if err != nil {
			continue
		}
		found = append(found, amount)
	}
	return found
}

func matchBenefits(text string) []string {
	var found []string
	for i, pattern := range remoteWorkPatterns {
		if pattern.MatchString(text) {
			found = append(found, remoteWorkKeywords[i])
		}
	}
	for _, benefit := range miscBenefits {
		if benefit.pattern.MatchString(text) {
			found = append(found, benefit.name)
		}
	}
	return found
}
