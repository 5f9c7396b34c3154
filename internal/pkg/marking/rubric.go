package marking

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"
)

var (
	criterionHeaderPattern = regexp.MustCompile(`([A-Za-z][A-Za-z \t]*?)\s*\((\d+)%\):`)
	gradeMarkerPattern     = regexp.MustCompile(`Grade [A-F]:`)
	rangeGradePattern      = regexp.MustCompile(`(\d{1,2})\s*(?:-|to)\s*(\d{1,2})%?\s*(?:=|:)?\s*([A-Za-z]+)`)
)

// namedGrades are the grade labels looked for explicitly, in order
var namedGrades = []string{"A", "B", "C", "D", "F", "Fail", "Pass", "Merit", "Distinction"}

var namedGradePatterns = func() map[string]*regexp.Regexp {
	patterns := make(map[string]*regexp.Regexp, len(namedGrades))
	for _, g := range namedGrades {
		patterns[g] = regexp.MustCompile(`(?i)(?:Grade|Mark)\s*` + g + `:?\s*(\d+)(?:\s*-\s*(\d+))?`)
	}
	return patterns
}()

const (
	maxKeywords = 20
	// maxHeaderWords is the longest paragraph still treated as a criterion header
	maxHeaderWords = 10
	defaultWeight  = 25
	// MaxCriterionNameLength matches the rubric_criteria.name column, in runes
	MaxCriterionNameLength = 128
)

// defaultCriteria is used when a rubric has no recognisable criteria
var defaultCriteria = []Criterion{
	{
		Name:        "Content",
		Weight:      40,
		Description: "Quality and comprehensiveness of content",
		Keywords:    []string{"content", "quality", "comprehensive", "understanding", "knowledge"},
	},
	{
		Name:        "Structure",
		Weight:      30,
		Description: "Organization and logical flow",
		Keywords:    []string{"structure", "organization", "flow", "coherent", "logical"},
	},
	{
		Name:        "Research",
		Weight:      20,
		Description: "Use of sources and evidence",
		Keywords:    []string{"research", "sources", "evidence", "references", "citation"},
	},
	{
		Name:        "Language",
		Weight:      10,
		Description: "Grammar, spelling, and academic writing style",
		Keywords:    []string{"language", "grammar", "spelling", "writing", "style"},
	},
}

// DefaultCriteria returns a copy of the fallback criteria
func DefaultCriteria() []Criterion {
	out := make([]Criterion, len(defaultCriteria))
	for i, c := range defaultCriteria {
		c.Keywords = append([]string(nil), c.Keywords...)
		out[i] = c
	}
	return out
}

// ProcessRubric extracts criteria and grade boundaries from rubric text
func ProcessRubric(text string) RubricAnalysis {
	criteria := percentageCriteria(text)
	if len(criteria) == 0 {
		criteria = paragraphCriteria(text)
	}
	if len(criteria) == 0 {
		criteria = DefaultCriteria()
	}

	return RubricAnalysis{
		Criteria:        criteria,
		GradeBoundaries: ExtractGradeBoundaries(text),
		FullText:        text,
	}
}

// percentageCriteria finds "Name (NN%):" headers. A description runs to the
// next header, the next "Grade X:" marker or the end of the text.
func percentageCriteria(text string) []Criterion {
	matches := criterionHeaderPattern.FindAllStringSubmatchIndex(text, -1)
	var criteria []Criterion
	for i, m := range matches {
		end := len(text)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		description := text[m[1]:end]
		if loc := gradeMarkerPattern.FindStringIndex(description); loc != nil {
			description = description[:loc[0]]
		}
		description = strings.TrimSpace(description)
		if description == "" {
			continue
		}

		weight, _ := strconv.Atoi(text[m[4]:m[5]])
		criteria = append(criteria, Criterion{
			Name:        criterionName(text[m[2]:m[3]]),
			Weight:      float64(weight),
			Description: description,
			Keywords:    ExtractKeywords(description),
		})
	}
	return criteria
}

// paragraphCriteria treats short paragraphs ending in ':' or ')' as headers and
// the paragraphs that follow as their description
func paragraphCriteria(text string) []Criterion {
	var (
		criteria    []Criterion
		current     string
		description []string
		open        bool
	)

	flush := func() {
		if !open {
			return
		}
		joined := strings.Join(description, " ")
		criteria = append(criteria, Criterion{
			Name:        criterionName(current),
			Weight:      defaultWeight,
			Description: joined,
			Keywords:    ExtractKeywords(joined),
		})
	}

	for _, para := range blankLinePattern.Split(text, -1) {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		if len(strings.Fields(para)) <= maxHeaderWords && (strings.HasSuffix(para, ":") || strings.HasSuffix(para, ")")) {
			flush()
			current = strings.TrimRight(para, ":)")
			description = nil
			open = true
			continue
		}
		if open {
			description = append(description, para)
		}
	}
	flush()
	return criteria
}

// criterionName trims a header to at most MaxCriterionNameLength runes, keeping the
// end of the header, which is where the name sits when a preamble shares its line
func criterionName(header string) string {
	name := strings.TrimSpace(header)
	runes := []rune(name)
	if len(runes) <= MaxCriterionNameLength {
		return name
	}
	return strings.TrimSpace(string(runes[len(runes)-MaxCriterionNameLength:]))
}

// ExtractKeywords returns the distinctive terms of text: lowercased non-stop-words
// of at least three letters and the two-word phrases they form, longest first
func ExtractKeywords(text string) []string {
	seen := make(map[string]struct{})
	var keywords []string
	add := func(k string) {
		if _, ok := seen[k]; ok {
			return
		}
		seen[k] = struct{}{}
		keywords = append(keywords, k)
	}

	for _, tokens := range clauseTokens(text) {
		prev := ""
		for _, tok := range tokens {
			if !isAlpha(tok) || utf8.RuneCountInString(tok) < 3 || IsStopWord(tok) {
				prev = ""
				continue
			}
			add(tok)
			if prev != "" {
				add(prev + " " + tok)
			}
			prev = tok
		}
	}

	sort.SliceStable(keywords, func(i, j int) bool {
		if len(keywords[i]) != len(keywords[j]) {
			return len(keywords[i]) > len(keywords[j])
		}
		return keywords[i] < keywords[j]
	})

	if len(keywords) > maxKeywords {
		keywords = keywords[:maxKeywords]
	}
	if keywords == nil {
		keywords = []string{}
	}
	return keywords
}

// ExtractGradeBoundaries finds explicit "Grade X: a-b" style boundaries and
// falls back to "a-b% = X" ranges when none are present
func ExtractGradeBoundaries(text string) []GradeBoundary {
	var boundaries []GradeBoundary

	for _, grade := range namedGrades {
		m := namedGradePatterns[grade].FindStringSubmatch(text)
		if m == nil {
			continue
		}
		lower, _ := strconv.Atoi(m[1])
		upper := lower
		if m[2] != "" {
			upper, _ = strconv.Atoi(m[2])
		}
		boundaries = append(boundaries, GradeBoundary{Grade: grade, Min: float64(lower), Max: float64(upper)})
	}

	if len(boundaries) > 0 {
		return boundaries
	}

	index := make(map[string]int)
	for _, m := range rangeGradePattern.FindAllStringSubmatch(text, -1) {
		lower, _ := strconv.Atoi(m[1])
		upper, _ := strconv.Atoi(m[2])
		b := GradeBoundary{Grade: strings.TrimSpace(m[3]), Min: float64(lower), Max: float64(upper)}
		if i, ok := index[b.Grade]; ok {
			boundaries[i] = b
			continue
		}
		index[b.Grade] = len(boundaries)
		boundaries = append(boundaries, b)
	}

	if boundaries == nil {
		boundaries = []GradeBoundary{}
	}
	return boundaries
}
