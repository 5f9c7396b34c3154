package marking

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	blankLinePattern = regexp.MustCompile(`\n[ \t\r]*\n`)
	// wordPattern matches tokens; a token only counts as a word when it is purely alphabetic
	wordPattern = regexp.MustCompile(`[A-Za-z0-9_']+`)
	// phraseBreakPattern splits text into clauses that phrases may not span
	phraseBreakPattern = regexp.MustCompile(`[^A-Za-z0-9'\s-]+|\n`)
)

// maxPhraseWords caps the length of a noun-like phrase
const maxPhraseWords = 4

// stopWords is the common English stop word list
var stopWords = toSet(strings.Fields(`
i me my myself we our ours ourselves you your yours yourself yourselves he him his himself
she her hers herself it its itself they them their theirs themselves what which who whom this
that these those am is are was were be been being have has had having do does did doing a an
the and but if or because as until while of at by for with about against between into through
during before after above below to from up down in out on off over under again further then once
here there when where why how all any both each few more most other some such no nor not only own
same so than too very s t can will just don should now d ll m o re ve y ain aren couldn didn doesn
hadn hasn haven isn ma mightn mustn needn shan shouldn wasn weren won wouldn also may might must
shall would could within without upon via etc e g ie eg
`))

func toSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// IsStopWord reports whether the lowercased word is a stop word
func IsStopWord(word string) bool {
	_, ok := stopWords[strings.ToLower(word)]
	return ok
}

func isAlpha(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

// SplitSentences splits text on ., ! or ? followed by whitespace and on blank lines
func SplitSentences(text string) []string {
	var sentences []string
	for _, para := range blankLinePattern.Split(text, -1) {
		runes := []rune(para)
		start := 0
		for i, r := range runes {
			if r != '.' && r != '!' && r != '?' {
				continue
			}
			if i+1 < len(runes) && !unicode.IsSpace(runes[i+1]) {
				continue
			}
			if s := strings.TrimSpace(string(runes[start : i+1])); s != "" {
				sentences = append(sentences, s)
			}
			start = i + 1
		}
		if s := strings.TrimSpace(string(runes[start:])); s != "" {
			sentences = append(sentences, s)
		}
	}
	return sentences
}

// Words returns the alphabetic tokens of text in order
func Words(text string) []string {
	var words []string
	for _, tok := range wordPattern.FindAllString(text, -1) {
		if isAlpha(tok) {
			words = append(words, tok)
		}
	}
	return words
}

// WordCount counts the alphabetic tokens of text
func WordCount(text string) int {
	return len(Words(text))
}

// clauseTokens splits text into clauses of lowercased tokens
func clauseTokens(text string) [][]string {
	var clauses [][]string
	for _, clause := range phraseBreakPattern.Split(text, -1) {
		var tokens []string
		for _, tok := range strings.FieldsFunc(clause, func(r rune) bool {
			return unicode.IsSpace(r) || r == '-'
		}) {
			tokens = append(tokens, strings.ToLower(strings.Trim(tok, "'")))
		}
		if len(tokens) > 0 {
			clauses = append(clauses, tokens)
		}
	}
	return clauses
}

// Phrases returns the multi-word noun-like phrases of text in order of appearance.
// A phrase is a run of at least two consecutive alphabetic non-stop-words; runs
// longer than maxPhraseWords are cut into consecutive chunks.
func Phrases(text string) []string {
	var phrases []string
	flush := func(run []string) {
		for len(run) >= 2 {
			n := len(run)
			if n > maxPhraseWords {
				n = maxPhraseWords
				// avoid leaving a single word behind
				if len(run)-n == 1 {
					n--
				}
			}
			phrases = append(phrases, strings.Join(run[:n], " "))
			run = run[n:]
		}
	}

	for _, tokens := range clauseTokens(text) {
		var run []string
		for _, tok := range tokens {
			if isAlpha(tok) && !IsStopWord(tok) {
				run = append(run, tok)
				continue
			}
			flush(run)
			run = nil
		}
		flush(run)
	}
	return phrases
}

// KeyTopics returns up to limit unique phrases longer than five characters
func KeyTopics(text string, limit int) []string {
	seen := make(map[string]struct{})
	var topics []string
	for _, p := range Phrases(text) {
		if len(p) <= 5 {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		topics = append(topics, p)
		if limit > 0 && len(topics) == limit {
			break
		}
	}
	return topics
}

// truncate returns the first n runes of s
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
