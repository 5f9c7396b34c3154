package marking

import "regexp"

var (
	requirementPattern     = regexp.MustCompile(`(?i)must|should|need to|required to|expected to`)
	learningOutcomePattern = regexp.MustCompile(`(?i)learning outcome|will be able to|demonstrate|understand|apply`)
	submissionPattern      = regexp.MustCompile(`(?i)submit|submission|deadline|due date|format|word count`)
)

// maxKeyTopics is the number of key topics kept from a brief
const maxKeyTopics = 10

// ProcessBrief extracts requirements, learning outcomes, submission details
// and key topics from the text of an assessment brief. A sentence can appear
// in more than one list.
func ProcessBrief(text string) BriefAnalysis {
	analysis := BriefAnalysis{
		Requirements:      []string{},
		LearningOutcomes:  []string{},
		SubmissionDetails: []string{},
		FullText:          text,
	}

	for _, sentence := range SplitSentences(text) {
		if requirementPattern.MatchString(sentence) {
			analysis.Requirements = append(analysis.Requirements, sentence)
		}
		if learningOutcomePattern.MatchString(sentence) {
			analysis.LearningOutcomes = append(analysis.LearningOutcomes, sentence)
		}
		if submissionPattern.MatchString(sentence) {
			analysis.SubmissionDetails = append(analysis.SubmissionDetails, sentence)
		}
	}

	analysis.KeyTopics = KeyTopics(text, maxKeyTopics)
	if analysis.KeyTopics == nil {
		analysis.KeyTopics = []string{}
	}
	return analysis
}
