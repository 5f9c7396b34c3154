package marking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitSentences(t *testing.T) {
	text := "First sentence. Second one!  Third?\n\nNew paragraph without stop\nstill same one. version 1.2 stays"

	assert.Equal(t, []string{
		"First sentence.",
		"Second one!",
		"Third?",
		"New paragraph without stop\nstill same one.",
		"version 1.2 stays",
	}, SplitSentences(text))

	assert.Empty(t, SplitSentences("   \n\n  "))
}

func TestWords(t *testing.T) {
	assert.Equal(t, []string{"The", "cat", "sat", "on", "mats"}, Words("The cat sat on 2 mats, it's"))
	assert.Equal(t, 0, WordCount(""))
}

func TestPhrases(t *testing.T) {
	phrases := Phrases("Students must write a report on cloud computing architecture. Data: machine learning models")
	assert.Equal(t, []string{"cloud computing architecture", "machine learning models"}, phrases)
}

func TestPhrases_LongRunsAreChunked(t *testing.T) {
	phrases := Phrases("alpha beta gamma delta epsilon")
	assert.Equal(t, []string{"alpha beta gamma", "delta epsilon"}, phrases)
}

func TestKeyTopics_UniqueAndLimited(t *testing.T) {
	text := "cloud computing. cloud computing. io ux. neural networks. graph theory"
	assert.Equal(t, []string{"cloud computing", "neural networks"}, KeyTopics(text, 2))
	// "io ux" is too short to be a topic
	assert.Equal(t, []string{"cloud computing", "neural networks", "graph theory"}, KeyTopics(text, 10))
}
