package framework

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"examprep/pkg/preptypes"
)

func TestBuildPrompt_ContainsTopicAndKeys(t *testing.T) {
	topics := []string{
		"Uniform Civil Code",
		"a",
		"GST Council & fiscal federalism",
		`Topic with "quotes" and {braces}`,
		"भारत में जल संकट",
		"  padded topic  ",
	}

	for _, topic := range topics {
		t.Run(topic, func(t *testing.T) {
			prompt := BuildPrompt(topic)

			assert.Contains(t, prompt, topic)
			for _, key := range preptypes.RequiredFrameworkKeys {
				assert.Contains(t, prompt, `"`+key+`"`, "prompt must name key %s", key)
			}
		})
	}
}

func TestBuildPrompt_Instructions(t *testing.T) {
	prompt := BuildPrompt("Electoral bonds")

	assert.Contains(t, prompt, `"Data not available"`)
	assert.Contains(t, prompt, "[]")
	assert.Contains(t, prompt, "contract violation")
	assert.Contains(t, prompt, `"Verified", "Partially Verified", "Data Not Found"`)

	for _, dim := range preptypes.AnalysisDimensions {
		assert.Contains(t, prompt, `"`+dim+`"`)
	}

	for _, kind := range []string{"Statement-based", "Factual Recall", "Conceptual Understanding", "Current Affairs-based", "Match the Following"} {
		assert.Contains(t, prompt, kind)
	}
	for _, kind := range []string{"Critically Examine", "Discuss", "Analyze", "Compare and Contrast"} {
		assert.Contains(t, prompt, kind)
	}
	for _, kind := range []string{"Opinion-based", "Situational / Hypothetical", "Background / DAF-based", "Current Affairs Testing", "Abstract / Curveball"} {
		assert.Contains(t, prompt, kind)
	}
}

func TestBuildPrompt_Deterministic(t *testing.T) {
	assert.Equal(t, BuildPrompt("Monsoon"), BuildPrompt("Monsoon"))
	assert.NotEqual(t, BuildPrompt("Monsoon"), BuildPrompt("Drought"))
	assert.False(t, strings.HasPrefix(BuildPrompt("Monsoon"), " "))
}

func TestBuildFollowUpPrompt(t *testing.T) {
	prompt := BuildFollowUpPrompt("Uniform Civil Code", "How does Goa's code work?")

	assert.Contains(t, prompt, `"Uniform Civil Code"`)
	assert.Contains(t, prompt, `"How does Goa's code work?"`)
	assert.Contains(t, prompt, "UPSC")
	assert.NotContains(t, prompt, "topicBrief")
}
