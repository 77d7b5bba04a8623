package testutils

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"examprep/pkg/preptypes"
)

// FrameworkObject returns a schema-complete framework reply as a generic map, so
// tests can delete or null individual keys.
func FrameworkObject(topic string) map[string]interface{} {
	dimension := func(area string) map[string]interface{} {
		return map[string]interface{}{
			"points": []string{fmt.Sprintf("%s aspect of %s", area, topic)},
			"crux":   fmt.Sprintf("%s crux", area),
		}
	}
	return map[string]interface{}{
		preptypes.KeyTopicBrief: fmt.Sprintf("%s in brief.", topic),
		preptypes.KeyWhatYouNeedToKnow: map[string]interface{}{
			"introduction":      []string{fmt.Sprintf("%s matters.", topic)},
			"whyThisIsCritical": "Frequently asked.",
		},
		preptypes.KeyLiveNewsFeed: []map[string]string{
			{"title": "Update", "source": "PIB", "summary": "Latest development.", "publishedDate": "2025-01-01"},
		},
		preptypes.KeyMultiDimensionalAnalysis: map[string]interface{}{
			preptypes.DimRegulatoryInstitutional:     dimension("Regulatory"),
			preptypes.DimGovernancePolicyFailure:     dimension("Governance"),
			preptypes.DimTechnicalInfrastructure:     dimension("Technical"),
			preptypes.DimDisasterSecurityConflict:    dimension("Security"),
			preptypes.DimEconomicGlobalRepercussions: dimension("Economic"),
			preptypes.DimSocialCulturalEthical:       dimension("Social"),
		},
		preptypes.KeySourceValidation: map[string]interface{}{
			"summary": "Checked against official sources.",
			"validatedPoints": []map[string]string{
				{"point": "Article 44", "source": "Constitution of India", "verificationStatus": "Verified"},
			},
		},
		preptypes.KeyPreviousYearQuestions: []map[string]interface{}{
			{"year": 2019, "exam": "Mains GS2", "question": fmt.Sprintf("Discuss %s.", topic)},
		},
		preptypes.KeyPrelimsQuestions: []map[string]interface{}{
			{
				"type":          "Statement-based",
				"question":      "Which is correct?",
				"options":       map[string]string{"a": "One", "b": "Two", "c": "Three", "d": "Four"},
				"correctAnswer": "b",
			},
		},
		preptypes.KeyMainsQuestions: []map[string]interface{}{
			{"type": "Analytical", "question": "Analyse.", "answerStructure": []string{"Intro", "Body", "Conclusion"}},
		},
		preptypes.KeyInterviewQuestions: []map[string]string{
			{"type": "Opinion-based", "question": "Your view?", "answer": "Balanced view."},
		},
		preptypes.KeyWhatExaminerIsTesting: []string{"Constitutional knowledge"},
		preptypes.KeyFinalThoughts:         "Keep revising.",
		preptypes.KeyRelatedTopics:         []string{"Personal laws"},
	}
}

// FrameworkReply encodes FrameworkObject(topic) without the omitted keys.
func FrameworkReply(t testing.TB, topic string, omit ...string) string {
	t.Helper()
	obj := FrameworkObject(topic)
	for _, key := range omit {
		delete(obj, key)
	}
	data, err := json.Marshal(obj)
	require.NoError(t, err)
	return string(data)
}

// Fenced wraps body in a markdown code fence with the given language tag.
func Fenced(lang, body string) string {
	return "```" + lang + "\n" + body + "\n```"
}

// CreateTempFile creates a temporary file with given content and returns its path.
func CreateTempFile(t *testing.T, filename, content string) string {
	t.Helper()
	filePath := filepath.Join(t.TempDir(), filename)
	require.NoError(t, os.WriteFile(filePath, []byte(content), 0o644), "Should create temp file successfully")
	return filePath
}
