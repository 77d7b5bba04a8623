package framework

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"examprep/pkg/preptypes"
)

func fixtureRecord(t *testing.T) *preptypes.FrameworkRecord {
	t.Helper()
	result, err := Validate(loadFixture(t), nil)
	require.NoError(t, err)
	return result.Data
}

func TestDimensionTitle(t *testing.T) {
	tests := map[string]string{
		"regulatoryInstitutional":     "Regulatory Institutional",
		"socialCulturalEthical":       "Social Cultural Ethical",
		"economicGlobalRepercussions": "Economic Global Repercussions",
		"x":                           "X",
		"":                            "",
	}
	for in, expected := range tests {
		assert.Equal(t, expected, DimensionTitle(in))
	}
}

func TestPlainText(t *testing.T) {
	text := PlainText("Uniform Civil Code", fixtureRecord(t))

	assert.True(t, strings.HasPrefix(text, "UPSC FRAMEWORK FOR: UNIFORM CIVIL CODE\n\n"))
	sections := []string{
		"BRIEFING\n",
		"PREVIOUS YEAR QUESTIONS (PYQs)\n(2015 - GS Paper 1)",
		"1. WHAT YOU NEED TO KNOW\nIntroduction:\n- Article 44 directs",
		"2. LIVE NEWS FEED\n- Title: Uttarakhand notifies UCC rules\n  Source: The Hindu (2025-01-27)",
		"3. MULTI-DIMENSIONAL ANALYSIS\nRegulatory Institutional:\n- Article 44, DPSP\nCrux: A directive",
		"4. SOURCE VALIDATION\nSummary:",
		"Status: Verified",
		"5. PRELIMS QUESTIONS\nQ1 (Factual Recall):",
		"A) Article 44\nB) Article 48\nC) Article 21\nD) Article 51A\nAnswer: A",
		"6. MAINS QUESTIONS\nQ1 (Critically Examine):",
		"Structure:\n- Intro: Article 44",
		"7. INTERVIEW QUESTIONS\nQ (Opinion-based): Is India ready for a UCC?\nA: A gradual",
		"8. WHAT EXAMINER IS TESTING\n- Balanced Perspective",
		"9. FINAL THOUGHTS\n",
		"RELATED TOPICS TO EXPLORE\nPersonal laws, Article 25, Gender justice\n",
	}
	for _, section := range sections {
		assert.Contains(t, text, section)
	}

	// Sections appear in display order.
	last := -1
	for _, heading := range []string{"BRIEFING", "1. WHAT", "2. LIVE", "3. MULTI", "4. SOURCE", "5. PRELIMS", "6. MAINS", "7. INTERVIEW", "8. WHAT", "9. FINAL", "RELATED"} {
		idx := strings.Index(text, heading)
		assert.Greater(t, idx, last, heading)
		last = idx
	}
}

func TestPlainText_OptionalSectionsOmitted(t *testing.T) {
	rec := fixtureRecord(t)
	rec.PreviousYearQuestions = nil
	rec.LiveNewsFeed = nil
	rec.SourceValidation.ValidatedPoints = nil
	rec.RelatedTopics = nil

	text := PlainText("UCC", rec)
	assert.NotContains(t, text, "PREVIOUS YEAR QUESTIONS")
	assert.NotContains(t, text, "LIVE NEWS FEED")
	assert.NotContains(t, text, "SOURCE VALIDATION")
	assert.NotContains(t, text, "RELATED TOPICS")
	assert.Contains(t, text, "9. FINAL THOUGHTS")
}

func TestRender_NilRecord(t *testing.T) {
	assert.Empty(t, PlainText("x", nil))
	assert.Empty(t, Markdown("x", nil, nil))
}

func TestMarkdown(t *testing.T) {
	sources := []preptypes.Source{
		{URI: "https://example.org/a", Title: "Explainer"},
		{URI: "https://example.org/b"},
	}
	md := Markdown("Uniform Civil Code", fixtureRecord(t), sources)

	assert.True(t, strings.HasPrefix(md, "# Uniform Civil Code\n"))
	assert.Contains(t, md, "### Social Cultural Ethical")
	assert.Contains(t, md, "| Article 44 mentions a uniform civil code. | Constitution of India | Verified |")
	assert.Contains(t, md, "1. Intro: Article 44\n2. Body: Arguments for")
	assert.Contains(t, md, "Answer: **A**")
	assert.Contains(t, md, "## Sources\n\n1. [Explainer](https://example.org/a)\n2. [https://example.org/b](https://example.org/b)\n")
}

func TestSourcesMarkdown_Empty(t *testing.T) {
	assert.Empty(t, SourcesMarkdown(nil))
	assert.Empty(t, SourcesMarkdown([]preptypes.Source{}))
}

func TestEscapeCell(t *testing.T) {
	assert.Equal(t, `a \| b`, escapeCell("a | b"))
}
