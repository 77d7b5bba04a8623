package framework

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"examprep/pkg/preptypes"
)

// DimensionTitle turns an analysis key like "socialCulturalEthical" into "Social Cultural Ethical".
func DimensionTitle(key string) string {
	var b strings.Builder
	for i, r := range key {
		if i == 0 {
			b.WriteRune(unicode.ToUpper(r))
			continue
		}
		if unicode.IsUpper(r) {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func sortedOptionKeys(options map[string]string) []string {
	keys := make([]string, 0, len(options))
	for k := range options {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func writeBullets(b *strings.Builder, prefix string, items []string) {
	for _, item := range items {
		fmt.Fprintf(b, "%s%s\n", prefix, item)
	}
}

// PlainText renders rec as the plain-text study sheet used for copying.
func PlainText(topic string, rec *preptypes.FrameworkRecord) string {
	if rec == nil {
		return ""
	}
	var b strings.Builder

	fmt.Fprintf(&b, "UPSC FRAMEWORK FOR: %s\n\n", strings.ToUpper(topic))
	fmt.Fprintf(&b, "BRIEFING\n%s\n\n", rec.TopicBrief)

	if len(rec.PreviousYearQuestions) > 0 {
		b.WriteString("PREVIOUS YEAR QUESTIONS (PYQs)\n")
		for _, q := range rec.PreviousYearQuestions {
			fmt.Fprintf(&b, "(%d - %s) %s\n", q.Year, q.Exam, q.Question)
		}
		b.WriteString("\n")
	}

	b.WriteString("1. WHAT YOU NEED TO KNOW\nIntroduction:\n")
	writeBullets(&b, "- ", rec.WhatYouNeedToKnow.Introduction)
	fmt.Fprintf(&b, "Why Critical: %s\n\n", rec.WhatYouNeedToKnow.WhyThisIsCritical)

	if len(rec.LiveNewsFeed) > 0 {
		b.WriteString("2. LIVE NEWS FEED\n")
		for _, a := range rec.LiveNewsFeed {
			fmt.Fprintf(&b, "- Title: %s\n  Source: %s (%s)\n  Summary: %s\n\n", a.Title, a.Source, a.PublishedDate, a.Summary)
		}
	}

	b.WriteString("3. MULTI-DIMENSIONAL ANALYSIS\n")
	for _, key := range preptypes.AnalysisDimensions {
		point, _ := rec.MultiDimensionalAnalysis.Dimension(key)
		fmt.Fprintf(&b, "%s:\n", DimensionTitle(key))
		writeBullets(&b, "- ", point.Points)
		fmt.Fprintf(&b, "Crux: %s\n\n", point.Crux)
	}

	if len(rec.SourceValidation.ValidatedPoints) > 0 {
		b.WriteString("4. SOURCE VALIDATION\n")
		fmt.Fprintf(&b, "Summary: %s\n", rec.SourceValidation.Summary)
		for _, p := range rec.SourceValidation.ValidatedPoints {
			fmt.Fprintf(&b, "- Point: %q | Source: %s | Status: %s\n", p.Point, p.Source, p.VerificationStatus)
		}
		b.WriteString("\n")
	}

	b.WriteString("5. PRELIMS QUESTIONS\n")
	for i, q := range rec.PrelimsQuestions {
		fmt.Fprintf(&b, "Q%d (%s): %s\n", i+1, q.Type, q.Question)
		for _, k := range sortedOptionKeys(q.Options) {
			fmt.Fprintf(&b, "%s) %s\n", k, q.Options[k])
		}
		fmt.Fprintf(&b, "Answer: %s\n\n", q.CorrectAnswer)
	}

	b.WriteString("6. MAINS QUESTIONS\n")
	for i, q := range rec.MainsQuestions {
		fmt.Fprintf(&b, "Q%d (%s): %s\nStructure:\n", i+1, q.Type, q.Question)
		writeBullets(&b, "- ", q.AnswerStructure)
		b.WriteString("\n")
	}

	b.WriteString("7. INTERVIEW QUESTIONS\n")
	for _, q := range rec.InterviewQuestions {
		fmt.Fprintf(&b, "Q (%s): %s\nA: %s\n\n", q.Type, q.Question, q.Answer)
	}

	b.WriteString("8. WHAT EXAMINER IS TESTING\n")
	writeBullets(&b, "- ", rec.WhatExaminerIsTesting)
	b.WriteString("\n")

	fmt.Fprintf(&b, "9. FINAL THOUGHTS\n%s\n\n", rec.FinalThoughts)

	if len(rec.RelatedTopics) > 0 {
		fmt.Fprintf(&b, "RELATED TOPICS TO EXPLORE\n%s\n", strings.Join(rec.RelatedTopics, ", "))
	}

	return b.String()
}

// Markdown renders rec and its grounding sources as a markdown document for terminal display.
func Markdown(topic string, rec *preptypes.FrameworkRecord, sources []preptypes.Source) string {
	if rec == nil {
		return ""
	}
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", topic)
	fmt.Fprintf(&b, "> %s\n\n", rec.TopicBrief)

	if len(rec.PreviousYearQuestions) > 0 {
		b.WriteString("## Previous Year Questions\n\n")
		for _, q := range rec.PreviousYearQuestions {
			fmt.Fprintf(&b, "- **%d, %s**: %s\n", q.Year, q.Exam, q.Question)
		}
		b.WriteString("\n")
	}

	b.WriteString("## 1. What You Need to Know\n\n")
	writeBullets(&b, "- ", rec.WhatYouNeedToKnow.Introduction)
	fmt.Fprintf(&b, "\n**Why this is critical:** %s\n\n", rec.WhatYouNeedToKnow.WhyThisIsCritical)

	if len(rec.LiveNewsFeed) > 0 {
		b.WriteString("## 2. Live News Feed\n\n")
		for _, a := range rec.LiveNewsFeed {
			fmt.Fprintf(&b, "- **%s** (%s, %s)\n  %s\n", a.Title, a.Source, a.PublishedDate, a.Summary)
		}
		b.WriteString("\n")
	}

	b.WriteString("## 3. Multi-Dimensional Analysis\n\n")
	for _, key := range preptypes.AnalysisDimensions {
		point, _ := rec.MultiDimensionalAnalysis.Dimension(key)
		fmt.Fprintf(&b, "### %s\n\n", DimensionTitle(key))
		writeBullets(&b, "- ", point.Points)
		fmt.Fprintf(&b, "\n*Crux:* %s\n\n", point.Crux)
	}

	if len(rec.SourceValidation.ValidatedPoints) > 0 {
		b.WriteString("## 4. Source Validation\n\n")
		fmt.Fprintf(&b, "%s\n\n", rec.SourceValidation.Summary)
		b.WriteString("| Point | Source | Status |\n|---|---|---|\n")
		for _, p := range rec.SourceValidation.ValidatedPoints {
			fmt.Fprintf(&b, "| %s | %s | %s |\n", escapeCell(p.Point), escapeCell(p.Source), p.VerificationStatus)
		}
		b.WriteString("\n")
	}

	b.WriteString("## 5. Prelims Questions\n\n")
	for i, q := range rec.PrelimsQuestions {
		fmt.Fprintf(&b, "**Q%d (%s).** %s\n\n", i+1, q.Type, q.Question)
		for _, k := range sortedOptionKeys(q.Options) {
			fmt.Fprintf(&b, "- %s) %s\n", k, q.Options[k])
		}
		fmt.Fprintf(&b, "\nAnswer: **%s**\n\n", q.CorrectAnswer)
	}

	b.WriteString("## 6. Mains Questions\n\n")
	for i, q := range rec.MainsQuestions {
		fmt.Fprintf(&b, "**Q%d (%s).** %s\n\n", i+1, q.Type, q.Question)
		for j, step := range q.AnswerStructure {
			fmt.Fprintf(&b, "%d. %s\n", j+1, step)
		}
		b.WriteString("\n")
	}

	b.WriteString("## 7. Interview Questions\n\n")
	for _, q := range rec.InterviewQuestions {
		fmt.Fprintf(&b, "**%s:** %s\n\n%s\n\n", q.Type, q.Question, q.Answer)
	}

	b.WriteString("## 8. What the Examiner Is Testing\n\n")
	writeBullets(&b, "- ", rec.WhatExaminerIsTesting)
	b.WriteString("\n")

	fmt.Fprintf(&b, "## 9. Final Thoughts\n\n%s\n\n", rec.FinalThoughts)

	if len(rec.RelatedTopics) > 0 {
		fmt.Fprintf(&b, "## Related Topics\n\n%s\n\n", strings.Join(rec.RelatedTopics, " · "))
	}

	b.WriteString(SourcesMarkdown(sources))
	return b.String()
}

// SourcesMarkdown renders grounding citations as a markdown list, or "" when there are none.
func SourcesMarkdown(sources []preptypes.Source) string {
	if len(sources) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("## Sources\n\n")
	for i, s := range sources {
		title := s.Title
		if title == "" {
			title = s.URI
		}
		fmt.Fprintf(&b, "%d. [%s](%s)\n", i+1, title, s.URI)
	}
	return b.String()
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
