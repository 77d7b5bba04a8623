// Package preptypes defines the data model shared across examprep.
// This file contains the framework record produced from a validated model reply.
package preptypes

import "encoding/json"

// Required top-level keys of a framework reply, in display order.
const (
	KeyTopicBrief               = "topicBrief"
	KeyWhatYouNeedToKnow        = "whatYouNeedToKnow"
	KeyLiveNewsFeed             = "liveNewsFeed"
	KeyMultiDimensionalAnalysis = "multiDimensionalAnalysis"
	KeySourceValidation         = "sourceValidation"
	KeyPreviousYearQuestions    = "previousYearQuestions"
	KeyPrelimsQuestions         = "prelimsQuestions"
	KeyMainsQuestions           = "mainsQuestions"
	KeyInterviewQuestions       = "interviewQuestions"
	KeyWhatExaminerIsTesting    = "whatExaminerIsTesting"
	KeyFinalThoughts            = "finalThoughts"
	KeyRelatedTopics            = "relatedTopics"
)

// RequiredFrameworkKeys lists every key a reply must carry with a non-null value.
// The order is the order missing keys are reported in.
var RequiredFrameworkKeys = []string{
	KeyTopicBrief,
	KeyWhatYouNeedToKnow,
	KeyLiveNewsFeed,
	KeyMultiDimensionalAnalysis,
	KeySourceValidation,
	KeyPreviousYearQuestions,
	KeyPrelimsQuestions,
	KeyMainsQuestions,
	KeyInterviewQuestions,
	KeyWhatExaminerIsTesting,
	KeyFinalThoughts,
	KeyRelatedTopics,
}

// Analysis dimension keys inside multiDimensionalAnalysis.
const (
	DimRegulatoryInstitutional     = "regulatoryInstitutional"
	DimGovernancePolicyFailure     = "governancePolicyFailure"
	DimTechnicalInfrastructure     = "technicalInfrastructure"
	DimDisasterSecurityConflict    = "disasterSecurityConflict"
	DimEconomicGlobalRepercussions = "economicGlobalRepercussions"
	DimSocialCulturalEthical       = "socialCulturalEthical"
)

// AnalysisDimensions lists the six fixed analysis categories in display order.
var AnalysisDimensions = []string{
	DimRegulatoryInstitutional,
	DimGovernancePolicyFailure,
	DimTechnicalInfrastructure,
	DimDisasterSecurityConflict,
	DimEconomicGlobalRepercussions,
	DimSocialCulturalEthical,
}

// VerificationStatus is the verification outcome of a validated data point.
type VerificationStatus string

// Verification statuses the prompt allows.
const (
	StatusVerified          VerificationStatus = "Verified"
	StatusPartiallyVerified VerificationStatus = "Partially Verified"
	StatusDataNotFound      VerificationStatus = "Data Not Found"
)

// DataNotAvailable is the literal the model is told to use for unknown strings.
const DataNotAvailable = "Data not available"

// WhatYouNeedToKnow is the introduction block of a framework.
type WhatYouNeedToKnow struct {
	Introduction      []string `json:"introduction"`
	WhyThisIsCritical string   `json:"whyThisIsCritical"`
}

// NewsArticle is one item of the live news feed.
type NewsArticle struct {
	Title         string `json:"title"`
	Source        string `json:"source"`
	Summary       string `json:"summary"`
	PublishedDate string `json:"publishedDate"`
}

// MultiDimPoint holds the bullet points and one-line crux of one analysis dimension.
type MultiDimPoint struct {
	Points []string `json:"points"`
	Crux   string   `json:"crux"`
}

// MultiDimensionalAnalysis is the six-dimension analysis block.
type MultiDimensionalAnalysis struct {
	RegulatoryInstitutional     MultiDimPoint `json:"regulatoryInstitutional"`
	GovernancePolicyFailure     MultiDimPoint `json:"governancePolicyFailure"`
	TechnicalInfrastructure     MultiDimPoint `json:"technicalInfrastructure"`
	DisasterSecurityConflict    MultiDimPoint `json:"disasterSecurityConflict"`
	EconomicGlobalRepercussions MultiDimPoint `json:"economicGlobalRepercussions"`
	SocialCulturalEthical       MultiDimPoint `json:"socialCulturalEthical"`
}

// Dimension returns the analysis block for one of AnalysisDimensions.
func (m MultiDimensionalAnalysis) Dimension(key string) (MultiDimPoint, bool) {
	switch key {
	case DimRegulatoryInstitutional:
		return m.RegulatoryInstitutional, true
	case DimGovernancePolicyFailure:
		return m.GovernancePolicyFailure, true
	case DimTechnicalInfrastructure:
		return m.TechnicalInfrastructure, true
	case DimDisasterSecurityConflict:
		return m.DisasterSecurityConflict, true
	case DimEconomicGlobalRepercussions:
		return m.EconomicGlobalRepercussions, true
	case DimSocialCulturalEthical:
		return m.SocialCulturalEthical, true
	default:
		return MultiDimPoint{}, false
	}
}

// ValidatedPoint is a fact cross-checked against an official source.
type ValidatedPoint struct {
	Point              string             `json:"point"`
	Source             string             `json:"source"`
	VerificationStatus VerificationStatus `json:"verificationStatus"`
}

// SourceValidation summarizes how the key data points were verified.
type SourceValidation struct {
	Summary         string           `json:"summary"`
	ValidatedPoints []ValidatedPoint `json:"validatedPoints"`
}

// PreviousYearQuestion is a past exam question on the topic.
type PreviousYearQuestion struct {
	Year     int    `json:"year"`
	Exam     string `json:"exam"`
	Question string `json:"question"`
}

// PrelimsQuestion is a four-option multiple-choice question.
type PrelimsQuestion struct {
	Type          string            `json:"type"`
	Question      string            `json:"question"`
	Options       map[string]string `json:"options"`
	CorrectAnswer string            `json:"correctAnswer"`
}

// MainsQuestion is an essay question with an ordered answer outline.
type MainsQuestion struct {
	Type            string   `json:"type"`
	Question        string   `json:"question"`
	AnswerStructure []string `json:"answerStructure"`
}

// InterviewQuestion is a personality-test question with a model answer.
type InterviewQuestion struct {
	Type     string `json:"type"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// FrameworkRecord is a schema-complete framework reply.
// Nested values are decoded best-effort; Raw always holds the object exactly as the model returned it.
type FrameworkRecord struct {
	TopicBrief               string                   `json:"topicBrief"`
	WhatYouNeedToKnow        WhatYouNeedToKnow        `json:"whatYouNeedToKnow"`
	LiveNewsFeed             []NewsArticle            `json:"liveNewsFeed"`
	MultiDimensionalAnalysis MultiDimensionalAnalysis `json:"multiDimensionalAnalysis"`
	SourceValidation         SourceValidation         `json:"sourceValidation"`
	PreviousYearQuestions    []PreviousYearQuestion   `json:"previousYearQuestions"`
	PrelimsQuestions         []PrelimsQuestion        `json:"prelimsQuestions"`
	MainsQuestions           []MainsQuestion          `json:"mainsQuestions"`
	InterviewQuestions       []InterviewQuestion      `json:"interviewQuestions"`
	WhatExaminerIsTesting    []string                 `json:"whatExaminerIsTesting"`
	FinalThoughts            string                   `json:"finalThoughts"`
	RelatedTopics            []string                 `json:"relatedTopics"`

	Raw json.RawMessage `json:"-"`
}

// MarshalJSON emits the original reply object when available so round trips are lossless.
func (r FrameworkRecord) MarshalJSON() ([]byte, error) {
	if len(r.Raw) > 0 {
		return r.Raw, nil
	}
	type plain FrameworkRecord
	return json.Marshal(plain(r))
}

// FrameworkResult is what GenerateFramework hands to the presentation layer.
type FrameworkResult struct {
	Topic   string           `json:"topic"`
	Data    *FrameworkRecord `json:"data"`
	Sources []Source         `json:"sources,omitempty"`
}

// FollowUpResult is the grounded answer to a follow-up question.
type FollowUpResult struct {
	Topic    string   `json:"topic"`
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Sources  []Source `json:"sources,omitempty"`
}
