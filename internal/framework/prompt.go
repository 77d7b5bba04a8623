// Package framework builds the model prompts and turns raw model replies into
// validated framework records. Everything here is pure and safe for concurrent use.
package framework

import (
	"embed"
	"strings"
	"text/template"

	"examprep/pkg/preptypes"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var (
	frameworkTemplate = template.Must(template.ParseFS(templateFS, "templates/framework_prompt.tmpl"))
	followUpTemplate  = template.Must(template.ParseFS(templateFS, "templates/followup_prompt.tmpl"))
)

type frameworkPromptData struct {
	Topic    string
	Fallback string
	KeyList  string
	Verified preptypes.VerificationStatus
	Statuses string
}

type followUpPromptData struct {
	Topic    string
	Question string
}

// BuildPrompt renders the framework instruction for topic.
// The topic is embedded verbatim; every required key is named with an example shape.
func BuildPrompt(topic string) string {
	statuses := []string{
		string(preptypes.StatusVerified),
		string(preptypes.StatusPartiallyVerified),
		string(preptypes.StatusDataNotFound),
	}
	return render(frameworkTemplate, frameworkPromptData{
		Topic:    topic,
		Fallback: preptypes.DataNotAvailable,
		KeyList:  strings.Join(preptypes.RequiredFrameworkKeys, ", "),
		Verified: preptypes.StatusVerified,
		Statuses: `"` + strings.Join(statuses, `", "`) + `"`,
	})
}

// BuildFollowUpPrompt renders the short instruction for a follow-up question on topic.
func BuildFollowUpPrompt(topic, question string) string {
	return render(followUpTemplate, followUpPromptData{Topic: topic, Question: question})
}

func render(tmpl *template.Template, data interface{}) string {
	var b strings.Builder
	// The templates are static and only reference fields of the data structs,
	// so Execute cannot fail once ParseFS has succeeded.
	if err := tmpl.Execute(&b, data); err != nil {
		panic("framework: executing " + tmpl.Name() + ": " + err.Error())
	}
	return strings.TrimSpace(b.String())
}
