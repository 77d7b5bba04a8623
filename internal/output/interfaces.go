// Package output provides the console output system for the examprep CLI.
// Styling is injected through StyleProvider so commands can stay plain in pipes and tests.
package output

// StyleProvider supplies a TextStyle for each semantic type.
// The output package depends only on this interface, not on a concrete theme.
type StyleProvider interface {
	// GetStyle returns a TextStyle for the given semantic type.
	GetStyle(semantic string) TextStyle

	// IsAvailable returns true if the style provider is ready to provide styles.
	IsAvailable() bool
}

// TextStyle represents the capability to render text with styling.
// lipgloss.Style satisfies it.
type TextStyle interface {
	Render(text ...string) string
}

// Mode defines different output modes the printer can operate in.
type Mode int

const (
	// ModeAuto styles output when a StyleProvider is available.
	ModeAuto Mode = iota

	// ModeStyled forces styled output
	ModeStyled

	// ModePlain forces plain text output
	ModePlain

	// ModeJSON writes one JSON object per message
	ModeJSON
)

// SemanticType defines the semantic meaning of output for consistent styling.
type SemanticType string

const (
	SemanticPlain     SemanticType = "plain"
	SemanticInfo      SemanticType = "info"
	SemanticSuccess   SemanticType = "success"
	SemanticWarning   SemanticType = "warning"
	SemanticError     SemanticType = "error"
	SemanticHighlight SemanticType = "highlight"
	SemanticBold      SemanticType = "bold"
	SemanticMuted     SemanticType = "muted"
	SemanticBox       SemanticType = "box"
)
