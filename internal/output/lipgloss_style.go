package output

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// LipglossStyleProvider renders semantic output with lipgloss adaptive colors.
type LipglossStyleProvider struct {
	styles map[SemanticType]lipgloss.Style
}

// NewLipglossStyleProvider builds the examprep palette for the given color profile.
func NewLipglossStyleProvider(profile termenv.Profile) *LipglossStyleProvider {
	r := lipgloss.NewRenderer(io.Discard)
	r.SetColorProfile(profile)

	accent := lipgloss.AdaptiveColor{Light: "#4338CA", Dark: "#A5B4FC"}
	return &LipglossStyleProvider{styles: map[SemanticType]lipgloss.Style{
		SemanticPlain:     r.NewStyle(),
		SemanticInfo:      r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#1D4ED8", Dark: "#60A5FA"}),
		SemanticSuccess:   r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#15803D", Dark: "#4ADE80"}),
		SemanticWarning:   r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#B45309", Dark: "#FBBF24"}),
		SemanticError:     r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#B91C1C", Dark: "#F87171"}).Bold(true),
		SemanticHighlight: r.NewStyle().Foreground(accent).Bold(true),
		SemanticBold:      r.NewStyle().Bold(true),
		SemanticMuted:     r.NewStyle().Faint(true),
		SemanticBox: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(0, 2),
	}}
}

// GetStyle implements StyleProvider.
func (l *LipglossStyleProvider) GetStyle(semantic string) TextStyle {
	if style, ok := l.styles[SemanticType(semantic)]; ok {
		return style
	}
	return l.styles[SemanticPlain]
}

// IsAvailable implements StyleProvider.
func (l *LipglossStyleProvider) IsAvailable() bool {
	return l != nil
}
