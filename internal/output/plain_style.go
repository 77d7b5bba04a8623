package output

import (
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// PlainTextStyle renders text with an optional semantic prefix and no escape codes.
type PlainTextStyle struct {
	prefix string
}

// NewPlainTextStyle creates a new plain text style with an optional prefix.
func NewPlainTextStyle(prefix string) *PlainTextStyle {
	return &PlainTextStyle{prefix: prefix}
}

// Render implements TextStyle.
func (p *PlainTextStyle) Render(text ...string) string {
	joined := strings.Join(text, " ")
	if p.prefix != "" {
		return p.prefix + joined
	}
	return joined
}

// plainBox draws an ASCII-safe border without color codes.
var plainBox = func() lipgloss.Style {
	r := lipgloss.NewRenderer(io.Discard)
	r.SetColorProfile(termenv.Ascii)
	return r.NewStyle().Border(lipgloss.NormalBorder()).Padding(0, 2)
}()

// PlainStyleProvider is the fallback used when styling is unavailable or disabled.
type PlainStyleProvider struct{}

// NewPlainStyleProvider creates a new plain style provider.
func NewPlainStyleProvider() *PlainStyleProvider {
	return &PlainStyleProvider{}
}

// GetStyle returns prefix-only styles so plain output keeps its meaning.
func (p *PlainStyleProvider) GetStyle(semantic string) TextStyle {
	switch SemanticType(semantic) {
	case SemanticSuccess:
		return NewPlainTextStyle("✓ ")
	case SemanticWarning:
		return NewPlainTextStyle("⚠ ")
	case SemanticError:
		return NewPlainTextStyle("✗ ")
	case SemanticInfo:
		return NewPlainTextStyle("ℹ ")
	case SemanticBox:
		return plainBox
	default:
		return NewPlainTextStyle("")
	}
}

// IsAvailable implements StyleProvider.
func (p *PlainStyleProvider) IsAvailable() bool {
	return true
}
