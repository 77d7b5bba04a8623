package services

import (
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"

	"examprep/internal/framework"
	"examprep/internal/logger"
	"examprep/pkg/preptypes"
)

const defaultWordWrap = 100

// MarkdownService renders framework markdown for the terminal using Glamour.
// The style follows the color profile of the environment, so piped output stays plain.
type MarkdownService struct {
	mu          sync.RWMutex
	initialized bool
	renderer    *glamour.TermRenderer
	profile     termenv.Profile
	style       string
	wordWrap    int
}

// NewMarkdownService creates a new MarkdownService instance.
func NewMarkdownService() *MarkdownService {
	return &MarkdownService{wordWrap: defaultWordWrap}
}

// Name returns the service name "markdown" for registration.
func (m *MarkdownService) Name() string {
	return "markdown"
}

// Initialize detects the color profile and builds the renderer.
func (m *MarkdownService) Initialize() error {
	return m.SetProfile(termenv.EnvColorProfile())
}

// SetProfile rebuilds the renderer for profile. Ascii selects the plain "notty" style.
func (m *MarkdownService) SetProfile(profile termenv.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	style := "dark"
	if profile == termenv.Ascii {
		style = "notty"
	}
	renderer, err := newTermRenderer(profile, style, m.wordWrap)
	if err != nil {
		return err
	}

	m.renderer = renderer
	m.profile = profile
	m.style = style
	m.initialized = true
	logger.Debug("MarkdownService initialized", "style", style, "word_wrap", m.wordWrap)
	return nil
}

func newTermRenderer(profile termenv.Profile, style string, wordWrap int) (*glamour.TermRenderer, error) {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithColorProfile(profile),
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(wordWrap),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create markdown renderer: %w", err)
	}
	return renderer, nil
}

// Style returns the active Glamour style name.
func (m *MarkdownService) Style() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.style
}

// Render renders markdown content to terminal output.
func (m *MarkdownService) Render(markdown string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.initialized {
		return "", fmt.Errorf("markdown service not initialized")
	}
	if strings.TrimSpace(markdown) == "" {
		return "", fmt.Errorf("markdown content cannot be empty")
	}

	rendered, err := m.renderer.Render(markdown)
	if err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return rendered, nil
}

// RenderFramework renders a validated framework with its sources.
func (m *MarkdownService) RenderFramework(result *preptypes.FrameworkResult) (string, error) {
	if result == nil || result.Data == nil {
		return "", fmt.Errorf("no framework to render")
	}
	return m.Render(framework.Markdown(result.Topic, result.Data, result.Sources))
}

// RenderFollowUp renders a follow-up answer followed by its sources.
func (m *MarkdownService) RenderFollowUp(result *preptypes.FollowUpResult) (string, error) {
	if result == nil {
		return "", fmt.Errorf("no answer to render")
	}
	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n\n%s\n", result.Question, result.Answer)
	if sources := framework.SourcesMarkdown(result.Sources); sources != "" {
		b.WriteString("\n")
		b.WriteString(sources)
	}
	return m.Render(b.String())
}

// SetWordWrap sets the word wrap width for markdown rendering.
func (m *MarkdownService) SetWordWrap(width int) error {
	if width <= 0 {
		return fmt.Errorf("word wrap width must be positive, got %d", width)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.initialized {
		return fmt.Errorf("markdown service not initialized")
	}

	renderer, err := newTermRenderer(m.profile, m.style, width)
	if err != nil {
		return err
	}
	m.renderer = renderer
	m.wordWrap = width
	return nil
}
