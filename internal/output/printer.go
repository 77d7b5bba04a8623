package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

const defaultWidth = 80

// Printer is the main output handler that supports both plain and styled output.
type Printer struct {
	styleProvider StyleProvider
	writer        io.Writer
	mode          Mode
	forcePlain    bool
	width         int

	mu sync.Mutex
}

// NewPrinter creates a new Printer with the given options.
// By default, it writes to os.Stdout with automatic mode detection.
func NewPrinter(options ...Option) *Printer {
	p := &Printer{
		writer: os.Stdout,
		mode:   ModeAuto,
		width:  defaultWidth,
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

// Width returns the column budget for wrapped and truncated output.
func (p *Printer) Width() int {
	return p.width
}

// Print outputs text without any semantic styling.
func (p *Printer) Print(text string) {
	p.output(SemanticPlain, text, false)
}

// Printf outputs formatted text without any semantic styling.
func (p *Printer) Printf(format string, args ...interface{}) {
	p.output(SemanticPlain, fmt.Sprintf(format, args...), false)
}

// Println outputs text with a newline without any semantic styling.
func (p *Printer) Println(text string) {
	p.output(SemanticPlain, text, true)
}

// Info outputs informational text.
func (p *Printer) Info(text string) {
	p.output(SemanticInfo, text, true)
}

// Success outputs success text.
func (p *Printer) Success(text string) {
	p.output(SemanticSuccess, text, true)
}

// Warning outputs warning text.
func (p *Printer) Warning(text string) {
	p.output(SemanticWarning, text, true)
}

// Error outputs error text.
func (p *Printer) Error(text string) {
	p.output(SemanticError, text, true)
}

// Highlight outputs text with highlight styling.
func (p *Printer) Highlight(text string) {
	p.output(SemanticHighlight, text, true)
}

// Bold outputs text with bold styling.
func (p *Printer) Bold(text string) {
	p.output(SemanticBold, text, true)
}

// Muted outputs secondary text.
func (p *Printer) Muted(text string) {
	p.output(SemanticMuted, text, true)
}

// Failure prints err the way a user should see it.
func (p *Printer) Failure(err error) {
	if err == nil {
		return
	}
	if p.mode == ModeJSON {
		p.writeJSON(map[string]interface{}{
			"type":    SemanticError,
			"message": ErrorText(err),
			"code":    ErrorCode(err),
		})
		return
	}
	p.Error(ErrorText(err))
}

// WriteJSON encodes v as indented JSON, bypassing styling.
func (p *Printer) WriteJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	p.writeRaw(string(data) + "\n")
	return nil
}

// WriteRaw writes text verbatim.
func (p *Printer) WriteRaw(text string) {
	p.writeRaw(text)
}

func (p *Printer) writeRaw(text string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, _ = fmt.Fprint(p.writer, text)
}

func (p *Printer) writeJSON(v map[string]interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		p.writeRaw(fmt.Sprint(v["message"]) + "\n")
		return
	}
	p.writeRaw(string(data) + "\n")
}

// output is the core output method that handles all rendering logic.
func (p *Printer) output(semantic SemanticType, text string, addNewline bool) {
	if p.mode == ModeJSON {
		p.writeJSON(map[string]interface{}{"type": semantic, "message": text})
		return
	}

	result := p.style(semantic).Render(text)
	if addNewline && !strings.HasSuffix(result, "\n") {
		result += "\n"
	}
	p.writeRaw(result)
}

// style resolves the TextStyle for semantic under the current mode.
func (p *Printer) style(semantic SemanticType) TextStyle {
	if p.IsStylable() {
		return p.styleProvider.GetStyle(string(semantic))
	}
	return NewPlainStyleProvider().GetStyle(string(semantic))
}

// SetWriter changes the output writer.
func (p *Printer) SetWriter(writer io.Writer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.writer = writer
}

// Mode returns the current output mode.
func (p *Printer) Mode() Mode {
	return p.mode
}

// IsStylable returns true if the printer can apply styles.
func (p *Printer) IsStylable() bool {
	if p.forcePlain || p.mode == ModePlain || p.mode == ModeJSON {
		return false
	}
	return p.styleProvider != nil && p.styleProvider.IsAvailable()
}

// String returns a string representation for debugging.
func (p *Printer) String() string {
	hasStyles := "no"
	if p.IsStylable() {
		hasStyles = "yes"
	}
	return fmt.Sprintf("Printer{mode: %v, styles: %s, writer: %T}", p.mode, hasStyles, p.writer)
}
