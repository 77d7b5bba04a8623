package output

import (
	"os"
	"sync"

	"github.com/muesli/termenv"
)

var (
	globalPrinter = NewPrinter()
	globalMu      sync.RWMutex
)

// SetGlobalPrinter sets the printer shared by CLI commands.
func SetGlobalPrinter(printer *Printer) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalPrinter = printer
}

// GetGlobalPrinter returns the current global printer instance.
func GetGlobalPrinter() *Printer {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalPrinter
}

// ConfigureGlobal replaces the global printer with one built from options.
func ConfigureGlobal(options ...Option) *Printer {
	printer := NewPrinter(options...)
	SetGlobalPrinter(printer)
	return printer
}

// TerminalOptions returns the options for a printer on stdout: lipgloss styles
// when stdout is a color terminal, plain text otherwise.
func TerminalOptions() []Option {
	profile := termenv.EnvColorProfile()
	if !IsTerminal() || profile == termenv.Ascii {
		return []Option{PlainText()}
	}
	return []Option{WithStyles(NewLipglossStyleProvider(profile))}
}

// IsTerminal checks if the output is going to a terminal.
func IsTerminal() bool {
	fileInfo, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return (fileInfo.Mode() & os.ModeCharDevice) == os.ModeCharDevice
}
