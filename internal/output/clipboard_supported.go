//go:build !linux

package output

import (
	"fmt"
	"sync"

	"golang.design/x/clipboard"
)

// ClipboardAvailable indicates if clipboard functionality is available on this platform
const ClipboardAvailable = true

var clipboardInit = sync.OnceValue(clipboard.Init)

// CopyToClipboard writes text to the system clipboard.
func CopyToClipboard(text string) error {
	if err := clipboardInit(); err != nil {
		return fmt.Errorf("clipboard unavailable: %w", err)
	}
	clipboard.Write(clipboard.FmtText, []byte(text))
	return nil
}
