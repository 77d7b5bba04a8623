//go:build linux

package output

import "errors"

// ClipboardAvailable indicates if clipboard functionality is available on this platform
const ClipboardAvailable = false

// ErrClipboardUnavailable is returned by CopyToClipboard on Linux builds.
var ErrClipboardUnavailable = errors.New("clipboard not available on this platform (Linux without X11)")

// CopyToClipboard returns ErrClipboardUnavailable.
func CopyToClipboard(string) error {
	return ErrClipboardUnavailable
}
