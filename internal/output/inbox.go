package output

import (
	"fmt"
	"strings"
	"time"
)

// InboxMessage is the simulated verification email shown after sign-up.
type InboxMessage struct {
	Email   string        `json:"email"`
	Code    string        `json:"code"`
	Expires time.Duration `json:"-"`
}

// Body returns the message lines without decoration.
func (m InboxMessage) Body() string {
	lines := []string{
		"Simulated inbox",
		"",
		"To: " + m.Email,
		"Your verification code is " + m.Code + ".",
	}
	if m.Expires > 0 {
		lines = append(lines, fmt.Sprintf("It expires in %s.", formatTTL(m.Expires)))
	}
	return strings.Join(lines, "\n")
}

// Inbox prints msg inside a bordered box.
func (p *Printer) Inbox(msg InboxMessage) {
	if p.mode == ModeJSON {
		p.writeJSON(map[string]interface{}{"type": "inbox", "email": msg.Email, "code": msg.Code})
		return
	}
	p.writeRaw(p.style(SemanticBox).Render(msg.Body()) + "\n")
}

func formatTTL(d time.Duration) string {
	if d%time.Minute == 0 {
		minutes := int(d / time.Minute)
		if minutes == 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", minutes)
	}
	return d.String()
}
