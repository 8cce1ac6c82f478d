package identity

import (
	"strings"
	"unicode"
)

// FallbackFolder is used when nothing usable can be derived from the sender.
const FallbackFolder = "UnknownUser"

// Sender is the part of a chat user that identifies whose option files to use
type Sender struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// UserFolder derives the per-user namespace key. The username wins because it is
// the most stable handle; otherwise first and last name are glued together.
// Every path in the bot (new notes, option edits, playlist replies) must go through
// here so files on disk and rows in the spreadsheet line up.
func UserFolder(s Sender) string {
	if s.Username != "" {
		return Sanitize(s.Username)
	}

	combined := strings.TrimSpace(s.FirstName + s.LastName)
	if combined == "" {
		combined = strings.TrimSpace(s.FirstName)
	}
	if combined == "" {
		combined = FallbackFolder
	}
	return Sanitize(combined)
}

// Sanitize keeps letters, numbers, '_' and '-'. "Sergey A.Y." becomes "SergeyAY".
func Sanitize(name string) string {
	var sb strings.Builder
	for _, r := range strings.TrimSpace(name) {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || r == '_' || r == '-' {
			sb.WriteRune(r)
		}
	}
	if sb.Len() == 0 {
		return FallbackFolder
	}
	return sb.String()
}
