package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"dots and spaces", "Sergey A.Y.", "SergeyAY"},
		{"keeps underscore and dash", "john_doe-1", "john_doe-1"},
		{"cyrillic letters", "Иван Петров", "ИванПетров"},
		{"all punctuation", "...!!!", FallbackFolder},
		{"empty", "", FallbackFolder},
		{"surrounding whitespace", "  bob  ", "bob"},
		{"superscript digit", "Ivan²", "Ivan²"},
		{"roman numeral", "Пётр_Ⅻ", "Пётр_Ⅻ"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.in))
		})
	}
}

func TestUserFolder(t *testing.T) {
	tests := []struct {
		name   string
		sender Sender
		want   string
	}{
		{"username preferred", Sender{Username: "sergey_ay", FirstName: "Sergey"}, "sergey_ay"},
		{"first and last name", Sender{FirstName: "Sergey", LastName: "A.Y."}, "SergeyAY"},
		{"first name only", Sender{FirstName: "Anna"}, "Anna"},
		{"nothing at all", Sender{}, FallbackFolder},
		{"punctuation only name", Sender{FirstName: "..."}, FallbackFolder},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, UserFolder(tt.sender))
		})
	}
}
