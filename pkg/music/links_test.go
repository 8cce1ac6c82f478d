package music

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractLinks(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"empty", "", nil},
		{"no links", "just a note https://example.com/track/1", nil},
		{
			name: "album track link",
			text: "listen https://music.yandex.ru/album/474096/track/35487142?utm_medium=copy_link please",
			want: []string{"https://music.yandex.ru/album/474096/track/35487142?utm_medium=copy_link"},
		},
		{
			name: "several links and case",
			text: "HTTPS://MUSIC.YANDEX.COM/track/1\nhttp://yandex.ru/music/album/2/track/3",
			want: []string{"HTTPS://MUSIC.YANDEX.COM/track/1", "http://yandex.ru/music/album/2/track/3"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractLinks(tt.text))
		})
	}
}

func TestTrackDisplay(t *testing.T) {
	assert.Equal(t, "Kino - Gruppa krovi", Track{Artist: "Kino", Title: "Gruppa krovi"}.Display())
}
