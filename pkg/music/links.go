package music

import (
	"context"
	"fmt"
	"regexp"
)

var yandexMusicRe = regexp.MustCompile(`(?i)https?://(?:music\.)?yandex\.(?:ru|com)/\S+|https?://yandex\.(?:ru|com)/music/\S+`)

// ExtractLinks returns every Yandex Music link in the text, in order of appearance.
func ExtractLinks(text string) []string {
	if text == "" {
		return nil
	}
	return yandexMusicRe.FindAllString(text, -1)
}

// Track is what a link resolves to.
type Track struct {
	Artist string
	Title  string
}

// Display renders the track the way it appears in playlists: "Artist - Title".
func (t Track) Display() string {
	return fmt.Sprintf("%s - %s", t.Artist, t.Title)
}

// Resolver looks up track metadata for a link. ok is false when the link does not
// point at a track.
type Resolver interface {
	Resolve(ctx context.Context, url string) (track Track, ok bool, err error)
}
