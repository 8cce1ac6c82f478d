package yandex

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"tg-notes-bot/pkg/music"

	"github.com/tidwall/gjson"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// Matches both /track/<id> and /album/<a>/track/<id>.
var trackIDRe = regexp.MustCompile(`/track/(\d+)`)

type YandexProvider struct {
	BaseURL string
	Token   string
	Client  *http.Client
}

// Ensure YandexProvider implements music.Resolver
var _ music.Resolver = &YandexProvider{}

func NewYandexProvider(baseURL, token string, timeout time.Duration) *YandexProvider {
	return &YandexProvider{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		Client: &http.Client{
			Timeout: timeout,
		},
	}
}

// ExtractTrackID pulls the numeric track id out of a Yandex Music URL.
func ExtractTrackID(url string) (string, bool) {
	m := trackIDRe.FindStringSubmatch(url)
	if m == nil {
		return "", false
	}
	return m[1], true
}

func (p *YandexProvider) Resolve(ctx context.Context, url string) (music.Track, bool, error) {
	trackID, ok := ExtractTrackID(url)
	if !ok {
		return music.Track{}, false, nil
	}

	ctx, span := otel.Tracer("yandex").Start(ctx, "yandex.tracks")
	defer span.End()
	span.SetAttributes(attribute.String("yandex.track_id", trackID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.BaseURL+"/tracks/"+trackID, nil)
	if err != nil {
		return music.Track{}, false, fmt.Errorf("failed to create request: %w", err)
	}
	if p.Token != "" {
		req.Header.Set("Authorization", "OAuth "+p.Token)
	}

	resp, err := p.Client.Do(req)
	if err != nil {
		return music.Track{}, false, fmt.Errorf("failed to call yandex music: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return music.Track{}, false, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return music.Track{}, false, fmt.Errorf("yandex music status %d", resp.StatusCode)
	}

	track := gjson.GetBytes(body, "result.0")
	if !track.Exists() {
		return music.Track{}, false, nil
	}

	var artists []string
	for _, name := range track.Get("artists.#.name").Array() {
		if name.String() != "" {
			artists = append(artists, name.String())
		}
	}
	artist := "Unknown"
	if len(artists) > 0 {
		artist = strings.Join(artists, ", ")
	}

	return music.Track{Artist: artist, Title: track.Get("title").String()}, true, nil
}
