package service

import (
	"context"
	"fmt"
	"html"
	"strings"
	"unicode/utf16"

	"tg-notes-bot/internal/constant"
	"tg-notes-bot/internal/dto"
	"tg-notes-bot/internal/metrics"
	"tg-notes-bot/internal/pkg/logger"
	"tg-notes-bot/pkg/gas"
	"tg-notes-bot/pkg/identity"
	"tg-notes-bot/pkg/music"
)

const playlistModule = "PLAYLIST"

type IPlaylistService interface {
	// HandleReply attaches the music links of a reply to the note it answers.
	HandleReply(ctx context.Context, upd *dto.Update) error
}

type playlistService struct {
	sheet     SpreadsheetClient
	resolver  music.Resolver
	messenger Messenger
	events    IEventPublisher
	metrics   metrics.Recorder
	logger    logger.ILogger
}

func NewPlaylistService(
	sheet SpreadsheetClient,
	resolver music.Resolver,
	messenger Messenger,
	events IEventPublisher,
	recorder metrics.Recorder,
	logger logger.ILogger,
) IPlaylistService {
	return &playlistService{
		sheet:     sheet,
		resolver:  resolver,
		messenger: messenger,
		events:    events,
		metrics:   recorder,
		logger:    logger,
	}
}

func (s *playlistService) HandleReply(ctx context.Context, upd *dto.Update) error {
	if upd.Reply == nil {
		return nil
	}
	folder := identity.UserFolder(upd.Sender)
	noteID := upd.Reply.MessageID

	if !s.sheet.Exists(ctx, folder, noteID) {
		s.logger.Debug(playlistModule, "Reply to an unknown message", map[string]interface{}{
			"folder":     folder,
			"message_id": noteID,
		})
		return nil
	}

	links := music.ExtractLinks(upd.Text)
	if len(links) == 0 {
		return s.reply(ctx, upd, constant.ReplyNoMusicLinks)
	}

	items := s.resolveAll(ctx, links)
	resp := s.sheet.AddTracks(ctx, folder, noteID, items)
	if !resp.OK {
		s.logger.Error(playlistModule, "add_track failed", map[string]interface{}{
			"folder":     folder,
			"message_id": noteID,
			"error":      resp.Error,
		})
		return s.reply(ctx, upd, fmt.Sprintf(constant.ReplySheetFailedFmt, resp.Error))
	}

	text := RenderPlaylist(upd.Reply.Text, upd.Reply.Entities, items)
	if err := s.messenger.EditHTML(ctx, upd.ChatID, noteID, text); err != nil {
		return fmt.Errorf("failed to update note %d: %w", noteID, err)
	}
	bestEffort(s.logger, "delete_reply", s.messenger.Delete(ctx, upd.ChatID, upd.MessageID), map[string]interface{}{
		"chat_id": upd.ChatID,
	})

	s.logger.Info(playlistModule, "Tracks attached", map[string]interface{}{
		"chat_id":    upd.ChatID,
		"message_id": noteID,
		"links":      links,
		"added":      resp.Added,
	})
	s.metrics.AddTracksAttached(len(items))
	s.events.PublishTracksAttached(ctx, folder, noteID, links, resp.Added)
	return nil
}

// resolveAll looks every link up once. A link that cannot be resolved is shown as is.
func (s *playlistService) resolveAll(ctx context.Context, links []string) []gas.TrackItem {
	items := make([]gas.TrackItem, 0, len(links))
	for _, link := range links {
		track, ok, err := s.resolver.Resolve(ctx, link)
		if err != nil || !ok {
			details := map[string]interface{}{"link": link}
			if err != nil {
				details["error"] = err.Error()
			}
			s.logger.Warn(playlistModule, "Track not resolved", details)
			items = append(items, gas.TrackItem{Link: link, Text: link})
			continue
		}
		items = append(items, gas.TrackItem{Link: link, Text: track.Display()})
	}
	return items
}

func (s *playlistService) reply(ctx context.Context, upd *dto.Update, text string) error {
	_, err := s.messenger.Send(ctx, dto.OutgoingMessage{
		ChatID:   upd.ChatID,
		ThreadID: upd.ThreadID,
		Text:     text,
		ReplyTo:  upd.MessageID,
	})
	if err != nil {
		return fmt.Errorf("failed to reply: %w", err)
	}
	return nil
}

// RenderPlaylist rebuilds a note as HTML: the note text without its old playlist,
// then a playlist holding the note's existing links followed by the new ones.
func RenderPlaylist(noteText string, entities []dto.Entity, items []gas.TrackItem) string {
	anchors := make([]string, 0, len(entities)+len(items))
	for _, e := range entities {
		if e.Type != dto.EntityTextLink {
			continue
		}
		anchors = append(anchors, anchor(e.URL, utf16Slice(noteText, e.Offset, e.Length)))
	}
	for _, it := range items {
		anchors = append(anchors, anchor(it.Link, it.Text))
	}

	body := noteText
	if idx := strings.Index(body, constant.PlaylistMarker); idx >= 0 {
		body = body[:idx]
	}

	return html.EscapeString(body) + constant.PlaylistMarker + "\n" + strings.Join(anchors, "\n")
}

func anchor(href, text string) string {
	return fmt.Sprintf(`<a href="%s">%s</a>`, html.EscapeString(href), html.EscapeString(text))
}

// utf16Slice cuts s by UTF-16 code unit positions, the unit message entities use.
func utf16Slice(s string, offset, length int) string {
	units := utf16.Encode([]rune(s))
	if offset < 0 || offset > len(units) {
		return ""
	}
	end := offset + length
	if end > len(units) {
		end = len(units)
	}
	return string(utf16.Decode(units[offset:end]))
}
