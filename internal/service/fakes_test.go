package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"tg-notes-bot/internal/dto"
	"tg-notes-bot/pkg/gas"
	"tg-notes-bot/pkg/keyboard"
	"tg-notes-bot/pkg/music"
	"tg-notes-bot/pkg/store"
)

var errFake = errors.New("fake failure")

type editedKeyboard struct {
	ChatID    int64
	MessageID int
	Keyboard  keyboard.Keyboard
}

type editedText struct {
	ChatID    int64
	MessageID int
	HTML      string
}

type reaction struct {
	MessageID int
	Emoji     string
}

type fakeMessenger struct {
	mu sync.Mutex

	nextID    int
	sent      []dto.OutgoingMessage
	sentIDs   []int
	keyboards []editedKeyboard
	texts     []editedText
	deleted   []int
	answers   map[string][]string
	reactions []reaction

	failSend   bool
	failDelete bool
	failReact  bool
	failEdit   bool
}

func newFakeMessenger() *fakeMessenger {
	return &fakeMessenger{nextID: 100, answers: map[string][]string{}}
}

func (m *fakeMessenger) Send(_ context.Context, msg dto.OutgoingMessage) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSend {
		return 0, errFake
	}
	m.nextID++
	m.sent = append(m.sent, msg)
	m.sentIDs = append(m.sentIDs, m.nextID)
	return m.nextID, nil
}

func (m *fakeMessenger) EditKeyboard(_ context.Context, chatID int64, messageID int, kb keyboard.Keyboard) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failEdit {
		return errFake
	}
	m.keyboards = append(m.keyboards, editedKeyboard{ChatID: chatID, MessageID: messageID, Keyboard: kb})
	return nil
}

func (m *fakeMessenger) EditHTML(_ context.Context, chatID int64, messageID int, html string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failEdit {
		return errFake
	}
	m.texts = append(m.texts, editedText{ChatID: chatID, MessageID: messageID, HTML: html})
	return nil
}

func (m *fakeMessenger) Delete(_ context.Context, _ int64, messageID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failDelete {
		return errFake
	}
	m.deleted = append(m.deleted, messageID)
	return nil
}

func (m *fakeMessenger) AnswerCallback(_ context.Context, callbackID, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.answers[callbackID] = append(m.answers[callbackID], text)
	return nil
}

func (m *fakeMessenger) React(_ context.Context, _ int64, messageID int, emoji string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failReact {
		return errFake
	}
	m.reactions = append(m.reactions, reaction{MessageID: messageID, Emoji: emoji})
	return nil
}

func (m *fakeMessenger) lastSent() dto.OutgoingMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return dto.OutgoingMessage{}
	}
	return m.sent[len(m.sent)-1]
}

func (m *fakeMessenger) lastSentID() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sentIDs) == 0 {
		return 0
	}
	return m.sentIDs[len(m.sentIDs)-1]
}

type upsertCall struct {
	User   string
	Record gas.Record
}

type addTracksCall struct {
	User  string
	MsgID int
	Items []gas.TrackItem
}

type fakeSheet struct {
	existing  map[int]bool
	upserts   []upsertCall
	addTracks []addTracksCall

	upsertResp    gas.Response
	addTracksResp gas.Response
}

func newFakeSheet() *fakeSheet {
	return &fakeSheet{
		existing:      map[int]bool{},
		upsertResp:    gas.Response{OK: true},
		addTracksResp: gas.Response{OK: true},
	}
}

func (s *fakeSheet) Exists(_ context.Context, _ string, msgID int) bool {
	return s.existing[msgID]
}

func (s *fakeSheet) UpsertNote(_ context.Context, user string, record gas.Record) gas.Response {
	s.upserts = append(s.upserts, upsertCall{User: user, Record: record})
	return s.upsertResp
}

func (s *fakeSheet) AddTracks(_ context.Context, user string, msgID int, items []gas.TrackItem) gas.Response {
	s.addTracks = append(s.addTracks, addTracksCall{User: user, MsgID: msgID, Items: items})
	resp := s.addTracksResp
	if resp.OK && resp.Added == 0 {
		resp.Added = len(items)
	}
	return resp
}

type fakeResolver struct {
	tracks map[string]music.Track
	calls  []string
}

func (r *fakeResolver) Resolve(_ context.Context, url string) (music.Track, bool, error) {
	r.calls = append(r.calls, url)
	track, ok := r.tracks[url]
	if !ok {
		return music.Track{}, false, errFake
	}
	return track, true, nil
}

type fakeEvents struct {
	mu    sync.Mutex
	types []string
}

func (e *fakeEvents) record(t string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.types = append(e.types, t)
}

func (e *fakeEvents) PublishNoteFinalized(context.Context, string, int, []string, []string) {
	e.record("NOTE_FINALIZED")
}

func (e *fakeEvents) PublishTracksAttached(context.Context, string, int, []string, int) {
	e.record("TRACKS_ATTACHED")
}

func (e *fakeEvents) PublishOptionsAppended(context.Context, string, store.Category, []string) {
	e.record("OPTIONS_APPENDED")
}

type fakeRecorder struct {
	mu       sync.Mutex
	notes    int
	tracks   int
	statuses []string
}

func (r *fakeRecorder) IncNotesFinalized() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes++
}

func (r *fakeRecorder) AddTracksAttached(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tracks += n
}

func (r *fakeRecorder) ObserveUpdate(_, status string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses = append(r.statuses, status)
}

func (r *fakeRecorder) Statuses() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.statuses...)
}
