package store

import (
	"sort"
	"time"
)

// Category names one of the per-user option lists. The same values double as the
// session step names, so a step and the list it edits never drift apart.
type Category string

const (
	CategoryEmotions Category = "emotions"
	CategoryTags     Category = "tags"
)

// Label returns the user-facing name of the category.
func (c Category) Label() string {
	switch c {
	case CategoryEmotions:
		return "Эмоции"
	case CategoryTags:
		return "Теги"
	}
	return string(c)
}

// Categories in the order they are offered to the user.
var Categories = []Category{CategoryEmotions, CategoryTags}

// Selection is a set of indices into an option list.
type Selection map[int]bool

// Toggle flips membership of idx.
func (s Selection) Toggle(idx int) {
	if s[idx] {
		delete(s, idx)
		return
	}
	s[idx] = true
}

// Sorted returns the members in ascending order.
func (s Selection) Sorted() []int {
	out := make([]int, 0, len(s))
	for idx := range s {
		out = append(out, idx)
	}
	sort.Ints(out)
	return out
}

// Session represents the active tagging flow of one chat
type Session struct {
	ChatID     int64  `json:"chat_id"`
	UserFolder string `json:"user_folder"`

	// What the user wrote and when; both are fixed for the lifetime of the session.
	NoteText  string    `json:"note_text"`
	CreatedAt time.Time `json:"created_at"`

	Step Category `json:"step"` // "emotions" | "tags"

	// Option lists as loaded when the session started. Selections index into these.
	Emotions []string `json:"emotions"`
	Tags     []string `json:"tags"`

	EmotionSelection Selection `json:"emotion_selection"`
	TagSelection     Selection `json:"tag_selection"`

	KeyboardMessageID int `json:"keyboard_message_id"`
	ThreadID          int `json:"thread_id"`
}

// NewSession creates a session positioned at the emotions step.
func NewSession(chatID int64, userFolder, text string, createdAt time.Time, threadID int, emotions, tags []string) *Session {
	return &Session{
		ChatID:           chatID,
		UserFolder:       userFolder,
		NoteText:         text,
		CreatedAt:        createdAt,
		Step:             CategoryEmotions,
		Emotions:         emotions,
		Tags:             tags,
		EmotionSelection: Selection{},
		TagSelection:     Selection{},
		ThreadID:         threadID,
	}
}

// Values returns the option list for a category.
func (s *Session) Values(c Category) []string {
	if c == CategoryTags {
		return s.Tags
	}
	return s.Emotions
}

// SelectionFor returns the selection set for a category, allocating it if a
// decoded session came back without one.
func (s *Session) SelectionFor(c Category) Selection {
	if c == CategoryTags {
		if s.TagSelection == nil {
			s.TagSelection = Selection{}
		}
		return s.TagSelection
	}
	if s.EmotionSelection == nil {
		s.EmotionSelection = Selection{}
	}
	return s.EmotionSelection
}

// Selected projects the selection of a category back into labels, in list order.
// Indices that no longer fit the list are skipped.
func (s *Session) Selected(c Category) []string {
	values := s.Values(c)
	out := []string{}
	for _, idx := range s.SelectionFor(c).Sorted() {
		if idx < 0 || idx >= len(values) {
			continue
		}
		out = append(out, values[idx])
	}
	return out
}

// PendingInput marks a chat that is waiting for new option values
type PendingInput struct {
	ChatID          int64    `json:"chat_id"`
	Category        Category `json:"category"`
	UserFolder      string   `json:"user_folder"`
	PromptMessageID int      `json:"prompt_message_id"`
}
