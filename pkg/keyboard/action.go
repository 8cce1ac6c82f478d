package keyboard

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"tg-notes-bot/pkg/store"
)

// ActionKind tells what a button press means
type ActionKind int

const (
	ActionUnknown ActionKind = iota
	ActionToggleEmotion
	ActionToggleTag
	ActionDoneEmotions
	ActionDoneTags
	ActionPickCategory
)

// ErrUnknownAction is returned by Decode for callback data it does not recognise.
var ErrUnknownAction = errors.New("unknown keyboard action")

// Wire prefixes. Kept short because Telegram caps callback data at 64 bytes.
const (
	prefixEmotion      = "e"
	prefixTag          = "t"
	prefixPickCategory = "edit_constants"
	dataDoneEmotions   = "done:e"
	dataDoneTags       = "done:t"
)

// Action is a decoded button press. Index is only meaningful for toggle and pick kinds.
type Action struct {
	Kind  ActionKind `json:"kind"`
	Index int        `json:"index"`
}

func ToggleEmotion(idx int) Action { return Action{Kind: ActionToggleEmotion, Index: idx} }
func ToggleTag(idx int) Action     { return Action{Kind: ActionToggleTag, Index: idx} }
func DoneEmotions() Action         { return Action{Kind: ActionDoneEmotions} }
func DoneTags() Action             { return Action{Kind: ActionDoneTags} }
func PickCategory(idx int) Action  { return Action{Kind: ActionPickCategory, Index: idx} }

// Toggle returns the toggle action of a category.
func Toggle(c store.Category, idx int) Action {
	if c == store.CategoryTags {
		return ToggleTag(idx)
	}
	return ToggleEmotion(idx)
}

// Done returns the "done" action of a category.
func Done(c store.Category) Action {
	if c == store.CategoryTags {
		return DoneTags()
	}
	return DoneEmotions()
}

// Category returns the option list a toggle or done action belongs to.
func (a Action) Category() (store.Category, bool) {
	switch a.Kind {
	case ActionToggleEmotion, ActionDoneEmotions:
		return store.CategoryEmotions, true
	case ActionToggleTag, ActionDoneTags:
		return store.CategoryTags, true
	}
	return "", false
}

// Encode renders the action as callback data.
func (a Action) Encode() string {
	switch a.Kind {
	case ActionToggleEmotion:
		return prefixEmotion + ":" + strconv.Itoa(a.Index)
	case ActionToggleTag:
		return prefixTag + ":" + strconv.Itoa(a.Index)
	case ActionDoneEmotions:
		return dataDoneEmotions
	case ActionDoneTags:
		return dataDoneTags
	case ActionPickCategory:
		return prefixPickCategory + ":" + strconv.Itoa(a.Index)
	}
	return ""
}

func (a Action) String() string {
	return a.Encode()
}

// Decode parses callback data produced by Encode.
func Decode(data string) (Action, error) {
	switch data {
	case dataDoneEmotions:
		return DoneEmotions(), nil
	case dataDoneTags:
		return DoneTags(), nil
	}

	prefix, rawIdx, found := strings.Cut(data, ":")
	if !found {
		return Action{}, fmt.Errorf("%w: %q", ErrUnknownAction, data)
	}

	idx, err := strconv.Atoi(rawIdx)
	if err != nil || idx < 0 {
		return Action{}, fmt.Errorf("%w: bad index in %q", ErrUnknownAction, data)
	}

	switch prefix {
	case prefixEmotion:
		return ToggleEmotion(idx), nil
	case prefixTag:
		return ToggleTag(idx), nil
	case prefixPickCategory:
		return PickCategory(idx), nil
	}
	return Action{}, fmt.Errorf("%w: %q", ErrUnknownAction, data)
}
