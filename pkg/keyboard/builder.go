package keyboard

import "tg-notes-bot/pkg/store"

const (
	DefaultColumns = 3

	SelectedMarker = "✅ "
	DoneLabel      = "✅ Готово"
)

// Button is one inline button.
type Button struct {
	Text   string `json:"text"`
	Action Action `json:"action"`
}

// Keyboard is a transport-neutral inline keyboard, row by row.
type Keyboard struct {
	Rows [][]Button `json:"rows"`
}

// Build lays the values out in rows of `columns` buttons, marks the selected ones
// and closes with a standalone "done" row. All state lives in the caller's selection.
func Build(category store.Category, values []string, selected store.Selection, columns int) Keyboard {
	if columns <= 0 {
		columns = DefaultColumns
	}

	rows := make([][]Button, 0, len(values)/columns+2)
	for start := 0; start < len(values); start += columns {
		end := start + columns
		if end > len(values) {
			end = len(values)
		}

		row := make([]Button, 0, end-start)
		for idx := start; idx < end; idx++ {
			text := values[idx]
			if selected[idx] {
				text = SelectedMarker + text
			}
			row = append(row, Button{Text: text, Action: Toggle(category, idx)})
		}
		rows = append(rows, row)
	}

	rows = append(rows, []Button{{Text: DoneLabel, Action: Done(category)}})
	return Keyboard{Rows: rows}
}

// CategoryPicker offers one button per category, one per row.
func CategoryPicker() Keyboard {
	rows := make([][]Button, 0, len(store.Categories))
	for idx, c := range store.Categories {
		rows = append(rows, []Button{{Text: c.Label(), Action: PickCategory(idx)}})
	}
	return Keyboard{Rows: rows}
}

// CategoryAt resolves the index carried by a PickCategory action.
func CategoryAt(idx int) (store.Category, bool) {
	if idx < 0 || idx >= len(store.Categories) {
		return "", false
	}
	return store.Categories[idx], true
}
