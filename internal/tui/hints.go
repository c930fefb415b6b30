package tui

import "strings"

// Hint represents a single keybind hint for display.
type Hint struct {
	Key  string // Display key (e.g., "j/k", "Enter")
	Desc string // Short description (e.g., "move", "open")
}

// HintSet is an ordered collection of hints by group.
type HintSet struct {
	Nav    []Hint
	Action []Hint
	Edit   []Hint
	System []Hint
}

// All returns all hints flattened in display order: Nav + Action + Edit + System.
func (h HintSet) All() []Hint {
	result := make([]Hint, 0, len(h.Nav)+len(h.Action)+len(h.Edit)+len(h.System))
	result = append(result, h.Nav...)
	result = append(result, h.Action...)
	result = append(result, h.Edit...)
	result = append(result, h.System...)
	return result
}

// renderHints renders hints in horizontal format: "j/k:move h:back l:open"
func (a App) renderHints(hints HintSet) string {
	all := hints.All()
	parts := make([]string, len(all))
	for i, h := range all {
		parts[i] = a.styles.HintKey.Render(h.Key) + ":" + a.styles.HintDesc.Render(h.Desc)
	}
	return strings.Join(parts, " ")
}

// contextualHints returns the hints for the current mode.
func (a App) contextualHints() HintSet {
	switch a.mode {
	case ModeSearch:
		hints := HintSet{
			Nav:    []Hint{{Key: "C-j/C-k", Desc: "move"}},
			Action: []Hint{{Key: "Enter", Desc: "go to"}},
			Edit:   []Hint{{Key: "C-d", Desc: "del"}},
			System: []Hint{{Key: "Esc", Desc: "close"}},
		}
		if a.toast != nil {
			hints.Edit = append([]Hint{{Key: "C-z", Desc: "undo"}}, hints.Edit...)
		}
		return hints
	case ModeForm:
		return HintSet{
			Nav:    []Hint{{Key: "Tab", Desc: "next"}},
			Action: []Hint{{Key: "Enter", Desc: "save"}},
			System: []Hint{{Key: "Esc", Desc: "cancel"}},
		}
	}

	hints := HintSet{
		Nav: []Hint{
			{Key: "j/k", Desc: "move"},
			{Key: "h", Desc: "back"},
			{Key: "l", Desc: "open"},
		},
		Action: []Hint{
			{Key: "/", Desc: "search"},
			{Key: "Y", Desc: "yank"},
		},
		Edit: []Hint{
			{Key: "a", Desc: "link"},
			{Key: "A", Desc: "folder"},
			{Key: "e", Desc: "edit"},
			{Key: "d", Desc: "del"},
		},
		System: []Hint{{Key: "q", Desc: "quit"}},
	}
	if a.toast != nil {
		hints.Edit = append([]Hint{{Key: "u", Desc: "undo"}}, hints.Edit...)
	}
	return hints
}
