package layout

import "testing"

func TestCalculatePanes(t *testing.T) {
	cfg := DefaultConfig().Pane

	tests := []struct {
		name          string
		width, height int
		want          Panes
	}{
		// (80-8)*45/100 = 32
		{"standard terminal", 80, 24, Panes{ListWidth: 32, PreviewWidth: 40, Height: 17}},
		{"wide terminal", 120, 30, Panes{ListWidth: 50, PreviewWidth: 62, Height: 23}},
		// (40-8)*45/100 = 14, below MinWidth
		{"narrow terminal clamps", 40, 24, Panes{ListWidth: 20, PreviewWidth: 20, Height: 17}},
		{"short terminal clamps height", 80, 8, Panes{ListWidth: 32, PreviewWidth: 40, Height: 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculatePanes(tt.width, tt.height, cfg)
			if got != tt.want {
				t.Errorf("CalculatePanes(%d, %d) = %+v, want %+v", tt.width, tt.height, got, tt.want)
			}
		})
	}
}

func TestItemWidth(t *testing.T) {
	cfg := DefaultConfig().Pane
	if got := ItemWidth(30, cfg); got != 26 {
		t.Errorf("ItemWidth(30) = %d, want 26", got)
	}
	if got := ItemWidth(2, cfg); got != 1 {
		t.Errorf("ItemWidth(2) = %d, want 1", got)
	}
}

func TestViewportOffset(t *testing.T) {
	tests := []struct {
		name                    string
		selected, total, height int
		want                    int
	}{
		{"fits", 3, 5, 10, 0},
		{"top", 0, 20, 10, 0},
		{"centered", 10, 20, 10, 5},
		{"bottom clamps", 19, 20, 10, 10},
		{"zero height", 5, 20, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ViewportOffset(tt.selected, tt.total, tt.height)
			if got != tt.want {
				t.Errorf("ViewportOffset(%d, %d, %d) = %d, want %d",
					tt.selected, tt.total, tt.height, got, tt.want)
			}
		})
	}
}

func TestModalWidth(t *testing.T) {
	cfg := DefaultConfig().Modal

	tests := []struct {
		name  string
		width int
		want  int
	}{
		{"percent of terminal", 120, 60},
		{"clamps to min", 60, 40},
		{"clamps to max", 200, 80},
		{"never wider than terminal", 30, 26},
		{"tiny terminal", 3, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ModalWidth(tt.width, cfg); got != tt.want {
				t.Errorf("ModalWidth(%d) = %d, want %d", tt.width, got, tt.want)
			}
		})
	}
}

func TestStripANSI(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"hello", "hello"},
		{"\x1b[1mhello\x1b[0m", "hello"},
		{"normal \x1b[1;4mbold underline\x1b[0m normal", "normal bold underline normal"},
		{"\x1b[1m\x1b[0m", ""},
	}

	for _, tt := range tests {
		if got := StripANSI(tt.input); got != tt.want {
			t.Errorf("StripANSI(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		width int
		want  string
	}{
		{"fits", "Reading", 10, "Reading"},
		{"exact", "Reading", 7, "Reading"},
		{"cut", "Development", 8, "Devel..."},
		{"unicode", "こんにちは世界", 5, "こん..."},
		{"only ellipsis room", "Development", 2, ".."},
		{"zero width", "Development", 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Truncate(tt.text, tt.width, "..."); got != tt.want {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.text, tt.width, got, tt.want)
			}
		})
	}
}

func TestTruncateLeft(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		width int
		want  string
	}{
		{"fits", "lk / Work", 20, "lk / Work"},
		{"keeps the end", "lk / Work / Project / Docs", 12, "...ct / Docs"},
		{"only ellipsis room", "lk / Work", 3, "..."},
		{"negative width", "lk / Work", -4, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TruncateLeft(tt.text, tt.width, "..."); got != tt.want {
				t.Errorf("TruncateLeft(%q, %d) = %q, want %q", tt.text, tt.width, got, tt.want)
			}
		})
	}
}
