package layout

// Config holds all layout-related configuration values.
type Config struct {
	Pane   PaneConfig
	Modal  ModalConfig
	Input  InputConfig
	Search SearchConfig

	// Ellipsis marks truncated text.
	Ellipsis string
}

// PaneConfig holds dimensions of the browser panes.
type PaneConfig struct {
	// HeightReduction is subtracted from terminal height for pane content.
	// app padding (1) + breadcrumb (1) + pane borders (2) + status (1) + hints (2) = 7
	HeightReduction int

	// MinHeight is the minimum pane height.
	MinHeight int

	// WidthOffset is subtracted before splitting the width between the
	// list and preview panes. Accounts for borders and app padding.
	WidthOffset int

	// ListPercent is the share of the width given to the list pane.
	ListPercent int

	// MinWidth is the minimum width of either pane.
	MinWidth int

	// ContentPadding is subtracted from pane width for item rendering.
	ContentPadding int
}

// ModalConfig holds form dialog configuration.
type ModalConfig struct {
	WidthPercent int
	MinWidth     int
	MaxWidth     int
}

// InputConfig holds text input configuration.
type InputConfig struct {
	NameCharLimit   int
	URLCharLimit    int
	SearchCharLimit int
	Width           int
}

// SearchConfig holds the search overlay configuration.
type SearchConfig struct {
	// HeaderReduction: lines for the title, input, status and hints.
	HeaderReduction int
}

// DefaultConfig returns the default layout configuration.
func DefaultConfig() Config {
	return Config{
		Pane: PaneConfig{
			HeightReduction: 7,
			MinHeight:       5,
			WidthOffset:     8,
			ListPercent:     45,
			MinWidth:        20,
			ContentPadding:  4,
		},
		Modal: ModalConfig{
			WidthPercent: 50,
			MinWidth:     40,
			MaxWidth:     80,
		},
		Input: InputConfig{
			NameCharLimit:   200,
			URLCharLimit:    2048,
			SearchCharLimit: 100,
			Width:           40,
		},
		Search: SearchConfig{
			HeaderReduction: 8,
		},
		Ellipsis: "...",
	}
}
