package layout

// Panes holds the calculated widths of the list and preview panes.
type Panes struct {
	ListWidth    int
	PreviewWidth int
	Height       int
}

// CalculatePanes splits the terminal between the list and preview panes.
// Both widths are clamped to MinWidth; height to MinHeight.
func CalculatePanes(terminalWidth, terminalHeight int, cfg PaneConfig) Panes {
	avail := terminalWidth - cfg.WidthOffset
	list := avail * cfg.ListPercent / 100
	preview := avail - list

	if list < cfg.MinWidth {
		list = cfg.MinWidth
	}
	if preview < cfg.MinWidth {
		preview = cfg.MinWidth
	}

	height := terminalHeight - cfg.HeightReduction
	if height < cfg.MinHeight {
		height = cfg.MinHeight
	}

	return Panes{ListWidth: list, PreviewWidth: preview, Height: height}
}

// ItemWidth computes the width available for item content in a pane.
func ItemWidth(paneWidth int, cfg PaneConfig) int {
	w := paneWidth - cfg.ContentPadding
	if w < 1 {
		return 1
	}
	return w
}

// ViewportOffset calculates the scroll offset that keeps the selected
// row inside a viewport of the given height. The selection stays
// roughly centered once the list is longer than the viewport.
func ViewportOffset(selected, total, height int) int {
	if height <= 0 || total <= height {
		return 0
	}

	offset := selected - height/2
	if offset < 0 {
		offset = 0
	}
	if limit := total - height; offset > limit {
		offset = limit
	}
	return offset
}

// ModalWidth computes the form dialog width as a percentage of the
// terminal, clamped between MinWidth and MaxWidth and never wider than
// the terminal itself.
func ModalWidth(terminalWidth int, cfg ModalConfig) int {
	width := terminalWidth * cfg.WidthPercent / 100
	width = max(width, cfg.MinWidth)
	width = min(width, cfg.MaxWidth, terminalWidth-4)
	return max(width, 1)
}
