package view

// Panel identifies one of the two plot panels.
type Panel int

const (
	PanelBytes Panel = iota
	PanelPackets
)

// Layout holds the panel-splitting percentages. Rectangles derive from these
// plus the terminal size; changing them never touches any axis mode.
type Layout struct {
	// ListWidthPct is the interface list column's share of the width.
	ListWidthPct int
	// BytesRowPct is the bytes panel's share of the plot column's height.
	BytesRowPct int
	// HistWidthPct is the cumulative histogram's share of each plot row.
	HistWidthPct int
}

const (
	defaultListWidthPct = 20
	defaultBytesRowPct  = 50
	defaultHistWidthPct = 25
	minPct              = 5
	maxPct              = 95
)

// View is the whole presentation state: one axis per panel, which panel has
// zoom focus, the list selection cursor and the layout percentages.
type View struct {
	axes     [2]*Axis
	focus    Panel
	selected int
	Layout   Layout
}

func New(layout Layout) *View {
	if layout.ListWidthPct == 0 {
		layout.ListWidthPct = defaultListWidthPct
	}
	if layout.BytesRowPct == 0 {
		layout.BytesRowPct = defaultBytesRowPct
	}
	if layout.HistWidthPct == 0 {
		layout.HistWidthPct = defaultHistWidthPct
	}
	layout.ListWidthPct = clampPct(layout.ListWidthPct)
	layout.BytesRowPct = clampPct(layout.BytesRowPct)
	layout.HistWidthPct = clampPct(layout.HistWidthPct)
	return &View{
		axes:   [2]*Axis{NewAxis(), NewAxis()},
		focus:  PanelBytes,
		Layout: layout,
	}
}

// Axis returns the axis state of one panel.
func (v *View) Axis(p Panel) *Axis {
	return v.axes[p]
}

// Focus returns the panel that autoscale and zoom keys act on.
func (v *View) Focus() Panel {
	return v.focus
}

func (v *View) SetFocus(p Panel) {
	v.focus = p
}

// Selected returns the interface list cursor position.
func (v *View) Selected() int {
	return v.selected
}

// MoveSelection moves the cursor by delta, clamped to [0, n).
func (v *View) MoveSelection(delta, n int) {
	if n <= 0 {
		v.selected = 0
		return
	}
	v.selected += delta
	if v.selected < 0 {
		v.selected = 0
	}
	if v.selected >= n {
		v.selected = n - 1
	}
}

// ClampSelection keeps the cursor valid after the interface list shrank.
func (v *View) ClampSelection(n int) {
	v.MoveSelection(0, n)
}

// AdjustListWidth grows or shrinks the interface list column.
func (v *View) AdjustListWidth(delta int) {
	v.Layout.ListWidthPct = clampPct(v.Layout.ListWidthPct + delta)
}

// AdjustBytesRow grows or shrinks the bytes panel's share of the height.
func (v *View) AdjustBytesRow(delta int) {
	v.Layout.BytesRowPct = clampPct(v.Layout.BytesRowPct + delta)
}

// AdjustHistWidth grows or shrinks the histograms' share of the plot rows.
func (v *View) AdjustHistWidth(delta int) {
	v.Layout.HistWidthPct = clampPct(v.Layout.HistWidthPct + delta)
}

func clampPct(p int) int {
	if p < minPct {
		return minPct
	}
	if p > maxPct {
		return maxPct
	}
	return p
}
