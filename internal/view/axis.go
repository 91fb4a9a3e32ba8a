// Package view holds the pure presentation state: per-panel value-axis
// bounds, the autoscale/manual mode machine, panel focus and the layout
// percentages. Nothing here touches the terminal; the render loop maps this
// state onto widgets.
package view

import "math"

// Mode says whether a panel's value axis follows the data or is frozen.
type Mode int

const (
	// Auto recomputes the bounds from the visible data on every redraw.
	Auto Mode = iota
	// Manual keeps whatever bounds were in effect when the user left Auto,
	// until explicit zoom input changes them. Data beyond the bounds is
	// clipped rather than forcing a rescale.
	Manual
)

// Axis is the value-axis state of one plot panel.
type Axis struct {
	mode   Mode
	bounds [2]float64
}

// NewAxis starts in Auto with the empty-window default bounds [0, 1].
func NewAxis() *Axis {
	return &Axis{mode: Auto, bounds: [2]float64{0, 1}}
}

func (a *Axis) Mode() Mode {
	return a.mode
}

// Bounds returns the current [lower, upper] axis bounds.
func (a *Axis) Bounds() (float64, float64) {
	return a.bounds[0], a.bounds[1]
}

// Observe feeds the maximum visible sample value into the axis. In Auto the
// upper bound becomes NiceCeil of the value (never below 1, so an all-zero
// or empty window still shows a usable [0, 1] axis); in Manual it is ignored.
func (a *Axis) Observe(maxVal float64) {
	if a.mode != Auto {
		return
	}
	if maxVal < 1 {
		maxVal = 1
	}
	a.bounds[0] = 0
	a.bounds[1] = NiceCeil(maxVal)
}

// ToggleMode switches Auto<->Manual. Leaving Auto freezes the bounds last
// computed by Observe; returning to Auto resumes recomputation on the next
// Observe. Both directions are pure state transitions.
func (a *Axis) ToggleMode() Mode {
	if a.mode == Auto {
		a.mode = Manual
	} else {
		a.mode = Auto
	}
	return a.mode
}

// ZoomIn halves the manual upper bound. No-op in Auto.
func (a *Axis) ZoomIn() {
	if a.mode != Manual {
		return
	}
	a.bounds[1] /= 2
	if a.bounds[1] < 1 {
		a.bounds[1] = 1
	}
}

// maxManualBound caps repeated zoom-out. It keeps the bound finite and
// within uint64 range, which the panel titles rely on when formatting it.
const maxManualBound = 1e18

// ZoomOut doubles the manual upper bound, up to maxManualBound. No-op in
// Auto.
func (a *Axis) ZoomOut() {
	if a.mode != Manual {
		return
	}
	a.bounds[1] *= 2
	if a.bounds[1] > maxManualBound {
		a.bounds[1] = maxManualBound
	}
}

// NiceCeil rounds v up to ceil(mantissa) * 10^n: 9 -> 9, 11 -> 20, 47000 ->
// 50000. The headroom keeps the curve's maximum off the top border of the
// panel.
func NiceCeil(v float64) float64 {
	if v <= 0 {
		return 0
	}
	scale := 1.0
	for v >= 10 {
		v /= 10
		scale *= 10
	}
	return scale * math.Ceil(v)
}
