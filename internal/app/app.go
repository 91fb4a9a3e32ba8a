// Package app drives the interactive loop: it owns every piece of mutable
// state (registry, store, collector, view) on a single goroutine and
// serializes terminal events, collection ticks and registry refreshes into
// one ordered stream of state transitions, rendering once after each.
package app

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	ui "github.com/gizak/termui/v3"
	"github.com/gizak/termui/v3/widgets"

	"ifplot/internal/collector"
	"ifplot/internal/config"
	"ifplot/internal/iface"
	"ifplot/internal/probe"
	"ifplot/internal/series"
	"ifplot/internal/view"
)

// ProbeController attaches and detaches the kernel-side counting programs
// per interface. The /proc source needs no kernel hooks, so it uses the
// no-op implementation.
type ProbeController interface {
	Attach(index int) error
	Detach(index int) error
}

// NopController satisfies ProbeController without touching the kernel.
type NopController struct{}

func (NopController) Attach(int) error { return nil }
func (NopController) Detach(int) error { return nil }

var palette = []ui.Color{
	ui.ColorGreen, ui.ColorYellow, ui.ColorCyan, ui.ColorMagenta,
	ui.ColorRed, ui.ColorBlue, ui.ColorWhite,
}

// App wires the core components to the terminal surface.
type App struct {
	cfg   config.Config
	reg   *iface.Registry
	store *series.Store
	col   *collector.Collector
	view  *view.View
	ctl   ProbeController

	// enumerate is swappable for tests; it defaults to asking the OS.
	enumerate func() ([]iface.Pair, error)

	list        *widgets.List
	bytesPlot   *widgets.Plot
	packetsPlot *widgets.Plot
	bytesBar    *widgets.BarChart
	packetsBar  *widgets.BarChart
	help        *widgets.Paragraph
	grid        *ui.Grid

	// plotKeep is how many samples fit in one plot panel. It derives from
	// the grid geometry, not the widgets, so it is valid before the first
	// draw assigns the widget rectangles.
	plotKeep int

	scratch []series.Sample
}

func New(cfg config.Config, reg *iface.Registry, store *series.Store, col *collector.Collector, ctl ProbeController) *App {
	return &App{
		cfg:   cfg,
		reg:   reg,
		store: store,
		col:   col,
		view:  view.New(view.Layout{ListWidthPct: cfg.ListWidthPct, BytesRowPct: cfg.BytesRowPct, HistWidthPct: cfg.HistWidthPct}),
		ctl:   ctl,

		enumerate: iface.Enumerate,
	}
}

// Setup fills the registry from the OS and attaches the probe to every
// interface. Individual attach failures mark the interface instead of
// failing; only zero instrumentable interfaces is fatal, and that happens
// before any terminal state is touched.
func (a *App) Setup() error {
	pairs, err := a.enumerate()
	if err != nil {
		return err
	}

	added, _ := a.reg.Refresh(pairs)
	usable := 0
	for _, it := range added {
		if err := a.ctl.Attach(it.Index); err != nil {
			log.Printf("interface %s (index %d) is not instrumentable: %v", it.Name, it.Index, err)
			a.reg.MarkUninstrumentable(it.Index)
			continue
		}
		usable++
	}

	if usable == 0 {
		return fmt.Errorf("no instrumentable interfaces among %d found", len(added))
	}
	return nil
}

// Run owns the terminal until quit. It returns nil on a clean quit or
// termination signal; an error only for an unusable terminal.
func (a *App) Run() error {
	if err := ui.Init(); err != nil {
		return fmt.Errorf("initialize terminal: %w", err)
	}
	defer ui.Close()

	a.buildWidgets()
	w, h := ui.TerminalDimensions()
	a.rebuildGrid(w, h)
	a.render()

	uiEvents := ui.PollEvents()
	collect := time.NewTicker(a.cfg.TickInterval())
	defer collect.Stop()
	refresh := time.NewTicker(a.cfg.RefreshInterval())
	defer refresh.Stop()
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sig)

	for {
		select {
		case e := <-uiEvents:
			if a.handleEvent(e) {
				return nil
			}
			a.render()
		case <-collect.C:
			a.handleTick()
			a.render()
		case <-refresh.C:
			a.handleRefresh()
			a.render()
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			return nil
		}
	}
}

// handleEvent applies one input or resize event and reports whether the
// loop should quit.
func (a *App) handleEvent(e ui.Event) bool {
	if e.Type == ui.ResizeEvent {
		payload := e.Payload.(ui.Resize)
		a.rebuildGrid(payload.Width, payload.Height)
		ui.Clear()
		return false
	}

	switch e.ID {
	case "q", "<C-c>":
		return true
	case "<Up>":
		a.view.MoveSelection(-1, a.reg.Len())
	case "<Down>":
		a.view.MoveSelection(1, a.reg.Len())
	case "t":
		a.toggleSelected()
	case "b":
		a.view.SetFocus(view.PanelBytes)
	case "p":
		a.view.SetFocus(view.PanelPackets)
	case "a":
		a.view.Axis(a.view.Focus()).ToggleMode()
	case "+":
		a.view.Axis(a.view.Focus()).ZoomIn()
	case "-":
		a.view.Axis(a.view.Focus()).ZoomOut()
	case "[":
		a.view.AdjustListWidth(-5)
		a.relayout()
	case "]":
		a.view.AdjustListWidth(5)
		a.relayout()
	case "{":
		a.view.AdjustBytesRow(-5)
		a.relayout()
	case "}":
		a.view.AdjustBytesRow(5)
		a.relayout()
	case "<":
		a.view.AdjustHistWidth(-5)
		a.relayout()
	case ">":
		a.view.AdjustHistWidth(5)
		a.relayout()
	}
	return false
}

// toggleSelected flips monitoring for the interface under the cursor.
// Disabling detaches the kernel hooks and forgets the rate baseline but
// keeps the plotted history; enabling re-attaches and lets the collector
// re-prime itself.
func (a *App) toggleSelected() {
	it, ok := a.reg.At(a.view.Selected())
	if !ok {
		return
	}
	cur, ok := a.reg.Toggle(it.Index)
	if !ok {
		return
	}

	if cur.Enabled {
		if err := a.ctl.Attach(cur.Index); err != nil {
			log.Printf("re-attach on %s failed: %v", cur.Name, err)
			a.reg.MarkUninstrumentable(cur.Index)
		}
		return
	}

	a.col.Forget(cur.Index)
	if err := a.ctl.Detach(cur.Index); err != nil {
		log.Printf("detach on %s failed: %v", cur.Name, err)
	}
}

func (a *App) handleTick() {
	res := a.col.Tick(a.reg.Enabled())
	// A priming read is a successful read; it clears the marker even though
	// no sample came out of it.
	for _, index := range res.Sampled {
		a.reg.SetStale(index, false)
	}
	for _, index := range res.Primed {
		a.reg.SetStale(index, false)
	}
	for _, index := range res.Failed {
		a.reg.SetStale(index, true)
	}
}

// handleRefresh re-enumerates the host's interfaces. Vanished interfaces
// lose their hooks and history; new ones are attached or marked.
func (a *App) handleRefresh() {
	pairs, err := a.enumerate()
	if err != nil {
		log.Printf("interface refresh failed: %v", err)
		return
	}

	added, removed := a.reg.Refresh(pairs)
	for _, it := range removed {
		a.col.Remove(it.Index)
		// Only enabled interfaces hold kernel hooks.
		if it.Enabled {
			if err := a.ctl.Detach(it.Index); err != nil {
				log.Printf("detach on vanished %s: %v", it.Name, err)
			}
		}
		log.Printf("interface %s (index %d) vanished", it.Name, it.Index)
	}
	for _, it := range added {
		if err := a.ctl.Attach(it.Index); err != nil {
			log.Printf("interface %s (index %d) is not instrumentable: %v", it.Name, it.Index, err)
			a.reg.MarkUninstrumentable(it.Index)
		}
	}
	a.view.ClampSelection(a.reg.Len())
}

func (a *App) buildWidgets() {
	a.list = widgets.NewList()
	a.list.Title = " Interfaces "
	a.list.SelectedRowStyle = ui.NewStyle(ui.ColorBlack, ui.ColorWhite)

	a.bytesPlot = widgets.NewPlot()
	a.bytesPlot.ShowAxes = true

	a.packetsPlot = widgets.NewPlot()
	a.packetsPlot.ShowAxes = true

	a.bytesBar = widgets.NewBarChart()
	a.bytesBar.Title = " Total bytes "
	a.bytesBar.BarWidth = 10
	a.bytesBar.NumFormatter = func(v float64) string { return humanize.Bytes(uint64(v)) }

	a.packetsBar = widgets.NewBarChart()
	a.packetsBar.Title = " Total packets "
	a.packetsBar.BarWidth = 10
	a.packetsBar.NumFormatter = func(v float64) string { return humanize.Comma(int64(v)) }

	a.help = widgets.NewParagraph()
	a.help.Border = false
	a.help.Text = "(↑/↓) select  (t) toggle  (b/p) focus bytes/packets  (a) autoscale  (+/-) zoom  ([/]) list width  ({/}) row split  (</>) totals width  (q) quit"
}

func (a *App) relayout() {
	w, h := ui.TerminalDimensions()
	a.rebuildGrid(w, h)
	ui.Clear()
}

// plotChromeCols is what a plot panel spends on borders and y-axis labels.
const plotChromeCols = 7

func (a *App) rebuildGrid(width, height int) {
	listShare := float64(a.view.Layout.ListWidthPct) / 100
	bytesShare := float64(a.view.Layout.BytesRowPct) / 100
	histShare := float64(a.view.Layout.HistWidthPct) / 100

	a.plotKeep = int(float64(width)*(1-listShare)*(1-histShare)) - plotChromeCols

	grid := ui.NewGrid()
	grid.SetRect(0, 0, width, height)
	grid.Set(
		ui.NewRow(0.95,
			ui.NewCol(listShare, a.list),
			ui.NewCol(1-listShare,
				ui.NewRow(bytesShare,
					ui.NewCol(1-histShare, a.bytesPlot),
					ui.NewCol(histShare, a.bytesBar),
				),
				ui.NewRow(1-bytesShare,
					ui.NewCol(1-histShare, a.packetsPlot),
					ui.NewCol(histShare, a.packetsBar),
				),
			),
		),
		ui.NewRow(0.05, a.help),
	)
	a.grid = grid
}

func (a *App) render() {
	a.view.ClampSelection(a.reg.Len())
	a.renderList()
	a.renderPlot(a.bytesPlot, view.PanelBytes, series.RxBytes, series.TxBytes)
	a.renderPlot(a.packetsPlot, view.PanelPackets, series.RxPackets, series.TxPackets)
	a.renderBar(a.bytesBar, totalBytes)
	a.renderBar(a.packetsBar, totalPackets)
	ui.Render(a.grid)
}

func (a *App) renderList() {
	ifaces := a.reg.List()
	rows := make([]string, 0, len(ifaces))
	for _, it := range ifaces {
		row := fmt.Sprintf("%d: %s", it.Index, it.Name)
		switch {
		case it.Uninstrumentable:
			row += " [n/a]"
		case !it.Enabled:
			row += " [off]"
		case it.Stale:
			row += " [stale]"
		}
		rows = append(rows, row)
	}
	a.list.Rows = rows
	a.list.SelectedRow = a.view.Selected()
}

// renderPlot rebuilds one panel: one line per enabled interface per
// direction, bounds from the panel's axis state, values above the upper
// bound clipped so a frozen manual axis never rescales.
func (a *App) renderPlot(plot *widgets.Plot, panel view.Panel, rx, tx series.Metric) {
	// The plot draws one point per column and does not scroll, so only the
	// newest samples that fit are handed over.
	keep := a.plotKeep
	maxVal := 0.0
	var rows [][]float64
	for _, it := range a.reg.Enabled() {
		for _, metric := range []series.Metric{rx, tx} {
			a.scratch = a.store.Window(it.Index, metric, a.scratch)
			window := a.scratch
			if keep >= 2 && len(window) > keep {
				window = window[len(window)-keep:]
			}
			// termui's braille line chart needs at least two points.
			if len(window) < 2 {
				continue
			}
			row := make([]float64, len(window))
			for i, s := range window {
				row[i] = s.Value
				if s.Value > maxVal {
					maxVal = s.Value
				}
			}
			rows = append(rows, row)
		}
	}

	axis := a.view.Axis(panel)
	axis.Observe(maxVal)
	_, upper := axis.Bounds()
	for _, row := range rows {
		for i := range row {
			if row[i] > upper {
				row[i] = upper
			}
		}
	}

	plot.Data = rows
	plot.MaxVal = upper
	plot.LineColors = lineColors(len(rows))
	plot.Title = a.plotTitle(panel, rx, tx, upper)
	if a.view.Focus() == panel {
		plot.BorderStyle = ui.NewStyle(ui.ColorCyan)
	} else {
		plot.BorderStyle = ui.NewStyle(ui.ColorWhite)
	}
}

func totalBytes(s probe.Snapshot) float64 { return float64(s.RxBytes + s.TxBytes) }

func totalPackets(s probe.Snapshot) float64 { return float64(s.RxPackets + s.TxPackets) }

// barData builds one histogram's bars: cumulative totals of every enabled
// interface with at least one successful read, largest first.
func (a *App) barData(total func(probe.Snapshot) float64) ([]string, []float64) {
	type bar struct {
		name  string
		value float64
	}
	var bars []bar
	for _, it := range a.reg.Enabled() {
		snap, ok := a.col.Latest(it.Index)
		if !ok {
			continue
		}
		bars = append(bars, bar{name: it.Name, value: total(snap)})
	}
	sort.SliceStable(bars, func(i, j int) bool {
		if bars[i].value != bars[j].value {
			return bars[i].value > bars[j].value
		}
		return bars[i].name < bars[j].name
	})

	labels := make([]string, len(bars))
	values := make([]float64, len(bars))
	for i, b := range bars {
		labels[i] = b.name
		values[i] = b.value
	}
	return labels, values
}

func (a *App) renderBar(bar *widgets.BarChart, total func(probe.Snapshot) float64) {
	labels, values := a.barData(total)
	maxVal := 1.0
	for _, v := range values {
		if v > maxVal {
			maxVal = v
		}
	}
	bar.Labels = labels
	bar.Data = values
	bar.MaxVal = maxVal
	bar.BarColors = lineColors(len(values))
}

func (a *App) plotTitle(panel view.Panel, rx, tx series.Metric, upper float64) string {
	mode := "autoscaled"
	if a.view.Axis(panel).Mode() == view.Manual {
		mode = "manual zoom"
	}

	kind := "Bytes/s"
	format := func(v float64) string { return humanize.Bytes(uint64(v)) + "/s" }
	if panel == view.PanelPackets {
		kind = "Packets/s"
		format = func(v float64) string { return humanize.Comma(int64(v)) + " pps" }
	}

	sel, ok := a.reg.At(a.view.Selected())
	if !ok {
		return fmt.Sprintf(" %s | %s | top %s ", kind, mode, format(upper))
	}
	rxRate, txRate := 0.0, 0.0
	if s, ok := a.store.Latest(sel.Index, rx); ok {
		rxRate = s.Value
	}
	if s, ok := a.store.Latest(sel.Index, tx); ok {
		txRate = s.Value
	}
	return fmt.Sprintf(" %s | %s | %s rx %s tx %s | top %s ",
		kind, mode, sel.Name, format(rxRate), format(txRate), format(upper))
}

func lineColors(n int) []ui.Color {
	if n < 1 {
		n = 1
	}
	colors := make([]ui.Color, n)
	for i := range colors {
		colors[i] = palette[i%len(palette)]
	}
	return colors
}
