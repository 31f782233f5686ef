package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/particlebox/internal/config"
	"github.com/san-kum/particlebox/internal/sim"
)

const (
	width           = 80
	height          = 24
	historyCapacity = 300
	sliderSteps     = 100
	gifPath         = "particlebox.gif"
)

type TickMsg time.Time

// Model runs a simulator at a fixed step behind a variable render frame
// rate and lets the user edit the shared parameters while it runs.
type Model struct {
	sim      *sim.Simulator
	store    *config.Store
	clock    *sim.FixedClock
	frame    time.Duration
	last     time.Time
	window   mgl64.Vec2
	name     string
	canvas   *Canvas
	fields   []config.Field
	selected int
	initial  config.Params
	heights  []float64
	bounces  int
	recorder *Recorder
	showHelp bool
	status   string
}

// NewModel drives s from store. dt is the fixed tick, frameRate the render
// rate and window the host window half-size used to scale the scene.
func NewModel(s *sim.Simulator, store *config.Store, dt float64, frameRate int, window mgl64.Vec2, name string) Model {
	if frameRate <= 0 {
		frameRate = config.DefaultFrameRate
	}
	m := Model{
		sim:     s,
		store:   store,
		clock:   sim.NewFixedClock(dt),
		frame:   time.Second / time.Duration(frameRate),
		window:  window,
		name:    name,
		canvas:  NewCanvas(width, height),
		fields:  config.Fields(),
		initial: store.Snapshot(),
		heights: make([]float64, 0, historyCapacity),
	}
	m.draw()
	return m
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.frame, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.stopRecording()
			return m, tea.Quit
		case " ":
			m.clock.Toggle()
		case "r":
			m.reset()
		case "tab":
			m.selected = (m.selected + 1) % len(m.fields)
		case "shift+tab":
			m.selected = (m.selected + len(m.fields) - 1) % len(m.fields)
		case "up", "k":
			m.adjust(1)
		case "down", "j":
			m.adjust(-1)
		case "t":
			NextTheme()
		case "g":
			if m.recorder != nil {
				m.stopRecording()
			} else {
				m.recorder = NewRecorder(int(m.frame / (10 * time.Millisecond)))
			}
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		now := time.Time(msg)
		elapsed := m.frame.Seconds()
		if !m.last.IsZero() {
			elapsed = now.Sub(m.last).Seconds()
		}
		m.last = now
		m.Advance(elapsed)
		if m.recorder != nil {
			m.recorder.Capture(m.canvas)
		}
		return m, m.tick()
	}
	return m, nil
}

// Advance runs one render frame of frameDt seconds: the ticks the clock
// says are due, each on a fresh snapshot, then a single geometry sync and
// a redraw. It returns the number of ticks run.
func (m *Model) Advance(frameDt float64) int {
	n := m.clock.Advance(frameDt)
	for i := 0; i < n; i++ {
		if !m.sim.Tick(m.store.Snapshot(), m.clock.Step()) {
			continue
		}
		for _, h := range m.sim.Hits() {
			m.bounces += h.Count()
		}
		m.record()
	}
	m.sim.Frame(m.store.Snapshot())
	m.draw()
	return n
}

func (m *Model) record() {
	ps := m.sim.Particles()
	if len(ps) == 0 {
		return
	}
	m.heights = append(m.heights, ps[0].Position.Y())
	if len(m.heights) > historyCapacity {
		m.heights = m.heights[1:]
	}
}

// adjust moves the selected field by dir slider steps.
func (m *Model) adjust(dir float64) {
	f := m.fields[m.selected]
	step := (f.Max - f.Min) / sliderSteps
	m.store.Update(func(p *config.Params) {
		_ = p.SetParam(f.Name, p.GetParams()[f.Name]+dir*step)
	})
}

func (m *Model) reset() {
	m.sim.Reset()
	m.clock.Reset()
	m.store.Set(m.initial)
	m.heights = m.heights[:0]
	m.bounces = 0
	m.last = time.Time{}
	m.sim.Frame(m.store.Snapshot())
	m.draw()
}

func (m *Model) stopRecording() {
	if m.recorder == nil {
		return
	}
	if err := m.recorder.Save(gifPath); err != nil {
		m.status = fmt.Sprintf("gif: %v", err)
	} else if m.recorder.Frames() > 0 {
		m.status = fmt.Sprintf("saved %s (%d frames)", gifPath, m.recorder.Frames())
	}
	m.recorder = nil
}

// scale returns dots per world unit and the canvas centre. The view fits
// both the window and the walls.
func (m *Model) scale() (float64, int, int) {
	cw, ch := m.canvas.Dots()
	params := m.store.Snapshot()
	ext := mgl64.Vec2{
		math.Max(m.window[0], params.HalfExtents[0]),
		math.Max(m.window[1], params.HalfExtents[1]),
	}
	s := math.Min(float64(cw-1)/(2*math.Max(ext[0], 1)), float64(ch-1)/(2*math.Max(ext[1], 1)))
	return s, cw / 2, ch / 2
}

func (m *Model) project(x, y, s float64, cx, cy int) (int, int) {
	return cx + int(math.Round(x*s)), cy - int(math.Round(y*s))
}

func (m *Model) draw() {
	m.canvas.Clear()
	s, cx, cy := m.scale()

	for _, w := range m.sim.Walls() {
		half := w.Size.Mul(0.5)
		x0, y0 := m.project(w.Position[0]-half[0], w.Position[1]+half[1], s, cx, cy)
		x1, y1 := m.project(w.Position[0]+half[0], w.Position[1]-half[1], s, cx, cy)
		m.canvas.DrawRect(x0, y0, x1, y1)
	}

	r := int(m.store.Snapshot().ParticleRadius * s)
	for _, p := range m.sim.Particles() {
		if !p.IsValid() {
			continue
		}
		px, py := m.project(p.Position.X(), p.Position.Y(), s, cx, cy)
		m.canvas.FillCircle(px, py, r)
	}
}

func (m Model) View() string {
	canvasView := canvasStyle().Render(m.canvas.String())

	var s strings.Builder
	s.WriteString(headerStyle().Render(strings.ToUpper(m.name)) + "\n")

	status := "RUNNING"
	if m.clock.Paused() {
		status = "PAUSED"
	}
	if m.recorder != nil {
		status += fmt.Sprintf(" ● REC %d", m.recorder.Frames())
	}
	s.WriteString(statusStyle(m.clock.Paused(), m.recorder != nil).Render(status) + "\n")
	if m.status != "" {
		s.WriteString(labelStyle().UnsetWidth().Render(m.status) + "\n")
	}
	s.WriteString("\n")

	if len(m.heights) > 1 {
		chart := asciigraph.Plot(m.heights, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("height (p0)"))
		s.WriteString(graphStyle().Render(chart) + "\n\n")
	}

	s.WriteString(labelStyle().Render("Time") + valueStyle().Render(fmt.Sprintf("%.2fs", m.sim.Time())) + "\n")
	s.WriteString(labelStyle().Render("Ticks") + valueStyle().Render(fmt.Sprintf("%d", m.sim.Ticks())) + "\n")
	s.WriteString(labelStyle().Render("Bounces") + valueStyle().Render(fmt.Sprintf("%d", m.bounces)) + "\n")
	if ps := m.sim.Particles(); len(ps) > 0 {
		p := ps[0]
		s.WriteString(labelStyle().Render("Position") + valueStyle().Render(fmt.Sprintf("(%.1f, %.1f)", p.Position.X(), p.Position.Y())) + "\n")
		s.WriteString(labelStyle().Render("Velocity") + valueStyle().Render(fmt.Sprintf("(%.1f, %.1f)", p.Velocity.X(), p.Velocity.Y())) + "\n")
	}

	s.WriteString("\nPARAMETERS\n")
	values := m.store.Snapshot().GetParams()
	for i, f := range m.fields {
		line := fmt.Sprintf("%-11s %s %.1f", f.Name, SliderBar(values[f.Name], f.Min, f.Max, 10), values[f.Name])
		if i == m.selected {
			s.WriteString(activeStyle().Render("> "+line) + "\n")
		} else {
			s.WriteString("  " + labelStyle().UnsetWidth().Render(line) + "\n")
		}
	}

	s.WriteString(helpStyle().Render("─────────────────────\nSP:Pause R:Reset Q:Quit\nTab:Select ↑↓:Tune\nT:Theme G:Record ?:Help"))
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsStyle().Render(s.String()))

	if m.showHelp {
		return helpOverlay + "\n\n" + mainView
	}
	return mainView
}

const helpOverlay = `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume simulation  ║
║  R        - Reset simulation         ║
║  Q        - Quit                     ║
║  Tab      - Select next parameter    ║
║  Up/K     - Increase parameter       ║
║  Down/J   - Decrease parameter       ║
║  G        - Toggle GIF recording     ║
║  T        - Cycle themes             ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝`
