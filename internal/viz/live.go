package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/melter/internal/dynamo"
	"github.com/san-kum/melter/internal/metrics"
	"github.com/san-kum/melter/internal/physics"
	"github.com/san-kum/melter/internal/sim"
)

const (
	canvasWidth     = 40
	canvasHeight    = 18
	historyCapacity = 300

	// maxFrameGap bounds the wall time one tick can feed, so a suspended
	// terminal resumes without a burst of catch-up steps.
	maxFrameGap = 250 * time.Millisecond
)

type TickMsg time.Time

// Model is the bubbletea program that drives a melter with wall-clock frame
// times and draws its state.
type Model struct {
	melter  *sim.Melter
	body    *physics.Body
	frame   *Frame
	metrics []metrics.Metric

	fps     int
	last    time.Time
	running bool
	layer   int
	view3D  bool
	camera  *Camera
	scene   *Scene
	canvas  *Canvas
	theme   Theme
	title   string
	history []float64
	err     error
}

// NewModel attaches a frame renderer to m. body may be nil when physics is
// disabled, in which case the 3D view shows build positions.
func NewModel(m *sim.Melter, body *physics.Body, fps int, title string) Model {
	if fps <= 0 {
		fps = 60
	}
	l := m.Lattice()
	frame := NewFrame(l.Len())
	m.SetRenderer(frame)

	return Model{
		melter:  m,
		body:    body,
		frame:   frame,
		metrics: metrics.Default(l, m.Diffusion().SourceIndex()),
		fps:     fps,
		running: true,
		layer:   m.Diffusion().Source().K,
		camera:  NewCamera(),
		scene:   NewScene(l),
		canvas:  NewCanvas(canvasWidth, canvasHeight),
		theme:   Themes[0],
		title:   title,
		history: make([]float64, 0, historyCapacity),
	}
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.fps), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.reset()
		case "[":
			m.layer = max(0, m.layer-1)
		case "]":
			m.layer = min(m.melter.Lattice().Dimensions().CountD-1, m.layer+1)
		case "v":
			m.view3D = !m.view3D
		case "t":
			m.theme = m.theme.Next()
		case "x":
			m.camera.RotateX(0.1)
		case "X":
			m.camera.RotateX(-0.1)
		case "y":
			m.camera.RotateY(0.1)
		case "Y":
			m.camera.RotateY(-0.1)
		case "+", "=":
			m.camera.ZoomIn()
		case "-", "_":
			m.camera.ZoomOut()
		}
	case TickMsg:
		m.advance(time.Time(msg))
		return m, m.tick()
	}
	return m, nil
}

// advance feeds the wall time since the previous tick, capped at
// maxFrameGap. Paused time is dropped so the start delay only counts
// running time.
func (m *Model) advance(now time.Time) {
	elapsed := time.Duration(0)
	if !m.last.IsZero() {
		elapsed = min(now.Sub(m.last), maxFrameGap)
	}
	m.last = now
	if !m.running || m.err != nil {
		return
	}

	n, err := m.melter.Tick(elapsed)
	if err != nil {
		m.err = err
	}
	if n == 0 {
		return
	}

	l := m.melter.Lattice()
	for _, mt := range m.metrics {
		mt.Observe(l)
	}
	m.history = append(m.history, m.metrics[0].Value())
	if len(m.history) > historyCapacity {
		m.history = m.history[1:]
	}
}

func (m *Model) reset() {
	m.melter.Reset()
	m.history = m.history[:0]
	m.err = nil
	for _, mt := range m.metrics {
		mt.Reset()
	}
}

func (m Model) positions() []dynamo.Vec3 {
	if m.body != nil {
		return m.body.Positions()
	}
	l := m.melter.Lattice()
	pos := make([]dynamo.Vec3, l.Len())
	for i, p := range l.Particles {
		pos[i] = p.Position
	}
	return pos
}

func (m Model) View() string {
	st := m.theme.styles()
	l := m.melter.Lattice()

	var left string
	if m.view3D {
		m.canvas.Clear()
		m.scene.Draw(m.canvas, m.camera, m.positions(), l.Springs)
		left = lipgloss.NewStyle().Foreground(m.theme.Accent).Render(m.canvas.String())
	} else {
		left = HeatMap(l, m.frame.Colors(), m.layer) + "\n\n" +
			st.label.Render(fmt.Sprintf("layer k=%d", m.layer)) + "\n" +
			Legend(2*l.Dimensions().CountW)
	}

	var s strings.Builder
	s.WriteString(st.header.Render(strings.ToUpper(m.title)) + "\n")

	status := strings.ToUpper(m.melter.Phase().String())
	switch {
	case m.err != nil:
		s.WriteString(st.errMsg.Render("HALTED") + "\n")
	case !m.running:
		s.WriteString(st.paused.Render("PAUSED") + "\n")
	default:
		s.WriteString(st.value.Render(status) + "\n")
	}

	if len(m.history) > 1 {
		chart := asciigraph.Plot(m.history,
			asciigraph.Height(5),
			asciigraph.Width(34),
			asciigraph.Caption("mean temperature"),
		)
		s.WriteString(st.graph.Render(chart) + "\n")
	}

	sched := m.melter.Scheduler()
	row := func(label, value string) {
		s.WriteString(st.label.Render(label) + st.value.Render(value) + "\n")
	}
	row("Elapsed", fmt.Sprintf("%.1fs", sched.Elapsed().Seconds()))
	row("Steps", fmt.Sprintf("%d", m.melter.Steps()))
	row("Sim time", fmt.Sprintf("%.2fs", m.melter.SimTime()))
	for _, mt := range m.metrics {
		row(mt.Name(), fmt.Sprintf("%.3f", mt.Value()))
	}
	if m.body != nil {
		row("Kinetic", fmt.Sprintf("%.1f", m.body.KineticEnergy()))
	}
	if m.err != nil {
		s.WriteString("\n" + st.errMsg.Render(m.err.Error()) + "\n")
	}

	s.WriteString(st.help.Render("SP:Pause R:Reset Q:Quit T:Theme\n[ ]:Layer V:3D XY:Rotate +-:Zoom"))

	return lipgloss.JoinHorizontal(lipgloss.Top, lipgloss.NewStyle().Padding(1, 2).Render(left), st.panel.Render(s.String()))
}
