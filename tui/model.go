package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"go-drift/midi"
	"go-drift/sequencer"
	"go-drift/theme"
	"go-drift/widgets"
)

// refreshRate keeps the position and pad glow moving between updates
const refreshRate = 100 * time.Millisecond

type Model struct {
	Manager   *sequencer.Manager
	DeviceMgr *midi.DeviceManager // nil when not playing to a port
	Theme     *theme.Theme

	selected int
	port     string
	message  string
	help     bool
	quitting bool
}

type UpdateMsg struct{}

type DeviceEventMsg midi.DeviceEvent

type tickMsg time.Time

func NewModel(manager *sequencer.Manager, deviceMgr *midi.DeviceManager, th *theme.Theme) Model {
	m := Model{
		Manager:   manager,
		DeviceMgr: deviceMgr,
		Theme:     th,
	}
	if deviceMgr != nil {
		m.port = deviceMgr.Connected()
	}
	return m
}

func ListenForUpdates(manager *sequencer.Manager) tea.Cmd {
	return func() tea.Msg {
		<-manager.UpdateChan
		return UpdateMsg{}
	}
}

func ListenForDevices(deviceMgr *midi.DeviceManager) tea.Cmd {
	if deviceMgr == nil {
		return nil
	}
	return func() tea.Msg {
		event, ok := <-deviceMgr.Events()
		if !ok {
			return nil
		}
		return DeviceEventMsg(event)
	}
}

func tick() tea.Cmd {
	return tea.Tick(refreshRate, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		ListenForUpdates(m.Manager),
		ListenForDevices(m.DeviceMgr),
		tick(),
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		voices := m.Manager.Snapshot()
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			m.Manager.Stop()
			return m, tea.Quit

		case "j", "down":
			if m.selected < len(voices)-1 {
				m.selected++
			}

		case "k", "up":
			if m.selected > 0 {
				m.selected--
			}

		case "x":
			if m.selected < len(voices) {
				name := voices[m.selected].Name
				if err := m.Manager.StopVoice(name); err != nil {
					m.message = err.Error()
				} else {
					m.message = "stopped " + name
				}
			}

		case "?":
			m.help = !m.help
		}

	case UpdateMsg:
		return m, ListenForUpdates(m.Manager)

	case tickMsg:
		return m, tick()

	case DeviceEventMsg:
		event := midi.DeviceEvent(msg)
		switch event.Type {
		case midi.DeviceConnected:
			m.port = event.Port
			m.message = "connected " + event.Port
		case midi.DeviceDisconnected:
			m.port = ""
			m.message = "lost " + event.Port
		}
		return m, ListenForDevices(m.DeviceMgr)
	}

	return m, nil
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	ts := m.Manager.TransportStatus()
	voices := m.Manager.Snapshot()

	// Styles
	headerStyle := lipgloss.NewStyle().Foreground(m.Theme.Accent())
	dimStyle := lipgloss.NewStyle().Foreground(m.Theme.Muted())
	rowStyle := lipgloss.NewStyle().Foreground(m.Theme.FG())
	cursorStyle := lipgloss.NewStyle().Foreground(m.Theme.Cursor()).Bold(true)
	warnStyle := lipgloss.NewStyle().Foreground(m.Theme.Warning())

	playState := "WAIT"
	if ts.Started {
		playState = "PLAY"
	}
	port := m.port
	if port == "" {
		port = "no port"
	}
	header := headerStyle.Render(fmt.Sprintf("go-drift  %s  %s  seed:%d  %s",
		playState, widgets.RenderPosition(ts.Position), ts.Seed, port))

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(header)
	out.WriteString("\n\n")

	for i, vs := range voices {
		cursor := " "
		style := rowStyle
		if i == m.selected {
			cursor = string(m.Theme.Symbols.Cursor)
			style = cursorStyle
		}
		line := fmt.Sprintf("%-12s %-9s %6d fires %6d notes  %-4s",
			vs.Name, vs.State, vs.Fires, vs.Notes, vs.LastNote)
		if vs.Error != "" {
			line += "  " + warnStyle.Render(vs.Error)
		}
		out.WriteString(fmt.Sprintf(" %s %s %s\n", cursor, m.pad(vs, ts.Position), style.Render(line)))
	}

	if m.help {
		out.WriteString("\n")
		out.WriteString(dimStyle.Render(widgets.RenderKeyHelp([]widgets.KeySection{
			{Title: "Voices", Keys: []widgets.KeyBinding{
				{Key: "j/k", Desc: "select"},
				{Key: "x", Desc: "stop the selected voice"},
			}},
			{Title: "General", Keys: []widgets.KeyBinding{
				{Key: "?", Desc: "toggle this help"},
				{Key: "q", Desc: "quit"},
			}},
		})))
		out.WriteString("\n")
	}

	out.WriteString("\n")
	if m.message != "" {
		out.WriteString(dimStyle.Render(m.message))
		out.WriteString("\n")
	}
	out.WriteString(dimStyle.Render("j/k:select  x:stop  ?:help  q:quit"))
	return out.String()
}

// pad shows how recently a voice played
func (m Model) pad(vs sequencer.VoiceStatus, position float64) string {
	sym := m.Theme.Symbols
	switch vs.State {
	case sequencer.StateFailed:
		return widgets.RenderSymbol(m.Theme.Palette.Lookup(theme.RoleWarning), sym.Failed)
	case sequencer.StateStopped:
		return widgets.RenderSymbol(m.Theme.Palette.Lookup(theme.RoleMuted), sym.Stopped)
	}
	if vs.Notes == 0 {
		return widgets.RenderSymbol(m.Theme.Palette.Lookup(theme.RoleMuted), sym.Idle)
	}
	return widgets.RenderSymbol(m.Theme.Glow(position-vs.LastAt), sym.Pad)
}
