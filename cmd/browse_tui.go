// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/Thermoquad/cellstat/pkg/scooter"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/pkg/errors"
)

//////////////////////////////////////////////////////////////
// Constants
//////////////////////////////////////////////////////////////

// Focus states
const (
	focusSampleList = iota
	focusConsole
)

// advancedCommand is the console keyword for a verbatim canId/canData frame
const advancedCommand = "ADVANCED"

//////////////////////////////////////////////////////////////
// Types
//////////////////////////////////////////////////////////////

// sampleItem is one decoded sample in the list
type sampleItem struct {
	index     int
	decoded   *scooter.DecodedSample
	anomalies []scooter.ValidationError
}

// Implement list.Item interface
func (i sampleItem) Title() string { return fmt.Sprintf("#%d %s", i.index, sampleTitle(&i.decoded.Sample)) }
func (i sampleItem) Description() string {
	desc := fmt.Sprintf("%d cells | SOC %s%%", len(i.decoded.Telemetry.ValidCells()), i.decoded.Sample.SOC.Format(0))
	if len(i.anomalies) > 0 {
		desc += fmt.Sprintf(" | %d issue(s)", len(i.anomalies))
	}
	return desc
}
func (i sampleItem) FilterValue() string { return i.decoded.Sample.VIN }

// browseModel is the Bubble Tea model for the browse TUI
type browseModel struct {
	source  string
	encoder *scooter.Encoder

	// Samples
	samples    []sampleItem
	sampleList list.Model
	streamDone bool

	// Monitoring (reused from tui.go patterns)
	stats         *scooter.Statistics
	errorLog      []errorLogEntry
	maxLogEntries int

	// Console
	console      textinput.Model
	focusedField int
	sent         []scooter.Envelope

	// UI state
	width    int
	height   int
	quitting bool
}

//////////////////////////////////////////////////////////////
// Messages
//////////////////////////////////////////////////////////////

type browseSampleMsg struct {
	sample    *scooter.DecodedSample
	decodeErr error
}

//////////////////////////////////////////////////////////////
// Model Initialization
//////////////////////////////////////////////////////////////

func initialBrowseModel(source string, encoder *scooter.Encoder) browseModel {
	// Command console
	ti := textinput.New()
	ti.Placeholder = "CAN_SET_RPM rpm=3600"
	ti.CharLimit = 120
	ti.Width = 50

	// Sample list starts empty and fills as samples arrive
	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = true
	delegate.SetHeight(2)
	sampleList := list.New([]list.Item{}, delegate, 40, 10)
	sampleList.Title = "Samples"
	sampleList.SetShowStatusBar(false)
	sampleList.SetShowHelp(false)
	sampleList.SetFilteringEnabled(false)

	return browseModel{
		source:        source,
		encoder:       encoder,
		samples:       make([]sampleItem, 0),
		sampleList:    sampleList,
		stats:         scooter.NewStatistics(),
		errorLog:      make([]errorLogEntry, 0),
		maxLogEntries: 100,
		console:       ti,
		focusedField:  focusSampleList,
		width:         80,
		height:        24,
	}
}

//////////////////////////////////////////////////////////////
// Bubble Tea Interface
//////////////////////////////////////////////////////////////

func (m browseModel) Init() tea.Cmd {
	return tickCmd()
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateListSize()

	case tickMsg:
		m.stats.CalculateRates()
		return m, tickCmd()

	case browseSampleMsg:
		m.processSample(msg)

	case streamDoneMsg:
		m.streamDone = true
		if msg.err != nil {
			m.addLogEntry(fmt.Sprintf("Input error: %v", msg.err), true)
		} else {
			m.addLogEntry(fmt.Sprintf("Loaded %d sample(s) from %s", len(m.samples), m.source), false)
		}
	}

	// Update child components
	var cmd tea.Cmd
	if m.focusedField == focusConsole {
		m.console, cmd = m.console.Update(msg)
		cmds = append(cmds, cmd)
	}

	if m.focusedField == focusSampleList {
		m.sampleList, cmd = m.sampleList.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m browseModel) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case "q":
		// q is a normal character in the console
		if m.focusedField != focusConsole {
			m.quitting = true
			return m, tea.Quit
		}

	case "tab", "shift+tab":
		m.toggleFocus()
		return m, nil

	case "enter":
		if m.focusedField == focusConsole {
			m.submitCommand()
			return m, nil
		}
	}

	// Pass through to focused component
	var cmd tea.Cmd
	if m.focusedField == focusConsole {
		m.console, cmd = m.console.Update(msg)
	} else {
		m.sampleList, cmd = m.sampleList.Update(msg)
	}
	return m, cmd
}

func (m *browseModel) toggleFocus() {
	if m.focusedField == focusSampleList {
		m.focusedField = focusConsole
		m.console.Focus()
	} else {
		m.focusedField = focusSampleList
		m.console.Blur()
	}
}

func (m browseModel) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}

	var s strings.Builder

	// Styles
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		Background(lipgloss.Color("235")).
		Padding(0, 1)

	headerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	statsLabelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("12")).
		Bold(true)

	statsValueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("10"))

	errorStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("9")).
		Bold(true)

	warningStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("11"))

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	focusedBoxStyle := boxStyle.
		BorderForeground(lipgloss.Color("12"))

	// Header
	s.WriteString(titleStyle.Render("CELLSTAT BROWSE"))
	s.WriteString(" ")
	status := m.source
	if !m.streamDone {
		status = warningStyle.Render("reading " + m.source + "...")
	}
	s.WriteString(headerStyle.Render(fmt.Sprintf("| %s | %d sent | q=quit Tab=switch", status, len(m.sent))))
	s.WriteString("\n\n")

	// Layout: left panel (samples) | right panel (detail)
	leftWidth := 40
	rightWidth := m.width - leftWidth - 6
	if rightWidth < 20 {
		rightWidth = 20
	}

	listStyle := boxStyle.Width(leftWidth)
	if m.focusedField == focusSampleList {
		listStyle = focusedBoxStyle.Width(leftWidth)
	}
	samplePanel := listStyle.Render(m.sampleList.View())
	detailPanel := boxStyle.Width(rightWidth).Render(m.renderDetail(statsLabelStyle, headerStyle, errorStyle))

	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, samplePanel, " ", detailPanel))
	s.WriteString("\n\n")

	// Statistics bar
	s.WriteString(m.renderStatisticsBar(statsLabelStyle, statsValueStyle, errorStyle, boxStyle))
	s.WriteString("\n\n")

	// Console
	consoleStyle := boxStyle.Width(m.width - 4)
	if m.focusedField == focusConsole {
		consoleStyle = focusedBoxStyle.Width(m.width - 4)
	}
	s.WriteString(consoleStyle.Render(statsLabelStyle.Render("Command: ") + m.console.View()))
	s.WriteString("\n\n")

	// Event log
	s.WriteString(m.renderEventLog(statsLabelStyle, warningStyle, boxStyle))

	return s.String()
}

//////////////////////////////////////////////////////////////
// View Helpers
//////////////////////////////////////////////////////////////

func (m browseModel) renderDetail(statsLabelStyle, headerStyle, errorStyle lipgloss.Style) string {
	selected := m.getSelectedSample()
	if selected == nil {
		return headerStyle.Render("No sample selected")
	}

	var s strings.Builder
	s.WriteString(statsLabelStyle.Render(sampleTitle(&selected.decoded.Sample)))
	s.WriteString("\n")
	s.WriteString(scooter.FormatSample(selected.decoded, modelLabels(selected.decoded.Sample.Model)))

	for _, err := range selected.anomalies {
		s.WriteString(errorStyle.Render(fmt.Sprintf("! %s: %s", err.Type, err.Message)))
		s.WriteString("\n")
	}

	return s.String()
}

func (m browseModel) renderStatisticsBar(statsLabelStyle, statsValueStyle, errorStyle, boxStyle lipgloss.Style) string {
	var cleanPercent, errorPercent float64
	if m.stats.TotalSamples > 0 {
		cleanPercent = float64(m.stats.CleanSamples) * 100.0 / float64(m.stats.TotalSamples)
		errorPercent = float64(m.stats.TotalSamples-m.stats.CleanSamples) * 100.0 / float64(m.stats.TotalSamples)
	}

	content := fmt.Sprintf("%s %s  %s %s  %s %s  %s %s",
		statsLabelStyle.Render("Total:"), statsValueStyle.Render(fmt.Sprintf("%d", m.stats.TotalSamples)),
		statsLabelStyle.Render("Clean:"), statsValueStyle.Render(fmt.Sprintf("%.1f%%", cleanPercent)),
		statsLabelStyle.Render("Flagged:"), func() string {
			if errorPercent > 0 {
				return errorStyle.Render(fmt.Sprintf("%.1f%%", errorPercent))
			}
			return statsValueStyle.Render("0.0%")
		}(),
		statsLabelStyle.Render("Rate:"), statsValueStyle.Render(fmt.Sprintf("%.1f samples/s", m.stats.SampleRate)),
	)

	return boxStyle.Width(m.width - 4).Render(content)
}

func (m browseModel) renderEventLog(statsLabelStyle, warningStyle, boxStyle lipgloss.Style) string {
	var s strings.Builder
	s.WriteString(statsLabelStyle.Render("EVENTS"))
	s.WriteString("\n")

	headerStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyleLocal := lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)

	logHeight := 6
	if len(m.errorLog) < logHeight {
		logHeight = len(m.errorLog)
	}
	startIdx := len(m.errorLog) - logHeight

	if len(m.errorLog) == 0 {
		s.WriteString(headerStyle.Render("  (no events yet)"))
	} else {
		for i := startIdx; i < len(m.errorLog); i++ {
			entry := m.errorLog[i]
			icon := "i"
			style := warningStyle
			if entry.isError {
				icon = "x"
				style = errorStyleLocal
			}
			s.WriteString(fmt.Sprintf("%s %s %s\n",
				headerStyle.Render(entry.timestamp.Format("15:04:05.000")),
				style.Render(icon),
				entry.message))
		}
	}

	return boxStyle.Width(m.width - 4).Render(s.String())
}

//////////////////////////////////////////////////////////////
// Data Processing
//////////////////////////////////////////////////////////////

func (m *browseModel) processSample(msg browseSampleMsg) {
	if msg.decodeErr != nil {
		m.stats.Update(msg.decodeErr, nil)
		m.addLogEntry(fmt.Sprintf("DECODE ERROR: %v", msg.decodeErr), true)
		return
	}
	if msg.sample == nil {
		return
	}

	anomalies := scooter.ValidateSample(msg.sample)
	m.stats.Update(nil, anomalies)

	item := sampleItem{
		index:     len(m.samples) + 1,
		decoded:   msg.sample,
		anomalies: anomalies,
	}
	m.samples = append(m.samples, item)
	m.sampleList.InsertItem(len(m.samples)-1, item)
}

//////////////////////////////////////////////////////////////
// Commands
//////////////////////////////////////////////////////////////

// parseConsoleLine splits "TYPE key=value ..." into a command request.
// ADVANCED takes canId/canData and sends them verbatim.
func parseConsoleLine(line, vin string) (scooter.CommandRequest, error) {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return scooter.CommandRequest{}, errors.New("empty command")
	}

	cmdType := parts[0]
	advanced := strings.EqualFold(cmdType, advancedCommand)
	if advanced {
		cmdType = ""
	}

	req, err := newCommandRequest(cmdType, parts[1:], advanced)
	if err != nil {
		return scooter.CommandRequest{}, err
	}
	if vin != "" {
		req.VIN = vin
	}
	return req, nil
}

func (m *browseModel) submitCommand() {
	line := strings.TrimSpace(m.console.Value())
	if line == "" {
		return
	}

	vin := ""
	if selected := m.getSelectedSample(); selected != nil {
		vin = selected.decoded.Sample.VIN
	}

	req, err := parseConsoleLine(line, vin)
	if err != nil {
		m.addLogEntry(fmt.Sprintf("Invalid command: %v", err), true)
		return
	}

	env, err := m.encoder.Envelope(req)
	if err != nil {
		m.addLogEntry(fmt.Sprintf("Encode failed: %v", err), true)
		return
	}

	m.sent = append(m.sent, *env)
	m.console.Reset()
	m.addLogEntry(fmt.Sprintf("Queued %s for %s: %s", env.CommandType, env.VINNumber, env.Value), false)
}

//////////////////////////////////////////////////////////////
// Helpers
//////////////////////////////////////////////////////////////

func (m *browseModel) addLogEntry(message string, isError bool) {
	entry := errorLogEntry{
		timestamp: time.Now(),
		message:   message,
		isError:   isError,
	}
	m.errorLog = append(m.errorLog, entry)

	if len(m.errorLog) > m.maxLogEntries {
		m.errorLog = m.errorLog[len(m.errorLog)-m.maxLogEntries:]
	}
}

func (m *browseModel) getSelectedSample() *sampleItem {
	if len(m.samples) == 0 {
		return nil
	}

	idx := m.sampleList.Index()
	if idx < 0 || idx >= len(m.samples) {
		return nil
	}

	return &m.samples[idx]
}

func (m *browseModel) updateListSize() {
	listHeight := m.height / 2
	if listHeight < 5 {
		listHeight = 5
	}
	m.sampleList.SetSize(38, listHeight)
}
