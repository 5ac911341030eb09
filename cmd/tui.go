// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/Thermoquad/cellstat/pkg/scooter"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Event log entry
type errorLogEntry struct {
	timestamp time.Time
	message   string
	isError   bool // true for errors, false for info
}

// TUI model
type model struct {
	source        string
	statsInterval int
	showAll       bool
	stats         *scooter.Statistics
	errorLog      []errorLogEntry
	maxLogEntries int
	streamDone    bool
	streamErr     error
	width         int
	height        int
	quitting      bool
	lastSample    *scooter.DecodedSample
}

// Messages
type tickMsg time.Time
type sampleDataMsg struct {
	sample           *scooter.DecodedSample
	decodeErr        error
	validationErrors []scooter.ValidationError
}
type streamDoneMsg struct {
	err error
}

// formatDuration formats a duration in milliseconds to a human-friendly string
func formatDuration(ms uint64) string {
	if ms == 0 {
		return "0 seconds"
	}

	seconds := ms / 1000
	minutes := seconds / 60
	hours := minutes / 60
	days := hours / 24

	seconds %= 60
	minutes %= 60
	hours %= 24

	parts := []string{}
	if days > 0 {
		if days == 1 {
			parts = append(parts, "1 day")
		} else {
			parts = append(parts, fmt.Sprintf("%d days", days))
		}
	}
	if hours > 0 {
		if hours == 1 {
			parts = append(parts, "1 hour")
		} else {
			parts = append(parts, fmt.Sprintf("%d hours", hours))
		}
	}
	if minutes > 0 {
		if minutes == 1 {
			parts = append(parts, "1 minute")
		} else {
			parts = append(parts, fmt.Sprintf("%d minutes", minutes))
		}
	}
	if seconds > 0 || len(parts) == 0 {
		if seconds == 1 {
			parts = append(parts, "1 second")
		} else {
			parts = append(parts, fmt.Sprintf("%d seconds", seconds))
		}
	}

	// Join with commas and "and" for last item
	if len(parts) == 1 {
		return parts[0]
	}
	if len(parts) == 2 {
		return parts[0] + " and " + parts[1]
	}
	last := parts[len(parts)-1]
	rest := strings.Join(parts[:len(parts)-1], ", ")
	return rest + ", and " + last
}

func initialModel(source string, statsInterval int, showAll bool) model {
	return model{
		source:        source,
		statsInterval: statsInterval,
		showAll:       showAll,
		stats:         scooter.NewStatistics(),
		errorLog:      make([]errorLogEntry, 0),
		maxLogEntries: 100,
		width:         80,
		height:        24,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(),
		tea.EnterAltScreen,
	)
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "r":
			m.stats.Reset()
			m.addLogEntry("Statistics reset", false)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tickMsg:
		// Update statistics rates
		m.stats.CalculateRates()
		return m, tickCmd()

	case streamDoneMsg:
		m.streamDone = true
		m.streamErr = msg.err
		if msg.err != nil {
			m.addLogEntry(fmt.Sprintf("Input error: %v", msg.err), true)
		} else {
			m.addLogEntry(fmt.Sprintf("End of input after %d samples", m.stats.TotalSamples), false)
		}

	case sampleDataMsg:
		m.processSample(msg)
	}

	return m, nil
}

func (m *model) processSample(msg sampleDataMsg) {
	if msg.decodeErr != nil {
		m.stats.Update(msg.decodeErr, nil)
		m.addLogEntry(fmt.Sprintf("DECODE ERROR: %v", msg.decodeErr), true)
		return
	}
	if msg.sample == nil {
		return
	}

	m.stats.Update(nil, msg.validationErrors)
	m.lastSample = msg.sample

	title := sampleTitle(&msg.sample.Sample)
	if len(msg.validationErrors) > 0 {
		for _, err := range msg.validationErrors {
			m.addLogEntry(fmt.Sprintf("%s: %s: %s", title, err.Type, err.Message), true)
		}
	} else if m.showAll {
		m.addLogEntry(fmt.Sprintf("%s (clean)", title), false)
	}
}

func (m *model) addLogEntry(message string, isError bool) {
	entry := errorLogEntry{
		timestamp: time.Now(),
		message:   message,
		isError:   isError,
	}
	m.errorLog = append(m.errorLog, entry)

	// Keep only last N entries
	if len(m.errorLog) > m.maxLogEntries {
		m.errorLog = m.errorLog[len(m.errorLog)-m.maxLogEntries:]
	}
}

func (m model) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}

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

	// Header
	var s strings.Builder
	s.WriteString(titleStyle.Render("CELLSTAT - ERROR DETECTION"))
	s.WriteString("\n")
	s.WriteString(headerStyle.Render(fmt.Sprintf("Source: %s | Mode: %s | 'r' resets stats | Press 'q' to quit",
		m.source, func() string {
			if m.showAll {
				return "All samples"
			}
			return "Anomalies only"
		}())))
	s.WriteString("\n\n")

	// Stream status
	elapsed := formatDuration(uint64(time.Since(m.stats.StartTime).Milliseconds()))
	switch {
	case m.streamErr != nil:
		s.WriteString(errorStyle.Render("✗ Input failed"))
	case m.streamDone:
		s.WriteString(statsValueStyle.Render("✓ End of input"))
	default:
		s.WriteString(warningStyle.Render("⏳ Reading samples..."))
	}
	s.WriteString(headerStyle.Render(fmt.Sprintf(" (running %s)", elapsed)))
	s.WriteString("\n\n")

	// Statistics
	m.stats.CalculateRates()
	var cleanPercent, errorPercent float64
	if m.stats.TotalSamples > 0 {
		cleanPercent = float64(m.stats.CleanSamples) * 100.0 / float64(m.stats.TotalSamples)
		errorPercent = float64(m.stats.TotalSamples-m.stats.CleanSamples) * 100.0 / float64(m.stats.TotalSamples)
	}

	statsContent := strings.Builder{}
	statsContent.WriteString(fmt.Sprintf("%s %s   %s %s   %s %s\n",
		statsLabelStyle.Render("Total:"), statsValueStyle.Render(fmt.Sprintf("%d", m.stats.TotalSamples)),
		statsLabelStyle.Render("Clean:"), statsValueStyle.Render(fmt.Sprintf("%d (%.1f%%)", m.stats.CleanSamples, cleanPercent)),
		statsLabelStyle.Render("Flagged:"), errorStyle.Render(fmt.Sprintf("%d (%.1f%%)", m.stats.TotalSamples-m.stats.CleanSamples, errorPercent)),
	))

	if m.stats.DecodeErrors > 0 {
		statsContent.WriteString(fmt.Sprintf("%s %s\n",
			statsLabelStyle.Render("Decode Errors:"), errorStyle.Render(fmt.Sprintf("%d", m.stats.DecodeErrors)),
		))
	}

	if m.stats.MissingData > 0 {
		statsContent.WriteString(fmt.Sprintf("%s %s (%s: %d, %s: %d, %s: %d, %s: %d, %s: %d)\n",
			statsLabelStyle.Render("Missing:"), errorStyle.Render(fmt.Sprintf("%d", m.stats.MissingData)),
			headerStyle.Render("empty"), m.stats.EmptySamples,
			headerStyle.Render("no cells"), m.stats.NoCells,
			headerStyle.Render("no ICV"), m.stats.MissingICV,
			headerStyle.Render("partial NTC"), m.stats.IncompleteNTC,
			headerStyle.Render("unknown MOS"), m.stats.UnknownMOS,
		))
	}

	if m.stats.AnomalousData > 0 {
		statsContent.WriteString(fmt.Sprintf("%s %s (%s: %d, %s: %d, %s: %d, %s: %d, %s: %d)\n",
			statsLabelStyle.Render("Anomalous:"), warningStyle.Render(fmt.Sprintf("%d", m.stats.AnomalousData)),
			headerStyle.Render("ICV mismatch"), m.stats.ICVMismatches,
			headerStyle.Render("temp"), m.stats.InvalidTemps,
			headerStyle.Render("MOSFET off"), m.stats.MOSFETOff,
			headerStyle.Render("imbalance"), m.stats.CellImbalances,
			headerStyle.Render("SOC"), m.stats.InvalidSOC,
		))
	}

	statsContent.WriteString(fmt.Sprintf("%s %s   %s %s",
		statsLabelStyle.Render("Sample Rate:"), statsValueStyle.Render(fmt.Sprintf("%.1f samples/s", m.stats.SampleRate)),
		statsLabelStyle.Render("Error Rate:"), func() string {
			if m.stats.ErrorRate > 0 {
				return errorStyle.Render(fmt.Sprintf("%.1f err/s", m.stats.ErrorRate))
			}
			return statsValueStyle.Render(fmt.Sprintf("%.1f err/s", m.stats.ErrorRate))
		}(),
	))

	s.WriteString(boxStyle.Render(statsContent.String()))
	s.WriteString("\n\n")

	// Latest sample (only shown once one has decoded)
	if m.lastSample != nil {
		s.WriteString(statsLabelStyle.Render("Latest Sample:"))
		s.WriteString("\n")

		t := &m.lastSample.Telemetry
		sampleContent := strings.Builder{}
		sampleContent.WriteString(fmt.Sprintf("%s %s   %s %s%%\n",
			statsLabelStyle.Render("Sample:"), statsValueStyle.Render(sampleTitle(&m.lastSample.Sample)),
			statsLabelStyle.Render("SOC:"), m.lastSample.Sample.SOC.Format(0),
		))
		sampleContent.WriteString(fmt.Sprintf("%s %s\n",
			statsLabelStyle.Render("MOS:"), statsValueStyle.Render(scooter.FormatMOS(t.MOS)),
		))
		sampleContent.WriteString(fmt.Sprintf("%s %s\n",
			statsLabelStyle.Render("ICV:"), statsValueStyle.Render(scooter.FormatICV(t.ICV)),
		))
		if t.MinCell > 0 {
			sampleContent.WriteString(fmt.Sprintf("%s %s\n",
				statsLabelStyle.Render("Cells:"),
				statsValueStyle.Render(fmt.Sprintf("%d valid, min cell %d (%.3fV), max cell %d (%.3fV)",
					len(t.ValidCells()), t.MinCell, t.Cells[t.MinCell-1].Voltage, t.MaxCell, t.Cells[t.MaxCell-1].Voltage)),
			))
		}
		labels := modelLabels(m.lastSample.Sample.Model)
		for i, v := range t.NTC.Main() {
			sampleContent.WriteString(fmt.Sprintf("%s %s\n",
				statsLabelStyle.Render(labels[i]+":"),
				statsValueStyle.Render(fmt.Sprintf("%d°C", v)),
			))
		}

		s.WriteString(boxStyle.Render(sampleContent.String()))
		s.WriteString("\n\n")
	}

	// Event log
	s.WriteString(statsLabelStyle.Render("Recent Events:"))
	s.WriteString("\n")

	// Calculate how many log entries we can show
	logHeight := m.height - 22 // Reserve space for header, stats and latest sample
	if logHeight < 5 {
		logHeight = 5
	}

	logContent := strings.Builder{}
	startIdx := len(m.errorLog) - logHeight
	if startIdx < 0 {
		startIdx = 0
	}

	if len(m.errorLog) == 0 {
		logContent.WriteString(headerStyle.Render("  (no events yet)"))
	} else {
		for i := startIdx; i < len(m.errorLog); i++ {
			entry := m.errorLog[i]
			timestamp := entry.timestamp.Format("01/02/06 15:04:05.000")
			if entry.isError {
				logContent.WriteString(fmt.Sprintf("%s %s\n",
					headerStyle.Render(timestamp),
					errorStyle.Render("✗ "+entry.message),
				))
			} else {
				logContent.WriteString(fmt.Sprintf("%s %s\n",
					headerStyle.Render(timestamp),
					warningStyle.Render("ℹ "+entry.message),
				))
			}
		}
	}

	s.WriteString(boxStyle.Width(m.width - 4).Render(logContent.String()))

	return s.String()
}
