package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Palette. ANSI 256 codes so output degrades on limited terminals.
var (
	colorAccent = lipgloss.Color("36")  // teal
	colorOK     = lipgloss.Color("35")  // green
	colorWarn   = lipgloss.Color("220") // amber
	colorErr    = lipgloss.Color("167") // soft red
	colorLink   = lipgloss.Color("75")  // light blue
	colorValue  = lipgloss.Color("255")
	colorLabel  = lipgloss.Color("245")
	colorMuted  = lipgloss.Color("240")
)

var (
	// StyleHighlight marks node names and other emphasized values.
	StyleHighlight = lipgloss.NewStyle().Foreground(colorAccent)

	// StyleDim is used for secondary text.
	StyleDim = lipgloss.NewStyle().Foreground(colorMuted)

	// StyleValue is used for paths and data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorValue)

	// StyleWarning is used for warnings and viewer status messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorWarn)
)

var (
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorAccent)
	styleCommand     = lipgloss.NewStyle().Foreground(colorLink)
	styleLabel       = lipgloss.NewStyle().Foreground(colorLabel).Width(12)
)

// statusKind selects the icon and color of a status line.
type statusKind int

const (
	statusOK statusKind = iota
	statusErr
	statusWarn
	statusInfo
)

var statusIcons = map[statusKind]string{
	statusOK:   lipgloss.NewStyle().Foreground(colorOK).Render("✓"),
	statusErr:  lipgloss.NewStyle().Foreground(colorErr).Render("✗"),
	statusWarn: lipgloss.NewStyle().Foreground(colorWarn).Render("!"),
	statusInfo: lipgloss.NewStyle().Foreground(colorLabel).Render("›"),
}

func printStatus(kind statusKind, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if kind == statusWarn {
		msg = StyleWarning.Render(msg)
	}
	fmt.Println(statusIcons[kind] + " " + msg)
}

func printSuccess(format string, args ...any) { printStatus(statusOK, format, args...) }
func printError(format string, args ...any)   { printStatus(statusErr, format, args...) }
func printWarning(format string, args ...any) { printStatus(statusWarn, format, args...) }
func printInfo(format string, args ...any)    { printStatus(statusInfo, format, args...) }

// printDetail prints an indented, dimmed line.
func printDetail(format string, args ...any) {
	fmt.Println("  " + StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints a written output path.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render("→") + " " + StyleValue.Render(path))
}

// printKeyValue prints a labeled value in a fixed-width column.
func printKeyValue(key, value string) {
	fmt.Println(styleLabel.Render(key) + " " + StyleValue.Render(value))
}

// printStats prints tree statistics on one line, e.g.
// "12 nodes · 5 visible · fresh". Zero counts are left out.
func printStats(nodeCount, visibleCount int, cached bool) {
	var parts []string
	if nodeCount > 0 {
		parts = append(parts, StyleDim.Render(fmt.Sprintf("%d nodes", nodeCount)))
	}
	if visibleCount > 0 {
		parts = append(parts, StyleDim.Render(fmt.Sprintf("%d visible", visibleCount)))
	}
	if cached {
		parts = append(parts, lipgloss.NewStyle().Foreground(colorOK).Render("cached"))
	} else {
		parts = append(parts, lipgloss.NewStyle().Foreground(colorLabel).Render("fresh"))
	}
	fmt.Println("  " + strings.Join(parts, StyleDim.Render(" · ")))
}

// printNextStep suggests a follow-up command.
func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

func printNewline() { fmt.Println() }
