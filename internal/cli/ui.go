package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorCyan   = lipgloss.Color("36")
	colorGreen  = lipgloss.Color("35")
	colorYellow = lipgloss.Color("220")
	colorRed    = lipgloss.Color("167")
	colorWhite  = lipgloss.Color("255")
	colorGray   = lipgloss.Color("245")
	colorDim    = lipgloss.Color("240")
)

var (
	StyleTitle  = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	StyleDim    = lipgloss.NewStyle().Foreground(colorDim)
	StyleValue  = lipgloss.NewStyle().Foreground(colorWhite)
	StyleNumber = lipgloss.NewStyle().Foreground(colorCyan)

	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)
)

// statusLine is an icon printed in front of a message.
type statusLine struct {
	icon  string
	style lipgloss.Style
	body  *lipgloss.Style
}

var (
	lineSuccess = statusLine{icon: "✓", style: lipgloss.NewStyle().Foreground(colorGreen)}
	lineError   = statusLine{icon: "✗", style: lipgloss.NewStyle().Foreground(colorRed)}
	lineInfo    = statusLine{icon: "›", style: lipgloss.NewStyle().Foreground(colorGray)}
	lineWarning = func() statusLine {
		s := lipgloss.NewStyle().Foreground(colorYellow)
		return statusLine{icon: "!", style: s, body: &s}
	}()
)

func (l statusLine) print(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if l.body != nil {
		msg = l.body.Render(msg)
	}
	fmt.Println(l.style.Render(l.icon) + " " + msg)
}

func printSuccess(format string, args ...any) { lineSuccess.print(format, args...) }
func printError(format string, args ...any)   { lineError.print(format, args...) }
func printWarning(format string, args ...any) { lineWarning.print(format, args...) }
func printInfo(format string, args ...any)    { lineInfo.print(format, args...) }

// printDetail prints an indented, dimmed line under a status line.
func printDetail(format string, args ...any) {
	fmt.Println("  " + StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints the path of a written file.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render("→") + " " + StyleValue.Render(path))
}

// printStats prints the shape of a result, e.g. "7 taxa · h=2 · 3 networks · cached".
func printStats(taxa, hybridization, networks int, cached bool) {
	sep := StyleDim.Render(" · ")
	parts := []string{
		StyleDim.Render(fmt.Sprintf("%d taxa", taxa)),
		StyleDim.Render(fmt.Sprintf("h=%d", hybridization)),
		StyleDim.Render(fmt.Sprintf("%d networks", networks)),
	}
	if cached {
		parts = append(parts, lipgloss.NewStyle().Foreground(colorGreen).Render("cached"))
	} else {
		parts = append(parts, lipgloss.NewStyle().Foreground(colorGray).Render("fresh"))
	}
	fmt.Println("  " + strings.Join(parts, sep))
}

// printNetwork prints one network as a numbered extended Newick line.
func printNetwork(index, reticulations int, newick string) {
	fmt.Println(StyleNumber.Render(fmt.Sprintf("%3d", index)) + " " +
		StyleDim.Render(fmt.Sprintf("[%d]", reticulations)) + " " +
		StyleValue.Render(newick))
}

func printNewline() { fmt.Println() }
