package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/sugarcheck/pkg/pipeline"
	"github.com/matzehuels/sugarcheck/pkg/sugar"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorBlue   = lipgloss.Color("75")  // Light blue - links
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Public Styles
// =============================================================================

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleSuccess for success messages.
	StyleSuccess = lipgloss.NewStyle().Foreground(colorGreen)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)

	// StyleError for failed checks.
	StyleError = lipgloss.NewStyle().Foreground(colorRed)
)

// =============================================================================
// Internal Styles
// =============================================================================

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleCached   = lipgloss.NewStyle().Foreground(colorGreen)
	styleComputed = lipgloss.NewStyle().Foreground(colorGray)

	styleCommand = lipgloss.NewStyle().Foreground(colorBlue)
	styleHeader  = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
)

// =============================================================================
// Icons
// =============================================================================

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
	iconCached  = "cached"
	iconFresh   = "fresh"
)

// =============================================================================
// Status Output
// =============================================================================

func printSuccess(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styleIconSuccess.Render(iconSuccess)+" "+fmt.Sprintf(format, args...))
}

func printError(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styleIconError.Render(iconError)+" "+fmt.Sprintf(format, args...))
}

func printWarning(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styleIconWarning.Render(iconWarning)+" "+StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styleIconInfo.Render(iconInfo)+" "+fmt.Sprintf(format, args...))
}

// printDetail prints an indented, dimmed line.
func printDetail(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

func printFile(w io.Writer, path string) {
	fmt.Fprintln(w, "  "+StyleDim.Render(iconArrow)+" "+StyleValue.Render(path))
}

func printKeyValue(w io.Writer, key, value string) {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(14)
	fmt.Fprintln(w, keyStyle.Render(key)+" "+StyleValue.Render(value))
}

func printNextStep(w io.Writer, description, cmd string) {
	fmt.Fprintln(w, StyleDim.Render(description+":")+" "+styleCommand.Render(cmd))
}

// =============================================================================
// Report Output
// =============================================================================

// printStats prints the run statistics on a single line.
func printStats(w io.Writer, st pipeline.Stats) {
	parts := []string{
		fmt.Sprintf("%d atoms", st.Atoms),
		fmt.Sprintf("%d candidates", st.Candidates),
		fmt.Sprintf("%d/%d supported", st.Supported, st.Sugars),
		fmt.Sprintf("%d sane", st.Sane),
	}
	status, statusStyle := iconFresh, styleComputed
	if st.CacheHit {
		status, statusStyle = iconCached, styleCached
	}

	line := "  "
	for i, part := range parts {
		if i > 0 {
			line += StyleDim.Render(" · ")
		}
		line += StyleDim.Render(part)
	}
	line += StyleDim.Render(" · ") + statusStyle.Render(status)
	fmt.Fprintln(w, line)
}

var reportHeaders = []string{"Residue", "Alt", "Ring", "Sugar", "Conf", "Q", "θ", "φ", "Sane"}

// reportRows flattens records into table cells.
func reportRows(recs []*sugar.Sugar) [][]string {
	rows := make([][]string, 0, len(recs))
	for _, rec := range recs {
		row := []string{rec.Residue.String(), rec.AltLoc, "", "", "", "", "", "", ""}
		if !rec.Supported {
			row[3] = rec.Reason
			rows = append(rows, row)
			continue
		}
		row[2] = strings.Join(rec.Ring.Names(), " ")
		row[3] = rec.Denomination
		row[4] = rec.Conformation
		if p := rec.Pucker; p != nil {
			row[5] = strconv.FormatFloat(p.Q, 'f', 3, 64)
			if p.Theta >= 0 {
				row[6] = strconv.FormatFloat(p.Theta, 'f', 1, 64)
			}
			row[7] = strconv.FormatFloat(p.Phi, 'f', 1, 64)
		}
		row[8] = sanityMark(rec)
		rows = append(rows, row)
	}
	return rows
}

func sanityMark(rec *sugar.Sugar) string {
	switch {
	case rec.Reference == nil:
		return "-"
	case rec.Sane():
		return iconSuccess
	default:
		return iconError
	}
}

// renderReportTable renders the records of rep as a lipgloss table.
func renderReportTable(rep *pipeline.Report) string {
	rows := reportRows(rep.Sugars)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(reportHeaders...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			base := lipgloss.NewStyle().Padding(0, 1)
			if row == table.HeaderRow {
				return base.Inherit(styleHeader)
			}
			if row < 0 || row >= len(rep.Sugars) {
				return base
			}
			rec := rep.Sugars[row]
			switch {
			case !rec.Supported:
				return base.Foreground(colorDim)
			case col == 8 && rec.Reference != nil && rec.Sane():
				return base.Foreground(colorGreen)
			case col == 8 && rec.Reference != nil:
				return base.Foreground(colorRed)
			case col == 0:
				return base.Foreground(colorCyan)
			}
			return base
		})
	return t.Render()
}

// printReport prints a title line, the record table and the statistics.
func printReport(w io.Writer, rep *pipeline.Report) {
	fmt.Fprintln(w, StyleTitle.Render(rep.Structure)+" "+StyleDim.Render(rep.Source))
	if len(rep.Sugars) == 0 {
		printWarning(w, "No sugar residues found")
	} else {
		fmt.Fprintln(w, renderReportTable(rep))
	}
	printStats(w, rep.Stats)
}
