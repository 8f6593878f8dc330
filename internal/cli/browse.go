package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/sugarcheck/pkg/errors"
	sugario "github.com/matzehuels/sugarcheck/pkg/io"
	"github.com/matzehuels/sugarcheck/pkg/pipeline"
	"github.com/matzehuels/sugarcheck/pkg/sugar"
)

var errNoTTY = errors.New(errors.ErrCodeUnsupported, "browse needs an interactive terminal")

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// browseCommand creates the browse command.
func (c *CLI) browseCommand() *cobra.Command {
	var flags analysisFlags
	var fromReport bool

	cmd := &cobra.Command{
		Use:   "browse <model.pdb | report.json>",
		Short: "Browse the sugar residues of a model interactively",
		Example: `  sugarcheck browse 1bgc.pdb
  sugarcheck browse --report 1bgc.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !isTerminal(cmd.OutOrStdout()) {
				return errNoTTY
			}
			rep, err := c.browseReport(cmd.Context(), args[0], fromReport, flags)
			if err != nil {
				return err
			}
			if len(rep.Sugars) == 0 {
				printWarning(cmd.ErrOrStderr(), "No sugar residues found in %s", rep.Structure)
				return nil
			}
			p := tea.NewProgram(NewBrowseModel(rep), tea.WithContext(cmd.Context()), tea.WithAltScreen())
			_, err = p.Run()
			return err
		},
	}
	flags.register(cmd)
	cmd.Flags().BoolVar(&fromReport, "report", false, "argument is a JSON report written by analyze -f json")
	return cmd
}

func (c *CLI) browseReport(ctx context.Context, path string, fromReport bool, flags analysisFlags) (*pipeline.Report, error) {
	if fromReport {
		return sugario.ImportReport(path)
	}
	opts, err := flags.options(c, path)
	if err != nil {
		return nil, err
	}
	runner, err := c.newRunner(ctx, flags.cache)
	if err != nil {
		return nil, err
	}
	defer runner.Close()
	return runner.AnalyzeFile(ctx, path, opts)
}

// =============================================================================
// BrowseModel - Interactive residue list with a detail pane
// =============================================================================

// BrowseModel is the bubbletea model of the residue browser.
type BrowseModel struct {
	Report *pipeline.Report
	Cursor int
	Offset int
	Height int
	// Detail is set while the selected record is expanded.
	Detail bool
}

// NewBrowseModel creates a browser over the records of rep.
func NewBrowseModel(rep *pipeline.Report) BrowseModel {
	return BrowseModel{Report: rep, Height: 15}
}

func (m BrowseModel) Init() tea.Cmd {
	return nil
}

// Selected returns the record under the cursor.
func (m BrowseModel) Selected() *sugar.Sugar {
	if m.Cursor < 0 || m.Cursor >= len(m.Report.Sugars) {
		return nil
	}
	return m.Report.Sugars[m.Cursor]
}

func (m BrowseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "esc":
			if !m.Detail {
				return m, tea.Quit
			}
			m.Detail = false
		case "enter", " ":
			m.Detail = !m.Detail
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Report.Sugars)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "home", "g":
			m.Cursor, m.Offset = 0, 0
		case "end", "G":
			m.Cursor = len(m.Report.Sugars) - 1
			m.Offset = max(0, m.Cursor-m.Height+1)
		}
	case tea.WindowSizeMsg:
		m.Height = max(5, msg.Height-8)
		if m.Cursor >= m.Offset+m.Height {
			m.Offset = m.Cursor - m.Height + 1
		}
	}
	return m, nil
}

func (m BrowseModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.Report.Structure))
	b.WriteString(" ")
	b.WriteString(listDimStyle.Render(m.Report.Source))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ details  q quit"))
	b.WriteString("\n\n")

	if m.Detail {
		if rec := m.Selected(); rec != nil {
			b.WriteString(detailView(rec))
		}
		return b.String()
	}

	end := min(m.Offset+m.Height, len(m.Report.Sugars))
	rows := reportRows(m.Report.Sugars[m.Offset:end])
	for i := range rows {
		cursor := "  "
		if m.Offset+i == m.Cursor {
			cursor = "▸ "
		}
		rows[i] = append([]string{cursor}, rows[i]...)
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(append([]string{""}, reportHeaders...)...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styleHeader
			}
			idx := m.Offset + row
			if idx >= len(m.Report.Sugars) {
				return lipgloss.NewStyle()
			}
			rec := m.Report.Sugars[idx]
			switch {
			case idx == m.Cursor:
				return listSelectedStyle
			case !rec.Supported:
				return listDimStyle
			}
			return lipgloss.NewStyle()
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Report.Sugars))))
	return b.String()
}

// detailView renders everything known about one record.
func detailView(rec *sugar.Sugar) string {
	var b strings.Builder
	line := func(k, v string) {
		keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(16)
		b.WriteString(keyStyle.Render(k) + " " + StyleValue.Render(v) + "\n")
	}

	b.WriteString(StyleTitle.Render(rec.Residue.String()))
	if rec.AltLoc != "" {
		b.WriteString(listDimStyle.Render(" alt " + rec.AltLoc))
	}
	b.WriteString("\n\n")

	if !rec.Supported {
		line("Unsupported", rec.Reason)
		return b.String()
	}
	line("Denomination", rec.Denomination)
	line("Ring", strings.Join(rec.Ring.Names(), " ")+" ("+rec.RingSource+")")
	line("Conformation", fmt.Sprintf("%s (code %d)", rec.Conformation, rec.ConformationCode.Code()))
	if p := rec.Pucker; p != nil {
		theta := "-"
		if p.Theta >= 0 {
			theta = strconv.FormatFloat(p.Theta, 'f', 2, 64)
		}
		line("Q / θ / φ", fmt.Sprintf("%.3f Å / %s° / %.2f°", p.Q, theta, p.Phi))
		line("Heights", formatFloats(p.Z, 3))
	}
	if st := rec.Stereo; st != nil {
		line("Anomeric", pairLabel(st.Anomeric))
		line("Configurational", pairLabel(st.Configurational))
		line("Terminal", pairLabel(st.Terminal))
	}
	if g := rec.Geometry; g != nil {
		line("Bonds", formatFloats(g.Bonds, 3))
		line("Angles", formatFloats(g.Angles, 1))
		line("RMSD", fmt.Sprintf("bonds %.3f Å · angles %.2f°", g.BondRMSD, g.AngleRMSD))
	}

	b.WriteString("\n")
	if rec.Reference == nil {
		b.WriteString(listDimStyle.Render("No reference entry; sanity not checked") + "\n")
		return b.String()
	}
	line("Reference", rec.Reference.Code+" "+rec.Reference.Name)
	s := rec.Sanity
	for _, f := range []struct {
		name string
		ok   bool
	}{
		{"Ring bonded", s.RingBonded},
		{"Chirality", s.Chirality},
		{"Anomer", s.Anomer},
		{"Bond RMSD", s.BondRMSD},
		{"Angle RMSD", s.AngleRMSD},
	} {
		mark := StyleSuccess.Render(iconSuccess)
		if !f.ok {
			mark = StyleError.Render(iconError)
		}
		b.WriteString(lipgloss.NewStyle().Foreground(colorGray).Width(16).Render(f.name) + " " + mark + "\n")
	}
	return b.String()
}

func pairLabel(p sugar.StereoPair) string {
	switch {
	case p.Carbon == nil:
		return "-"
	case p.Substituent == nil:
		return p.Carbon.Label() + " → -"
	}
	return p.Carbon.Label() + " → " + p.Substituent.Label()
}

func formatFloats(vs []float64, prec int) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = strconv.FormatFloat(v, 'f', prec, 64)
	}
	return strings.Join(parts, " ")
}
