package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/sugarcheck/internal/server"
	"github.com/matzehuels/sugarcheck/pkg/errors"
	"github.com/matzehuels/sugarcheck/pkg/refdb"
	"github.com/matzehuels/sugarcheck/pkg/sugar"
)

// conformersCommand creates the conformers command.
func (c *CLI) conformersCommand() *cobra.Command {
	var ringSize int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "conformers",
		Short: "List the named ring conformations and their codes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sizes := []int{6, 5}
			switch ringSize {
			case 0:
			case 5, 6:
				sizes = []int{ringSize}
			default:
				return errors.New(errors.ErrCodeInvalidInput, "ring size must be 5 or 6, got %d", ringSize)
			}
			return writeConformers(cmd.OutOrStdout(), sizes, asJSON)
		},
	}
	cmd.Flags().IntVar(&ringSize, "ring", 0, "only list conformations of this ring size (5 or 6)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func writeConformers(w io.Writer, sizes []int, asJSON bool) error {
	var rows []server.ConformationInfo
	for _, n := range sizes {
		for _, conf := range sugar.Conformations(n) {
			rows = append(rows, server.ConformationInfo{Code: conf.Code(), Name: conf.String(), RingSize: n})
		}
	}
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}

	cells := make([][]string, len(rows))
	for i, r := range rows {
		kind := "pyranose"
		if r.RingSize == 5 {
			kind = "furanose"
		}
		cells[i] = []string{strconv.Itoa(r.Code), r.Name, kind}
	}
	fmt.Fprintln(w, simpleTable([]string{"Code", "Name", "Ring"}, cells))
	return nil
}

// refdbCommand creates the refdb command group.
func (c *CLI) refdbCommand() *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "refdb",
		Short: "Inspect the sugar reference table",
	}
	cmd.PersistentFlags().StringVar(&path, "refdb", "", "TOML reference table merged over the built-in one")

	load := func() (*refdb.Table, error) {
		if path == "" {
			cfg, err := c.Config()
			if err != nil {
				return nil, err
			}
			path = cfg.RefDB
		}
		if path == "" {
			return refdb.Default(), nil
		}
		user, err := refdb.Load(path)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidRefDB, err, "reference table %s", path)
		}
		return refdb.Default().Merge(user), nil
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List the reference sugars",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := load()
			if err != nil {
				return err
			}
			return writeRefDB(cmd.OutOrStdout(), t)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "show <code>",
		Short: "Show one reference entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := load()
			if err != nil {
				return err
			}
			e, ok := t.Lookup(args[0])
			if !ok {
				return errors.New(errors.ErrCodeNotFound, "no reference entry for %q", args[0])
			}
			w := cmd.OutOrStdout()
			fmt.Fprintln(w, StyleTitle.Render(e.Code)+" "+StyleDim.Render(e.Name))
			printKeyValue(w, "Ring", strings.Join(e.Ring, " "))
			printKeyValue(w, "Handedness", e.Handedness)
			printKeyValue(w, "Anomer", e.Anomer)
			return nil
		},
	})
	return cmd
}

func writeRefDB(w io.Writer, t *refdb.Table) error {
	codes := t.Codes()
	cells := make([][]string, 0, len(codes))
	for _, code := range codes {
		e, _ := t.Lookup(code)
		cells = append(cells, []string{e.Code, e.Name, strings.Join(e.Ring, " "), e.Handedness, e.Anomer})
	}
	fmt.Fprintln(w, simpleTable([]string{"Code", "Name", "Ring", "Hand", "Anomer"}, cells))
	fmt.Fprintln(w, StyleDim.Render(fmt.Sprintf("  %d entries", t.Len())))
	return nil
}

func simpleTable(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			base := lipgloss.NewStyle().Padding(0, 1)
			if row == table.HeaderRow {
				return base.Inherit(styleHeader)
			}
			return base
		}).
		Render()
}
