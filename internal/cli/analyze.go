package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/sugarcheck/pkg/errors"
	sugario "github.com/matzehuels/sugarcheck/pkg/io"
	"github.com/matzehuels/sugarcheck/pkg/pipeline"
)

// formatTable is the terminal table, the default when writing to stdout.
const formatTable = "table"

// analysisFlags are the flags every command running an analysis accepts.
type analysisFlags struct {
	altLoc     string
	allAltLocs bool
	residues   []string
	chains     []string
	workers    int
	refdb      string
	refresh    bool
	cache      cacheFlags
}

func (f *analysisFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.altLoc, "altloc", "", "analyse this alternate conformation instead of each residue's first")
	cmd.Flags().BoolVar(&f.allAltLocs, "all-altlocs", false, "emit one record per alternate conformation")
	cmd.Flags().StringSliceVarP(&f.residues, "residue", "r", nil, "extra residue codes to analyse (comma-separated)")
	cmd.Flags().StringSliceVarP(&f.chains, "chain", "c", nil, "restrict to these chain IDs (comma-separated)")
	cmd.Flags().IntVarP(&f.workers, "workers", "w", 0, "residues classified concurrently (default from config, else 4)")
	cmd.Flags().StringVar(&f.refdb, "refdb", "", "TOML reference table merged over the built-in one")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "ignore cached reports")
	f.cache.register(cmd)
}

// options merges the flags over the config-derived defaults.
func (f *analysisFlags) options(c *CLI, source string) (pipeline.Options, error) {
	opts, err := c.pipelineOptions()
	if err != nil {
		return opts, err
	}
	opts.Source = source
	opts.AltLoc = f.altLoc
	opts.AllAltLocs = f.allAltLocs
	opts.Residues = f.residues
	opts.Chains = f.chains
	opts.Refresh = f.refresh
	if f.workers != 0 {
		opts.Workers = f.workers
	}
	if f.refdb != "" {
		opts.RefDBPath = f.refdb
	}
	return opts, nil
}

type analyzeOpts struct {
	analysisFlags
	format string
	output string
}

// analyzeCommand creates the analyze command.
func (c *CLI) analyzeCommand() *cobra.Command {
	var opts analyzeOpts

	cmd := &cobra.Command{
		Use:   "analyze <model.pdb[.gz|.zst]>",
		Short: "Classify the sugar rings of a coordinate model",
		Long: `Analyze finds every candidate sugar residue of a PDB model, locates its
ring and stereocentres, computes the Cremer-Pople puckering parameters and
reports the denomination, conformation and sanity of each ring.`,
		Example: `  sugarcheck analyze 1bgc.pdb
  sugarcheck analyze 1bgc.pdb.gz --all-altlocs -f tsv -o 1bgc.tsv
  sugarcheck analyze model.pdb -r ZZZ --chain A,B -f json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runAnalyze(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), args[0], opts)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format: table, "+strings.Join(sugario.Formats(), ", ")+" (default from -o, else table)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write the report to this file")

	return cmd
}

// resolveFormat picks the report format from the flag or the output suffix.
func resolveFormat(format, output string) (string, error) {
	if format == "" && output != "" {
		format = strings.TrimPrefix(filepath.Ext(output), ".")
	}
	if format == "" {
		format = formatTable
	}
	switch {
	case format == formatTable && output != "":
		return "", errors.New(errors.ErrCodeInvalidFormat, "the table format is for terminals; use -f %s", strings.Join(sugario.Formats(), "|"))
	case format == formatTable, sugario.Supports(format):
		return format, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unknown format %q (want table, %s)", format, strings.Join(sugario.Formats(), ", "))
}

func (c *CLI) runAnalyze(ctx context.Context, stdout, stderr io.Writer, path string, opts analyzeOpts) error {
	logger := loggerFromContext(ctx)
	format, err := resolveFormat(opts.format, opts.output)
	if err != nil {
		return err
	}
	popts, err := opts.options(c, path)
	if err != nil {
		return err
	}
	runner, err := c.newRunner(ctx, opts.cache)
	if err != nil {
		return err
	}
	defer runner.Close()

	var spin *Spinner
	if format == formatTable && logger.GetLevel() > log.DebugLevel && isTerminal(stderr) {
		spin = newSpinner(ctx, stderr, "Analyzing "+filepath.Base(path)+"...")
		spin.Start()
	}
	prog := newProgress(logger)
	rep, err := runner.AnalyzeFile(ctx, path, popts)
	if spin != nil {
		spin.Stop()
	}
	if err != nil {
		return err
	}
	logger.Debug("analysis finished", "structure", rep.Structure, "sugars", len(rep.Sugars), "cached", rep.Stats.CacheHit)

	if opts.output != "" {
		if err := sugario.ExportReport(opts.output, format, rep); err != nil {
			return err
		}
		prog.done(fmt.Sprintf("Analyzed %s", rep.Structure), "sugars", len(rep.Sugars))
		printFile(stderr, opts.output)
		return nil
	}
	if format == formatTable {
		printReport(stdout, rep)
		return nil
	}
	if err := sugario.WriteReport(format, stdout, rep); err != nil && !sugario.IsBrokenPipe(err) {
		return err
	}
	return nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fi, err := f.Stat()
	return err == nil && fi.Mode()&os.ModeCharDevice != 0
}
