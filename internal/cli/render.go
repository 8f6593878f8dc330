package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/sugarcheck/pkg/errors"
	"github.com/matzehuels/sugarcheck/pkg/pipeline"
	"github.com/matzehuels/sugarcheck/pkg/render/projection"
)

// renderOpts holds the flags of the graph and project commands.
type renderOpts struct {
	analysisFlags
	residue   string
	format    string
	output    string
	size      int
	hydrogens bool
}

func (o *renderOpts) register(cmd *cobra.Command, kind string) {
	o.analysisFlags.register(cmd)
	formats := pipeline.ArtifactFormats[kind]
	cmd.Flags().StringVar(&o.residue, "id", "", "residue to render as NAME/CHAIN/SEQ, e.g. BGC/A/1 (required)")
	cmd.Flags().StringVarP(&o.output, "output", "o", "", "output file (default <structure>_<residue>.<format>)")
	cmd.Flags().BoolVar(&o.hydrogens, "hydrogens", false, "draw hydrogen atoms")
	if len(formats) > 1 {
		cmd.Flags().StringVarP(&o.format, "format", "f", "", "output format: "+strings.Join(formats, ", ")+" (default "+formats[0]+")")
	}
	_ = cmd.MarkFlagRequired("id")
}

// graphCommand creates the graph command.
func (c *CLI) graphCommand() *cobra.Command {
	var opts renderOpts
	cmd := &cobra.Command{
		Use:   "graph <model.pdb> --id NAME/CHAIN/SEQ",
		Short: "Render the bond graph of one residue",
		Long: `Graph draws the covalent bonds of a residue with graphviz. Ring atoms and
bonds are highlighted and the stereo substituents are outlined, including
those found in neighbouring residues or symmetry images.`,
		Example: `  sugarcheck graph 1bgc.pdb --id BGC/A/1
  sugarcheck graph 1bgc.pdb --id BGC/A/1 -f dot -o - | dot -Tpdf > bgc.pdf`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), args[0], pipeline.KindBondGraph, opts)
		},
	}
	opts.register(cmd, pipeline.KindBondGraph)
	return cmd
}

// projectCommand creates the project command.
func (c *CLI) projectCommand() *cobra.Command {
	var opts renderOpts
	cmd := &cobra.Command{
		Use:   "project <model.pdb> --id NAME/CHAIN/SEQ",
		Short: "Render a ring projected onto its mean plane",
		Long: `Project draws a residue viewed along the normal of its ring's mean plane.
Atoms above the plane are red, atoms below it blue.`,
		Example: `  sugarcheck project 1bgc.pdb --id BGC/A/1 --size 800`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), args[0], pipeline.KindProjection, opts)
		},
	}
	opts.register(cmd, pipeline.KindProjection)
	cmd.Flags().IntVar(&opts.size, "size", projection.DefaultSize, "image edge length in pixels")
	return cmd
}

func (c *CLI) runRender(ctx context.Context, stdout, stderr io.Writer, path, kind string, opts renderOpts) error {
	logger := loggerFromContext(ctx)
	art := pipeline.ArtifactOptions{
		Kind:      kind,
		Format:    opts.format,
		Residue:   opts.residue,
		AltLoc:    opts.altLoc,
		Size:      opts.size,
		Hydrogens: opts.hydrogens,
	}
	if err := art.Validate(); err != nil {
		return err
	}
	popts, err := opts.options(c, path)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.Wrap(errors.ErrCodeFileNotFound, err, "model %s", path)
		}
		return fmt.Errorf("read %s: %w", path, err)
	}

	runner, err := c.newRunner(ctx, opts.cache)
	if err != nil {
		return err
	}
	defer runner.Close()

	prog := newProgress(logger)
	out, err := runner.Artifact(ctx, data, popts, art)
	if err != nil {
		return err
	}

	dest := opts.output
	if dest == "-" {
		_, err := stdout.Write(out)
		return err
	}
	if dest == "" {
		dest = artifactName(path, art)
	}
	if err := os.WriteFile(dest, out, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", dest, err)
	}
	prog.done("Rendered "+art.Residue, "kind", kind, "bytes", len(out))
	printFile(stderr, dest)
	return nil
}

// artifactName derives "<model>_<NAME>_<CHAIN>_<SEQ>.<format>" in the
// current directory from the model path and residue.
func artifactName(path string, art pipeline.ArtifactOptions) string {
	base := filepath.Base(path)
	for _, ext := range []string{".gz", ".zst", ".pdb", ".ent"} {
		base = strings.TrimSuffix(base, ext)
	}
	res := strings.NewReplacer("/", "_", " ", "").Replace(art.Residue)
	if art.AltLoc != "" {
		res += "_" + art.AltLoc
	}
	return fmt.Sprintf("%s_%s.%s", base, res, art.Format)
}
