package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/hybridnet/pkg/errors"
	hio "github.com/matzehuels/hybridnet/pkg/io"
	"github.com/matzehuels/hybridnet/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output   string
	formats  string
	network  int
	title    string
	detailed bool
	browse   bool
}

// renderCommand creates the render command, which draws networks of a
// result saved with "solve -f json".
func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{formats: pipeline.FormatSVG, network: 1}

	cmd := &cobra.Command{
		Use:   "render <result.json>",
		Short: "Draw a network of a saved result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", opts.formats, "output format(s): svg (default), png, dot, newick, json (comma-separated)")
	cmd.Flags().IntVarP(&opts.network, "network", "n", opts.network, "network to draw (1-based)")
	cmd.Flags().StringVar(&opts.title, "title", "", "title for drawings")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "label internal nodes and hybrid tags")
	cmd.Flags().BoolVar(&opts.browse, "browse", false, "pick the network interactively")

	return cmd
}

func runRender(ctx context.Context, input string, opts *renderOpts) error {
	logger := loggerFromContext(ctx)

	doc, err := readDocument(input)
	if err != nil {
		return err
	}
	logger.Debug("loaded result", "path", input, "h", doc.HybridizationNumber, "networks", len(doc.Networks))

	formats := parseFormats(opts.formats, pipeline.FormatSVG)
	if err := pipeline.ValidateFormats(formats); err != nil {
		return err
	}

	index := opts.network - 1
	if opts.browse {
		idx, ok, err := browseNetworks(doc)
		if err != nil {
			return err
		}
		if !ok {
			printInfo("No network selected")
			return nil
		}
		index = idx
	}
	if index < 0 || index >= len(doc.Networks) {
		return errors.New(errors.ErrCodeInvalidInput, "network %d out of range (result has %d)", index+1, len(doc.Networks))
	}

	popts := pipeline.Options{Network: index, Title: opts.title, Detailed: opts.detailed}
	artifacts := make(map[string][]byte, len(formats))
	for _, f := range formats {
		data, err := pipeline.Export(ctx, doc, f, popts)
		if err != nil {
			return err
		}
		artifacts[f] = data
	}
	return writeArtifacts(artifacts, formats, opts.output, []string{input}, doc)
}

func readDocument(path string) (*hio.Document, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return hio.ReadJSON(f)
}
