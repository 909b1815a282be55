package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/evolbioinfo/gotree/tree"
	"github.com/spf13/cobra"

	"github.com/matzehuels/hybridnet/pkg/errors"
	hio "github.com/matzehuels/hybridnet/pkg/io"
	"github.com/matzehuels/hybridnet/pkg/network"
	"github.com/matzehuels/hybridnet/pkg/phylo"
	"github.com/matzehuels/hybridnet/pkg/pipeline"
	"github.com/matzehuels/hybridnet/pkg/taxa"
)

// extensions maps output formats to file extensions.
var extensions = map[string]string{
	pipeline.FormatJSON:   ".json",
	pipeline.FormatNewick: ".nwk",
	pipeline.FormatDOT:    ".dot",
	pipeline.FormatSVG:    ".svg",
	pipeline.FormatPNG:    ".png",
}

// solveOpts holds the command-line flags for the solve command.
type solveOpts struct {
	output     string
	formats    string
	candidates string
	budget     int
	memoSize   int
	timeout    time.Duration
	network    int
	title      string
	detailed   bool
	noCache    bool
	refresh    bool
	verify     bool
	browse     bool
}

// solveCommand creates the solve command.
func (c *CLI) solveCommand() *cobra.Command {
	var opts solveOpts

	cmd := &cobra.Command{
		Use:   "solve <trees> | <tree1> <tree2>",
		Short: "Compute the hybridization number and all optimal networks",
		Long: `Solve reads two rooted trees and computes their hybridization number
together with every network that attains it.

Trees are read from one file holding both, from two files, or given inline
as Newick strings:

  hybridnet solve pair.nwk
  hybridnet solve a.nwk b.nwk -f svg -o net.svg
  hybridnet solve "(A,(B,C));" "((A,B),C);"`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.budget = intFlag(cmd, "budget", c.Config.Budget)
			opts.memoSize = intFlag(cmd, "memo-size", c.Config.MemoSize)
			opts.timeout = durationFlag(cmd, "timeout", c.Config.Timeout)
			opts.formats = stringFlag(cmd, "format", c.Config.Format)
			return c.runSolve(cmd.Context(), args, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output format(s): newick (default), json, dot, svg, png (comma-separated)")
	cmd.Flags().StringVar(&opts.candidates, "candidates", "", "only these taxa may become reticulations (comma-separated)")
	cmd.Flags().IntVarP(&opts.budget, "budget", "k", 0, "maximum reticulations to try (0 searches upward from zero)")
	cmd.Flags().IntVar(&opts.memoSize, "memo-size", 0, "memo capacity in entries (0 for the default)")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "stop the search after this long (0 for no limit)")
	cmd.Flags().IntVarP(&opts.network, "network", "n", 1, "network to draw for dot, svg and png output (1-based)")
	cmd.Flags().StringVar(&opts.title, "title", "", "title for drawings")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "label internal nodes and hybrid tags in drawings")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the result cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "ignore cached results and solve again")
	cmd.Flags().BoolVar(&opts.verify, "verify", false, "check that every network displays both input trees")
	cmd.Flags().BoolVar(&opts.browse, "browse", false, "pick the network to draw interactively")

	return cmd
}

func (c *CLI) runSolve(ctx context.Context, args []string, opts *solveOpts) error {
	logger := loggerFromContext(ctx)

	t1, t2, err := loadTrees(args)
	if err != nil {
		return err
	}
	if opts.network < 1 {
		return errors.New(errors.ErrCodeInvalidInput, "network index starts at 1")
	}

	formats := parseFormats(opts.formats, "")
	if err := pipeline.ValidateFormats(formats); err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	if opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.timeout)
		defer cancel()
	}

	popts := pipeline.Options{
		Tree1:      t1,
		Tree2:      t2,
		Budget:     opts.budget,
		MemoSize:   opts.memoSize,
		Candidates: parseList(opts.candidates),
		Refresh:    opts.refresh,
		Formats:    formats,
		Network:    opts.network - 1,
		Title:      opts.title,
		Detailed:   opts.detailed,
		Logger:     logger,
	}
	if opts.browse {
		popts.Formats = []string{pipeline.FormatJSON}
	}

	prog := newProgress(logger)
	spinner := newSpinnerWithContext(ctx, "Searching networks...")
	spinner.Start()
	res, err := runner.Execute(ctx, popts)
	if err != nil {
		if spinner.Cancelled() {
			spinner.StopWithError("Search cancelled")
		} else {
			spinner.Stop()
		}
		return solveError(ctx, err)
	}
	doc := res.Document
	spinner.StopWithSuccess("Hybridization number " + StyleNumber.Render(fmt.Sprint(doc.HybridizationNumber)))
	prog.done("Solved", "h", doc.HybridizationNumber, "networks", len(doc.Networks),
		"calls", doc.Stats.Calls, "memo_hit_rate", fmt.Sprintf("%.2f", doc.Stats.HitRate()))

	printStats(res.Stats.Taxa, doc.HybridizationNumber, len(doc.Networks), res.CacheInfo.SolveHit)
	if len(doc.Dropped) > 0 {
		printWarning("Dropped taxa missing from one tree: %s", strings.Join(doc.Dropped, ", "))
	}

	if opts.verify {
		if err := verify(res.Instance, doc); err != nil {
			return err
		}
		printSuccess("Verified %d networks against both trees", len(doc.Networks))
	}

	artifacts := res.Artifacts
	if opts.browse {
		idx, ok, err := browseNetworks(doc)
		if err != nil {
			return err
		}
		if !ok {
			printInfo("No network selected")
			return nil
		}
		popts.Network = idx
		artifacts = make(map[string][]byte, len(formats))
		for _, f := range formats {
			data, err := pipeline.Export(ctx, doc, f, popts)
			if err != nil {
				return err
			}
			artifacts[f] = data
		}
	}

	return writeArtifacts(artifacts, formats, opts.output, args, doc)
}

// solveError reports the timeout flag instead of a bare cancellation.
func solveError(ctx context.Context, err error) error {
	if ctx.Err() == context.DeadlineExceeded {
		return errors.Wrap(errors.ErrCodeTimeout, err, "search timed out")
	}
	return err
}

// loadTrees returns the two input trees as Newick text. Arguments starting
// with '(' are Newick strings, anything else is a file.
func loadTrees(args []string) (string, string, error) {
	if !slices.ContainsFunc(args, isInline) {
		g1, g2, err := hio.ReadPair(args...)
		if err != nil {
			return "", "", err
		}
		return g1.Newick(), g2.Newick(), nil
	}

	var trees []*tree.Tree
	for _, a := range args {
		if !isInline(a) {
			ts, err := hio.ReadTreeFile(a)
			if err != nil {
				return "", "", err
			}
			trees = append(trees, ts...)
			continue
		}
		a = strings.TrimSpace(a)
		if !strings.HasSuffix(a, ";") {
			a += ";"
		}
		t, err := hio.ParseNewick(a)
		if err != nil {
			return "", "", err
		}
		trees = append(trees, t)
	}
	if len(trees) != 2 {
		return "", "", errors.New(errors.ErrCodeInvalidInput, "expected 2 trees, found %d", len(trees))
	}
	return trees[0].Newick(), trees[1].Newick(), nil
}

func isInline(arg string) bool {
	return strings.HasPrefix(strings.TrimSpace(arg), "(")
}

// verify checks that every network has the reported number of reticulations
// and displays every cluster of both input trees.
func verify(inst *hio.Instance, doc *hio.Document) error {
	tx := doc.Labels()
	for i := range doc.Networks {
		n, err := doc.Network(i)
		if err != nil {
			return err
		}
		if r := n.Reticulations(); r != doc.HybridizationNumber {
			return errors.New(errors.ErrCodeInternal, "network %d has %d reticulations, want %d", i+1, r, doc.HybridizationNumber)
		}
		for src, t := range map[network.Source]*phylo.Tree{network.Tree1: inst.Tree1, network.Tree2: inst.Tree2} {
			shown := n.Displayed(src)
			for _, c := range t.Clusters() {
				if _, ok := shown.NodeWithCluster(c); !ok {
					return errors.New(errors.ErrCodeInternal, "network %d does not display cluster %s of %s",
						i+1, clusterLabels(tx, c), src)
				}
			}
		}
	}
	return nil
}

func clusterLabels(tx *hio.Taxa, c taxa.Set) string {
	ids := c.Slice()
	labels := make([]string, len(ids))
	for i, id := range ids {
		labels[i] = tx.Label(id)
	}
	return "{" + strings.Join(labels, ",") + "}"
}

// writeArtifacts writes each artifact to a file. Without --output, a single
// text artifact goes to stdout and files are named after the first input.
func writeArtifacts(artifacts map[string][]byte, formats []string, output string, args []string, doc *hio.Document) error {
	if output == "" && len(formats) == 1 && formats[0] != pipeline.FormatPNG && formats[0] != pipeline.FormatSVG {
		if formats[0] == pipeline.FormatNewick {
			printNewline()
			for i, nd := range doc.Networks {
				printNetwork(i+1, nd.Reticulations, nd.Newick)
			}
			return nil
		}
		_, err := os.Stdout.Write(artifacts[formats[0]])
		return err
	}

	base := basePath(output, args)
	for _, f := range formats {
		path := base + extensions[f]
		if output != "" && len(formats) == 1 {
			path = output
		}
		if err := os.WriteFile(path, artifacts[f], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printFile(path)
	}
	return nil
}

// basePath derives the output path without extension. An explicit output
// loses a known format extension; otherwise the first input file names the
// output, and inline trees fall back to "network".
func basePath(output string, args []string) string {
	if output != "" {
		ext := filepath.Ext(output)
		for _, known := range extensions {
			if ext == known {
				return strings.TrimSuffix(output, ext)
			}
		}
		return output
	}
	for _, a := range args {
		if !isInline(a) {
			return strings.TrimSuffix(filepath.Base(a), filepath.Ext(a))
		}
	}
	return "network"
}
