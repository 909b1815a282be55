// Package pipeline runs the parse → solve → export pipeline shared by the
// CLI and the HTTP API.
//
// # Stages
//
//  1. Parse: read two Newick trees and map their labels to shared ids
//  2. Solve: compute the hybridization number and all optimal networks
//  3. Export: write the result as JSON, extended Newick or a drawing
//
// Solving is the expensive stage. Its result is cached under a key derived
// from the canonical form of the prepared trees, so relabeling-free
// reorderings of the same input hit the cache. Exported artifacts are cached
// per format under the hash of the result.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	res, err := runner.Execute(ctx, pipeline.Options{
//	    Tree1:   "(A,(B,C));",
//	    Tree2:   "((A,B),C);",
//	    Formats: []string{"newick", "svg"},
//	})
//	fmt.Println(res.Document.HybridizationNumber)
package pipeline

import (
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/hybridnet/pkg/cache"
	hio "github.com/matzehuels/hybridnet/pkg/io"
)

// Format constants for output formats.
const (
	FormatJSON   = "json"
	FormatNewick = "newick"
	FormatDOT    = "dot"
	FormatSVG    = "svg"
	FormatPNG    = "png"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatJSON:   true,
	FormatNewick: true,
	FormatDOT:    true,
	FormatSVG:    true,
	FormatPNG:    true,
}

// Options contains all configuration for a pipeline run.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Parse options
	Tree1 string `json:"tree1"`
	Tree2 string `json:"tree2"`

	// Solve options
	Budget     int      `json:"budget,omitempty"`
	MemoSize   int      `json:"-"`
	Candidates []string `json:"candidates,omitempty"`
	Refresh    bool     `json:"refresh,omitempty"`

	// Export options
	Formats  []string `json:"formats,omitempty"`
	Network  int      `json:"network,omitempty"`
	Title    string   `json:"title,omitempty"`
	Detailed bool     `json:"detailed,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Instance is the prepared pair of trees.
	Instance *hio.Instance

	// Document is the solved result with labels.
	Document *hio.Document

	// ResultHash is the content hash of the encoded document.
	ResultHash string

	// Artifacts contains exported outputs keyed by format.
	Artifacts map[string][]byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Taxa       int
	ParseTime  time.Duration
	SolveTime  time.Duration
	ExportTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	SolveHit  bool // Whether the result came from cache
	ExportHit bool // Whether all artifacts came from cache
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return fmt.Errorf("invalid format: %q (must be one of: json, newick, dot, svg, png)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateAndSetDefaults checks required fields and applies defaults.
// Calling it more than once has no further effect.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForParse(); err != nil {
		return err
	}
	if err := o.ValidateForExport(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForParse checks the fields needed to parse the trees.
func (o *Options) ValidateForParse() error {
	if o.Tree1 == "" || o.Tree2 == "" {
		return fmt.Errorf("two trees are required")
	}
	if o.Budget < 0 {
		return fmt.Errorf("budget must not be negative")
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// ValidateForExport sets export defaults and checks the formats.
func (o *Options) ValidateForExport() error {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatNewick}
	}
	if o.Network < 0 {
		return fmt.Errorf("network index must not be negative")
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return ValidateFormats(o.Formats)
}

// ResultKeyOpts returns cache key options for the solve stage.
func (o *Options) ResultKeyOpts() cache.ResultKeyOpts {
	cand := slices.Clone(o.Candidates)
	slices.Sort(cand)
	return cache.ResultKeyOpts{Budget: o.Budget, Candidates: fmt.Sprint(cand)}
}

// ArtifactKeyOpts returns cache key options for one exported format.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{Format: format, Network: o.Network, Title: o.Title, Detailed: o.Detailed}
}
