// Package books assigns each bookmaker a reliability weight and a
// sharp/public classification. The classifier is immutable process-wide
// configuration, built once at startup and injected into the engine.
package books

import (
	"math"
	"sort"

	"github.com/yourusername/sharpline/internal/models"
)

// Class tags a bookmaker as sharp, public, or unknown to the weight
// table.
type Class string

const (
	ClassSharp        Class = "SHARP"
	ClassPublic       Class = "PUBLIC"
	ClassUnclassified Class = "UNCLASSIFIED"
)

// Classifier holds the weight table and sharp-book set for one
// deployment. All fields are fixed after construction.
type Classifier struct {
	weights         map[string]float64
	fallbackWeight  float64
	namedSharp      map[string]bool
	sharpMultiplier float64
	proxyFraction   float64
}

// Config carries the tunable knobs for a Classifier.
type Config struct {
	Weights         map[string]float64
	FallbackWeight  float64
	SharpBooks      []string
	SharpMultiplier float64
	ProxyFraction   float64
}

// DefaultWeights is the base reliability table for US books, ordered by
// presumed market-making sharpness.
func DefaultWeights() map[string]float64 {
	return map[string]float64{
		"pinnacle":    1.6,
		"circa":       1.5,
		"betcris":     1.4,
		"betonlineag": 1.35,
		"bovada":      1.15,
		"fanduel":     1.0,
		"draftkings":  1.0,
		"betmgm":      0.95,
		"caesars":     0.9,
		"betrivers":   0.85,
		"pointsbetus": 0.85,
		"barstool":    0.8,
	}
}

// DefaultSharpBooks is the named sharp set used when none is configured.
func DefaultSharpBooks() []string {
	return []string{"pinnacle", "circa", "betcris"}
}

// NewClassifier builds a classifier from config, filling in defaults
// for anything left unset.
func NewClassifier(cfg Config) *Classifier {
	weights := cfg.Weights
	if len(weights) == 0 {
		weights = DefaultWeights()
	}
	fallback := cfg.FallbackWeight
	if fallback <= 0 {
		fallback = 0.8
	}
	sharp := cfg.SharpBooks
	if len(sharp) == 0 {
		sharp = DefaultSharpBooks()
	}
	named := make(map[string]bool, len(sharp))
	for _, b := range sharp {
		named[b] = true
	}
	multiplier := cfg.SharpMultiplier
	if multiplier <= 0 {
		multiplier = 1.10
	}
	fraction := cfg.ProxyFraction
	if fraction <= 0 || fraction > 1 {
		fraction = 0.30
	}
	return &Classifier{
		weights:         weights,
		fallbackWeight:  fallback,
		namedSharp:      named,
		sharpMultiplier: multiplier,
		proxyFraction:   fraction,
	}
}

// Weight returns the base reliability weight for a book. Unknown books
// get the conservative fallback weight.
func (c *Classifier) Weight(book string) float64 {
	if w, ok := c.weights[book]; ok {
		return w
	}
	return c.fallbackWeight
}

// BlendedWeight returns the weight used for the blended consensus: the
// base weight with the sharp group multiplier applied for named sharp
// books. The public baseline must never use this.
func (c *Classifier) BlendedWeight(book string) float64 {
	w := c.Weight(book)
	if c.namedSharp[book] {
		return w * c.sharpMultiplier
	}
	return w
}

// IsNamedSharp reports whether a book is in the configured sharp set.
func (c *Classifier) IsNamedSharp(book string) bool {
	return c.namedSharp[book]
}

// Classify returns the class of a single book against the static table.
func (c *Classifier) Classify(book string) Class {
	if c.namedSharp[book] {
		return ClassSharp
	}
	if _, ok := c.weights[book]; ok {
		return ClassPublic
	}
	return ClassUnclassified
}

// SharpSet picks the sharp subset among the books quoting one
// selection. When at least one named sharp book is present it is used
// directly; otherwise the top slice of present books by weight stands
// in as a proxy, flagged so consumers can discount confidence.
func (c *Classifier) SharpSet(present []string) (map[string]bool, models.SharpSource) {
	named := make(map[string]bool)
	for _, b := range present {
		if c.namedSharp[b] {
			named[b] = true
		}
	}
	if len(named) > 0 {
		return named, models.SourceNamed
	}
	if len(present) == 0 {
		return named, models.SourceProxy
	}

	ranked := make([]string, len(present))
	copy(ranked, present)
	sort.SliceStable(ranked, func(i, j int) bool {
		wi, wj := c.Weight(ranked[i]), c.Weight(ranked[j])
		if wi != wj {
			return wi > wj
		}
		return ranked[i] < ranked[j]
	})

	n := int(math.Ceil(float64(len(ranked)) * c.proxyFraction))
	if n < 1 {
		n = 1
	}
	proxy := make(map[string]bool, n)
	for _, b := range ranked[:n] {
		proxy[b] = true
	}
	return proxy, models.SourceProxy
}
