package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Keyer builds cache keys.
type Keyer interface {
	// ResultKey is the key of a solved instance. instance must identify the
	// pair of trees up to isomorphism, e.g. their canonical strings.
	ResultKey(instance string, opts ResultKeyOpts) string

	// ArtifactKey is the key of a rendered output of a result.
	ArtifactKey(resultHash string, opts ArtifactKeyOpts) string
}

// ResultKeyOpts holds the search options that change a result.
type ResultKeyOpts struct {
	Budget     int    `json:"budget"`
	Candidates string `json:"candidates,omitempty"`
}

// ArtifactKeyOpts holds the render options that change an artifact.
type ArtifactKeyOpts struct {
	Format   string `json:"format"`
	Network  int    `json:"network"`
	Title    string `json:"title,omitempty"`
	Detailed bool   `json:"detailed,omitempty"`
}

// DefaultKeyer hashes key parts with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer creates a DefaultKeyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ResultKey implements Keyer.
func (DefaultKeyer) ResultKey(instance string, opts ResultKeyOpts) string {
	return hashKey("result", instance, opts)
}

// ArtifactKey implements Keyer.
func (DefaultKeyer) ArtifactKey(resultHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", resultHash, opts)
}

// Hash returns the hex SHA-256 digest of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// hashKey joins prefix and the digest of the JSON-encoded parts. The parts
// are plain strings and structs, so encoding cannot fail.
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	return prefix + ":" + Hash(data)
}
