package tags

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spendlens/spendlens/internal/core/rule"
)

var (
	// ErrNotFound is returned when no tag definition has the requested name.
	ErrNotFound = errors.New("tag not found")
)

// Definition is the persisted form of a tag: its name and the raw rule
// definition, keyed uniquely by name.
type Definition struct {
	// Name is the unique tag name.
	Name string `json:"name" yaml:"name"`

	// Conditions is the rule definition: one mapping, or a list of mappings.
	Conditions any `json:"conditions" yaml:"conditions"`

	// Fingerprint is the SHA-256 of the canonical JSON of Conditions.
	Fingerprint string `json:"fingerprint" yaml:"-"`

	// UpdatedAt is when the definition was last saved.
	UpdatedAt time.Time `json:"updated_at" yaml:"-"`
}

// ComputeFingerprint hashes the canonical JSON encoding of a rule definition.
// encoding/json sorts map keys, so equal definitions hash equally regardless of source format.
func ComputeFingerprint(conditions any) (string, error) {
	canonical, err := json.Marshal(conditions)
	if err != nil {
		return "", fmt.Errorf("%w: %v", rule.ErrMalformedRule, err)
	}
	hash := sha256.Sum256(canonical)
	return hex.EncodeToString(hash[:]), nil
}

// NewDefinition fingerprints conditions and stamps the definition with now.
func NewDefinition(name string, conditions any, now time.Time) (*Definition, error) {
	fp, err := ComputeFingerprint(conditions)
	if err != nil {
		return nil, err
	}
	return &Definition{
		Name:        name,
		Conditions:  conditions,
		Fingerprint: fp,
		UpdatedAt:   now.UTC(),
	}, nil
}
