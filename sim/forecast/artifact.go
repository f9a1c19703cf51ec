package forecast

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/laundry-sim/laundry-sim/sim/label"
)

// ArtifactVersion is the artifact format written by this package.
const ArtifactVersion = 1

// Artifact is a trained model plus the schema needed to serve it.
type Artifact struct {
	Version    int          `json:"version"`
	Policy     label.Policy `json:"policy"`
	NumClasses int          `json:"num_classes"`
	Features   []string     `json:"features"`
	Forest     *Forest      `json:"forest"`
}

// Validate checks that the artifact can be served.
func (a *Artifact) Validate() error {
	if a.Version != ArtifactVersion {
		return fmt.Errorf("unsupported artifact version %d (want %d)", a.Version, ArtifactVersion)
	}
	lo, hi, err := label.ClassRange(a.Policy)
	if err != nil {
		return err
	}
	if a.NumClasses != hi-lo+1 {
		return fmt.Errorf("policy %s has %d classes, artifact declares %d", a.Policy, hi-lo+1, a.NumClasses)
	}
	if err := ValidateFeatures(a.Features); err != nil {
		return err
	}
	if a.Forest == nil || len(a.Forest.Trees) == 0 {
		return fmt.Errorf("artifact has no trees")
	}
	if a.Forest.NumFeatures != len(a.Features) {
		return fmt.Errorf("forest expects %d features, schema lists %d", a.Forest.NumFeatures, len(a.Features))
	}
	for i, t := range a.Forest.Trees {
		if err := t.validate(a.Forest.NumFeatures); err != nil {
			return fmt.Errorf("tree %d: %w", i, err)
		}
		for _, l := range t.labels(nil) {
			if l < lo || l > hi {
				return fmt.Errorf("tree %d: leaf label %d outside [%d, %d]", i, l, lo, hi)
			}
		}
	}
	return nil
}

// Scale renders the label range, e.g. "1-10".
func (a *Artifact) Scale() string {
	lo, hi, err := label.ClassRange(a.Policy)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%d-%d", lo, hi)
}

// WriteArtifact encodes a as indented JSON.
func WriteArtifact(w io.Writer, a *Artifact) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", " ")
	if err := enc.Encode(a); err != nil {
		return fmt.Errorf("encoding artifact: %w", err)
	}
	return nil
}

// ReadArtifact decodes and validates an artifact.
func ReadArtifact(r io.Reader) (*Artifact, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	var a Artifact
	if err := dec.Decode(&a); err != nil {
		return nil, fmt.Errorf("decoding artifact: %w", err)
	}
	if err := a.Validate(); err != nil {
		return nil, fmt.Errorf("invalid artifact: %w", err)
	}
	return &a, nil
}

// SaveArtifact writes a to path.
func SaveArtifact(path string, a *Artifact) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating artifact file: %w", err)
	}
	if err := WriteArtifact(f, a); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// LoadArtifact reads and validates the artifact at path.
func LoadArtifact(path string) (*Artifact, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening artifact: %w", err)
	}
	defer f.Close()
	return ReadArtifact(f)
}
