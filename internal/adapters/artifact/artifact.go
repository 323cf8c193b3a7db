// Package artifact loads the trained impact-model coefficient document.
// The artifact is a versioned, read-only input: loaded once per run and
// treated as an immutable value object from then on.
package artifact

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/okian/hooprate/internal/domain/impact"
)

// interceptKey is stored inside the coefficient map by the training job.
const interceptKey = "intercept"

// document mirrors the artifact's JSON layout.
type document struct {
	ModelVersion   string                `json:"model_version"`
	Coefficients   map[string]float64    `json:"coefficients"`
	LeagueAverages impact.LeagueAverages `json:"league_averages"`
}

// Load reads and validates the coefficient artifact at path.
func Load(path string) (impact.Coefficients, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return impact.Coefficients{}, fmt.Errorf("%w: %v", ErrRead, err)
	}
	return Parse(raw)
}

// Parse decodes an artifact document from raw JSON.
func Parse(raw []byte) (impact.Coefficients, error) {
	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return impact.Coefficients{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if len(doc.Coefficients) == 0 {
		return impact.Coefficients{}, fmt.Errorf("%w: no coefficients", ErrMalformed)
	}
	intercept, ok := doc.Coefficients[interceptKey]
	if !ok {
		return impact.Coefficients{}, fmt.Errorf("%w: missing intercept", ErrMalformed)
	}

	weights := make(map[string]float64, len(doc.Coefficients)-1)
	for key, w := range doc.Coefficients {
		if key == interceptKey {
			continue
		}
		weights[key] = w
	}

	return impact.Coefficients{
		ModelVersion:   doc.ModelVersion,
		Intercept:      intercept,
		Weights:        weights,
		LeagueAverages: doc.LeagueAverages,
	}, nil
}
