package engine

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"
)

//go:embed model/priority_model.json
var defaultModelArtifact []byte

// Predictor scores an encoded feature vector. The scheduler treats it as
// opaque apart from the optional feature importances.
type Predictor interface {
	Predict(features []float64) float64

	// FeatureImportances returns the per-feature importance vector, or nil
	// when the artifact does not carry one.
	FeatureImportances() []float64
}

// modelArtifact is the on-disk shape of a trained priority model.
type modelArtifact struct {
	Version            string    `json:"version"`
	Bias               float64   `json:"bias"`
	Weights            []float64 `json:"weights"`
	FeatureImportances []float64 `json:"feature_importances"`
}

// LinearPredictor is a linear scorer loaded from a JSON artifact.
type LinearPredictor struct {
	version     string
	bias        float64
	weights     []float64
	importances []float64
}

// Predict returns bias + weights·features.
func (p *LinearPredictor) Predict(features []float64) float64 {
	score := p.bias
	n := len(features)
	if len(p.weights) < n {
		n = len(p.weights)
	}
	for i := 0; i < n; i++ {
		score += p.weights[i] * features[i]
	}
	return score
}

// FeatureImportances returns the importance vector, or nil.
func (p *LinearPredictor) FeatureImportances() []float64 {
	return p.importances
}

// Version returns the artifact version tag.
func (p *LinearPredictor) Version() string { return p.version }

func parseArtifact(data []byte) (*LinearPredictor, error) {
	var art modelArtifact
	if err := json.Unmarshal(data, &art); err != nil {
		return nil, fmt.Errorf("invalid model artifact: %w", err)
	}
	if len(art.Weights) != FeatureCount {
		return nil, fmt.Errorf("model artifact has %d weights, want %d", len(art.Weights), FeatureCount)
	}
	if len(art.FeatureImportances) != 0 && len(art.FeatureImportances) != FeatureCount {
		return nil, fmt.Errorf("model artifact has %d importances, want %d", len(art.FeatureImportances), FeatureCount)
	}
	return &LinearPredictor{
		version:     art.Version,
		bias:        art.Bias,
		weights:     art.Weights,
		importances: art.FeatureImportances,
	}, nil
}

// ModelLoader loads and caches the predictor artifact. The cached handle is
// immutable after load and safe for concurrent use; Reload forces a re-read.
type ModelLoader struct {
	path string

	mu     sync.Mutex
	cached *LinearPredictor
}

// NewModelLoader creates a loader. An empty path means the embedded default
// artifact.
func NewModelLoader(path string) *ModelLoader {
	return &ModelLoader{path: path}
}

// Load returns the cached predictor, reading the artifact on first use.
func (l *ModelLoader) Load() (*LinearPredictor, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cached != nil {
		return l.cached, nil
	}
	return l.loadLocked()
}

// Reload discards the cache and re-reads the artifact.
func (l *ModelLoader) Reload() (*LinearPredictor, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loadLocked()
}

func (l *ModelLoader) loadLocked() (*LinearPredictor, error) {
	data := defaultModelArtifact
	if l.path != "" {
		read, err := os.ReadFile(l.path)
		if err != nil {
			return nil, fmt.Errorf("failed to read model artifact: %w", err)
		}
		data = read
	}
	p, err := parseArtifact(data)
	if err != nil {
		return nil, err
	}
	l.cached = p
	return p, nil
}

// ModelConfidence is the sum of the top-3 feature importances, or nil when
// the artifact carries none.
func ModelConfidence(p Predictor) *float64 {
	imp := p.FeatureImportances()
	if len(imp) == 0 {
		return nil
	}
	sorted := make([]float64, len(imp))
	copy(sorted, imp)
	sort.Sort(sort.Reverse(sort.Float64Slice(sorted)))
	sum := 0.0
	for i := 0; i < 3 && i < len(sorted); i++ {
		sum += sorted[i]
	}
	return &sum
}

// TopFeatures returns feature indices sorted by importance descending,
// truncated to the top three. Empty when the artifact carries no
// importances.
func TopFeatures(p Predictor) []int {
	imp := p.FeatureImportances()
	if len(imp) == 0 {
		return nil
	}
	idx := make([]int, len(imp))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return imp[idx[a]] > imp[idx[b]]
	})
	if len(idx) > 3 {
		idx = idx[:3]
	}
	return idx
}
