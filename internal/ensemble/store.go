package ensemble

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/quantoak/nightscan/pkg/logger"
)

// ModelWeights is one trained sequence-model artifact, stored per symbol as
// a JSON file named <symbol>.json in the model directory.
type ModelWeights struct {
	Symbol       string    `json:"symbol"`
	Coefficients []float64 `json:"coefficients"` // applied to daily returns, newest first
	Intercept    float64   `json:"intercept"`
	TrainedAt    time.Time `json:"trained_at"`
}

// ModelStore reads trained artifacts by symbol key. Absence of an artifact
// is not an error; the predictor falls back to the trend signal.
type ModelStore struct {
	dir    string
	logger *logger.Logger
}

// NewStore creates a model store over a directory of per-symbol artifacts.
func NewStore(dir string, log *logger.Logger) *ModelStore {
	return &ModelStore{
		dir:    dir,
		logger: log,
	}
}

// Load returns the trained weights for a symbol. The second return is false
// when no artifact exists for the symbol.
func (s *ModelStore) Load(symbol string) (*ModelWeights, bool, error) {
	path := filepath.Join(s.dir, symbol+".json")

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read model artifact %s: %w", path, err)
	}

	var weights ModelWeights
	if err := json.Unmarshal(data, &weights); err != nil {
		return nil, false, fmt.Errorf("parse model artifact %s: %w", path, err)
	}
	if len(weights.Coefficients) == 0 {
		return nil, false, fmt.Errorf("model artifact %s has no coefficients", path)
	}

	s.logger.WithFields(map[string]interface{}{
		"symbol":     symbol,
		"trained_at": weights.TrainedAt,
	}).Debug("Loaded sequence model artifact")

	return &weights, true, nil
}
