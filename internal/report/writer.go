package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/quantoak/nightscan/internal/contracts"
	"github.com/quantoak/nightscan/pkg/logger"
)

// LatestFile is the stable JSON artifact name the dashboard boundary reads.
const LatestFile = "latest.json"

// Writer emits the per-cycle CSV and JSON artifacts into the report
// directory. The dashboard and notification collaborators read only these
// files; they never call into the pipeline.
type Writer struct {
	dir    string
	logger *logger.Logger
}

// NewWriter creates a report writer rooted at dir, creating it if needed.
func NewWriter(dir string, log *logger.Logger) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create report dir %s: %w", dir, err)
	}
	return &Writer{dir: dir, logger: log}, nil
}

// WriteCSV writes the ranked per-instrument report. Scored rows come first,
// ordered by score descending; skipped instruments follow with their reason
// so omissions stay auditable. Beta columns follow the factor list order.
func (w *Writer) WriteCSV(report *contracts.CycleReport, factors []string) (string, error) {
	path := filepath.Join(w.dir, fmt.Sprintf("report_%s.csv", report.CycleID))

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create csv report: %w", err)
	}
	defer file.Close()

	cw := csv.NewWriter(file)

	header := []string{
		"symbol", "sector", "status", "skip_reason",
		"opportunity_score", "direction", "confidence",
		"liquidity", "momentum", "rsi", "volatility", "sector_score",
		"sentiment_score", "sentiment_weight",
	}
	for _, factor := range factors {
		header = append(header, "beta_"+factor)
	}
	header = append(header, "regulatory", "sector_risk", "timestamp")
	if err := cw.Write(header); err != nil {
		return "", fmt.Errorf("write csv header: %w", err)
	}

	for _, outcome := range rankedOutcomes(report.Outcomes) {
		if err := cw.Write(w.row(outcome, factors, report)); err != nil {
			return "", fmt.Errorf("write csv row %s: %w", outcome.Symbol, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return "", fmt.Errorf("flush csv report: %w", err)
	}

	w.logger.WithFields(map[string]interface{}{
		"path": path,
		"rows": len(report.Outcomes),
	}).Info("CSV report written")

	return path, nil
}

// WriteJSON writes the machine-consumable summary twice: once under the
// cycle ID for history, once as the stable latest.json the dashboard reads.
func (w *Writer) WriteJSON(report *contracts.CycleReport) (string, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal json report: %w", err)
	}

	path := filepath.Join(w.dir, fmt.Sprintf("report_%s.json", report.CycleID))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write json report: %w", err)
	}
	if err := os.WriteFile(filepath.Join(w.dir, LatestFile), data, 0o644); err != nil {
		return "", fmt.Errorf("write latest report: %w", err)
	}

	w.logger.WithField("path", path).Info("JSON report written")
	return path, nil
}

// LatestPath returns the stable artifact path served by the report API.
func (w *Writer) LatestPath() string {
	return filepath.Join(w.dir, LatestFile)
}

// rankedOutcomes sorts scored instruments by score descending, then appends
// skipped instruments in their original order.
func rankedOutcomes(outcomes []contracts.InstrumentOutcome) []contracts.InstrumentOutcome {
	scored := make([]contracts.InstrumentOutcome, 0, len(outcomes))
	skipped := make([]contracts.InstrumentOutcome, 0)
	for _, o := range outcomes {
		if o.Scored() {
			scored = append(scored, o)
		} else {
			skipped = append(skipped, o)
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Opportunity.Score > scored[j].Opportunity.Score
	})

	return append(scored, skipped...)
}

func (w *Writer) row(outcome contracts.InstrumentOutcome, factors []string, report *contracts.CycleReport) []string {
	timestamp := report.FinishedAt.UTC().Format("2006-01-02T15:04:05Z")

	if !outcome.Scored() {
		row := []string{outcome.Symbol, outcome.Sector, "skipped", outcome.SkipReason}
		for i := 0; i < 10+len(factors); i++ {
			row = append(row, "")
		}
		return append(row, "", "", timestamp)
	}

	row := []string{
		outcome.Symbol,
		outcome.Sector,
		"scored",
		"",
		formatFloat(outcome.Opportunity.Score),
		string(outcome.Prediction.Direction),
		formatFloat(outcome.Prediction.Confidence),
		formatFloat(outcome.Validation.SubScores.Liquidity),
		formatFloat(outcome.Validation.SubScores.Momentum),
		formatFloat(outcome.Validation.SubScores.RSI),
		formatFloat(outcome.Validation.SubScores.Volatility),
		formatFloat(outcome.Validation.SubScores.Sector),
		formatFloat(outcome.Sentiment.Score),
		formatFloat(outcome.Sentiment.TotalWeight),
	}

	betas := make(map[string]float64)
	for _, beta := range outcome.Betas {
		if beta.Valid() {
			betas[beta.Factor] = beta.Beta
		}
	}
	for _, factor := range factors {
		if beta, ok := betas[factor]; ok {
			row = append(row, formatFloat(beta))
		} else {
			row = append(row, "NaN")
		}
	}

	return append(row,
		strconv.FormatBool(outcome.Opportunity.Regulatory),
		string(outcome.Opportunity.SectorRisk),
		timestamp,
	)
}

func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return strconv.FormatFloat(v, 'f', 4, 64)
}
