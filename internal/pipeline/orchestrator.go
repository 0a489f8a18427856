package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/quantoak/nightscan/internal/contracts"
	"github.com/quantoak/nightscan/internal/ensemble"
	"github.com/quantoak/nightscan/internal/factorview"
	"github.com/quantoak/nightscan/internal/opportunity"
	"github.com/quantoak/nightscan/internal/report"
	"github.com/quantoak/nightscan/internal/scanner"
	"github.com/quantoak/nightscan/internal/universe"
	"github.com/quantoak/nightscan/pkg/logger"
)

// ErrCycleInFlight means a new cycle was requested while a previous one is
// still scanning or scoring. Cycles never overlap.
var ErrCycleInFlight = errors.New("a scan cycle is already in flight")

// skipReasonCancelled marks symbols that were never dispatched because the
// cycle was cancelled mid-scan.
const skipReasonCancelled = "cycle_cancelled"

// HistoryFetcher is the fetcher surface the orchestrator and its workers use.
type HistoryFetcher interface {
	FetchHistory(ctx context.Context, symbol string, windowDays int) (contracts.Series, string, error)
}

// SentimentScorer aggregates news sentiment for one symbol.
type SentimentScorer interface {
	ScoreSentiment(ctx context.Context, symbol string, lookback time.Duration) (contracts.SentimentResult, error)
}

// BiasProvider supplies the cycle-wide market regime.
type BiasProvider interface {
	GetMarketBias(ctx context.Context) (contracts.MarketBias, error)
}

// BetaComputer fits the per-factor macro betas for one instrument.
type BetaComputer interface {
	ComputeBetas(ctx context.Context, symbol string, history contracts.Series) []contracts.BetaRecord
}

// CycleStore persists finished cycles. Optional.
type CycleStore interface {
	SaveCycle(ctx context.Context, report *contracts.CycleReport) error
}

// Options tune a cycle run.
type Options struct {
	Workers           int
	HistoryWindowDays int
	SentimentLookback time.Duration
}

// DefaultOptions returns the documented defaults: a deliberately small pool
// so the shared rate budget is not burned by parallelism.
func DefaultOptions() Options {
	return Options{
		Workers:           3,
		HistoryWindowDays: 120,
		SentimentLookback: 72 * time.Hour,
	}
}

// Orchestrator sequences one scan cycle across the instrument universe:
// Idle -> FetchingMarketRegime -> ScanningInstruments -> Scoring ->
// BuildingFactorView -> ReportReady -> Idle. Individual instrument failures
// are recorded and skipped; only the market-regime fetch aborts a cycle.
type Orchestrator struct {
	cfg       *universe.Config
	opts      Options
	fetcher   HistoryFetcher
	scanner   *scanner.Scanner
	sentiment SentimentScorer
	regime    BiasProvider
	predictor *ensemble.Predictor
	scorer    *opportunity.Scorer
	betas     BetaComputer
	writer    *report.Writer
	store     CycleStore // nil when persistence is disabled
	logger    *logger.Logger

	mu      sync.Mutex
	state   State
	running bool

	now       func() time.Time
	stateHook func(State) // test observation point
}

// New wires an orchestrator. store may be nil.
func New(
	cfg *universe.Config,
	opts Options,
	fetcher HistoryFetcher,
	scan *scanner.Scanner,
	sentiment SentimentScorer,
	regime BiasProvider,
	predictor *ensemble.Predictor,
	scorer *opportunity.Scorer,
	betas BetaComputer,
	writer *report.Writer,
	store CycleStore,
	log *logger.Logger,
) *Orchestrator {
	if opts.Workers < 1 {
		opts.Workers = DefaultOptions().Workers
	}
	return &Orchestrator{
		cfg:       cfg,
		opts:      opts,
		fetcher:   fetcher,
		scanner:   scan,
		sentiment: sentiment,
		regime:    regime,
		predictor: predictor,
		scorer:    scorer,
		betas:     betas,
		writer:    writer,
		store:     store,
		logger:    log,
		state:     StateIdle,
		now:       time.Now,
	}
}

// State returns the current cycle phase.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

func (o *Orchestrator) setState(s State) {
	o.mu.Lock()
	o.state = s
	hook := o.stateHook
	o.mu.Unlock()

	o.logger.WithField("state", string(s)).Info("Pipeline state")
	if hook != nil {
		hook(s)
	}
}

// RunCycle executes one full scan cycle and returns its report. It fails
// fast when a cycle is already in flight, when the universe is empty, or
// when the market-regime fetch fails.
func (o *Orchestrator) RunCycle(ctx context.Context) (*contracts.CycleReport, error) {
	o.mu.Lock()
	if o.running {
		o.mu.Unlock()
		return nil, ErrCycleInFlight
	}
	o.running = true
	o.mu.Unlock()

	defer func() {
		o.mu.Lock()
		o.running = false
		o.mu.Unlock()
		o.setState(StateIdle)
	}()

	symbols := o.cfg.Symbols()
	if len(symbols) == 0 {
		return nil, errors.New("universe has no symbols")
	}

	startedAt := o.now()
	cycle := &contracts.CycleReport{
		CycleID:   startedAt.UTC().Format("20060102-1504"),
		StartedAt: startedAt,
		Universe:  len(symbols),
	}

	o.logger.WithFields(map[string]interface{}{
		"cycle_id": cycle.CycleID,
		"universe": len(symbols),
		"workers":  o.opts.Workers,
	}).Info("Scan cycle started")

	o.setState(StateFetchingMarketRegime)
	bias, err := o.regime.GetMarketBias(ctx)
	if err != nil {
		return nil, fmt.Errorf("cycle %s aborted: %w", cycle.CycleID, err)
	}
	cycle.MarketBias = bias

	o.setState(StateScanningInstruments)
	outcomes := o.scanUniverse(ctx, symbols, bias)

	o.setState(StateScoring)
	o.scoreOutcomes(outcomes, bias)

	o.setState(StateBuildingFactorView)
	view := factorview.BuildView(outcomes)
	cycle.FactorView = &view
	cycle.Outcomes = outcomes
	for _, outcome := range outcomes {
		if outcome.Scored() {
			cycle.Scored++
		} else {
			cycle.SkippedSize++
		}
	}
	cycle.FinishedAt = o.now()

	if err := o.emit(ctx, cycle); err != nil {
		return nil, err
	}

	o.setState(StateReportReady)
	o.logger.WithFields(map[string]interface{}{
		"cycle_id": cycle.CycleID,
		"scored":   cycle.Scored,
		"skipped":  cycle.SkippedSize,
		"duration": cycle.FinishedAt.Sub(cycle.StartedAt),
	}).Info("Scan cycle finished")

	return cycle, nil
}

// scanUniverse fans the universe out across the worker pool. Each worker
// performs fetch, validation, sentiment, prediction, and betas for one
// instrument; no worker failure blocks the cycle. On cancellation the queue
// stops but in-flight instruments are allowed to finish so the cache stays
// consistent.
func (o *Orchestrator) scanUniverse(ctx context.Context, symbols []string, bias contracts.MarketBias) []contracts.InstrumentOutcome {
	type job struct {
		index  int
		symbol string
	}

	outcomes := make([]contracts.InstrumentOutcome, len(symbols))
	jobs := make(chan job)

	// In-flight work drains on shutdown instead of being killed.
	workCtx := context.WithoutCancel(ctx)

	var wg sync.WaitGroup
	for w := 0; w < o.opts.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				outcomes[j.index] = o.processInstrument(workCtx, j.symbol, bias)
			}
		}()
	}

dispatch:
	for i, symbol := range symbols {
		select {
		case <-ctx.Done():
			o.logger.WithField("remaining", len(symbols)-i).Warn("Cycle cancelled, draining in-flight instruments")
			break dispatch
		case jobs <- job{index: i, symbol: symbol}:
		}
	}
	close(jobs)
	wg.Wait()

	// Symbols never dispatched become auditable skips.
	for i, outcome := range outcomes {
		if outcome.Symbol == "" {
			outcomes[i] = contracts.InstrumentOutcome{
				Symbol:     symbols[i],
				Sector:     o.cfg.SectorOf(symbols[i]),
				Skipped:    true,
				SkipReason: skipReasonCancelled,
			}
		}
	}

	return outcomes
}

// processInstrument runs the per-instrument stages. Every failure is caught
// here and converted into a recorded outcome.
func (o *Orchestrator) processInstrument(ctx context.Context, symbol string, bias contracts.MarketBias) contracts.InstrumentOutcome {
	sector := o.cfg.SectorOf(symbol)
	outcome := contracts.InstrumentOutcome{
		Symbol: symbol,
		Sector: sector,
	}

	history, provider, err := o.fetcher.FetchHistory(ctx, symbol, o.opts.HistoryWindowDays)
	if err != nil {
		o.logger.WithError(err).WithField("symbol", symbol).Warn("Instrument skipped, data unavailable")
		outcome.Skipped = true
		outcome.SkipReason = "data_unavailable"
		return outcome
	}

	validation := o.scanner.ValidateAndScore(symbol, sector, history)
	outcome.Validation = &validation
	if !validation.Passed {
		outcome.Skipped = true
		outcome.SkipReason = string(validation.Reason)
		return outcome
	}

	sentiment, err := o.sentiment.ScoreSentiment(ctx, symbol, o.opts.SentimentLookback)
	if err != nil {
		// A dead news feed degrades to neutral sentiment, it does not skip
		// the instrument.
		o.logger.WithError(err).WithField("symbol", symbol).Warn("Sentiment unavailable, using neutral")
		sentiment = contracts.SentimentResult{Symbol: symbol}
	}
	outcome.Sentiment = &sentiment

	prediction := o.predictor.Predict(symbol, history, validation.RawScore, sentiment, bias)
	outcome.Prediction = &prediction

	outcome.Betas = o.betas.ComputeBetas(ctx, symbol, history)

	o.logger.WithFields(map[string]interface{}{
		"symbol":   symbol,
		"provider": provider,
		"raw":      validation.RawScore,
	}).Debug("Instrument processed")

	return outcome
}

// scoreOutcomes is the scoring phase: pass 1 per instrument, then the
// single-threaded sector-risk pass over all pass-1 results.
func (o *Orchestrator) scoreOutcomes(outcomes []contracts.InstrumentOutcome, bias contracts.MarketBias) {
	var scored []contracts.OpportunityScore
	var indices []int

	for i, outcome := range outcomes {
		if outcome.Skipped || outcome.Validation == nil || outcome.Prediction == nil {
			continue
		}
		score := o.scorer.Score(*outcome.Validation, *outcome.Prediction, *outcome.Sentiment, bias)
		scored = append(scored, score)
		indices = append(indices, i)
	}

	scored = o.scorer.ApplySectorRisk(scored)
	for pos, i := range indices {
		score := scored[pos]
		outcomes[i].Opportunity = &score
	}
}

// emit writes the artifacts and, when configured, persists the cycle.
func (o *Orchestrator) emit(ctx context.Context, cycle *contracts.CycleReport) error {
	var factors []string
	for _, f := range o.cfg.Beta.Factors {
		factors = append(factors, f.Name)
	}

	if _, err := o.writer.WriteCSV(cycle, factors); err != nil {
		return fmt.Errorf("cycle %s: %w", cycle.CycleID, err)
	}
	if _, err := o.writer.WriteJSON(cycle); err != nil {
		return fmt.Errorf("cycle %s: %w", cycle.CycleID, err)
	}

	if o.store != nil {
		if err := o.store.SaveCycle(context.WithoutCancel(ctx), cycle); err != nil {
			// History persistence is best effort; the artifacts are the
			// system of record.
			o.logger.WithError(err).Error("Failed to persist cycle history")
		}
	}

	return nil
}
