package pipeline

// State is the orchestrator's cycle phase.
type State string

const (
	StateIdle                 State = "Idle"
	StateFetchingMarketRegime State = "FetchingMarketRegime"
	StateScanningInstruments  State = "ScanningInstruments"
	StateScoring              State = "Scoring"
	StateBuildingFactorView   State = "BuildingFactorView"
	StateReportReady          State = "ReportReady"
)
