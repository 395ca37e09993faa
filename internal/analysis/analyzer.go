// Package analysis runs the fecal-sample scoring pipeline and records the
// outcome in the analysis history.
package analysis

import (
	"log"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/epivet/epivet-go/internal/conf"
	"github.com/epivet/epivet-go/internal/ledger"
	"github.com/epivet/epivet-go/internal/logging"
	"github.com/epivet/epivet-go/internal/risk"
)

// Package-level logger specific to the analysis service
var (
	logger          *slog.Logger
	serviceLevelVar = new(slog.LevelVar)
)

func init() {
	var err error
	logFilePath := filepath.Join("logs", "analysis.log")
	serviceLevelVar.Set(slog.LevelInfo)

	logger, _, err = logging.NewFileLogger(logFilePath, "analysis", serviceLevelVar)
	if err != nil {
		log.Printf("Failed to initialize analysis file logger at %s: %v. Service logging disabled.", logFilePath, err)
		logger = logging.NewDiscardLogger("analysis", serviceLevelVar)
	}
}

// Recorder persists analysis records. Satisfied by *ledger.Store.
type Recorder interface {
	Save(record *risk.Record) error
}

// Analyzer scores incoming detector/classifier output and appends the
// result to the history ledger. The external detector and classifier are
// invoked by the caller; the analyzer only consumes their typed results.
type Analyzer struct {
	config  risk.Config
	history *ledger.Ledger
	store   Recorder // nil when persistence is disabled
}

// New creates an analyzer bound to the given history ledger. store may be
// nil to disable persistence.
func New(settings *conf.Settings, history *ledger.Ledger, store Recorder) *Analyzer {
	return &Analyzer{
		config:  risk.ConfigFromSettings(settings),
		history: history,
		store:   store,
	}
}

// History returns the ledger backing this analyzer.
func (a *Analyzer) History() *ledger.Ledger {
	return a.history
}

// Analyze scores one sample and appends the outcome to the ledger. A failed
// score never touches the history. Persistence failures are logged but do
// not fail the analysis; the in-memory ledger stays authoritative.
func (a *Analyzer) Analyze(detections []risk.Detection, classifications []risk.Classification, hsv risk.HSVMeans) (*risk.Record, error) {
	record, err := risk.Score(detections, classifications, hsv, a.config)
	if err != nil {
		logger.Warn("sample scoring rejected",
			"error", err,
			"hue_mean", hsv.Hue,
			"saturation_mean", hsv.Saturation)
		return nil, err
	}

	record.ID = uuid.New().String()
	record.Timestamp = time.Now()

	a.history.Append(record)

	if a.store != nil {
		if err := a.store.Save(&record); err != nil {
			logger.Error("failed to persist analysis record",
				"record_id", record.ID,
				"error", err)
		}
	}

	logger.Info("sample analyzed",
		"record_id", record.ID,
		"risk_level", record.RiskLevel,
		"probability", record.Probability,
		"risk_objects", len(record.DetectedObjects),
		"risk_features", len(record.DetectedFeatures))

	return &record, nil
}
