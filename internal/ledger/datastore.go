// datastore.go: sqlite persistence for analysis records
package ledger

import (
	"encoding/json"
	"log"
	"log/slog"
	"path/filepath"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/epivet/epivet-go/internal/errors"
	"github.com/epivet/epivet-go/internal/logging"
	"github.com/epivet/epivet-go/internal/risk"
)

// Package-level logger specific to the datastore
var (
	logger          *slog.Logger
	serviceLevelVar = new(slog.LevelVar)
	closeLogger     func() error
)

func init() {
	var err error
	logFilePath := filepath.Join("logs", "datastore.log")
	serviceLevelVar.Set(slog.LevelInfo)

	logger, closeLogger, err = logging.NewFileLogger(logFilePath, "datastore", serviceLevelVar)
	if err != nil {
		log.Printf("Failed to initialize datastore file logger at %s: %v. Service logging disabled.", logFilePath, err)
		logger = logging.NewDiscardLogger("datastore", serviceLevelVar)
		closeLogger = func() error { return nil }
	}
}

// analysisRecord is the gorm entity for one persisted analysis.
type analysisRecord struct {
	ID               uint   `gorm:"column:id;primaryKey;autoIncrement"`
	RecordID         string `gorm:"index"`
	Timestamp        time.Time
	RiskLevel        string
	Probability      float64
	AvianFluRisk     float64
	HueMean          float64
	SaturationMean   float64
	ValueMean        float64
	HueAlert         bool
	SaturationAlert  bool
	DetectedObjects  string // JSON encoded []risk.Detection
	DetectedFeatures string // JSON encoded []risk.Classification
	Advisory         string
}

// Store persists analysis records to a sqlite database.
type Store struct {
	path string
	db   *gorm.DB
}

// NewStore creates a store for the given sqlite database path. Open must be
// called before use.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Open initializes the database connection and runs migrations.
func (s *Store) Open() error {
	db, err := gorm.Open(sqlite.Open(s.path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return errors.Newf("failed to open sqlite database: %w", err).
			Category(errors.CategoryDatabase).
			Context("path", s.path).
			Component("datastore").
			Build()
	}

	if err := db.AutoMigrate(&analysisRecord{}); err != nil {
		return errors.Newf("failed to migrate analysis records table: %w", err).
			Category(errors.CategoryDatabase).
			Component("datastore").
			Build()
	}

	s.db = db
	logger.Info("sqlite datastore opened", "path", s.path)
	return nil
}

// Close releases the database connection and the service log file.
func (s *Store) Close() error {
	if s.db != nil {
		if sqlDB, err := s.db.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				logger.Error("failed to close sqlite database", "error", err)
			}
		}
	}
	if closeLogger != nil {
		return closeLogger()
	}
	return nil
}

// Save persists one analysis record.
func (s *Store) Save(record *risk.Record) error {
	objects, err := json.Marshal(record.DetectedObjects)
	if err != nil {
		return errors.Newf("failed to encode detected objects: %w", err).
			Category(errors.CategoryDatabase).
			Component("datastore").
			Build()
	}
	features, err := json.Marshal(record.DetectedFeatures)
	if err != nil {
		return errors.Newf("failed to encode detected features: %w", err).
			Category(errors.CategoryDatabase).
			Component("datastore").
			Build()
	}

	entity := analysisRecord{
		RecordID:         record.ID,
		Timestamp:        record.Timestamp,
		RiskLevel:        string(record.RiskLevel),
		Probability:      record.Probability,
		AvianFluRisk:     record.AvianFluRisk,
		HueMean:          record.HueMean,
		SaturationMean:   record.SaturationMean,
		ValueMean:        record.ValueMean,
		HueAlert:         record.HueAlert,
		SaturationAlert:  record.SaturationAlert,
		DetectedObjects:  string(objects),
		DetectedFeatures: string(features),
		Advisory:         record.Advisory,
	}

	if err := s.db.Create(&entity).Error; err != nil {
		return errors.Newf("failed to save analysis record: %w", err).
			Category(errors.CategoryDatabase).
			Context("record_id", record.ID).
			Component("datastore").
			Build()
	}

	logger.Debug("analysis record saved",
		"record_id", record.ID,
		"risk_level", record.RiskLevel,
		"probability", record.Probability)
	return nil
}

// GetAll returns every persisted record ordered by insertion.
func (s *Store) GetAll() ([]risk.Record, error) {
	var entities []analysisRecord
	if err := s.db.Order("id asc").Find(&entities).Error; err != nil {
		return nil, errors.Newf("failed to load analysis records: %w", err).
			Category(errors.CategoryDatabase).
			Component("datastore").
			Build()
	}

	records := make([]risk.Record, 0, len(entities))
	for i := range entities {
		record, err := entities[i].toRecord()
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

func (ar *analysisRecord) toRecord() (risk.Record, error) {
	var objects []risk.Detection
	if ar.DetectedObjects != "" {
		if err := json.Unmarshal([]byte(ar.DetectedObjects), &objects); err != nil {
			return risk.Record{}, errors.Newf("failed to decode detected objects: %w", err).
				Category(errors.CategoryDatabase).
				Context("record_id", ar.RecordID).
				Component("datastore").
				Build()
		}
	}
	var features []risk.Classification
	if ar.DetectedFeatures != "" {
		if err := json.Unmarshal([]byte(ar.DetectedFeatures), &features); err != nil {
			return risk.Record{}, errors.Newf("failed to decode detected features: %w", err).
				Category(errors.CategoryDatabase).
				Context("record_id", ar.RecordID).
				Component("datastore").
				Build()
		}
	}

	return risk.Record{
		ID:               ar.RecordID,
		Timestamp:        ar.Timestamp,
		RiskLevel:        risk.RiskLevel(ar.RiskLevel),
		Probability:      ar.Probability,
		AvianFluRisk:     ar.AvianFluRisk,
		HueMean:          ar.HueMean,
		SaturationMean:   ar.SaturationMean,
		ValueMean:        ar.ValueMean,
		HueAlert:         ar.HueAlert,
		SaturationAlert:  ar.SaturationAlert,
		DetectedObjects:  objects,
		DetectedFeatures: features,
		Advisory:         ar.Advisory,
	}, nil
}
