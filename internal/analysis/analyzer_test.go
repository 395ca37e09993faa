package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/epivet/epivet-go/internal/conf"
	"github.com/epivet/epivet-go/internal/errors"
	"github.com/epivet/epivet-go/internal/ledger"
	"github.com/epivet/epivet-go/internal/risk"
)

// fakeRecorder captures persisted records and can simulate store failures.
type fakeRecorder struct {
	saved   []risk.Record
	saveErr error
}

func (f *fakeRecorder) Save(record *risk.Record) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, *record)
	return nil
}

func newTestAnalyzer(store Recorder) (*Analyzer, *ledger.Ledger) {
	history := ledger.New(0)
	return New(conf.DefaultSettings(), history, store), history
}

func TestAnalyze_AppendsToHistory(t *testing.T) {
	recorder := &fakeRecorder{}
	analyzer, history := newTestAnalyzer(recorder)

	record, err := analyzer.Analyze(
		[]risk.Detection{{Label: "chicken", Confidence: 0.8}},
		nil,
		risk.HSVMeans{Hue: 35, Saturation: 0.7, Value: 0.5})
	require.NoError(t, err)

	assert.NotEmpty(t, record.ID)
	assert.False(t, record.Timestamp.IsZero())
	assert.Equal(t, risk.HighRisk, record.RiskLevel)

	require.Equal(t, 1, history.Len())
	last, ok := history.Last()
	require.True(t, ok)
	assert.Equal(t, record.ID, last.ID)

	require.Len(t, recorder.saved, 1)
	assert.Equal(t, record.ID, recorder.saved[0].ID)
}

func TestAnalyze_UniqueIDs(t *testing.T) {
	analyzer, _ := newTestAnalyzer(nil)
	hsv := risk.HSVMeans{Hue: 90, Saturation: 0.4, Value: 0.5}

	first, err := analyzer.Analyze(nil, nil, hsv)
	require.NoError(t, err)
	second, err := analyzer.Analyze(nil, nil, hsv)
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
}

func TestAnalyze_RejectedInputNeverRecorded(t *testing.T) {
	recorder := &fakeRecorder{}
	analyzer, history := newTestAnalyzer(recorder)

	record, err := analyzer.Analyze(nil, nil, risk.HSVMeans{Hue: -5, Saturation: 0.5, Value: 0.5})
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
	assert.Nil(t, record)

	assert.Zero(t, history.Len())
	assert.Empty(t, recorder.saved)
}

func TestAnalyze_StoreFailureIsNotFatal(t *testing.T) {
	recorder := &fakeRecorder{saveErr: errors.NewStd("disk full")}
	analyzer, history := newTestAnalyzer(recorder)

	record, err := analyzer.Analyze(nil, nil, risk.HSVMeans{Hue: 90, Saturation: 0.4, Value: 0.5})
	require.NoError(t, err)
	require.NotNil(t, record)

	// The in-memory ledger stays authoritative.
	assert.Equal(t, 1, history.Len())
}

func TestAnalyze_NilStore(t *testing.T) {
	analyzer, history := newTestAnalyzer(nil)

	_, err := analyzer.Analyze(nil, nil, risk.HSVMeans{Hue: 90, Saturation: 0.4, Value: 0.5})
	require.NoError(t, err)
	assert.Equal(t, 1, history.Len())
}
