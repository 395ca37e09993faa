package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/epivet/epivet-go/internal/advisory"
	"github.com/epivet/epivet-go/internal/epidemic"
	"github.com/epivet/epivet-go/internal/errors"
	"github.com/epivet/epivet-go/internal/intervention"
	"github.com/epivet/epivet-go/internal/risk"
	"github.com/epivet/epivet-go/internal/species"
)

// GetSpecies returns the registered species profiles.
func (c *Controller) GetSpecies(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, species.All())
}

// SimulateRequest is the JSON body of a simulation request. Omitted
// parameters fall back to the configured defaults.
type SimulateRequest struct {
	Species string                `json:"species,omitempty"`
	Params  *epidemic.Parameters  `json:"params,omitempty"`
	Env     *epidemic.Environment `json:"env,omitempty"`
	Days    int                   `json:"days,omitempty"`
}

// resolve merges the request with configured defaults into one concrete
// parameter set.
func (r *SimulateRequest) resolve(c *Controller) (epidemic.Parameters, epidemic.Environment, int, error) {
	s := c.Settings

	params := s.SimulationParameters()
	if r.Species != "" {
		profile, err := species.Get(r.Species)
		if err != nil {
			return epidemic.Parameters{}, epidemic.Environment{}, 0, err
		}
		params.Beta = profile.Beta
		params.Gamma = profile.Gamma
	}
	if r.Params != nil {
		params = *r.Params
	}

	env := s.Environment()
	if r.Env != nil {
		env = *r.Env
	}

	days := s.Simulation.Days
	if r.Days != 0 {
		days = r.Days
	}

	return params, env, days, nil
}

// SimulateResponse carries the simulated series plus derived summary values.
type SimulateResponse struct {
	Result             epidemic.Result    `json:"result"`
	R0                 float64            `json:"r0"`
	PeakInfected       epidemic.DayRecord `json:"peak_infected"`
	FinalRecoveredRate float64            `json:"final_recovered_rate"`
}

// Simulate runs the SIR simulator with the requested parameters.
func (c *Controller) Simulate(ctx echo.Context) error {
	var req SimulateRequest
	if err := ctx.Bind(&req); err != nil {
		return c.HandleError(ctx, err, "invalid request body", http.StatusBadRequest)
	}

	params, env, days, err := req.resolve(c)
	if err != nil {
		return c.HandleError(ctx, err, "unknown species", http.StatusNotFound)
	}

	result, err := epidemic.Simulate(params, env, days)
	if err != nil {
		if errors.IsValidation(err) {
			return c.HandleError(ctx, err, "invalid simulation parameters", http.StatusBadRequest)
		}
		return c.HandleError(ctx, err, "simulation failed", http.StatusInternalServerError)
	}

	return ctx.JSON(http.StatusOK, SimulateResponse{
		Result:             result,
		R0:                 params.R0(),
		PeakInfected:       result.PeakInfected(),
		FinalRecoveredRate: result.FinalRecoveredRate(params.Population),
	})
}

// GetInterventionCatalog returns the fixed control measure catalog.
func (c *Controller) GetInterventionCatalog(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, intervention.Catalog())
}

// InterventionRequest is the JSON body of an intervention evaluation request.
type InterventionRequest struct {
	Measures []string `json:"measures"`
	SimulateRequest
}

// EvaluateInterventions evaluates a measure selection and returns the
// before/after simulation comparison.
func (c *Controller) EvaluateInterventions(ctx echo.Context) error {
	var req InterventionRequest
	if err := ctx.Bind(&req); err != nil {
		return c.HandleError(ctx, err, "invalid request body", http.StatusBadRequest)
	}

	params, env, days, err := req.resolve(c)
	if err != nil {
		return c.HandleError(ctx, err, "unknown species", http.StatusNotFound)
	}

	comparison, err := intervention.Compare(req.Measures, params, env, days)
	if err != nil {
		if errors.IsValidation(err) {
			return c.HandleError(ctx, err, "invalid parameters", http.StatusBadRequest)
		}
		return c.HandleError(ctx, err, "evaluation failed", http.StatusInternalServerError)
	}

	return ctx.JSON(http.StatusOK, comparison)
}

// AnalyzeRequest carries the typed output of the external detector and
// classifier plus the image color statistics.
type AnalyzeRequest struct {
	Detections      []risk.Detection      `json:"detections"`
	Classifications []risk.Classification `json:"classifications"`
	HSV             risk.HSVMeans         `json:"hsv"`
}

// AnalyzeSample scores one fecal sample and appends it to the history.
func (c *Controller) AnalyzeSample(ctx echo.Context) error {
	var req AnalyzeRequest
	if err := ctx.Bind(&req); err != nil {
		return c.HandleError(ctx, err, "invalid request body", http.StatusBadRequest)
	}

	record, err := c.Analyzer.Analyze(req.Detections, req.Classifications, req.HSV)
	if err != nil {
		if errors.IsValidation(err) {
			return c.HandleError(ctx, err, "invalid analysis input", http.StatusBadRequest)
		}
		return c.HandleError(ctx, err, "analysis failed", http.StatusInternalServerError)
	}

	return ctx.JSON(http.StatusOK, record)
}

// GetAnalyses returns the analysis history.
func (c *Controller) GetAnalyses(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, c.Analyzer.History().Snapshot())
}

// ExportAnalyses streams the analysis history as CSV.
func (c *Controller) ExportAnalyses(ctx echo.Context) error {
	ctx.Response().Header().Set(echo.HeaderContentType, "text/csv")
	ctx.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="analyses.csv"`)
	ctx.Response().WriteHeader(http.StatusOK)
	return c.Analyzer.History().WriteCSV(ctx.Response())
}

// AdvisoryRequest is the JSON body of an advisory request.
type AdvisoryRequest struct {
	Query string `json:"query"`
}

// AdvisoryResponse carries the advisory text.
type AdvisoryResponse struct {
	Advisory string `json:"advisory"`
}

// GetAdvisory asks the remote advisory service for a natural-language
// explanation under the current parameter snapshot.
func (c *Controller) GetAdvisory(ctx echo.Context) error {
	if c.Advisory == nil {
		err := errors.Newf("advisory service is not configured").
			Category(errors.CategoryConfiguration).
			Component("api").
			Build()
		return c.HandleError(ctx, err, "advisory disabled", http.StatusServiceUnavailable)
	}

	var req AdvisoryRequest
	if err := ctx.Bind(&req); err != nil {
		return c.HandleError(ctx, err, "invalid request body", http.StatusBadRequest)
	}
	if req.Query == "" {
		err := errors.ValidationError("query must not be empty")
		return c.HandleError(ctx, err, "empty query", http.StatusBadRequest)
	}

	snapshot := advisory.Snapshot{
		Params: c.Settings.SimulationParameters(),
		Env:    c.Settings.Environment(),
	}

	text, err := c.Advisory.GetAdvisory(ctx.Request().Context(), req.Query, snapshot)
	if err != nil {
		if errors.Is(err, advisory.ErrUnavailable) {
			return c.HandleError(ctx, err, "advisory service unavailable", http.StatusServiceUnavailable)
		}
		return c.HandleError(ctx, err, "advisory request failed", http.StatusBadGateway)
	}

	return ctx.JSON(http.StatusOK, AdvisoryResponse{Advisory: text})
}
