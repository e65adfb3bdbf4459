package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/quantify-ai/quantify-go/internal/config"
	"github.com/quantify-ai/quantify-go/internal/dataset"
	"github.com/quantify-ai/quantify-go/internal/descriptive"
	"github.com/quantify-ai/quantify-go/internal/distfit"
	"github.com/quantify-ai/quantify-go/internal/regression"
	"github.com/quantify-ai/quantify-go/internal/validation"
)

// AnalysisHandler serves the per-field statistical endpoints: descriptive
// statistics, distribution fitting and regression.
type AnalysisHandler struct {
	datasets dataset.Provider
	cfg      *config.Config
	log      *logrus.Entry
}

func NewAnalysisHandler(datasets dataset.Provider, cfg *config.Config, log *logrus.Entry) *AnalysisHandler {
	return &AnalysisHandler{datasets: datasets, cfg: cfg, log: log}
}

type StatisticalRequest struct {
	DatasetID string `json:"dataset_id"`
	Field     string `json:"field"`
}

type DistributionRequest struct {
	DatasetID     string   `json:"dataset_id"`
	Field         string   `json:"field"`
	Distributions []string `json:"distributions"`
	// RemoveEmpty is accepted for compatibility; the numeric series drops
	// missing and non-finite values regardless.
	RemoveEmpty *bool `json:"remove_empty"`
}

type RegressionRequest struct {
	DatasetID        string   `json:"dataset_id"`
	DependentVar     string   `json:"dependent_var"`
	IndependentVars  []string `json:"independent_vars"`
	RegressionType   string   `json:"regression_type"`
	PolynomialDegree int      `json:"polynomial_degree"`
}

// Statistical runs the descriptive sweep over one numeric field.
func (h *AnalysisHandler) Statistical(c *gin.Context) {
	var req StatisticalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	series, err := h.series(c, req.DatasetID, req.Field)
	if err != nil {
		respondError(c, err)
		return
	}

	result, err := descriptive.Analyze(series, h.cfg.Analysis.MaxShapiroN)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, statisticalResponse{Success: true, Field: req.Field, Result: result})
}

type statisticalResponse struct {
	Success bool   `json:"success"`
	Field   string `json:"field"`
	*descriptive.Result
}

// Distribution fits the requested distribution families to one field and
// ranks them by goodness of fit.
func (h *AnalysisHandler) Distribution(c *gin.Context) {
	var req DistributionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	if len(req.Distributions) == 0 {
		req.Distributions = []string{"norm", "expon", "gamma", "lognorm"}
	}

	series, err := h.series(c, req.DatasetID, req.Field)
	if err != nil {
		respondError(c, err)
		return
	}

	result, err := distfit.Analyze(series, req.Distributions)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, distributionResponse{Success: true, Field: req.Field, Result: result})
}

type distributionResponse struct {
	Success bool   `json:"success"`
	Field   string `json:"field"`
	*distfit.Result
}

// Regression fits the requested model over row-wise complete observations of
// the dependent and independent fields.
func (h *AnalysisHandler) Regression(c *gin.Context) {
	var req RegressionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	if req.RegressionType == "" {
		req.RegressionType = regression.TypeLinear
	}
	if len(req.IndependentVars) == 0 {
		respondError(c, validation.Errorf("at least 1 independent variable is required"))
		return
	}

	ds, err := h.datasets.Dataset(c.Request.Context(), req.DatasetID)
	if err != nil {
		respondError(c, err)
		return
	}

	fields := append([]string{req.DependentVar}, req.IndependentVars...)
	cols, n, err := dataset.AlignRows(ds, fields)
	if err != nil {
		respondError(c, err)
		return
	}
	h.log.WithFields(logrus.Fields{
		"dataset_id": req.DatasetID,
		"type":       req.RegressionType,
		"rows":       n,
	}).Debug("Fitting regression model")

	result, err := regression.Fit(regression.Request{
		DependentVar:     req.DependentVar,
		IndependentVars:  req.IndependentVars,
		Y:                cols[0],
		X:                cols[1:],
		Type:             req.RegressionType,
		PolynomialDegree: req.PolynomialDegree,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, regressionResponse{Success: true, Result: result})
}

type regressionResponse struct {
	Success bool `json:"success"`
	*regression.Result
}

// series fetches a dataset and coerces one field to a clean numeric series.
func (h *AnalysisHandler) series(c *gin.Context, datasetID, field string) ([]float64, error) {
	ds, err := h.datasets.Dataset(c.Request.Context(), datasetID)
	if err != nil {
		return nil, err
	}
	return dataset.NumericSeries(ds, field)
}
