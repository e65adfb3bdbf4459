package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/quantify-ai/quantify-go/internal/correlation"
	"github.com/quantify-ai/quantify-go/internal/dataset"
	"github.com/quantify-ai/quantify-go/internal/validation"
)

const (
	defaultMultiThreshold   = 0.7
	defaultExploreThreshold = 0.8
)

// CorrelationHandler serves the single-dataset matrix endpoint and the
// cross-dataset discovery endpoints.
type CorrelationHandler struct {
	datasets dataset.Provider
	log      *logrus.Entry
}

func NewCorrelationHandler(datasets dataset.Provider, log *logrus.Entry) *CorrelationHandler {
	return &CorrelationHandler{datasets: datasets, log: log}
}

type CorrelationRequest struct {
	DatasetID string   `json:"dataset_id"`
	Fields    []string `json:"fields"`
}

type FieldRef struct {
	DatasetID string `json:"dataset_id"`
	FieldName string `json:"field_name"`
}

type MultiCorrelationRequest struct {
	Fields               []FieldRef `json:"fields"`
	CorrelationMethod    string     `json:"correlation_method"`
	CorrelationThreshold *float64   `json:"correlation_threshold"`
}

// FieldInfo describes one resolved cross-dataset field in responses.
type FieldInfo struct {
	DatasetID   string `json:"dataset_id"`
	DatasetName string `json:"dataset_name"`
	FieldName   string `json:"field_name"`
	UniqueName  string `json:"unique_name"`
}

type correlationChart struct {
	X      []string    `json:"x"`
	Y      []string    `json:"y"`
	Values [][]float64 `json:"values"`
}

// Correlate computes the Pearson matrix over fields of a single dataset.
func (h *CorrelationHandler) Correlate(c *gin.Context) {
	var req CorrelationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	if len(req.Fields) < 2 {
		respondError(c, validation.Errorf("at least 2 fields are required"))
		return
	}

	ds, err := h.datasets.Dataset(c.Request.Context(), req.DatasetID)
	if err != nil {
		respondError(c, err)
		return
	}

	fields := make([]correlation.Field, 0, len(req.Fields))
	for _, name := range req.Fields {
		values, present, err := dataset.Column(ds, name)
		if err != nil {
			respondError(c, err)
			return
		}
		fields = append(fields, correlation.Field{Name: name, Values: values, Present: present})
	}

	matrix, _, err := correlation.Matrix(fields, correlation.MethodPearson)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":            true,
		"fields":             req.Fields,
		"correlation_matrix": matrix,
		"chart_data":         correlationChart{X: req.Fields, Y: req.Fields, Values: matrix},
	})
}

// MultiCorrelate builds a correlation matrix over fields drawn from several
// datasets and reports the pairs above the threshold.
func (h *CorrelationHandler) MultiCorrelate(c *gin.Context) {
	var req MultiCorrelationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	threshold := defaultMultiThreshold
	if req.CorrelationThreshold != nil {
		threshold = *req.CorrelationThreshold
	}

	info, fields, method, err := h.resolveFields(c, req.Fields, req.CorrelationMethod)
	if err != nil {
		respondError(c, err)
		return
	}

	matrix, _, err := correlation.Matrix(fields, method)
	if err != nil {
		respondError(c, err)
		return
	}

	names := uniqueNames(info)
	pairs, _ := correlation.HighPairs(names, matrix, threshold)

	c.JSON(http.StatusOK, gin.H{
		"success":               true,
		"fields":                info,
		"correlation_method":    method,
		"correlation_threshold": threshold,
		"correlation_matrix":    matrix,
		"high_correlations":     pairs,
		"chart_data":            correlationChart{X: names, Y: names, Values: matrix},
	})
}

// Explore reports only the strongly correlated pairs across datasets,
// without the full matrix. Meant for wide scans over many fields.
func (h *CorrelationHandler) Explore(c *gin.Context) {
	var req MultiCorrelationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	threshold := defaultExploreThreshold
	if req.CorrelationThreshold != nil {
		threshold = *req.CorrelationThreshold
	}

	info, fields, method, err := h.resolveFields(c, req.Fields, req.CorrelationMethod)
	if err != nil {
		respondError(c, err)
		return
	}

	matrix, _, err := correlation.Matrix(fields, method)
	if err != nil {
		respondError(c, err)
		return
	}

	pairs, totalPairs := correlation.HighPairs(uniqueNames(info), matrix, threshold)
	correlation.SortByStrength(pairs)

	c.JSON(http.StatusOK, gin.H{
		"success":                true,
		"fields":                 info,
		"correlation_method":     method,
		"correlation_threshold":  threshold,
		"high_correlation_pairs": pairs,
		"total_pairs":            totalPairs,
		"high_correlation_count": len(pairs),
	})
}

// resolveFields fetches every referenced dataset column and labels it with a
// name unique across datasets.
func (h *CorrelationHandler) resolveFields(c *gin.Context, refs []FieldRef, method string) ([]FieldInfo, []correlation.Field, string, error) {
	if len(refs) < 2 {
		return nil, nil, "", validation.Errorf("at least 2 fields are required")
	}
	if method == "" {
		method = correlation.MethodPearson
	}

	info := make([]FieldInfo, 0, len(refs))
	fields := make([]correlation.Field, 0, len(refs))
	for _, ref := range refs {
		ds, err := h.datasets.Dataset(c.Request.Context(), ref.DatasetID)
		if err != nil {
			return nil, nil, "", err
		}
		values, present, err := dataset.Column(ds, ref.FieldName)
		if err != nil {
			return nil, nil, "", err
		}
		unique := fmt.Sprintf("%s-%s", ds.Name, ref.FieldName)
		info = append(info, FieldInfo{
			DatasetID:   ref.DatasetID,
			DatasetName: ds.Name,
			FieldName:   ref.FieldName,
			UniqueName:  unique,
		})
		fields = append(fields, correlation.Field{Name: unique, Values: values, Present: present})
	}
	return info, fields, method, nil
}

func uniqueNames(info []FieldInfo) []string {
	names := make([]string, len(info))
	for i, f := range info {
		names[i] = f.UniqueName
	}
	return names
}
