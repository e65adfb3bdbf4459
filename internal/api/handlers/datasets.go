package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/quantify-ai/quantify-go/internal/dataset"
	"github.com/quantify-ai/quantify-go/internal/validation"
)

// DatasetHandler manages the in-process dataset registry: direct
// registration and aggregation of already registered datasets.
type DatasetHandler struct {
	registry *dataset.MemoryProvider
	log      *logrus.Entry
}

func NewDatasetHandler(registry *dataset.MemoryProvider, log *logrus.Entry) *DatasetHandler {
	return &DatasetHandler{registry: registry, log: log}
}

type RegisterRequest struct {
	ID     string           `json:"id"`
	Name   string           `json:"name"`
	Fields []string         `json:"fields"`
	Rows   []map[string]any `json:"rows"`
}

type AggregateRequest struct {
	DatasetIDs    []string `json:"dataset_ids"`
	AggregateType string   `json:"aggregate_type"`
}

// Register stores a dataset in the registry, assigning an identifier when
// the caller supplies none.
func (h *DatasetHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	if len(req.Fields) == 0 {
		respondError(c, validation.Errorf("at least 1 field is required"))
		return
	}
	if req.ID == "" {
		req.ID = uuid.New().String()
	}
	if req.Name == "" {
		req.Name = req.ID
	}

	ds := &dataset.Dataset{ID: req.ID, Name: req.Name, Fields: req.Fields, Rows: req.Rows}
	h.registry.Put(ds)
	h.log.WithFields(logrus.Fields{
		"dataset_id": ds.ID,
		"rows":       ds.Len(),
	}).Info("Dataset registered")

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"id":      ds.ID,
		"name":    ds.Name,
		"fields":  ds.Fields,
		"rows":    ds.Len(),
	})
}

// Aggregate combines registered datasets with the requested strategy and
// registers the combination as a new dataset.
func (h *DatasetHandler) Aggregate(c *gin.Context) {
	var req AggregateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	if len(req.DatasetIDs) < 2 {
		respondError(c, validation.Errorf("at least 2 datasets are required"))
		return
	}

	datasets := make([]*dataset.Dataset, 0, len(req.DatasetIDs))
	used := make([]gin.H, 0, len(req.DatasetIDs))
	for _, id := range req.DatasetIDs {
		ds, err := h.registry.Dataset(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		datasets = append(datasets, ds)
		used = append(used, gin.H{"id": ds.ID, "name": ds.Name})
	}

	combined, err := dataset.Combine(datasets, req.AggregateType)
	if err != nil {
		respondError(c, err)
		return
	}
	combined.ID = uuid.New().String()
	h.registry.Put(combined)

	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"aggregate_type": req.AggregateType,
		"datasets_used":  used,
		"id":             combined.ID,
		"name":           combined.Name,
		"fields":         combined.Fields,
		"rows":           combined.Rows,
	})
}
