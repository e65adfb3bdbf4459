package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/quantify-ai/quantify-go/internal/montecarlo"
)

// MonteCarloHandler serves the simulation endpoints. All of them delegate to
// a shared Engine; request bodies map one-to-one onto engine requests.
type MonteCarloHandler struct {
	engine *montecarlo.Engine
	log    *logrus.Entry
}

func NewMonteCarloHandler(engine *montecarlo.Engine, log *logrus.Entry) *MonteCarloHandler {
	return &MonteCarloHandler{engine: engine, log: log}
}

type PiRequest struct {
	SimulationCount int    `json:"simulation_count"`
	Seed            uint64 `json:"seed"`
}

// Simulate runs a formula-driven simulation over user-declared random
// variables.
func (h *MonteCarloHandler) Simulate(c *gin.Context) {
	var req montecarlo.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	if req.SimulationCount == 0 {
		req.SimulationCount = 10000
	}

	result, err := h.engine.Run(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	h.log.WithFields(logrus.Fields{
		"formula":     req.Formula,
		"simulations": result.SimulationCount,
	}).Debug("Simulation finished")
	c.JSON(http.StatusOK, simulationResponse{Success: true, Result: result})
}

// Pi estimates pi by scattering points over the unit square.
func (h *MonteCarloHandler) Pi(c *gin.Context) {
	var req PiRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	if req.SimulationCount == 0 {
		req.SimulationCount = 10000
	}

	result, err := h.engine.EstimatePi(c.Request.Context(), req.SimulationCount, req.Seed)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, piResponse{Success: true, PiResult: result})
}

// Integral estimates a definite integral of a user expression by rejection
// sampling.
func (h *MonteCarloHandler) Integral(c *gin.Context) {
	req := montecarlo.IntegralRequest{XMax: 1, Function: "x**2", SimulationCount: 10000}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.engine.EstimateIntegral(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, integralResponse{Success: true, IntegralResult: result})
}

// Queue simulates repeated runs of a single-server queue.
func (h *MonteCarloHandler) Queue(c *gin.Context) {
	req := montecarlo.QueueRequest{
		NumPeople:       20,
		ArrivalMax:      10,
		ServiceMin:      1,
		ServiceMax:      3,
		SimulationCount: 1000,
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.engine.SimulateQueue(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, queueResponse{Success: true, QueueResult: result})
}

type simulationResponse struct {
	Success bool `json:"success"`
	*montecarlo.Result
}

type piResponse struct {
	Success bool `json:"success"`
	*montecarlo.PiResult
}

type integralResponse struct {
	Success bool `json:"success"`
	*montecarlo.IntegralResult
}

type queueResponse struct {
	Success bool `json:"success"`
	*montecarlo.QueueResult
}
