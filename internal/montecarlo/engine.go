package montecarlo

import (
	"context"
	"math"
	"sort"

	"github.com/montanaflynn/stats"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/quantify-ai/quantify-go/internal/formula"
	"github.com/quantify-ai/quantify-go/internal/numeric"
	"github.com/quantify-ai/quantify-go/internal/validation"
)

// Simulation count bounds per simulator.
const (
	GenericMinCount = 100
	GenericMaxCount = 100000
	PointMinCount   = 100
	PointMaxCount   = 1000000
	QueueMinPeople  = 1
	QueueMaxPeople  = 100
	QueueMinReps    = 10
	QueueMaxReps    = 10000
)

// Engine runs simulations with bounded intra-request parallelism. It holds
// no per-request state; one Engine serves all requests.
type Engine struct {
	workers   int
	batchSize int
	log       *logrus.Entry
}

func NewEngine(workers, batchSize int, log *logrus.Entry) *Engine {
	if workers < 1 {
		workers = 1
	}
	if batchSize < 1 {
		batchSize = 1024
	}
	return &Engine{workers: workers, batchSize: batchSize, log: log}
}

// Request describes a generic formula-driven simulation.
type Request struct {
	Variables       []Variable `json:"variables"`
	Formula         string     `json:"formula"`
	SimulationCount int        `json:"simulation_count"`
	Seed            uint64     `json:"seed"`
}

type ResultStats struct {
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
	Median float64 `json:"median"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	P5     float64 `json:"p5"`
	P95    float64 `json:"p95"`
}

type Sensitivity struct {
	Variable string  `json:"variable"`
	Impact   float64 `json:"impact"`
}

type HistogramChart struct {
	Histogram numeric.Histogram `json:"histogram"`
}

type Result struct {
	SimulationCount     int                   `json:"simulation_count"`
	ResultStats         ResultStats           `json:"result_stats"`
	ConfidenceIntervals map[string][2]float64 `json:"confidence_intervals"`
	ChartData           HistogramChart        `json:"chart_data"`
	SensitivityAnalysis []Sensitivity         `json:"sensitivity_analysis"`
}

// Run draws every variable, evaluates the formula once per draw index and
// summarizes the finite results. Draws whose evaluation fails or produces a
// non-finite value are excluded, never retried.
func (e *Engine) Run(ctx context.Context, req Request) (*Result, error) {
	if req.SimulationCount < GenericMinCount || req.SimulationCount > GenericMaxCount {
		return nil, validation.Errorf("simulation count must be between %d and %d", GenericMinCount, GenericMaxCount)
	}
	if len(req.Variables) == 0 {
		return nil, validation.Errorf("at least 1 simulation variable is required")
	}

	names := make([]string, len(req.Variables))
	seen := make(map[string]bool, len(req.Variables))
	for i, v := range req.Variables {
		if v.Name == "" {
			return nil, validation.Errorf("variable %d has no name", i)
		}
		if seen[v.Name] {
			return nil, validation.Errorf("duplicate variable name '%s'", v.Name)
		}
		seen[v.Name] = true
		names[i] = v.Name
	}

	program, err := formula.Compile(req.Formula, names)
	if err != nil {
		return nil, err
	}

	// Variables are drawn sequentially from one source so a fixed seed
	// reproduces the exact draw sequence regardless of worker count.
	src := newSource(req.Seed)
	n := req.SimulationCount
	draws := make([][]float64, len(req.Variables))
	for i, v := range req.Variables {
		draws[i], err = v.sample(src, n)
		if err != nil {
			return nil, err
		}
	}

	results := make([]float64, n)
	if err := e.evaluateBatches(ctx, program, draws, results); err != nil {
		return nil, err
	}

	finite := make([]float64, 0, n)
	finiteMask := make([]bool, n)
	for i, v := range results {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			finite = append(finite, v)
			finiteMask[i] = true
		}
	}
	if len(finite) == 0 {
		return nil, validation.Errorf("no valid simulation results; check the formula")
	}
	if e.log != nil && len(finite) < n {
		e.log.WithFields(logrus.Fields{
			"requested": n,
			"valid":     len(finite),
		}).Warn("some simulation draws produced invalid results")
	}

	return &Result{
		SimulationCount: len(finite),
		ResultStats:     summarize(finite),
		ConfidenceIntervals: map[string][2]float64{
			"95%": {
				numeric.Round(numeric.Percentile(finite, 2.5), 4),
				numeric.Round(numeric.Percentile(finite, 97.5), 4),
			},
			"99%": {
				numeric.Round(numeric.Percentile(finite, 0.5), 4),
				numeric.Round(numeric.Percentile(finite, 99.5), 4),
			},
		},
		ChartData:           HistogramChart{Histogram: numeric.NewHistogram(finite)},
		SensitivityAnalysis: e.sensitivity(req.Variables, draws, finite, finiteMask),
	}, nil
}

// evaluateBatches splits draw indices into batches across the worker pool.
// Each batch writes a disjoint slice of results, so no locking is needed;
// the context is checked once per batch.
func (e *Engine) evaluateBatches(ctx context.Context, program *formula.Program, draws [][]float64, results []float64) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	n := len(results)
	for start := 0; start < n; start += e.batchSize {
		end := start + e.batchSize
		if end > n {
			end = n
		}
		start, end := start, end
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			values := make([]float64, len(draws))
			for i := start; i < end; i++ {
				for j := range draws {
					values[j] = draws[j][i]
				}
				results[i] = program.Eval(values)
			}
			return nil
		})
	}
	return g.Wait()
}

// sensitivity ranks variables by the absolute correlation between their
// finite-aligned draws and the finite results.
func (e *Engine) sensitivity(variables []Variable, draws [][]float64, finite []float64, finiteMask []bool) []Sensitivity {
	out := make([]Sensitivity, 0, len(variables))
	for i, v := range variables {
		aligned := make([]float64, 0, len(finite))
		for idx, ok := range finiteMask {
			if ok {
				aligned = append(aligned, draws[i][idx])
			}
		}
		impact := 0.0
		if r, err := stats.Pearson(aligned, finite); err == nil && !math.IsNaN(r) {
			impact = math.Abs(r)
		}
		out = append(out, Sensitivity{Variable: v.Name, Impact: numeric.Round(impact, 4)})
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].Impact > out[b].Impact })
	return out
}

// summarize computes the generic result statistics over the finite subset.
// Spread uses the population standard deviation, matching the established
// response contract.
func summarize(finite []float64) ResultStats {
	mean, _ := stats.Mean(finite)
	std, _ := stats.StandardDeviationPopulation(finite)
	median, _ := stats.Median(finite)
	min, _ := stats.Min(finite)
	max, _ := stats.Max(finite)
	return ResultStats{
		Mean:   numeric.Round(mean, 4),
		Std:    numeric.Round(std, 4),
		Median: numeric.Round(median, 4),
		Min:    numeric.Round(min, 4),
		Max:    numeric.Round(max, 4),
		P5:     numeric.Round(numeric.Percentile(finite, 5), 4),
		P95:    numeric.Round(numeric.Percentile(finite, 95), 4),
	}
}
