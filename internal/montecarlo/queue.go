package montecarlo

import (
	"context"
	"sort"

	"golang.org/x/exp/rand"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/montanaflynn/stats"
	"github.com/quantify-ai/quantify-go/internal/numeric"
	"github.com/quantify-ai/quantify-go/internal/validation"
)

type QueueRequest struct {
	NumPeople       int     `json:"num_people"`
	ArrivalMin      float64 `json:"arrival_min"`
	ArrivalMax      float64 `json:"arrival_max"`
	ServiceMin      float64 `json:"service_min"`
	ServiceMax      float64 `json:"service_max"`
	SimulationCount int     `json:"simulation_count"`
	Seed            uint64  `json:"seed"`
}

type WaitingStats struct {
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
	Median float64 `json:"median"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

type SpreadStats struct {
	Mean float64 `json:"mean"`
	Std  float64 `json:"std"`
}

type QueueChart struct {
	WaitingTimeHistogram numeric.Histogram `json:"waiting_time_histogram"`
}

type QueueResult struct {
	SimulationCount int          `json:"simulation_count"`
	WaitingTime     WaitingStats `json:"waiting_time"`
	ServiceTime     SpreadStats  `json:"service_time"`
	EmptyTime       SpreadStats  `json:"empty_time"`
	ChartData       QueueChart   `json:"chart_data"`
}

// SimulateQueue runs the single-server queueing scenario SimulationCount
// independent times and aggregates waiting, service and idle time samples
// across repetitions. Repetitions run in parallel; each derives its own RNG
// source from the request seed, so results are reproducible.
func (e *Engine) SimulateQueue(ctx context.Context, req QueueRequest) (*QueueResult, error) {
	if req.NumPeople < QueueMinPeople || req.NumPeople > QueueMaxPeople {
		return nil, validation.Errorf("num_people must be between %d and %d", QueueMinPeople, QueueMaxPeople)
	}
	if req.SimulationCount < QueueMinReps || req.SimulationCount > QueueMaxReps {
		return nil, validation.Errorf("simulation count must be between %d and %d", QueueMinReps, QueueMaxReps)
	}
	if req.ArrivalMax <= req.ArrivalMin {
		return nil, validation.Errorf("arrival_max must be greater than arrival_min")
	}
	if req.ServiceMax <= req.ServiceMin {
		return nil, validation.Errorf("service_max must be greater than service_min")
	}

	reps := req.SimulationCount
	people := req.NumPeople
	seed := effectiveSeed(req.Seed)

	waiting := make([]float64, reps*people)
	service := make([]float64, reps*people)
	idle := make([]float64, reps*people)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for rep := 0; rep < reps; rep++ {
		rep := rep
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			offset := rep * people
			runQueueRepetition(
				rand.NewSource(seed+uint64(rep)+1),
				req,
				waiting[offset:offset+people],
				service[offset:offset+people],
				idle[offset:offset+people],
			)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	waitMean, _ := stats.Mean(waiting)
	waitStd, _ := stats.StandardDeviationPopulation(waiting)
	waitMedian, _ := stats.Median(waiting)
	waitMin, _ := stats.Min(waiting)
	waitMax, _ := stats.Max(waiting)
	serviceMean, _ := stats.Mean(service)
	serviceStd, _ := stats.StandardDeviationPopulation(service)
	idleMean, _ := stats.Mean(idle)
	idleStd, _ := stats.StandardDeviationPopulation(idle)

	return &QueueResult{
		SimulationCount: reps,
		WaitingTime: WaitingStats{
			Mean:   numeric.Round(waitMean, 4),
			Std:    numeric.Round(waitStd, 4),
			Median: numeric.Round(waitMedian, 4),
			Min:    numeric.Round(waitMin, 4),
			Max:    numeric.Round(waitMax, 4),
		},
		ServiceTime: SpreadStats{
			Mean: numeric.Round(serviceMean, 4),
			Std:  numeric.Round(serviceStd, 4),
		},
		EmptyTime: SpreadStats{
			Mean: numeric.Round(idleMean, 4),
			Std:  numeric.Round(idleStd, 4),
		},
		ChartData: QueueChart{WaitingTimeHistogram: numeric.NewHistogram(waiting)},
	}, nil
}

// runQueueRepetition simulates one pass of the scenario: arrivals sorted in
// time order flow through a single server; a person's service starts at
// max(arrival, server free time).
func runQueueRepetition(src rand.Source, req QueueRequest, waiting, service, idle []float64) {
	people := req.NumPeople
	arrivalDist := distuv.Uniform{Min: req.ArrivalMin, Max: req.ArrivalMax, Src: src}
	serviceDist := distuv.Uniform{Min: req.ServiceMin, Max: req.ServiceMax, Src: src}

	arrivals := make([]float64, people)
	for i := range arrivals {
		arrivals[i] = arrivalDist.Rand()
	}
	sort.Float64s(arrivals)
	for i := range service {
		service[i] = serviceDist.Rand()
	}

	current := 0.0
	for i := 0; i < people; i++ {
		if arrivals[i] > current {
			idle[i] = arrivals[i] - current
			current = arrivals[i]
		} else {
			idle[i] = 0
		}
		start := current
		waiting[i] = start - arrivals[i]
		current = start + service[i]
	}
}
