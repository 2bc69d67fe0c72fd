// Package saalgo is a small simulated-annealing framework. The tunep
// command uses it to search the skip-list promotion probability against a
// recorded workload, but the framework itself knows nothing about skip
// lists; any Solution can be annealed.
package saalgo

import (
	"math"
	"math/rand"
	"time"
)

// Solution is one point in the search space.
type Solution interface {
	// Clone returns a deep copy of the solution.
	Clone() Solution

	// GetCost returns the cost to minimize.
	GetCost() float64

	// GenerateNeighbor returns a perturbed copy of the solution.
	GenerateNeighbor() Solution
}

// ProgressCallback receives periodic progress reports during Run.
type ProgressCallback func(iteration, maxIterations int, temperature, bestCost, currentCost float64)

// SAConfig tunes the annealing schedule.
type SAConfig struct {
	InitialTemp      float64
	FinalTemp        float64
	CoolingRate      float64 // multiplier applied after each temperature round
	Iterations       int     // iterations per temperature
	MaxIterations    int
	RandomSeed       int64
	ProgressCallback ProgressCallback
	ProgressInterval int // report every N iterations, 0 disables
}

// DefaultConfig returns a moderate schedule for smooth cost surfaces.
func DefaultConfig() *SAConfig {
	return &SAConfig{
		InitialTemp:   1000.0,
		FinalTemp:     0.1,
		CoolingRate:   0.95,
		Iterations:    100,
		MaxIterations: 10000,
		RandomSeed:    time.Now().UnixNano(),
	}
}

// SimulatedAnnealing runs the annealing loop and remembers the best
// solution seen.
type SimulatedAnnealing struct {
	config     *SAConfig
	rng        *rand.Rand
	bestSol    Solution
	bestCost   float64
	iterations int
}

// NewSimulatedAnnealing builds an annealer; a nil config takes the
// defaults.
func NewSimulatedAnnealing(config *SAConfig) *SimulatedAnnealing {
	if config == nil {
		config = DefaultConfig()
	}
	return &SimulatedAnnealing{
		config: config,
		rng:    rand.New(rand.NewSource(config.RandomSeed)),
	}
}

// Run anneals from initialSolution and returns the best solution found and
// its cost.
func (sa *SimulatedAnnealing) Run(initialSolution Solution) (Solution, float64) {
	currentSol := initialSolution.Clone()
	currentCost := currentSol.GetCost()

	sa.bestSol = currentSol.Clone()
	sa.bestCost = currentCost

	temperature := sa.config.InitialTemp

	for temperature > sa.config.FinalTemp && sa.iterations < sa.config.MaxIterations {
		for i := 0; i < sa.config.Iterations; i++ {
			neighborSol := currentSol.GenerateNeighbor()
			neighborCost := neighborSol.GetCost()

			if sa.shouldAccept(neighborCost-currentCost, temperature) {
				currentSol = neighborSol
				currentCost = neighborCost
				if currentCost < sa.bestCost {
					sa.bestSol = currentSol.Clone()
					sa.bestCost = currentCost
				}
			}

			sa.iterations++
			if sa.config.ProgressCallback != nil && sa.config.ProgressInterval > 0 &&
				sa.iterations%sa.config.ProgressInterval == 0 {
				sa.config.ProgressCallback(sa.iterations, sa.config.MaxIterations, temperature, sa.bestCost, currentCost)
			}
			if sa.iterations >= sa.config.MaxIterations {
				break
			}
		}
		temperature *= sa.config.CoolingRate
	}

	return sa.bestSol, sa.bestCost
}

// shouldAccept applies the Metropolis criterion.
func (sa *SimulatedAnnealing) shouldAccept(deltaCost, temperature float64) bool {
	if deltaCost < 0 {
		return true
	}
	return sa.rng.Float64() < math.Exp(-deltaCost/temperature)
}

// GetBestSolution returns the best solution seen so far.
func (sa *SimulatedAnnealing) GetBestSolution() Solution { return sa.bestSol }

// GetBestCost returns the cost of the best solution seen so far.
func (sa *SimulatedAnnealing) GetBestCost() float64 { return sa.bestCost }

// GetIterations returns how many iterations have run.
func (sa *SimulatedAnnealing) GetIterations() int { return sa.iterations }

// Reset clears the annealer state so it can run again.
func (sa *SimulatedAnnealing) Reset() {
	sa.bestSol = nil
	sa.bestCost = 0
	sa.iterations = 0
}
