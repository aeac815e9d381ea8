package config

import (
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"strings"

	"github.com/pkg/errors"

	"github.com/hailam/chessplay/internal/engine"
)

// Agent kinds
const (
	KindRandom     = "random"
	KindMinimax    = "minimax"
	KindExpectimax = "expectimax"
	KindQ          = "q"
	KindParallel   = "parallel"
)

// ErrUnknownAgent is returned for an agent kind with no implementation.
var ErrUnknownAgent = errors.New("unknown agent")

// AgentConfig holds the construction parameters of one agent. Fields that
// do not apply to the kind are ignored.
type AgentConfig struct {
	Kind string `json:"kind"`
	Name string `json:"name"` // display name, and q-value store name by default

	// Search
	Depth          int      `json:"depth"`
	Heuristic      string   `json:"heuristic"`
	Alpha          *float64 `json:"alpha,omitempty"` // nil means -Inf
	Beta           *float64 `json:"beta,omitempty"`  // nil means +Inf
	StalemateScore float64  `json:"stalemate_score"`
	Workers        int      `json:"workers"`    // parallel only; 0 uses GOMAXPROCS
	CacheSize      int64    `json:"cache_size"` // evaluation cache entries; 0 disables
	AvoidRepeats   bool     `json:"avoid_repeats"`

	// Learning
	Store       string  `json:"store"` // defaults to Name
	ExploreRate float64 `json:"explore_rate"`
	LearnRate   float64 `json:"learn_rate"`
	Discount    float64 `json:"discount"`
}

// DefaultAgentConfig returns a depth-2 material minimax agent with the
// default learning parameters filled in.
func DefaultAgentConfig() AgentConfig {
	q := engine.DefaultQConfig("")
	return AgentConfig{
		Kind:           KindMinimax,
		Depth:          2,
		Heuristic:      engine.EvalMaterial,
		StalemateScore: engine.DefaultStalemateScore,
		ExploreRate:    q.ExploreRate,
		LearnRate:      q.LearnRate,
		Discount:       q.Discount,
	}
}

// UnmarshalJSON decodes an agent on top of DefaultAgentConfig, so omitted
// fields keep their defaults.
func (a *AgentConfig) UnmarshalJSON(data []byte) error {
	type plain AgentConfig
	p := plain(DefaultAgentConfig())
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*a = AgentConfig(p)
	return nil
}

// String returns the name, or a description of the agent.
func (a AgentConfig) String() string {
	if a.Name != "" {
		return a.Name
	}
	switch a.Kind {
	case KindRandom, KindQ:
		return a.Kind
	}
	return fmt.Sprintf("%s-%d-%s", a.Kind, a.Depth, a.Heuristic)
}

func (a AgentConfig) store() string {
	if a.Store != "" {
		return a.Store
	}
	return a.String()
}

// Validate checks the parameters relevant to the kind.
func (a AgentConfig) Validate() error {
	switch a.Kind {
	case KindRandom:
		return nil
	case KindMinimax, KindExpectimax, KindParallel:
		if a.Depth < 1 {
			return errors.Wrapf(ErrInvalidConfig, "depth must be positive, got %d", a.Depth)
		}
		if _, err := engine.EvaluatorByName(a.Heuristic); err != nil {
			return errors.Wrap(ErrInvalidConfig, err.Error())
		}
		if alpha, beta := bound(a.Alpha, math.Inf(-1)), bound(a.Beta, math.Inf(1)); alpha >= beta {
			return errors.Wrapf(ErrInvalidConfig, "alpha %v must be below beta %v", alpha, beta)
		}
		if a.Workers < 0 || a.CacheSize < 0 {
			return errors.Wrap(ErrInvalidConfig, "workers and cache_size must not be negative")
		}
		return nil
	case KindQ:
		if !inUnit(a.ExploreRate) || !inUnit(a.LearnRate) || !inUnit(a.Discount) {
			return errors.Wrapf(ErrInvalidConfig, "learning rates must be in [0,1]: explore %v learn %v discount %v",
				a.ExploreRate, a.LearnRate, a.Discount)
		}
		if strings.ContainsAny(a.store(), `/\`) {
			return errors.Wrapf(ErrInvalidConfig, "store name %q", a.store())
		}
		return nil
	}
	return errors.Wrapf(ErrUnknownAgent, "%q", a.Kind)
}

// QConfig returns the learning parameters of a q agent.
func (a AgentConfig) QConfig() engine.QConfig {
	return engine.QConfig{
		Name:        a.store(),
		ExploreRate: a.ExploreRate,
		LearnRate:   a.LearnRate,
		Discount:    a.Discount,
	}
}

// NewAgent builds the configured agent. store backs learning agents and
// may be nil; rng drives random choices and may be nil.
func (a AgentConfig) NewAgent(store engine.QStore, rng *rand.Rand) (engine.Agent, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}

	switch a.Kind {
	case KindRandom:
		return engine.NewRandomAgent(rng), nil
	case KindQ:
		q, err := engine.NewQAgent(a.QConfig(), store, rng)
		if err != nil {
			return nil, err
		}
		return q, nil
	}

	eval, err := a.evaluator()
	if err != nil {
		return nil, err
	}

	switch a.Kind {
	case KindExpectimax:
		ex := engine.NewExpectimaxAgent(a.Depth, eval)
		ex.StalemateScore = a.StalemateScore
		return ex, nil
	case KindParallel:
		return engine.NewParallelAgent(a.minimax(eval), a.Workers), nil
	}
	return a.minimax(eval), nil
}

func (a AgentConfig) evaluator() (engine.Evaluator, error) {
	eval, err := engine.EvaluatorByName(a.Heuristic)
	if err != nil {
		return nil, err
	}
	if a.CacheSize <= 0 {
		return eval, nil
	}
	cached, err := engine.NewCached(eval, a.CacheSize)
	if err != nil {
		return nil, err
	}
	return cached, nil
}

func (a AgentConfig) minimax(eval engine.Evaluator) *engine.MinimaxAgent {
	mm := engine.NewMinimaxAgent(a.Depth, eval)
	mm.Alpha = bound(a.Alpha, mm.Alpha)
	mm.Beta = bound(a.Beta, mm.Beta)
	mm.StalemateScore = a.StalemateScore
	if a.AvoidRepeats {
		mm.Guard = engine.NewRepetitionGuard()
	}
	return mm
}
