package cp

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Status is the outcome of a solve call. Values follow the CP-SAT numbering.
type Status int

const (
	StatusUnknown Status = iota
	StatusModelInvalid
	StatusFeasible
	StatusInfeasible
	StatusOptimal
)

func (s Status) String() string {
	switch s {
	case StatusModelInvalid:
		return "MODEL_INVALID"
	case StatusFeasible:
		return "FEASIBLE"
	case StatusInfeasible:
		return "INFEASIBLE"
	case StatusOptimal:
		return "OPTIMAL"
	default:
		return "UNKNOWN"
	}
}

// HasSolution reports whether values can be read back.
func (s Status) HasSolution() bool {
	return s == StatusOptimal || s == StatusFeasible
}

// ParseStatus converts a status name back to a Status.
func ParseStatus(name string) (Status, error) {
	for _, s := range []Status{StatusUnknown, StatusModelInvalid, StatusFeasible, StatusInfeasible, StatusOptimal} {
		if s.String() == name {
			return s, nil
		}
	}
	return StatusUnknown, fmt.Errorf("unknown status %q", name)
}

// Solver solves a model. Implementations must not modify the model.
type Solver interface {
	Solve(ctx context.Context, m *Model) (*Solution, error)
}

// ErrSolverUnavailable is returned when no solver can be invoked.
var ErrSolverUnavailable = errors.New("solver unavailable")

// SolverError reports a failure of the solver itself, as opposed to a model
// without solution.
type SolverError struct {
	Op  string
	Err error
}

func (e *SolverError) Error() string {
	return fmt.Sprintf("solver %s: %v", e.Op, e.Err)
}

func (e *SolverError) Unwrap() error { return e.Err }

// Stats summarises a search.
type Stats struct {
	Branches  int64         `json:"branches"`
	Failures  int64         `json:"failures"`
	WallTime  time.Duration `json:"wall_time"`
	Worker    int           `json:"worker"`
	Workers   int           `json:"workers"`
	Variables int           `json:"variables"`
}

// Solution holds the status and, when available, one value per variable.
type Solution struct {
	Status Status
	Stats  Stats
	values []int64
}

// NewSolution builds a solution from a status and a value per model variable.
func NewSolution(status Status, values []int64) *Solution {
	return &Solution{Status: status, values: values}
}

// Value returns the assigned value of v. It is zero when the status has no
// solution.
func (s *Solution) Value(v IntVar) int64 {
	if s == nil || v.index < 0 || v.index >= len(s.values) {
		return 0
	}
	return s.values[v.index]
}

// Config tunes the bundled engine.
type Config struct {
	// Workers is the number of portfolio search goroutines.
	Workers int `json:"workers"`
	// TimeLimitMS bounds the wall time of a solve. Zero means no limit.
	TimeLimitMS int `json:"time_limit_ms"`
	// MaxBranches bounds the number of branches per worker. Zero means no limit.
	MaxBranches int64 `json:"max_branches"`
	// Seed drives the randomised value order of extra workers.
	Seed int64 `json:"seed"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.Workers == 0 {
		c.Workers = 1
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("solver workers must be positive, got %d", c.Workers)
	}
	if c.TimeLimitMS < 0 {
		return fmt.Errorf("solver time_limit_ms must not be negative")
	}
	if c.MaxBranches < 0 {
		return fmt.Errorf("solver max_branches must not be negative")
	}
	return nil
}

// TimeLimit returns the configured limit as a duration.
func (c Config) TimeLimit() time.Duration {
	return time.Duration(c.TimeLimitMS) * time.Millisecond
}
