package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Get returns the environment value or the fallback when unset.
func Get(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// GetInt returns the environment value parsed as int, or the fallback
// when unset or unparsable.
func GetInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// Solver holds the tunables of the routing core. Values load from an
// optional YAML file and can be overridden per-field via environment.
type Solver struct {
	TimeLimitSeconds int `yaml:"time_limit_seconds"`
	MatrixWorkers    int `yaml:"matrix_workers"`
	FixedVehicleCost int `yaml:"fixed_vehicle_cost"`
	ServiceTimeMin   int `yaml:"service_time_min"`
	WaitingSlackMin  int `yaml:"waiting_slack_min"`
	DayStartMin      int `yaml:"day_start_min"`
}

// DefaultSolver matches the production tuning of the dispatch planner.
func DefaultSolver() Solver {
	return Solver{
		TimeLimitSeconds: 30,
		MatrixWorkers:    10,
		FixedVehicleCost: 10000,
		ServiceTimeMin:   15,
		WaitingSlackMin:  30,
		DayStartMin:      480,
	}
}

// TimeLimit returns the solver wall-clock budget as a duration.
func (s Solver) TimeLimit() time.Duration {
	return time.Duration(s.TimeLimitSeconds) * time.Second
}

// LoadSolver reads the tuning file when path is non-empty, then applies
// environment overrides. A missing file is not an error; a malformed
// one is.
func LoadSolver(path string) (Solver, error) {
	s := DefaultSolver()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err == nil {
			if err := yaml.Unmarshal(raw, &s); err != nil {
				return Solver{}, fmt.Errorf("load solver config: parse %q: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return Solver{}, fmt.Errorf("load solver config: read %q: %w", path, err)
		}
	}

	s.TimeLimitSeconds = GetInt("SOLVER_TIME_LIMIT_SECONDS", s.TimeLimitSeconds)
	s.MatrixWorkers = GetInt("MATRIX_WORKERS", s.MatrixWorkers)
	s.FixedVehicleCost = GetInt("SOLVER_FIXED_VEHICLE_COST", s.FixedVehicleCost)
	s.ServiceTimeMin = GetInt("SOLVER_SERVICE_TIME_MIN", s.ServiceTimeMin)
	s.WaitingSlackMin = GetInt("SOLVER_WAITING_SLACK_MIN", s.WaitingSlackMin)
	s.DayStartMin = GetInt("SOLVER_DAY_START_MIN", s.DayStartMin)

	if s.TimeLimitSeconds <= 0 {
		return Solver{}, fmt.Errorf("load solver config: time limit must be positive, got %d", s.TimeLimitSeconds)
	}
	if s.MatrixWorkers <= 0 {
		return Solver{}, fmt.Errorf("load solver config: matrix workers must be positive, got %d", s.MatrixWorkers)
	}

	return s, nil
}
