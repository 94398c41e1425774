package repositories

import (
	"database/sql"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type locationSeed struct {
	Code string  `yaml:"code"`
	Name string  `yaml:"name"`
	Role string  `yaml:"role"`
	Lat  float64 `yaml:"lat"`
	Lon  float64 `yaml:"lon"`
}

type vehicleSeed struct {
	Code          string  `yaml:"code"`
	MaxDistanceKm float64 `yaml:"max_distance_km"`
	MaxVisits     int     `yaml:"max_visits"`
	TimeWindow    string  `yaml:"time_window"`
}

type orderSeed struct {
	LocationCode string `yaml:"location"`
	Priority     string `yaml:"priority"`
	WindowStart  string `yaml:"window_start"`
	WindowEnd    string `yaml:"window_end"`
}

type seedFile struct {
	Locations []locationSeed `yaml:"locations"`
	Vehicles  []vehicleSeed  `yaml:"vehicles"`
	Orders    []orderSeed    `yaml:"orders"`
}

// SeedFromYAML populates locations, vehicles, and pending orders from a
// YAML fixture, for local runs and demos. Existing rows with matching
// codes are left alone.
func SeedFromYAML(db *sql.DB, yamlPath string) error {
	raw, err := os.ReadFile(yamlPath)
	if err != nil {
		return fmt.Errorf("seed: read %q: %w", yamlPath, err)
	}

	var data seedFile
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return fmt.Errorf("seed: parse yaml: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	locationIDs := make(map[string]int64, len(data.Locations))
	for i, l := range data.Locations {
		code := strings.TrimSpace(l.Code)
		if code == "" {
			return fmt.Errorf("seed: location at index %d: code cannot be empty", i)
		}

		role := l.Role
		if role == "" {
			role = "shop"
		}

		var id int64
		err := tx.QueryRow(`
		INSERT INTO locations (code, name, role, latitude, longitude, matrix_status)
		VALUES ($1, $2, $3, $4, $5, 'to_create')
		ON CONFLICT (code) DO UPDATE SET name = EXCLUDED.name
		RETURNING id;
		`, code, l.Name, role, l.Lat, l.Lon).Scan(&id)
		if err != nil {
			return fmt.Errorf("seed: insert location %q: %w", code, err)
		}
		locationIDs[code] = id
	}

	for i, v := range data.Vehicles {
		code := strings.TrimSpace(v.Code)
		if code == "" {
			return fmt.Errorf("seed: vehicle at index %d: code cannot be empty", i)
		}

		var id int64
		err := tx.QueryRow(`
		INSERT INTO vehicles (code)
		VALUES ($1)
		ON CONFLICT (code) DO UPDATE SET code = EXCLUDED.code
		RETURNING id;
		`, code).Scan(&id)
		if err != nil {
			return fmt.Errorf("seed: insert vehicle %q: %w", code, err)
		}

		if v.MaxDistanceKm > 0 || v.MaxVisits > 0 || v.TimeWindow != "" {
			if _, err := tx.Exec(`
			INSERT INTO vehicle_constraints (vehicle_id, max_distance_km, max_visits, time_window)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (vehicle_id) DO UPDATE
			SET max_distance_km = EXCLUDED.max_distance_km,
				max_visits = EXCLUDED.max_visits,
				time_window = EXCLUDED.time_window;
			`, id, v.MaxDistanceKm, v.MaxVisits, v.TimeWindow); err != nil {
				return fmt.Errorf("seed: insert constraint for vehicle %q: %w", code, err)
			}
		}
	}

	for i, o := range data.Orders {
		locID, ok := locationIDs[strings.TrimSpace(o.LocationCode)]
		if !ok {
			return fmt.Errorf("seed: order at index %d references unknown location %q", i, o.LocationCode)
		}

		priority := o.Priority
		if priority == "" {
			priority = "medium"
		}

		if _, err := tx.Exec(`
		INSERT INTO orders (location_id, priority, status, window_start, window_end)
		VALUES ($1, $2, 'pending', $3, $4);
		`, locID, priority, o.WindowStart, o.WindowEnd); err != nil {
			return fmt.Errorf("seed: insert order at index %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed: commit tx: %w", err)
	}

	return nil
}
