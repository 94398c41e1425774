package repositories

import (
	"database/sql"
	"fmt"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS locations (
		id BIGSERIAL PRIMARY KEY,
		code TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL DEFAULT 'shop',
		latitude DOUBLE PRECISION NOT NULL,
		longitude DOUBLE PRECISION NOT NULL,
		matrix_status TEXT NOT NULL DEFAULT 'to_create',
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);`,

	// Canonical unordered pairs: location_a < location_b always, so at
	// most one row can exist per pair and the diagonal is unrepresentable.
	`CREATE TABLE IF NOT EXISTS matrix_entries (
		location_a BIGINT NOT NULL REFERENCES locations(id) ON DELETE CASCADE,
		location_b BIGINT NOT NULL REFERENCES locations(id) ON DELETE CASCADE,
		distance_km DOUBLE PRECISION NOT NULL,
		time_min DOUBLE PRECISION NOT NULL,
		computed_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (location_a, location_b),
		CHECK (location_a < location_b)
	);`,

	`CREATE TABLE IF NOT EXISTS vehicles (
		id BIGSERIAL PRIMARY KEY,
		code TEXT NOT NULL UNIQUE,
		fleet_id BIGINT
	);`,

	`CREATE TABLE IF NOT EXISTS vehicle_constraints (
		vehicle_id BIGINT PRIMARY KEY REFERENCES vehicles(id) ON DELETE CASCADE,
		max_payload_kg DOUBLE PRECISION NOT NULL DEFAULT 0,
		max_volume_m3 DOUBLE PRECISION NOT NULL DEFAULT 0,
		max_distance_km DOUBLE PRECISION NOT NULL DEFAULT 0,
		max_visits INT NOT NULL DEFAULT 0,
		time_window TEXT NOT NULL DEFAULT ''
	);`,

	`CREATE TABLE IF NOT EXISTS orders (
		id BIGSERIAL PRIMARY KEY,
		location_id BIGINT NOT NULL REFERENCES locations(id),
		priority TEXT NOT NULL DEFAULT 'medium',
		status TEXT NOT NULL DEFAULT 'pending',
		window_start TEXT NOT NULL DEFAULT '',
		window_end TEXT NOT NULL DEFAULT ''
	);`,

	`CREATE TABLE IF NOT EXISTS order_groups (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL DEFAULT ''
	);`,

	`CREATE TABLE IF NOT EXISTS order_group_members (
		group_id BIGINT NOT NULL REFERENCES order_groups(id) ON DELETE CASCADE,
		order_id BIGINT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
		PRIMARY KEY (group_id, order_id)
	);`,

	`CREATE TABLE IF NOT EXISTS geo_constraints (
		id BIGSERIAL PRIMARY KEY,
		from_location_id BIGINT NOT NULL REFERENCES locations(id) ON DELETE CASCADE,
		to_location_id BIGINT NOT NULL REFERENCES locations(id) ON DELETE CASCADE,
		vehicle_id BIGINT REFERENCES vehicles(id) ON DELETE CASCADE
	);`,

	`CREATE TABLE IF NOT EXISTS predefined_routes (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL DEFAULT ''
	);`,

	`CREATE TABLE IF NOT EXISTS predefined_route_stops (
		route_id BIGINT NOT NULL REFERENCES predefined_routes(id) ON DELETE CASCADE,
		location_id BIGINT NOT NULL REFERENCES locations(id) ON DELETE CASCADE,
		position INT NOT NULL DEFAULT 0,
		PRIMARY KEY (route_id, location_id)
	);`,

	`CREATE TABLE IF NOT EXISTS jobs (
		id BIGSERIAL PRIMARY KEY,
		reference UUID NOT NULL,
		name TEXT NOT NULL DEFAULT '',
		day TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'running',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);`,

	`CREATE TABLE IF NOT EXISTS job_routes (
		id BIGSERIAL PRIMARY KEY,
		job_id BIGINT NOT NULL REFERENCES jobs(id) ON DELETE CASCADE,
		vehicle_id BIGINT NOT NULL REFERENCES vehicles(id),
		total_distance_km DOUBLE PRECISION NOT NULL DEFAULT 0,
		total_time_min DOUBLE PRECISION NOT NULL DEFAULT 0
	);`,

	`CREATE TABLE IF NOT EXISTS job_stops (
		id BIGSERIAL PRIMARY KEY,
		route_id BIGINT NOT NULL REFERENCES job_routes(id) ON DELETE CASCADE,
		location_id BIGINT NOT NULL REFERENCES locations(id),
		order_id BIGINT REFERENCES orders(id),
		sequence INT NOT NULL,
		arrival_min INT NOT NULL DEFAULT 0,
		departure_min INT NOT NULL DEFAULT 0
	);`,

	`CREATE INDEX IF NOT EXISTS idx_orders_status ON orders(status);`,
	`CREATE INDEX IF NOT EXISTS idx_locations_matrix_status ON locations(matrix_status);`,
	`CREATE INDEX IF NOT EXISTS idx_job_stops_route ON job_stops(route_id);`,
}

// InitSchema creates all tables when they do not already exist.
func InitSchema(db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}
