package db

import (
	"fmt"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	// btree_gist lets the bookings exclusion constraint combine the vehicle
	// equality check with the range overlap check.
	`CREATE EXTENSION IF NOT EXISTS "btree_gist";`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'vehicle_health') THEN
			CREATE TYPE vehicle_health AS ENUM ('EXCELLENT', 'OK', 'GROUNDED');
		END IF;
	END
	$$;`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'vehicle_health_source') THEN
			CREATE TYPE vehicle_health_source AS ENUM ('AUTO', 'MANUAL');
		END IF;
	END
	$$;`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'vehicle_status') THEN
			CREATE TYPE vehicle_status AS ENUM ('AVAILABLE', 'ON_HIRE', 'GROUNDED');
		END IF;
	END
	$$;`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'booking_status') THEN
			CREATE TYPE booking_status AS ENUM ('DRAFT', 'ACTIVE', 'ADVANCE_NOT_PAID', 'COMPLETED', 'CANCELLED');
		END IF;
	END
	$$;`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'booking_type') THEN
			CREATE TYPE booking_type AS ENUM ('SELF_DRIVE', 'CHAUFFEUR', 'TRANSFER');
		END IF;
	END
	$$;`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'issue_priority') THEN
			CREATE TYPE issue_priority AS ENUM ('DANGEROUS', 'IMPORTANT', 'NICE_TO_FIX', 'AESTHETIC');
		END IF;
	END
	$$;`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'issue_status') THEN
			CREATE TYPE issue_status AS ENUM ('OPEN', 'CLOSED');
		END IF;
	END
	$$;`,
	`CREATE TABLE IF NOT EXISTS branches (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		name VARCHAR(255) NOT NULL,
		address TEXT,
		phone VARCHAR(32),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS vehicle_categories (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		name VARCHAR(255) NOT NULL,
		daily_rate DOUBLE PRECISION,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS vehicles (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		registration VARCHAR(32) NOT NULL,
		category_id UUID REFERENCES vehicle_categories(id),
		branch_id UUID REFERENCES branches(id),
		health vehicle_health NOT NULL DEFAULT 'EXCELLENT',
		health_source vehicle_health_source NOT NULL DEFAULT 'AUTO',
		health_set_by UUID,
		health_set_at TIMESTAMPTZ,
		status vehicle_status NOT NULL DEFAULT 'AVAILABLE',
		personal_use BOOLEAN NOT NULL DEFAULT FALSE,
		on_hire BOOLEAN NOT NULL DEFAULT FALSE,
		on_hire_location TEXT,
		mileage BIGINT NOT NULL DEFAULT 0,
		next_service_mileage BIGINT,
		insurance_expiry TIMESTAMPTZ,
		mot_expiry TIMESTAMPTZ,
		mot_not_applicable BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		deleted_at TIMESTAMPTZ
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_vehicles_registration ON vehicles (registration) WHERE deleted_at IS NULL;`,
	`CREATE INDEX IF NOT EXISTS idx_vehicles_category_id ON vehicles (category_id);`,
	`CREATE INDEX IF NOT EXISTS idx_vehicles_branch_id ON vehicles (branch_id);`,
	`CREATE INDEX IF NOT EXISTS idx_vehicles_deleted_at ON vehicles (deleted_at);`,
	`CREATE TABLE IF NOT EXISTS bookings (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		vehicle_id UUID NOT NULL REFERENCES vehicles(id),
		branch_id UUID REFERENCES branches(id),
		client_name VARCHAR(255) NOT NULL,
		client_phone VARCHAR(32),
		client_email VARCHAR(255),
		start_at TIMESTAMPTZ NOT NULL,
		end_at TIMESTAMPTZ NOT NULL,
		start_location TEXT,
		end_location TEXT,
		status booking_status NOT NULL DEFAULT 'DRAFT',
		type booking_type NOT NULL DEFAULT 'SELF_DRIVE',
		health_at_booking vehicle_health NOT NULL,
		chauffeur_name VARCHAR(255),
		invoice_id UUID,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT chk_bookings_window CHECK (end_at > start_at)
	);`,
	// Authoritative non-overlap guarantee. The service re-validates before
	// writing, but only this constraint closes the read-then-write race
	// between two concurrent bookings for the same vehicle.
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'excl_bookings_vehicle_window') THEN
			ALTER TABLE bookings
				ADD CONSTRAINT excl_bookings_vehicle_window
				EXCLUDE USING gist (
					vehicle_id WITH =,
					tstzrange(start_at, end_at) WITH &&
				)
				WHERE (status NOT IN ('CANCELLED', 'COMPLETED'));
		END IF;
	END
	$$;`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_vehicle_id ON bookings (vehicle_id);`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_branch_id ON bookings (branch_id);`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_status ON bookings (status);`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_start_at ON bookings (start_at);`,
	`CREATE TABLE IF NOT EXISTS issues (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		vehicle_id UUID NOT NULL REFERENCES vehicles(id),
		priority issue_priority,
		status issue_status NOT NULL DEFAULT 'OPEN',
		description TEXT NOT NULL,
		opened_at TIMESTAMPTZ NOT NULL,
		closed_at TIMESTAMPTZ,
		delete_reason TEXT,
		deleted_by UUID,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		deleted_at TIMESTAMPTZ
	);`,
	`CREATE INDEX IF NOT EXISTS idx_issues_vehicle_id ON issues (vehicle_id);`,
	`CREATE INDEX IF NOT EXISTS idx_issues_status ON issues (status);`,
	`CREATE INDEX IF NOT EXISTS idx_issues_deleted_at ON issues (deleted_at);`,
	`CREATE TABLE IF NOT EXISTS activity_logs (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		entity_type VARCHAR(50) NOT NULL,
		entity_id UUID NOT NULL,
		field VARCHAR(100) NOT NULL,
		old_value TEXT,
		new_value TEXT,
		actor_id UUID NOT NULL,
		note TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_activity_logs_entity ON activity_logs (entity_type, entity_id);`,
	`CREATE TABLE IF NOT EXISTS mileage_logs (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		vehicle_id UUID NOT NULL REFERENCES vehicles(id),
		mileage BIGINT NOT NULL,
		recorded_at TIMESTAMPTZ NOT NULL,
		recorded_by UUID NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_mileage_logs_vehicle_id ON mileage_logs (vehicle_id);`,
	`CREATE INDEX IF NOT EXISTS idx_mileage_logs_recorded_at ON mileage_logs (recorded_at);`,
	`CREATE OR REPLACE FUNCTION set_updated_at()
	RETURNS TRIGGER AS $$
	BEGIN
		NEW.updated_at = NOW();
		RETURN NEW;
	END;
	$$ LANGUAGE plpgsql;`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_trigger WHERE tgname = 'trg_vehicles_updated_at') THEN
			CREATE TRIGGER trg_vehicles_updated_at
				BEFORE UPDATE ON vehicles
				FOR EACH ROW
				EXECUTE PROCEDURE set_updated_at();
		END IF;
	END
	$$;`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_trigger WHERE tgname = 'trg_bookings_updated_at') THEN
			CREATE TRIGGER trg_bookings_updated_at
				BEFORE UPDATE ON bookings
				FOR EACH ROW
				EXECUTE PROCEDURE set_updated_at();
		END IF;
	END
	$$;`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_trigger WHERE tgname = 'trg_issues_updated_at') THEN
			CREATE TRIGGER trg_issues_updated_at
				BEFORE UPDATE ON issues
				FOR EACH ROW
				EXECUTE PROCEDURE set_updated_at();
		END IF;
	END
	$$;`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
