package db

import (
	"fmt"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS "pgcrypto";`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'contract_status') THEN
			CREATE TYPE contract_status AS ENUM (
				'DRAFT', 'PENDING_REVIEW', 'PENDING_SIGNATURE', 'ACTIVE',
				'SUSPENDED', 'TERMINATED', 'EXPIRED', 'CANCELLED'
			);
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'signature_status') THEN
			CREATE TYPE signature_status AS ENUM ('PENDING', 'SIGNED', 'REJECTED', 'EXPIRED');
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'renewal_status') THEN
			CREATE TYPE renewal_status AS ENUM (
				'SCHEDULED', 'NOTIFIED', 'CONFIRMED', 'REJECTED', 'COMPLETED', 'FAILED'
			);
		END IF;
	END
	$$;`,
	`CREATE TABLE IF NOT EXISTS contracts (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		tenant_id UUID NOT NULL,
		contract_number VARCHAR(32) NOT NULL,
		version INTEGER NOT NULL DEFAULT 1 CHECK (version >= 1),
		parent_contract_id UUID REFERENCES contracts(id),
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		contract_type VARCHAR(64) NOT NULL,
		contractor_id UUID NOT NULL,
		contractee_id UUID NOT NULL,
		start_date TIMESTAMPTZ NOT NULL,
		end_date TIMESTAMPTZ,
		signature_date TIMESTAMPTZ,
		total_value NUMERIC(18,2) NOT NULL DEFAULT 0 CHECK (total_value >= 0),
		currency VARCHAR(3) NOT NULL DEFAULT 'BRL',
		payment_terms JSONB NOT NULL DEFAULT '{}'::jsonb,
		auto_renewal BOOLEAN NOT NULL DEFAULT FALSE,
		renewal_period VARCHAR(32),
		renewal_notice_days INTEGER,
		status contract_status NOT NULL DEFAULT 'DRAFT',
		document_url TEXT NOT NULL DEFAULT '',
		document_hash VARCHAR(128) NOT NULL DEFAULT '',
		metadata JSONB NOT NULL DEFAULT '{}'::jsonb,
		tags TEXT[] NOT NULL DEFAULT '{}',
		created_by UUID NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_by UUID,
		updated_at TIMESTAMPTZ,
		CONSTRAINT chk_contracts_dates CHECK (end_date IS NULL OR end_date > start_date)
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_contracts_tenant_number_version ON contracts (tenant_id, contract_number, version);`,
	`CREATE INDEX IF NOT EXISTS idx_contracts_tenant_status ON contracts (tenant_id, status);`,
	`CREATE INDEX IF NOT EXISTS idx_contracts_tenant_created ON contracts (tenant_id, created_at DESC);`,
	`CREATE INDEX IF NOT EXISTS idx_contracts_parent ON contracts (parent_contract_id) WHERE parent_contract_id IS NOT NULL;`,
	`CREATE TABLE IF NOT EXISTS contract_signatures (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		contract_id UUID NOT NULL REFERENCES contracts(id),
		signer_id UUID,
		signer_name TEXT NOT NULL,
		signer_email TEXT NOT NULL,
		signer_role VARCHAR(32) NOT NULL,
		signature_type VARCHAR(32) NOT NULL,
		status signature_status NOT NULL DEFAULT 'PENDING',
		signature_data TEXT NOT NULL DEFAULT '',
		signed_at TIMESTAMPTZ,
		ip_address VARCHAR(64) NOT NULL DEFAULT '',
		user_agent TEXT NOT NULL DEFAULT '',
		certificate_info JSONB,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT chk_signatures_signed_at CHECK (signed_at IS NULL OR status = 'SIGNED')
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_contract_signatures_signer ON contract_signatures (contract_id, lower(signer_email));`,
	`CREATE TABLE IF NOT EXISTS contract_renewals (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		tenant_id UUID NOT NULL,
		original_contract_id UUID NOT NULL REFERENCES contracts(id),
		new_contract_id UUID REFERENCES contracts(id),
		renewal_type VARCHAR(32) NOT NULL DEFAULT 'AUTOMATIC',
		scheduled_date TIMESTAMPTZ NOT NULL,
		notification_sent_at TIMESTAMPTZ,
		status renewal_status NOT NULL DEFAULT 'SCHEDULED',
		terms_changed BOOLEAN NOT NULL DEFAULT FALSE,
		change_summary TEXT NOT NULL DEFAULT '',
		created_by UUID NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ
	);`,
	`CREATE INDEX IF NOT EXISTS idx_contract_renewals_due ON contract_renewals (scheduled_date) WHERE status = 'SCHEDULED';`,
	`CREATE INDEX IF NOT EXISTS idx_contract_renewals_tenant ON contract_renewals (tenant_id);`,
	`CREATE TABLE IF NOT EXISTS audit_logs (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		tenant_id UUID NOT NULL,
		user_id UUID NOT NULL,
		action_type VARCHAR(64) NOT NULL,
		entity_type VARCHAR(64) NOT NULL,
		entity_id UUID NOT NULL,
		old_values JSONB,
		new_values JSONB,
		metadata JSONB,
		risk_level VARCHAR(16) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_audit_logs_entity ON audit_logs (entity_type, entity_id);`,
}

// Migrate applies the schema. Every statement is idempotent.
func Migrate(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
