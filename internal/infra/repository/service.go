package repository

import (
	"context"

	"keypanel/internal/infra"
	"keypanel/internal/infra/db"
	"keypanel/internal/pkg/pgconv"
	"keypanel/internal/usecase/commands"

	"github.com/google/uuid"
)

type ServiceRepository struct {
	db db.DBTX
}

func NewServiceRepository(db db.DBTX) *ServiceRepository {
	return &ServiceRepository{db: db}
}

func (r *ServiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*commands.ServiceSnapshot, error) {
	const query = `
		SELECT id, name, platform, provider_code,
		       min_quantity, max_quantity, credential_id, active
		FROM services
		WHERE id = $1`

	var snap commands.ServiceSnapshot

	err := r.db.QueryRow(ctx, query, id).Scan(
		&snap.ID,
		&snap.Name,
		&snap.Platform,
		&snap.ProviderCode,
		&snap.MinQuantity,
		&snap.MaxQuantity,
		&snap.CredentialID,
		&snap.Active,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("service not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find service by ID", err)
	}

	return &snap, nil
}
