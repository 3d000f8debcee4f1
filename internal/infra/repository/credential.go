package repository

import (
	"context"

	"keypanel/internal/infra"
	"keypanel/internal/infra/db"
	"keypanel/internal/pkg/pgconv"
	"keypanel/internal/usecase/commands"

	"github.com/google/uuid"
)

type CredentialRepository struct {
	db db.DBTX
}

func NewCredentialRepository(db db.DBTX) *CredentialRepository {
	return &CredentialRepository{db: db}
}

func (r *CredentialRepository) FindByID(ctx context.Context, id uuid.UUID) (*commands.CredentialSnapshot, error) {
	const query = `
		SELECT id, base_url, secret_key, active
		FROM provider_credentials
		WHERE id = $1`

	var snap commands.CredentialSnapshot

	err := r.db.QueryRow(ctx, query, id).Scan(
		&snap.ID,
		&snap.BaseURL,
		&snap.Secret,
		&snap.Active,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("provider credential not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find provider credential by ID", err)
	}

	return &snap, nil
}
