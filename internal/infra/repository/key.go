package repository

import (
	"context"

	"keypanel/internal/infra"
	"keypanel/internal/infra/db"
	"keypanel/internal/pkg/pgconv"
	"keypanel/internal/usecase/commands"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type KeyRepository struct {
	db db.DBTX
}

func NewKeyRepository(db db.DBTX) *KeyRepository {
	return &KeyRepository{db: db}
}

func (r *KeyRepository) FindByValue(ctx context.Context, value string) (*commands.KeySnapshot, error) {
	const query = `
		SELECT id, value, category, service_id, credential_id,
		       max_quantity, used_quantity, created_at, expires_at
		FROM keys
		WHERE value = $1`

	var (
		snap      commands.KeySnapshot
		serviceID pgtype.UUID
		createdAt pgtype.Timestamptz
		expiresAt pgtype.Timestamptz
	)

	err := r.db.QueryRow(ctx, query, value).Scan(
		&snap.ID,
		&snap.Value,
		&snap.Category,
		&serviceID,
		&snap.CredentialID,
		&snap.MaxQuantity,
		&snap.UsedQuantity,
		&createdAt,
		&expiresAt,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("key not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find key by value", err)
	}

	snap.ServiceID = pgconv.UUIDPtrFromPgtype(serviceID)
	snap.CreatedAt = pgconv.TimeFromPgtype(createdAt)
	snap.ExpiresAt = pgconv.TimePtrFromPgtype(expiresAt)

	return &snap, nil
}

// Reserve is the ledger's only mutation: a single conditional update so that
// concurrent reservations against the same key cannot jointly exceed the
// quota, regardless of interleaving or horizontal scaling.
func (r *KeyRepository) Reserve(ctx context.Context, tx db.DBTX, keyID uuid.UUID, quantity int32) error {
	const query = `
		UPDATE keys
		SET used_quantity = used_quantity + $2
		WHERE id = $1
		  AND used_quantity + $2 <= max_quantity`

	tag, err := tx.Exec(ctx, query, keyID, quantity)
	if err != nil {
		return infra.WrapRepoErr("failed to reserve key quota", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("reservation exceeds remaining quota", nil, infra.KindConflict)
	}

	return nil
}
