package service

import (
	"errors"

	"github.com/google/uuid"
)

var (
	ErrServiceInactive    = errors.New("service is inactive")
	ErrQuantityOutOfRange = errors.New("quantity is out of the allowed range")
)

// Service is a sellable unit of delivery (e.g. "Instagram Followers"). Rows
// are administered outside the core; this entity is read-only here.
type Service struct {
	id           uuid.UUID
	name         string
	platform     string
	providerCode string // the upstream provider's own service identifier
	minQuantity  int32
	maxQuantity  int32
	credentialID uuid.UUID
	active       bool
}

func ReconstructService(
	id uuid.UUID,
	name, platform, providerCode string,
	minQuantity, maxQuantity int32,
	credentialID uuid.UUID,
	active bool,
) *Service {
	return &Service{
		id:           id,
		name:         name,
		platform:     platform,
		providerCode: providerCode,
		minQuantity:  minQuantity,
		maxQuantity:  maxQuantity,
		credentialID: credentialID,
		active:       active,
	}
}

func (s *Service) ValidateOrder(quantity int32) error {
	if !s.active {
		return ErrServiceInactive
	}
	if quantity < s.minQuantity || quantity > s.maxQuantity {
		return ErrQuantityOutOfRange
	}
	return nil
}

func (s *Service) ID() uuid.UUID           { return s.id }
func (s *Service) Name() string            { return s.name }
func (s *Service) Platform() string        { return s.platform }
func (s *Service) ProviderCode() string    { return s.providerCode }
func (s *Service) MinQuantity() int32      { return s.minQuantity }
func (s *Service) MaxQuantity() int32      { return s.maxQuantity }
func (s *Service) CredentialID() uuid.UUID { return s.credentialID }
func (s *Service) IsActive() bool          { return s.active }
