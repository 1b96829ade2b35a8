package profiles

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/greenloop-app/greenloop-backend/pkg/db"
	"github.com/greenloop-app/greenloop-backend/pkg/db/models"
	pkgerrors "github.com/greenloop-app/greenloop-backend/pkg/errors"
	"github.com/greenloop-app/greenloop-backend/pkg/logger"
)

// Service exposes profile reads and the first-contact bootstrap. Balance and
// total mutations belong to the credit ledger, not this service.
type Service interface {
	Ensure(ctx context.Context, userID uuid.UUID, displayName string) (*View, error)
	Get(ctx context.Context, userID uuid.UUID) (*View, error)
	Update(ctx context.Context, userID uuid.UUID, input UpdateInput) (*View, error)
}

type service struct {
	repo Repository
	logg *logger.Logger
}

// NewService builds the profile service.
func NewService(repo Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("profiles repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, logg: logg}, nil
}

// Ensure returns the existing profile or creates the zero-baseline row.
func (s *service) Ensure(ctx context.Context, userID uuid.UUID, displayName string) (*View, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}

	existing, err := s.repo.FindByID(ctx, userID)
	if err == nil {
		return NewView(existing), nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading profile")
	}

	name := strings.TrimSpace(displayName)
	if name == "" {
		name = "Recycler"
	}
	profile := &models.Profile{
		UserID:      userID,
		DisplayName: name,
	}
	if err := s.repo.Create(ctx, profile); err != nil {
		if db.IsUniqueViolation(err, "") {
			// concurrent first contact; the row exists now
			created, findErr := s.repo.FindByID(ctx, userID)
			if findErr != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, findErr, "loading profile")
			}
			return NewView(created), nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating profile")
	}

	s.logg.Info(s.logg.WithUserID(ctx, userID.String()), "profile created")
	return NewView(profile), nil
}

func (s *service) Get(ctx context.Context, userID uuid.UUID) (*View, error) {
	profile, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "profile not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading profile")
	}
	return NewView(profile), nil
}

func (s *service) Update(ctx context.Context, userID uuid.UUID, input UpdateInput) (*View, error) {
	if _, err := s.Get(ctx, userID); err != nil {
		return nil, err
	}

	update := ContactUpdate{
		DisplayName: input.DisplayName,
		Phone:       input.Phone,
		City:        input.City,
		Region:      input.Region,
	}
	if update.DisplayName != nil && strings.TrimSpace(*update.DisplayName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "display name cannot be blank")
	}
	if err := s.repo.UpdateContact(ctx, userID, update); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "updating profile")
	}
	return s.Get(ctx, userID)
}
