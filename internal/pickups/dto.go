package pickups

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/greenloop-app/greenloop-backend/pkg/db/models"
	"github.com/greenloop-app/greenloop-backend/pkg/enums"
	"github.com/greenloop-app/greenloop-backend/pkg/types"
)

// ItemInput is one line item on a new pickup request.
type ItemInput struct {
	Category     string              `json:"category" validate:"required,min=1,max=120"`
	CategorySlug string              `json:"categorySlug" validate:"required,min=1,max=120"`
	Quantity     int                 `json:"quantity" validate:"required,min=1"`
	Condition    enums.ItemCondition `json:"condition" validate:"required"`
	UnitWeightKg decimal.Decimal     `json:"unitWeightKg"`
	Evidence     types.Predictions   `json:"evidence,omitempty"`
}

// CreateInput carries everything a donor submits when scheduling a pickup.
type CreateInput struct {
	DonorID       uuid.UUID
	AddressLine1  string         `json:"addressLine1" validate:"required,min=1,max=255"`
	AddressLine2  *string        `json:"addressLine2" validate:"omitempty,max=255"`
	City          string         `json:"city" validate:"required,min=1,max=120"`
	State         string         `json:"state" validate:"required,min=1,max=120"`
	PostalCode    string         `json:"postalCode" validate:"required,min=1,max=20"`
	Lat           float64        `json:"lat" validate:"min=-90,max=90"`
	Lng           float64        `json:"lng" validate:"min=-180,max=180"`
	Instructions  *string        `json:"instructions" validate:"omitempty,max=1000"`
	PreferredDate time.Time      `json:"preferredDate" validate:"required"`
	TimeSlot      enums.TimeSlot `json:"timeSlot" validate:"required"`
	Items         []ItemInput    `json:"items" validate:"required,min=1,dive"`
}

// CompleteInput carries the verified totals a collector reports at handoff.
type CompleteInput struct {
	RequestID      uuid.UUID
	CollectorID    uuid.UUID
	ActualWeightKg decimal.Decimal
	ActualCredits  int
}

// ItemView is the read model for one pickup line item.
type ItemView struct {
	ID             uuid.UUID           `json:"id"`
	Category       string              `json:"category"`
	CategorySlug   string              `json:"categorySlug"`
	Quantity       int                 `json:"quantity"`
	Condition      enums.ItemCondition `json:"condition"`
	UnitWeightKg   decimal.Decimal     `json:"unitWeightKg"`
	TotalWeightKg  decimal.Decimal     `json:"totalWeightKg"`
	ActualWeightKg *decimal.Decimal    `json:"actualWeightKg,omitempty"`
	CreditsEarned  int                 `json:"creditsEarned"`
	Evidence       types.Predictions   `json:"evidence,omitempty"`
}

// View is the full read model of a pickup request.
type View struct {
	ID          uuid.UUID  `json:"id"`
	DonorID     uuid.UUID  `json:"donorId"`
	CollectorID *uuid.UUID `json:"collectorId,omitempty"`

	AddressLine1 string  `json:"addressLine1"`
	AddressLine2 *string `json:"addressLine2,omitempty"`
	City         string  `json:"city"`
	State        string  `json:"state"`
	PostalCode   string  `json:"postalCode"`
	Lat          float64 `json:"lat"`
	Lng          float64 `json:"lng"`
	Instructions *string `json:"instructions,omitempty"`

	PreferredDate time.Time          `json:"preferredDate"`
	TimeSlot      enums.TimeSlot     `json:"timeSlot"`
	Status        enums.PickupStatus `json:"status"`

	TotalItems           int              `json:"totalItems"`
	EstimatedWeightKg    decimal.Decimal  `json:"estimatedWeightKg"`
	ActualWeightKg       *decimal.Decimal `json:"actualWeightKg,omitempty"`
	EstimatedCredits     int              `json:"estimatedCredits"`
	ActualCreditsAwarded *int             `json:"actualCreditsAwarded,omitempty"`

	MatchedAt   *time.Time `json:"matchedAt,omitempty"`
	CollectedAt *time.Time `json:"collectedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	CancelledAt *time.Time `json:"cancelledAt,omitempty"`

	Items []ItemView `json:"items,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ListResult is a cursor page of pickup requests.
type ListResult struct {
	Requests   []View  `json:"requests"`
	NextCursor *string `json:"nextCursor,omitempty"`
}

// NewView derives the read model from the stored request.
func NewView(request *models.PickupRequest) *View {
	view := &View{
		ID:                   request.ID,
		DonorID:              request.DonorID,
		CollectorID:          request.CollectorID,
		AddressLine1:         request.AddressLine1,
		AddressLine2:         request.AddressLine2,
		City:                 request.City,
		State:                request.State,
		PostalCode:           request.PostalCode,
		Lat:                  request.Lat,
		Lng:                  request.Lng,
		Instructions:         request.Instructions,
		PreferredDate:        request.PreferredDate,
		TimeSlot:             request.TimeSlot,
		Status:               request.Status,
		TotalItems:           request.TotalItems,
		EstimatedWeightKg:    request.EstimatedWeightKg,
		ActualWeightKg:       request.ActualWeightKg,
		EstimatedCredits:     request.EstimatedCredits,
		ActualCreditsAwarded: request.ActualCreditsAwarded,
		MatchedAt:            request.MatchedAt,
		CollectedAt:          request.CollectedAt,
		CompletedAt:          request.CompletedAt,
		CancelledAt:          request.CancelledAt,
		CreatedAt:            request.CreatedAt,
		UpdatedAt:            request.UpdatedAt,
	}
	for _, item := range request.Items {
		view.Items = append(view.Items, ItemView{
			ID:             item.ID,
			Category:       item.Category,
			CategorySlug:   item.CategorySlug,
			Quantity:       item.Quantity,
			Condition:      item.Condition,
			UnitWeightKg:   item.UnitWeightKg,
			TotalWeightKg:  item.TotalWeightKg,
			ActualWeightKg: item.ActualWeightKg,
			CreditsEarned:  item.CreditsEarned,
			Evidence:       item.Evidence,
		})
	}
	return view
}
