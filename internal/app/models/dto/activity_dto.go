package dto

import (
	"time"

	"github.com/peerconnect/api/internal/app/models"
	"github.com/peerconnect/api/internal/pkg/validation"
)

// CreateActivityRequest represents a new activity
type CreateActivityRequest struct {
	Title       string `json:"title" binding:"required,notblank,max=200" example:"Evening football"`
	Category    string `json:"category" binding:"required,activity_category" example:"Sports"`
	Date        string `json:"date" binding:"required,activity_date" example:"2026-11-02"`
	Time        string `json:"time" binding:"required,notblank,max=20" example:"18:30"`
	Location    string `json:"location" binding:"required,notblank,max=255" example:"Main ground"`
	Description string `json:"description" binding:"max=5000"`
	Capacity    int    `json:"capacity" binding:"required,min=1" example:"10"`
}

// UpdateActivityRequest carries the fields to change; absent fields are kept.
// Capacity may be set below the current participant count.
type UpdateActivityRequest struct {
	Title       *string `json:"title" binding:"omitempty,notblank,max=200"`
	Category    *string `json:"category" binding:"omitempty,activity_category"`
	Date        *string `json:"date" binding:"omitempty,activity_date"`
	Time        *string `json:"time" binding:"omitempty,notblank,max=20"`
	Location    *string `json:"location" binding:"omitempty,notblank,max=255"`
	Description *string `json:"description" binding:"omitempty,max=5000"`
	Capacity    *int    `json:"capacity" binding:"omitempty,min=1"`
}

// ActivityResponse is an activity with its people resolved
type ActivityResponse struct {
	ID               int64                `json:"id" example:"1"`
	Title            string               `json:"title" example:"Evening football"`
	Category         string               `json:"category" example:"Sports"`
	Date             string               `json:"date" example:"2026-11-02"`
	Time             string               `json:"time" example:"18:30"`
	Location         string               `json:"location" example:"Main ground"`
	Description      string               `json:"description"`
	Capacity         int                  `json:"capacity" example:"10"`
	College          string               `json:"college" example:"NIT Calicut"`
	Creator          models.UserSummary   `json:"creator"`
	Participants     []models.UserSummary `json:"participants"`
	Waitlist         []models.UserSummary `json:"waitlist"`
	ParticipantCount int                  `json:"participantCount" example:"3"`
	WaitlistCount    int                  `json:"waitlistCount" example:"0"`
	CreatedAt        time.Time            `json:"createdAt"`
	UpdatedAt        time.Time            `json:"updatedAt"`
}

// JoinActivityResponse reports where the caller ended up
type JoinActivityResponse struct {
	Message string `json:"message" example:"Joined successfully"`
	Status  string `json:"status" example:"joined" enums:"joined,waitlist"`
}

// LeaveActivityResponse reports the leave outcome and any waitlist promotion
type LeaveActivityResponse struct {
	Message        string `json:"message" example:"Left successfully"`
	PromotedUserID *int64 `json:"promotedUserId,omitempty" example:"7"`
}

// ToActivityResponse resolves member ids through users. Unknown ids keep only their id.
func ToActivityResponse(a *models.Activity, users map[int64]models.UserSummary) ActivityResponse {
	resolve := func(ids []int64) []models.UserSummary {
		out := make([]models.UserSummary, 0, len(ids))
		for _, id := range ids {
			out = append(out, lookupUser(users, id))
		}
		return out
	}

	return ActivityResponse{
		ID:               a.ID,
		Title:            a.Title,
		Category:         string(a.Category),
		Date:             a.Date.Format(validation.DateLayout),
		Time:             a.Time,
		Location:         a.Location,
		Description:      a.Description,
		Capacity:         a.Capacity,
		College:          a.College,
		Creator:          lookupUser(users, a.CreatorID),
		Participants:     resolve(a.Participants),
		Waitlist:         resolve(a.Waitlist),
		ParticipantCount: len(a.Participants),
		WaitlistCount:    len(a.Waitlist),
		CreatedAt:        a.CreatedAt,
		UpdatedAt:        a.UpdatedAt,
	}
}

func lookupUser(users map[int64]models.UserSummary, id int64) models.UserSummary {
	if u, ok := users[id]; ok {
		return u
	}
	return models.UserSummary{ID: id}
}
