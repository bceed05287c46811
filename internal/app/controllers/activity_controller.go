package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/peerconnect/api/internal/app/models/dto"
	"github.com/peerconnect/api/internal/app/services"
	"github.com/peerconnect/api/internal/middleware"
)

// ActivityController handles activity and RSVP operations
type ActivityController struct {
	activityService services.ActivityService
	chatService     services.ChatService
	logger          zerolog.Logger
}

// NewActivityController creates a new ActivityController
func NewActivityController(activityService services.ActivityService, chatService services.ChatService, logger zerolog.Logger) *ActivityController {
	return &ActivityController{
		activityService: activityService,
		chatService:     chatService,
		logger:          logger,
	}
}

// ListActivities lists a college's activities
// @Summary List activities
// @Description Lists activities for a college ordered by date ascending
// @Tags activities
// @Produce json
// @Param college query string true "College name"
// @Success 200 {object} dto.APIResponse{data=[]dto.ActivityResponse}
// @Failure 400 {object} dto.ErrorResponse "College is required"
// @Router /activities [get]
func (c *ActivityController) ListActivities(ctx *gin.Context) {
	activities, err := c.activityService.ListByCollege(ctx, strings.TrimSpace(ctx.Query("college")))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(activities))
}

// CreateActivity creates an activity with the caller as its first participant
// @Summary Create activity
// @Tags activities
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateActivityRequest true "Activity details"
// @Success 201 {object} dto.APIResponse{data=dto.ActivityResponse}
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Router /activities [post]
func (c *ActivityController) CreateActivity(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}

	var req dto.CreateActivityRequest
	if !bindJSON(ctx, &req) {
		return
	}

	activity, err := c.activityService.Create(ctx, userID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(activity))
}

// GetActivity returns one activity with its members resolved
// @Summary Get activity
// @Tags activities
// @Produce json
// @Param id path int true "Activity ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=dto.ActivityResponse}
// @Failure 404 {object} dto.ErrorResponse "Activity not found"
// @Router /activities/{id} [get]
func (c *ActivityController) GetActivity(ctx *gin.Context) {
	id, ok := requireIDParam(ctx, "id", "activity")
	if !ok {
		return
	}

	activity, err := c.activityService.GetByID(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(activity))
}

// JoinActivity joins an activity or its waitlist
// @Summary Join activity
// @Description Joins when a seat is free, otherwise appends the caller to the waitlist
// @Tags activities
// @Produce json
// @Security BearerAuth
// @Param id path int true "Activity ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=dto.JoinActivityResponse}
// @Failure 404 {object} dto.ErrorResponse "Activity not found"
// @Failure 409 {object} dto.ErrorResponse "Already joined or waitlisted"
// @Router /activities/{id}/join [post]
func (c *ActivityController) JoinActivity(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}
	id, ok := requireIDParam(ctx, "id", "activity")
	if !ok {
		return
	}

	resp, err := c.activityService.Join(ctx, id, userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// LeaveActivity leaves an activity or its waitlist
// @Summary Leave activity
// @Description Leaving a seat promotes the head of the waitlist
// @Tags activities
// @Produce json
// @Security BearerAuth
// @Param id path int true "Activity ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=dto.LeaveActivityResponse}
// @Failure 404 {object} dto.ErrorResponse "Activity not found"
// @Failure 409 {object} dto.ErrorResponse "Not joined"
// @Router /activities/{id}/leave [post]
func (c *ActivityController) LeaveActivity(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}
	id, ok := requireIDParam(ctx, "id", "activity")
	if !ok {
		return
	}

	resp, err := c.activityService.Leave(ctx, id, userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// UpdateActivity edits an activity
// @Summary Update activity
// @Tags activities
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Activity ID" Format(int64) minimum(1)
// @Param request body dto.UpdateActivityRequest true "Fields to change"
// @Success 200 {object} dto.APIResponse{data=dto.ActivityResponse}
// @Failure 403 {object} dto.ErrorResponse "Only the creator can modify this activity"
// @Failure 404 {object} dto.ErrorResponse "Activity not found"
// @Router /activities/{id} [put]
func (c *ActivityController) UpdateActivity(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}
	id, ok := requireIDParam(ctx, "id", "activity")
	if !ok {
		return
	}

	var req dto.UpdateActivityRequest
	if !bindJSON(ctx, &req) {
		return
	}

	activity, err := c.activityService.Update(ctx, id, userID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(activity))
}

// DeleteActivity removes an activity
// @Summary Delete activity
// @Tags activities
// @Produce json
// @Security BearerAuth
// @Param id path int true "Activity ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=dto.MessageResponse}
// @Failure 403 {object} dto.ErrorResponse "Only the creator can modify this activity"
// @Failure 404 {object} dto.ErrorResponse "Activity not found"
// @Router /activities/{id} [delete]
func (c *ActivityController) DeleteActivity(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}
	id, ok := requireIDParam(ctx, "id", "activity")
	if !ok {
		return
	}

	if err := c.activityService.Delete(ctx, id, userID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Int64("activityID", id).Int64("userID", userID).Msg("Activity deleted")
	ctx.JSON(http.StatusOK, dto.NewMessageResponse("Activity deleted"))
}

// GetMessages returns an activity's chat history
// @Summary Get chat history
// @Tags activities
// @Produce json
// @Security BearerAuth
// @Param id path int true "Activity ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=[]dto.ChatMessageResponse}
// @Failure 404 {object} dto.ErrorResponse "Activity not found"
// @Router /activities/{id}/messages [get]
func (c *ActivityController) GetMessages(ctx *gin.Context) {
	id, ok := requireIDParam(ctx, "id", "activity")
	if !ok {
		return
	}

	messages, err := c.chatService.GetHistory(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(messages))
}
