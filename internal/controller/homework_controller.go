package controller

import (
	"vocaman_backend/internal/model"
	"vocaman_backend/internal/service"
	"vocaman_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type HomeworkController struct {
	HomeworkService *service.HomeworkService
}

func NewHomeworkController(homeworkService *service.HomeworkService) *HomeworkController {
	return &HomeworkController{HomeworkService: homeworkService}
}

// swagger:model AssignHomeworkRequest
type AssignHomeworkRequest struct {
	ChildUserID util.WireID `json:"childUserId" swaggertype:"string" binding:"required"`
	DatasetID   util.WireID `json:"datasetId" swaggertype:"string" binding:"required"`
	Reward      int64       `json:"reward" binding:"min=0"`
}

// UpdateAssignmentRequest uses pointers so absent fields stay untouched.
type UpdateAssignmentRequest struct {
	Reward *int64  `json:"reward" binding:"omitempty,min=0"`
	Status *string `json:"status"`
}

type SubmitProgressRequest struct {
	AssignmentID util.WireID `json:"assignmentId" swaggertype:"string" binding:"required"`
	TermID       util.WireID `json:"termId" swaggertype:"string" binding:"required"`
	Status       string      `json:"status" binding:"required,oneof=correct incorrect"`
}

// Assign godoc
// @Summary Assign a dataset as homework to a connected child
// @Tags Homework
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body AssignHomeworkRequest true "assignment"
// @Success 201 {object} util.Response{data=object}
// @Failure 400 {object} util.Response
// @Failure 403 {object} util.Response "no approved relation"
// @Failure 404 {object} util.Response "dataset not found"
// @Router /api/v2/homework/assignments [post]
func (c *HomeworkController) Assign(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}

	var req AssignHomeworkRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	assignment, err := c.HomeworkService.Assign(ctx.Request.Context(), service.AssignInput{
		ParentID:  claims.UserID,
		ChildID:   req.ChildUserID.Uint64(),
		DatasetID: req.DatasetID.Uint64(),
		Reward:    req.Reward,
	})
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Created(ctx, gin.H{"assignmentId": util.FormatID(assignment.ID)})
}

// ListAssignedToMe godoc
// @Summary Homework assigned to the current user
// @Tags Homework
// @Security BearerAuth
// @Produce json
// @Success 200 {object} util.Response{data=[]model.AssignmentView}
// @Router /api/v2/homework/assignments/assigned_to_me [get]
func (c *HomeworkController) ListAssignedToMe(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}

	views, err := c.HomeworkService.ListAssignedTo(ctx.Request.Context(), claims.UserID)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, views)
}

// ListCreatedByMe godoc
// @Summary Homework created by the current user
// @Tags Homework
// @Security BearerAuth
// @Produce json
// @Success 200 {object} util.Response{data=[]model.AssignmentView}
// @Router /api/v2/homework/assignments/created_by_me [get]
func (c *HomeworkController) ListCreatedByMe(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}

	views, err := c.HomeworkService.ListCreatedBy(ctx.Request.Context(), claims.UserID)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, views)
}

// GetDetails godoc
// @Summary Assignment details for its parent or child
// @Tags Homework
// @Security BearerAuth
// @Produce json
// @Param assignmentId path string true "assignment id"
// @Success 200 {object} util.Response{data=service.AssignmentDetails}
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/v2/homework/assignments/{assignmentId} [get]
func (c *HomeworkController) GetDetails(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}
	assignmentID, ok := pathID(ctx, "assignmentId")
	if !ok {
		return
	}

	details, err := c.HomeworkService.GetDetails(ctx.Request.Context(), claims.UserID, assignmentID)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, details)
}

// Update godoc
// @Summary Change reward or cancel an assignment
// @Tags Homework
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param assignmentId path string true "assignment id"
// @Param body body UpdateAssignmentRequest true "fields to change"
// @Success 200 {object} util.Response
// @Failure 400 {object} util.Response
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Failure 409 {object} util.Response
// @Router /api/v2/homework/assignments/{assignmentId} [put]
func (c *HomeworkController) Update(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}
	assignmentID, ok := pathID(ctx, "assignmentId")
	if !ok {
		return
	}

	var req UpdateAssignmentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	patch := service.AssignmentPatch{Reward: req.Reward}
	if req.Status != nil {
		status := model.HomeworkStatus(*req.Status)
		patch.Status = &status
	}

	if err := c.HomeworkService.UpdateAssignment(ctx.Request.Context(), claims.UserID, assignmentID, patch); err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"assignmentId": util.FormatID(assignmentID)})
}

// Delete godoc
// @Summary Delete an assignment and its progress
// @Tags Homework
// @Security BearerAuth
// @Produce json
// @Param assignmentId path string true "assignment id"
// @Success 200 {object} util.Response
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/v2/homework/assignments/{assignmentId} [delete]
func (c *HomeworkController) Delete(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}
	assignmentID, ok := pathID(ctx, "assignmentId")
	if !ok {
		return
	}

	if err := c.HomeworkService.DeleteAssignment(ctx.Request.Context(), claims.UserID, assignmentID); err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// SubmitProgress godoc
// @Summary Record the child's answer for one term
// @Tags Homework
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body SubmitProgressRequest true "progress"
// @Success 200 {object} util.Response{data=service.SubmitResult}
// @Failure 400 {object} util.Response
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Failure 409 {object} util.Response "already completed or cancelled"
// @Router /api/v2/homework/progress [post]
func (c *HomeworkController) SubmitProgress(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}

	var req SubmitProgressRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.HomeworkService.SubmitProgress(ctx.Request.Context(), service.SubmitInput{
		ChildID:      claims.UserID,
		AssignmentID: req.AssignmentID.Uint64(),
		TermID:       req.TermID.Uint64(),
		Outcome:      model.ProgressStatus(req.Status),
	})
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// GetProgress godoc
// @Summary Progress of an assignment, newest first
// @Tags Homework
// @Security BearerAuth
// @Produce json
// @Param assignmentId path string true "assignment id"
// @Success 200 {object} util.Response{data=[]model.ProgressView}
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/v2/homework/assignments/{assignmentId}/progress [get]
func (c *HomeworkController) GetProgress(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}
	assignmentID, ok := pathID(ctx, "assignmentId")
	if !ok {
		return
	}

	rows, err := c.HomeworkService.GetProgress(ctx.Request.Context(), claims.UserID, assignmentID)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, rows)
}
