package controller

import (
	"vocaman_backend/internal/service"
	"vocaman_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type DatasetController struct {
	DatasetService *service.DatasetService
}

func NewDatasetController(datasetService *service.DatasetService) *DatasetController {
	return &DatasetController{DatasetService: datasetService}
}

// swagger:model CreateDatasetRequest
type CreateDatasetRequest struct {
	Name               string `json:"name" binding:"required,max=255"`
	SourceLanguageCode string `json:"source_language_code" binding:"required,langcode"`
	TargetLanguageCode string `json:"target_language_code" binding:"required,langcode"`
}

type UpdateDatasetRequest struct {
	Name               *string `json:"name" binding:"omitempty,max=255"`
	SourceLanguageCode *string `json:"source_language_code" binding:"omitempty,langcode"`
	TargetLanguageCode *string `json:"target_language_code" binding:"omitempty,langcode"`
}

type AddConceptRequest struct {
	ConceptID util.WireID `json:"conceptId" swaggertype:"string" binding:"required"`
}

type HintRequest struct {
	HintType     string `json:"hint_type" binding:"required,max=30"`
	HintContent  string `json:"hint_content" binding:"required"`
	LanguageCode string `json:"language_code" binding:"required,langcode"`
}

type TermRequest struct {
	LanguageCode string        `json:"language_code" binding:"required,langcode"`
	Text         string        `json:"text" binding:"required,max=255"`
	AudioRef     *string       `json:"audio_ref" binding:"omitempty,max=255"`
	Hints        []HintRequest `json:"hints" binding:"omitempty,dive"`
}

// AddCustomWordRequest carries either an existing conceptId or an imageUrl for a new concept.
type AddCustomWordRequest struct {
	ConceptID util.WireID   `json:"conceptId" swaggertype:"string"`
	ImageURL  string        `json:"imageUrl" binding:"omitempty,max=512"`
	Terms     []TermRequest `json:"terms" binding:"required,min=1,dive"`
}

// Create godoc
// @Summary Create a dataset
// @Tags Datasets
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body CreateDatasetRequest true "dataset"
// @Success 201 {object} util.Response{data=object}
// @Failure 400 {object} util.Response
// @Failure 403 {object} util.Response "only parents and admins"
// @Router /api/v2/datasets [post]
func (c *DatasetController) Create(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}

	var req CreateDatasetRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	dataset, err := c.DatasetService.Create(ctx.Request.Context(), claims.UserID, claims.Role, service.DatasetInput{
		Name:               req.Name,
		SourceLanguageCode: req.SourceLanguageCode,
		TargetLanguageCode: req.TargetLanguageCode,
	})
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Created(ctx, gin.H{"datasetId": util.FormatID(dataset.ID)})
}

// List godoc
// @Summary List datasets, newest first
// @Tags Datasets
// @Security BearerAuth
// @Produce json
// @Success 200 {object} util.Response{data=[]model.DatasetSummary}
// @Router /api/v2/datasets [get]
func (c *DatasetController) List(ctx *gin.Context) {
	list, err := c.DatasetService.List(ctx.Request.Context())
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, list)
}

// Get godoc
// @Summary Dataset by id
// @Tags Datasets
// @Security BearerAuth
// @Produce json
// @Param datasetId path string true "dataset id"
// @Success 200 {object} util.Response{data=model.DatasetSummary}
// @Failure 404 {object} util.Response
// @Router /api/v2/datasets/{datasetId} [get]
func (c *DatasetController) Get(ctx *gin.Context) {
	datasetID, ok := pathID(ctx, "datasetId")
	if !ok {
		return
	}

	summary, err := c.DatasetService.Get(ctx.Request.Context(), datasetID)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, summary)
}

// Update godoc
// @Summary Update an owned dataset
// @Tags Datasets
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param datasetId path string true "dataset id"
// @Param body body UpdateDatasetRequest true "fields to change"
// @Success 200 {object} util.Response
// @Failure 400 {object} util.Response
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/v2/datasets/{datasetId} [put]
func (c *DatasetController) Update(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}
	datasetID, ok := pathID(ctx, "datasetId")
	if !ok {
		return
	}

	var req UpdateDatasetRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	err := c.DatasetService.Update(ctx.Request.Context(), claims.UserID, datasetID, service.DatasetPatch{
		Name:               req.Name,
		SourceLanguageCode: req.SourceLanguageCode,
		TargetLanguageCode: req.TargetLanguageCode,
	})
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"datasetId": util.FormatID(datasetID)})
}

// Delete godoc
// @Summary Delete an owned dataset
// @Tags Datasets
// @Security BearerAuth
// @Produce json
// @Param datasetId path string true "dataset id"
// @Success 200 {object} util.Response
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Failure 409 {object} util.Response "referenced by homework"
// @Router /api/v2/datasets/{datasetId} [delete]
func (c *DatasetController) Delete(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}
	datasetID, ok := pathID(ctx, "datasetId")
	if !ok {
		return
	}

	if err := c.DatasetService.Delete(ctx.Request.Context(), claims.UserID, datasetID); err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// AddConcept godoc
// @Summary Add an existing concept to a dataset
// @Tags Datasets
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param datasetId path string true "dataset id"
// @Param body body AddConceptRequest true "concept"
// @Success 201 {object} util.Response
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Failure 409 {object} util.Response
// @Router /api/v2/datasets/{datasetId}/concepts [post]
func (c *DatasetController) AddConcept(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}
	datasetID, ok := pathID(ctx, "datasetId")
	if !ok {
		return
	}

	var req AddConceptRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.DatasetService.AddConcept(ctx.Request.Context(), claims.UserID, datasetID, req.ConceptID.Uint64()); err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Created(ctx, gin.H{"conceptId": util.FormatID(req.ConceptID.Uint64())})
}

// RemoveConcept godoc
// @Summary Remove a concept from a dataset
// @Tags Datasets
// @Security BearerAuth
// @Produce json
// @Param datasetId path string true "dataset id"
// @Param conceptId path string true "concept id"
// @Success 200 {object} util.Response
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/v2/datasets/{datasetId}/concepts/{conceptId} [delete]
func (c *DatasetController) RemoveConcept(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}
	datasetID, ok := pathID(ctx, "datasetId")
	if !ok {
		return
	}
	conceptID, ok := pathID(ctx, "conceptId")
	if !ok {
		return
	}

	if err := c.DatasetService.RemoveConcept(ctx.Request.Context(), claims.UserID, datasetID, conceptID); err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// AddCustomWord godoc
// @Summary Add terms and hints to a dataset
// @Tags Datasets
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param datasetId path string true "dataset id"
// @Param body body AddCustomWordRequest true "concept and terms"
// @Success 201 {object} util.Response{data=object}
// @Failure 400 {object} util.Response
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/v2/datasets/{datasetId}/terms [post]
func (c *DatasetController) AddCustomWord(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}
	datasetID, ok := pathID(ctx, "datasetId")
	if !ok {
		return
	}

	var req AddCustomWordRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	in := service.CustomWordInput{ConceptID: req.ConceptID.Uint64(), ImageURL: req.ImageURL}
	for _, t := range req.Terms {
		term := service.TermInput{LanguageCode: t.LanguageCode, Text: t.Text, AudioRef: t.AudioRef}
		for _, h := range t.Hints {
			term.Hints = append(term.Hints, service.HintInput{
				HintType:     h.HintType,
				HintContent:  h.HintContent,
				LanguageCode: h.LanguageCode,
			})
		}
		in.Terms = append(in.Terms, term)
	}

	conceptID, err := c.DatasetService.AddCustomWord(ctx.Request.Context(), claims.UserID, datasetID, in)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Created(ctx, gin.H{"conceptId": util.FormatID(conceptID)})
}
