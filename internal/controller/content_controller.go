package controller

import (
	"net/http"
	"vocaman_backend/internal/service"
	"vocaman_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// 10 MiB is plenty for a spoken word
const maxAudioUploadBytes = 10 << 20

type ContentController struct {
	ContentService *service.ContentService
	StorageService *service.StorageService
}

func NewContentController(contentService *service.ContentService, storageService *service.StorageService) *ContentController {
	return &ContentController{
		ContentService: contentService,
		StorageService: storageService,
	}
}

// GetConcept godoc
// @Summary Concept by id
// @Tags Content
// @Security BearerAuth
// @Produce json
// @Param conceptId path string true "concept id"
// @Success 200 {object} util.Response{data=model.Concept}
// @Failure 404 {object} util.Response
// @Router /api/v2/concepts/{conceptId} [get]
func (c *ContentController) GetConcept(ctx *gin.Context) {
	conceptID, ok := pathID(ctx, "conceptId")
	if !ok {
		return
	}

	concept, err := c.ContentService.GetConcept(ctx.Request.Context(), conceptID)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, concept)
}

// GetTerm godoc
// @Summary Term by id, with hints
// @Tags Content
// @Security BearerAuth
// @Produce json
// @Param termId path string true "term id"
// @Success 200 {object} util.Response{data=model.Term}
// @Failure 404 {object} util.Response
// @Router /api/v2/terms/{termId} [get]
func (c *ContentController) GetTerm(ctx *gin.Context) {
	termID, ok := pathID(ctx, "termId")
	if !ok {
		return
	}

	term, err := c.ContentService.GetTerm(ctx.Request.Context(), termID)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, term)
}

// UploadAudio godoc
// @Summary Upload an audio file for a term
// @Tags Content
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "audio file"
// @Success 201 {object} util.Response{data=service.UploadedAudio}
// @Failure 400 {object} util.Response
// @Router /api/v2/audio [post]
func (c *ContentController) UploadAudio(ctx *gin.Context) {
	ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, maxAudioUploadBytes)

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "file is required")
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		util.BadRequest(ctx, "cannot read file")
		return
	}
	defer file.Close()

	uploaded, err := c.StorageService.UploadAudio(ctx.Request.Context(), fileHeader.Filename, file)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Created(ctx, uploaded)
}

// GetAudio godoc
// @Summary Serve or redirect to an audio file
// @Tags Content
// @Produce octet-stream
// @Param audioRef path string true "audio reference"
// @Success 200 {file} file
// @Success 302 {string} string "redirect to object storage"
// @Failure 404 {object} util.Response
// @Router /api/v2/audio/{audioRef} [get]
func (c *ContentController) GetAudio(ctx *gin.Context) {
	localPath, url, err := c.StorageService.ResolveAudio(ctx.Param("audioRef"))
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	if url != "" {
		ctx.Redirect(http.StatusFound, url)
		return
	}
	ctx.File(localPath)
}

// DeleteAudio godoc
// @Summary Delete an uploaded audio file
// @Tags Content
// @Security BearerAuth
// @Produce json
// @Param audioRef path string true "audio reference"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/v2/audio/{audioRef} [delete]
func (c *ContentController) DeleteAudio(ctx *gin.Context) {
	if err := c.StorageService.DeleteAudio(ctx.Request.Context(), ctx.Param("audioRef")); err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
