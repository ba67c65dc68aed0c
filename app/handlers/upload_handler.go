package handlers

import (
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/adsphere/adsphere/app/dto"
	businessflow "github.com/adsphere/adsphere/business_flow"
)

// UploadHandler receives campaign media files over multipart form data
type UploadHandler struct {
	uploadFlow businessflow.UploadFlow
	validator  *validator.Validate
}

// NewUploadHandler creates a new upload handler
func NewUploadHandler(uploadFlow businessflow.UploadFlow) *UploadHandler {
	return &UploadHandler{
		uploadFlow: uploadFlow,
		validator:  validator.New(),
	}
}

// Upload stores a single media file
// @Summary Upload file
// @Description Upload one image or video file; images get a thumbnail
// @Tags Uploads
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Media file"
// @Success 201 {object} dto.APIResponse{data=dto.UploadResponse} "File stored"
// @Failure 400 {object} dto.APIResponse "Unsupported media type"
// @Security BearerAuth
// @Router /api/v1/uploads [post]
func (h *UploadHandler) Upload(c fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return errorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "A file form field is required", "INVALID_REQUEST", err.Error())
	}

	file, err := fileHeader.Open()
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Unable to read uploaded file", "INVALID_REQUEST", err.Error())
	}
	defer file.Close()

	req := dto.UploadRequest{
		UserID:   &userID,
		Filename: fileHeader.Filename,
		Content:  file,
	}
	result, err := h.uploadFlow.Upload(createRequestContextWithTimeout(c, "/api/v1/uploads", uploadTimeout), &req, clientMetadata(c))
	if err != nil {
		log.Println("Upload failed", err)
		return businessErrorResponse(c, err, "Failed to store file")
	}
	return successResponse(c, fiber.StatusCreated, "File stored", result)
}

// UploadBatch stores several media files in one request
// @Summary Upload files
// @Description Upload several media files at once; per-file failures are reported without failing the batch
// @Tags Uploads
// @Accept multipart/form-data
// @Produce json
// @Param files formData file true "Media files"
// @Success 200 {object} dto.APIResponse{data=dto.UploadBatchResponse} "Batch result"
// @Security BearerAuth
// @Router /api/v1/uploads/batch [post]
func (h *UploadHandler) UploadBatch(c fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return errorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	form, err := c.MultipartForm()
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid multipart form", "INVALID_REQUEST", err.Error())
	}
	headers := form.File["files"]
	if len(headers) == 0 {
		return errorResponse(c, fiber.StatusBadRequest, "A files form field is required", "INVALID_REQUEST", nil)
	}

	reqs := make([]*dto.UploadRequest, 0, len(headers))
	opened := make([]interface{ Close() error }, 0, len(headers))
	defer func() {
		for _, f := range opened {
			f.Close()
		}
	}()
	for _, header := range headers {
		file, err := header.Open()
		if err != nil {
			return errorResponse(c, fiber.StatusBadRequest, "Unable to read uploaded file", "INVALID_REQUEST", err.Error())
		}
		opened = append(opened, file)
		reqs = append(reqs, &dto.UploadRequest{
			UserID:   &userID,
			Filename: header.Filename,
			Content:  file,
		})
	}

	result, err := h.uploadFlow.UploadBatch(createRequestContextWithTimeout(c, "/api/v1/uploads/batch", uploadTimeout), reqs, clientMetadata(c))
	if err != nil {
		log.Println("Batch upload failed", err)
		return businessErrorResponse(c, err, "Failed to store files")
	}
	return successResponse(c, fiber.StatusOK, "Batch processed", result)
}

// DeleteUpload removes a stored file and its thumbnail
// @Summary Delete upload
// @Description Delete a stored file and its thumbnail by file URL
// @Tags Uploads
// @Accept json
// @Produce json
// @Param request body dto.DeleteUploadRequest true "File URL"
// @Success 200 {object} dto.APIResponse{data=dto.DeleteUploadResponse} "File removed"
// @Security BearerAuth
// @Router /api/v1/uploads [delete]
func (h *UploadHandler) DeleteUpload(c fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return errorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	var req dto.DeleteUploadRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	req.UserID = &userID
	if err := h.validator.Struct(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	result, err := h.uploadFlow.DeleteUpload(createRequestContext(c, "/api/v1/uploads"), &req, clientMetadata(c))
	if err != nil {
		log.Println("Delete upload failed", err)
		return businessErrorResponse(c, err, "Failed to delete file")
	}
	return successResponse(c, fiber.StatusOK, "File removed", result)
}
