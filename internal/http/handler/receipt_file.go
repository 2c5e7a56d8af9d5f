package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"receiptiq/internal/service"
)

const fileNotFound = "File not found"

type uploadResponse struct {
	ID       string `json:"id"`
	FileName string `json:"file_name"`
}

type fileRequest struct {
	FileID string `json:"file_id"`
}

type processResponse struct {
	ReceiptID string `json:"receipt_id"`
	Message   string `json:"message"`
}

// parseFileRequest reads {"file_id": "<uuid>"} or writes the error response.
func parseFileRequest(c *fiber.Ctx) (string, bool, error) {
	var req fileRequest
	if err := c.BodyParser(&req); err != nil {
		return "", false, writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
	}
	if _, err := uuid.Parse(req.FileID); err != nil {
		return "", false, writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid file_id format")
	}
	return req.FileID, true, nil
}

// UploadReceipt godoc
// @Summary Upload a receipt PDF
// @Tags Receipts
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Receipt PDF"
// @Success 201 {object} uploadResponse
// @Failure 400 {object} errorPayload
// @Failure 500 {object} errorPayload
// @Router /upload [post]
func UploadReceipt(svc service.ReceiptFileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		rf, err := svc.Upload(c.UserContext(), f, fh.Filename, fh.Header.Get("Content-Type"), fh.Size)
		if err != nil {
			return writeServiceError(c, err, fileNotFound)
		}
		return c.Status(fiber.StatusCreated).JSON(uploadResponse{ID: rf.ID, FileName: rf.FileName})
	}
}

// ValidateReceipt godoc
// @Summary Check that an uploaded file is a readable PDF
// @Tags Receipts
// @Accept json
// @Produce json
// @Param request body fileRequest true "File to validate"
// @Success 200 {object} service.ValidationResult
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /validate [post]
func ValidateReceipt(svc service.ReceiptFileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok, err := parseFileRequest(c)
		if !ok {
			return err
		}
		res, err := svc.Validate(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err, fileNotFound)
		}
		return c.JSON(res)
	}
}

// ProcessReceipt godoc
// @Summary Extract receipt data from a validated file
// @Description Runs OCR and structured extraction, then stores the receipt and its items.
// @Tags Receipts
// @Accept json
// @Produce json
// @Param request body fileRequest true "File to process"
// @Success 200 {object} processResponse
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Failure 409 {object} errorPayload
// @Failure 500 {object} errorPayload
// @Router /process [post]
func ProcessReceipt(svc service.ReceiptFileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok, err := parseFileRequest(c)
		if !ok {
			return err
		}
		rc, err := svc.Process(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err, fileNotFound)
		}
		return c.JSON(processResponse{ReceiptID: rc.ID, Message: "Receipt processed successfully."})
	}
}

// GetReceiptFile godoc
// @Summary Get uploaded file metadata
// @Tags Files
// @Produce json
// @Param id path string true "File ID"
// @Success 200 {object} model.ReceiptFile
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /files/{id} [get]
func GetReceiptFile(svc service.ReceiptFileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		f, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err, fileNotFound)
		}
		return c.JSON(f)
	}
}

// DownloadReceiptFile godoc
// @Summary Redirect to a presigned download URL
// @Tags Files
// @Param id path string true "File ID"
// @Success 307
// @Failure 404 {object} errorPayload
// @Router /files/{id}/download [get]
func DownloadReceiptFile(svc service.ReceiptFileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		u, err := svc.DownloadURL(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err, fileNotFound)
		}
		return c.Redirect(u, fiber.StatusTemporaryRedirect)
	}
}

// DeleteReceiptFile godoc
// @Summary Delete an uploaded file and its receipt
// @Tags Files
// @Param id path string true "File ID"
// @Success 204
// @Failure 404 {object} errorPayload
// @Router /files/{id} [delete]
func DeleteReceiptFile(svc service.ReceiptFileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		if err := svc.Delete(c.UserContext(), id); err != nil {
			return writeServiceError(c, err, fileNotFound)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
