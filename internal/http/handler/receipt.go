package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"receiptiq/internal/service"
)

// ListReceipts godoc
// @Summary List receipts with their items
// @Tags Receipts
// @Produce json
// @Param limit query int false "Page size" default(100)
// @Param offset query int false "Rows to skip" default(0)
// @Success 200 {object} service.ReceiptListResult
// @Failure 400 {object} errorPayload
// @Router /receipts [get]
func ListReceipts(svc service.ReceiptService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, err := strconv.Atoi(c.Query("limit", "100"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		offset, err := strconv.Atoi(c.Query("offset", "0"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		}

		res, err := svc.List(c.UserContext(), limit, offset)
		if err != nil {
			return writeServiceError(c, err, "Receipt not found")
		}
		return c.JSON(res)
	}
}

// GetReceipt godoc
// @Summary Get one receipt with its items
// @Tags Receipts
// @Produce json
// @Param id path string true "Receipt ID"
// @Success 200 {object} model.Receipt
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /receipts/{id} [get]
func GetReceipt(svc service.ReceiptService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		rc, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err, "Receipt not found")
		}
		return c.JSON(rc)
	}
}
