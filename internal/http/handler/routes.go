package handler

import (
	"database/sql"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"receiptiq/docs"
	"receiptiq/internal/service"
)

// Services groups the use cases exposed over HTTP.
type Services struct {
	Files    service.ReceiptFileService
	Receipts service.ReceiptService
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
func RegisterRoutes(app *fiber.App, db *sql.DB, gatherer prometheus.Gatherer, svc Services) {
	app.Get("/", Root())
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	app.Get("/swagger/*", Swagger())

	app.Post("/upload", UploadReceipt(svc.Files))
	app.Post("/validate", ValidateReceipt(svc.Files))
	app.Post("/process", ProcessReceipt(svc.Files))

	app.Get("/files/:id", GetReceiptFile(svc.Files))
	app.Get("/files/:id/download", DownloadReceiptFile(svc.Files))
	app.Delete("/files/:id", DeleteReceiptFile(svc.Files))

	app.Get("/receipts", ListReceipts(svc.Receipts))
	app.Get("/receipts/:id", GetReceipt(svc.Receipts))
}

// Swagger serves the UI with host and scheme taken from the request.
func Swagger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.TrimSpace(strings.Split(proto, ",")[0])
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	}
}
