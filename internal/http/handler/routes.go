package handler

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"

	"rxledger/internal/service"
)

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Handlers stay thin; all registry rules live in the service layer.
func RegisterRoutes(app *fiber.App, db *sql.DB, svc service.PrescriptionService, vsvc service.VerificationService, dsvc service.DocumentService) {
	// Serve OpenAPI spec and Swagger UI
	app.Get("/openapi.yaml", func(c *fiber.Ctx) error {
		c.Type("yaml")
		return c.SendFile("openapi.yaml")
	})
	app.Get("/docs", func(c *fiber.Ctx) error {
		html := `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>API Docs</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    window.ui = SwaggerUIBundle({
      url: '/openapi.yaml',
      dom_id: '#swagger-ui',
      presets: [SwaggerUIBundle.presets.apis],
      layout: 'BaseLayout'
    });
  </script>
</body>
</html>`
		return c.Type("html").SendString(html)
	})

	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	app.Post("/prescriptions", IssuePrescription(svc))
	app.Get("/prescriptions", ListPrescriptions(svc))
	app.Get("/prescriptions/:id", GetPrescription(svc))
	app.Get("/prescriptions/:id/scan-payload", ScanPayload(svc))
	app.Post("/prescriptions/:id/fulfillments", FulfillPrescription(svc))
	app.Get("/prescriptions/:id/fulfillments/:party", HasFulfilled(svc))

	app.Post("/verify", VerifyPrescription(vsvc))

	app.Post("/documents", StoreDocument(dsvc))
	app.Get("/documents/:fingerprint/url", DocumentURL(dsvc))
}
