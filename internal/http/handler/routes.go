package handler

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"docregistry/internal/http/middleware"
	"docregistry/internal/service"
)

// RegisterRoutes attaches HTTP routes to the provided Fiber app. Handlers
// stay thin; all business rules live in the services.
func RegisterRoutes(app *fiber.App, db *sql.DB, docSvc service.DocumentService, refSvc service.ReferenceService) {
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

	actor := middleware.Actor()

	documents := app.Group("/documents", actor)
	documents.Get("/", ListDocuments(docSvc))
	documents.Post("/", CreateDocument(docSvc))
	// Registered before /:type/:ref so "stats" is not captured as a type.
	documents.Get("/stats", GetDocumentStats(docSvc))
	documents.Get("/:type/:ref", GetDocument(docSvc))
	documents.Get("/:type/:ref/download", DownloadDocument(docSvc))
	documents.Delete("/:type/:ref", DeleteDocument(docSvc))

	references := app.Group("/references", actor)
	references.Get("/availability", CheckAvailability(refSvc))

	reservations := app.Group("/reservations", actor)
	reservations.Post("/", CreateReservation(refSvc))
	reservations.Get("/", ListReservations(refSvc))

	admin := app.Group("/admin", actor)
	admin.Post("/sequences/reset", ResetSequences(refSvc))
}

// HealthCheck verifies DB connectivity.
func HealthCheck(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe is a simple liveness endpoint.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// ListDocuments returns a filtered, paginated document listing.
func ListDocuments(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		page, err := strconv.Atoi(c.Query("page", "1"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_PAGE", "invalid page")
		}
		limit, err := strconv.Atoi(c.Query("limit", "20"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}

		res, err := docSvc.List(c.UserContext(), middleware.ActorFromCtx(c), service.ListQuery{
			Type:   c.Query("type"),
			Search: c.Query("search"),
			Page:   page,
			Limit:  limit,
		})
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// CreateDocument accepts multipart/form-data: metadata fields plus an
// optional file under "file".
func CreateDocument(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		in := service.CreateDocumentInput{
			Type:              c.FormValue("type"),
			Title:             c.FormValue("title"),
			Subject:           c.FormValue("subject"),
			Sender:            c.FormValue("sender"),
			DocumentDate:      c.FormValue("document_date"),
			ManualReferenceID: c.FormValue("manual_reference_id"),
		}

		if fh, err := c.FormFile("file"); err == nil {
			f, err := fh.Open()
			if err != nil {
				return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
			}
			defer f.Close()

			ct := fh.Header.Get("Content-Type")
			if ct == "" {
				ct = "application/octet-stream"
			}
			in.File = &service.FileUpload{
				Reader:      f,
				Filename:    fh.Filename,
				Size:        fh.Size,
				ContentType: ct,
			}
		}

		doc, err := docSvc.Create(c.UserContext(), middleware.ActorFromCtx(c), in)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(doc)
	}
}

// GetDocument fetches a single document by type and reference number.
func GetDocument(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		doc, err := docSvc.Get(c.UserContext(), middleware.ActorFromCtx(c), c.Params("type"), c.Params("ref"))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(doc)
	}
}

// DownloadDocument returns a presigned URL for the document's attachment.
func DownloadDocument(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		url, err := docSvc.DownloadURL(c.UserContext(), middleware.ActorFromCtx(c), c.Params("type"), c.Params("ref"))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"url": url})
	}
}

// DeleteDocument soft-deletes a document.
func DeleteDocument(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := docSvc.Delete(c.UserContext(), middleware.ActorFromCtx(c), c.Params("type"), c.Params("ref")); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// GetDocumentStats returns aggregate counts for dashboards.
func GetDocumentStats(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		stats, err := docSvc.Stats(c.UserContext(), middleware.ActorFromCtx(c), c.Query("period", "all"), c.Query("user_id"))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(stats)
	}
}

// CheckAvailability reports whether a reference number is free to claim.
func CheckAvailability(refSvc service.ReferenceService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		available, err := refSvc.CheckAvailability(c.UserContext(), c.Query("type"), c.Query("ref"))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"available": available})
	}
}

// reserveRequest is the JSON body for creating a reservation.
type reserveRequest struct {
	Type        string `json:"document_type"`
	ReferenceID string `json:"reference_id"`
	Notes       string `json:"notes"`
}

// CreateReservation pre-claims a reference number for the acting user.
func CreateReservation(refSvc service.ReferenceService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req reserveRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}

		res, err := refSvc.Reserve(c.UserContext(), middleware.ActorFromCtx(c), service.ReserveInput{
			Type:        req.Type,
			ReferenceID: req.ReferenceID,
			Notes:       req.Notes,
		})
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(res)
	}
}

// ListReservations returns active reservations. Only active=true is
// supported; used reservations stay internal for audit.
func ListReservations(refSvc service.ReferenceService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Query("active", "true") != "true" {
			return writeError(c, fiber.StatusBadRequest, "INVALID_FILTER", "only active=true is supported")
		}
		items, err := refSvc.ListActive(c.UserContext())
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"data": items, "total": len(items)})
	}
}

// resetRequest is the JSON body for the administrative sequence reset.
type resetRequest struct {
	DocumentTypes []string `json:"document_types"`
}

// ResetSequences rewinds the named sequences to 1. Admin only.
func ResetSequences(refSvc service.ReferenceService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req resetRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		if err := refSvc.ResetSequences(c.UserContext(), middleware.ActorFromCtx(c), req.DocumentTypes); err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"status": "reset"})
	}
}
