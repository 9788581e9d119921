package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/wanderguide/wanderguide/internal/core/domain"
	"github.com/wanderguide/wanderguide/internal/core/usecases"
)

// PresignUploadHandler validates a file description and returns a presigned
// upload slot on the media host.
func PresignUploadHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req presignRequest
		if ok, err := bindJSON(c, &req); !ok {
			return err
		}

		ticket, err := deps.Media.Presign(c.UserContext(), usecases.PresignRequest{
			FileName:    req.FileName,
			ContentType: req.ContentType,
			Size:        req.Size,
		})
		if err != nil {
			return mapError(c, err, "upload not found")
		}
		return c.Status(fiber.StatusCreated).JSON(ticket)
	}
}

// AttachUploadHandler starts attaching an uploaded picture to a city or POI.
// The work runs asynchronously; the response carries the workflow run.
func AttachUploadHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req attachRequest
		if ok, err := bindJSON(c, &req); !ok {
			return err
		}

		runID, err := deps.Media.Attach(c.UserContext(), domain.AttachRequest{
			Key:      req.Key,
			Target:   domain.MediaTarget(req.Target),
			TargetID: req.TargetID,
		})
		if err != nil {
			return mapError(c, err, req.Target+" not found")
		}
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
			"run_id": runID,
			"key":    req.Key,
		})
	}
}
