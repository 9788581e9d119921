package http

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/wanderguide/wanderguide/internal/core/domain"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// bindJSON decodes the request body into dst and checks its validate tags.
// It writes the 400 response itself and returns false when the body is bad.
func bindJSON(c *fiber.Ctx, dst any) (bool, error) {
	if err := c.BodyParser(dst); err != nil {
		return false, errBadRequest(c, "request body must be valid JSON")
	}
	if err := validate.Struct(dst); err != nil {
		return false, errBadRequest(c, describeValidation(err))
	}
	return true, nil
}

// describeValidation turns validator errors into one readable message.
func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, field+" is required")
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of %s", field, fe.Param()))
		case "max", "lte":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s", field, fe.Param()))
		case "min", "gte", "gt":
			msgs = append(msgs, fmt.Sprintf("%s must be at least %s", field, fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid (%s)", field, fe.Tag()))
		}
	}
	return strings.Join(msgs, "; ")
}

type entryRequest struct {
	PoiID      string `json:"poi_id" validate:"required,uuid"`
	VisitOrder int    `json:"visit_order" validate:"gte=0"`
}

type createItineraryRequest struct {
	Name        string         `json:"name" validate:"required,max=200"`
	Description string         `json:"description" validate:"max=2000"`
	UserID      string         `json:"user_id" validate:"max=64"`
	Entries     []entryRequest `json:"entries" validate:"dive"`
}

type replaceEntriesRequest struct {
	Entries []entryRequest `json:"entries" validate:"required,dive"`
}

func toEntries(reqs []entryRequest) []domain.ItineraryEntry {
	entries := make([]domain.ItineraryEntry, len(reqs))
	for i, r := range reqs {
		entries[i] = domain.ItineraryEntry{PoiID: r.PoiID, VisitOrder: r.VisitOrder}
	}
	return entries
}

type presignRequest struct {
	FileName    string `json:"file_name" validate:"required,max=255"`
	ContentType string `json:"content_type" validate:"required"`
	Size        int64  `json:"size" validate:"gt=0"`
}

type attachRequest struct {
	Key      string `json:"key" validate:"required"`
	Target   string `json:"target" validate:"required,oneof=city poi"`
	TargetID string `json:"target_id" validate:"required,uuid"`
}

type themeRequest struct {
	Theme string `json:"theme" validate:"required,oneof=light dark"`
}
