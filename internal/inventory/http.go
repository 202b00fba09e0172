package inventory

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"erp-backend/internal/auth"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

// ErrorHandler renders domain errors with their HTTP status and the details
// a client needs to react, and everything else as {"error": msg}.
func ErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var (
			notFound     *NotFoundError
			insufficient *InsufficientStockError
			invalidState *InvalidStateError
			validation   *ValidationError
			fe           *fiber.Error
		)
		switch {
		case errors.As(err, &validation):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error":  validation.Error(),
				"code":   "validation",
				"fields": validation.Fields,
			})
		case errors.As(err, &notFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": notFound.Error(),
				"code":  "not_found",
			})
		case errors.As(err, &insufficient):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error":     insufficient.Error(),
				"code":      "insufficient_stock",
				"item_id":   insufficient.ItemID,
				"requested": insufficient.Requested,
				"available": insufficient.Available,
			})
		case errors.As(err, &invalidState):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": invalidState.Error(),
				"code":  "invalid_state",
				"state": invalidState.State,
			})
		case errors.As(err, &fe):
			return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
		}

		log.Error("request failed",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
}

// requestContext carries the authenticated user into the service call.
func requestContext(c *fiber.Ctx) context.Context {
	id, _ := c.Locals(auth.CtxUserIDKey).(string)
	name, _ := c.Locals(auth.CtxUserNameKey).(string)
	return WithActor(c.UserContext(), Actor{ID: id, Name: name})
}

// parseDate accepts "YYYY-MM-DD" or RFC 3339.
func parseDate(field, s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, invalidField(field, "is required")
	}
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, invalidField(field, "must be YYYY-MM-DD or RFC 3339")
	}
	return t, nil
}

// dateRangeQuery reads ?from=&to=. A date-only "to" includes that whole day.
func dateRangeQuery(c *fiber.Ctx) (DateRange, error) {
	var r DateRange
	if v := c.Query("from"); v != "" {
		t, err := parseDate("from", v)
		if err != nil {
			return r, err
		}
		r.From = t
	}
	if v := c.Query("to"); v != "" {
		t, err := parseDate("to", v)
		if err != nil {
			return r, err
		}
		if _, dateOnly := time.Parse(dateLayout, v); dateOnly == nil {
			t = t.AddDate(0, 0, 1)
		}
		r.To = t
	}
	return r, nil
}

func pageQuery(c *fiber.Ctx) Page {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", strconv.Itoa(DefaultPageSize)))
	return Page{Page: page, Limit: limit}.Normalize()
}
