package inventory

import (
	"github.com/gofiber/fiber/v2"
)

// GET /api/inventory?search=&status=&page=&limit=
func ListItemsHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		f := ItemFilter{Search: c.Query("search"), Page: pageQuery(c)}
		if v := c.Query("status"); v != "" {
			st, ok := ParseStatus(v)
			if !ok {
				return invalidField("status", "must be one of OutOfStock, LowStock, Available")
			}
			f.Status = st
		}
		out, err := svc.ListItems(c.UserContext(), f)
		if err != nil {
			return err
		}
		return c.JSON(out)
	}
}

// GET /api/inventory/summary
func StatusSummaryHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		counts, err := svc.StatusSummary(c.UserContext())
		if err != nil {
			return err
		}
		return c.JSON(counts)
	}
}

// GET /api/inventory/:id
func GetItemHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		item, err := svc.GetItem(c.UserContext(), c.Params("id"))
		if err != nil {
			return err
		}
		return c.JSON(item)
	}
}

// POST /api/inventory
func CreateItemHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body ItemInput
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		item, err := svc.CreateItem(requestContext(c), body)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(item)
	}
}

// PUT /api/inventory/:id
func UpdateItemHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body ItemPatch
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		item, err := svc.UpdateItem(requestContext(c), c.Params("id"), body)
		if err != nil {
			return err
		}
		return c.JSON(item)
	}
}

// DELETE /api/inventory/:id
func DeleteItemHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.DeleteItem(requestContext(c), c.Params("id")); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// GET /api/inventory/:id/ledger?from=&to=
func ItemLedgerHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		r, err := dateRangeQuery(c)
		if err != nil {
			return err
		}
		entries, err := svc.LedgerForItem(c.UserContext(), c.Params("id"), r)
		if err != nil {
			return err
		}
		return c.JSON(entries)
	}
}

// GET /api/inventory/:id/balance
func VerifyBalanceHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		b, err := svc.VerifyBalance(c.UserContext(), c.Params("id"))
		if err != nil {
			return err
		}
		return c.JSON(b)
	}
}

type PhotoRequest struct {
	Photo string `json:"photo"`
}

// PUT /api/{inventory,stock-in,stock-out,loans}/:id/photo
func SetPhotoHandler(svc *Service, kind PhotoKind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body PhotoRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if err := svc.SetPhoto(requestContext(c), kind, c.Params("id"), body.Photo); err != nil {
			return err
		}
		return c.JSON(fiber.Map{"id": c.Params("id"), "photo": body.Photo})
	}
}
