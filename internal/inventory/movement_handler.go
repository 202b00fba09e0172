package inventory

import (
	"erp-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type StockInRequest struct {
	ReferenceNumber string      `json:"reference_number"`
	SupplierID      *string     `json:"supplier_id"`
	Date            string      `json:"date"` // "2025-12-09"
	Note            string      `json:"note"`
	Photo           string      `json:"photo"`
	Items           []LineInput `json:"items"`
}

type StockOutRequest struct {
	ProjectID *string     `json:"project_id"`
	Date      string      `json:"date"`
	Note      string      `json:"note"`
	Photo     string      `json:"photo"`
	Items     []LineInput `json:"items"`
}

type LoanRequest struct {
	InventoryID string  `json:"inventory_id"`
	BorrowerID  string  `json:"borrower_id"`
	ProjectID   *string `json:"project_id"`
	Quantity    int     `json:"quantity"`
	Date        string  `json:"date"`
	Note        string  `json:"note"`
	Photo       string  `json:"photo"`
}

type ReturnRequest struct {
	Quantity int    `json:"quantity"`
	Date     string `json:"date"`
	Note     string `json:"note"`
}

type CountRequest struct {
	ItemID  string `json:"item_id"`
	Counted int    `json:"counted"`
	Date    string `json:"date"`
	Note    string `json:"note"`
}

// POST /api/stock-in
func CreateStockInHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body StockInRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		d, err := parseDate("date", body.Date)
		if err != nil {
			return err
		}
		h, err := svc.ReceiveStock(requestContext(c), StockInInput{
			ReferenceNumber: body.ReferenceNumber,
			SupplierID:      body.SupplierID,
			Date:            d,
			Note:            body.Note,
			Photo:           body.Photo,
			Lines:           body.Items,
		})
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(h)
	}
}

// GET /api/stock-in?from=&to=&page=&limit=
func ListStockInsHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		r, err := dateRangeQuery(c)
		if err != nil {
			return err
		}
		out, err := svc.ListStockIns(c.UserContext(), pageQuery(c), r)
		if err != nil {
			return err
		}
		return c.JSON(out)
	}
}

// GET /api/stock-in/:id
func GetStockInHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		h, err := svc.GetStockIn(c.UserContext(), c.Params("id"))
		if err != nil {
			return err
		}
		return c.JSON(h)
	}
}

// POST /api/stock-out
func CreateStockOutHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body StockOutRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		d, err := parseDate("date", body.Date)
		if err != nil {
			return err
		}
		h, err := svc.IssueStock(requestContext(c), StockOutInput{
			ProjectID: body.ProjectID,
			Date:      d,
			Note:      body.Note,
			Photo:     body.Photo,
			Lines:     body.Items,
		})
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(h)
	}
}

// GET /api/stock-out?from=&to=&page=&limit=
func ListStockOutsHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		r, err := dateRangeQuery(c)
		if err != nil {
			return err
		}
		out, err := svc.ListStockOuts(c.UserContext(), pageQuery(c), r)
		if err != nil {
			return err
		}
		return c.JSON(out)
	}
}

// GET /api/stock-out/:id
func GetStockOutHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		h, err := svc.GetStockOut(c.UserContext(), c.Params("id"))
		if err != nil {
			return err
		}
		return c.JSON(h)
	}
}

// POST /api/loans
func CreateLoanHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body LoanRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		d, err := parseDate("date", body.Date)
		if err != nil {
			return err
		}
		loan, err := svc.LendStock(requestContext(c), LoanInput{
			ItemID:     body.InventoryID,
			BorrowerID: body.BorrowerID,
			ProjectID:  body.ProjectID,
			Quantity:   body.Quantity,
			Date:       d,
			Note:       body.Note,
			Photo:      body.Photo,
		})
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(loan)
	}
}

// GET /api/loans?status=&inventory_id=&borrower_id=&open=true
func ListLoansHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		f := LoanFilter{
			InventoryID: c.Query("inventory_id"),
			BorrowerID:  c.Query("borrower_id"),
			OpenOnly:    c.QueryBool("open"),
			Page:        pageQuery(c),
		}
		switch st := models.LoanStatus(c.Query("status")); st {
		case "":
		case models.LoanStatusLoaned, models.LoanStatusPartialReturned, models.LoanStatusReturned:
			f.Status = st
		default:
			return invalidField("status", "must be LOANED, PARTIAL_RETURNED or RETURNED")
		}
		out, err := svc.ListLoans(c.UserContext(), f)
		if err != nil {
			return err
		}
		return c.JSON(out)
	}
}

// GET /api/loans/:id
func GetLoanHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		loan, err := svc.GetLoan(c.UserContext(), c.Params("id"))
		if err != nil {
			return err
		}
		return c.JSON(loan)
	}
}

// POST /api/loans/:id/return
func ReturnLoanHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body ReturnRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		d, err := parseDate("date", body.Date)
		if err != nil {
			return err
		}
		loan, err := svc.ReturnLoan(requestContext(c), c.Params("id"), ReturnInput{
			Quantity: body.Quantity,
			Date:     d,
			Note:     body.Note,
		})
		if err != nil {
			return err
		}
		return c.JSON(loan)
	}
}

// POST /api/stock-counts
func CreateStockCountHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CountRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		d, err := parseDate("date", body.Date)
		if err != nil {
			return err
		}
		count, err := svc.AdjustCount(requestContext(c), CountInput{
			ItemID:  body.ItemID,
			Counted: body.Counted,
			Date:    d,
			Note:    body.Note,
		})
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(count)
	}
}

// GET /api/stock-counts?item_id=
func ListStockCountsHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		out, err := svc.ListStockCounts(c.UserContext(), c.Query("item_id"), pageQuery(c))
		if err != nil {
			return err
		}
		return c.JSON(out)
	}
}

// GET /api/ledger?from=&to=&type=
func LedgerHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		r, err := dateRangeQuery(c)
		if err != nil {
			return err
		}
		var types []models.LedgerType
		if t := c.Query("type"); t != "" {
			types = append(types, models.LedgerType(t))
		}
		entries, err := svc.LedgerForRange(c.UserContext(), r, types...)
		if err != nil {
			return err
		}
		return c.JSON(entries)
	}
}
