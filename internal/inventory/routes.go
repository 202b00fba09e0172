package inventory

import (
	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes mounts the inventory API on an authenticated router.
// adminOnly guards item master data and stock counts.
func RegisterRoutes(api fiber.Router, svc *Service, adminOnly fiber.Handler) {
	items := api.Group("/inventory")
	items.Get("/", ListItemsHandler(svc))
	items.Get("/summary", StatusSummaryHandler(svc))
	items.Get("/:id", GetItemHandler(svc))
	items.Get("/:id/ledger", ItemLedgerHandler(svc))
	items.Get("/:id/balance", VerifyBalanceHandler(svc))
	items.Post("/", adminOnly, CreateItemHandler(svc))
	items.Put("/:id", adminOnly, UpdateItemHandler(svc))
	items.Put("/:id/photo", adminOnly, SetPhotoHandler(svc, PhotoItem))
	items.Delete("/:id", adminOnly, DeleteItemHandler(svc))

	counts := api.Group("/stock-counts")
	counts.Get("/", ListStockCountsHandler(svc))
	counts.Post("/", adminOnly, CreateStockCountHandler(svc))

	in := api.Group("/stock-in")
	in.Get("/", ListStockInsHandler(svc))
	in.Get("/:id", GetStockInHandler(svc))
	in.Post("/", CreateStockInHandler(svc))
	in.Put("/:id/photo", SetPhotoHandler(svc, PhotoStockIn))

	out := api.Group("/stock-out")
	out.Get("/", ListStockOutsHandler(svc))
	out.Get("/:id", GetStockOutHandler(svc))
	out.Post("/", CreateStockOutHandler(svc))
	out.Put("/:id/photo", SetPhotoHandler(svc, PhotoStockOut))

	loans := api.Group("/loans")
	loans.Get("/", ListLoansHandler(svc))
	loans.Get("/:id", GetLoanHandler(svc))
	loans.Post("/", CreateLoanHandler(svc))
	loans.Post("/:id/return", ReturnLoanHandler(svc))
	loans.Put("/:id/photo", SetPhotoHandler(svc, PhotoLoan))

	api.Get("/ledger", LedgerHandler(svc))
}
