package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/pos-ledger/internal/application/auth"
	"github.com/jhoicas/pos-ledger/internal/application/dues"
	"github.com/jhoicas/pos-ledger/internal/application/inventory"
	"github.com/jhoicas/pos-ledger/internal/application/sales"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC      *auth.AuthUseCase
	InventoryUC *inventory.ApplyMovementUseCase
	SalesUC     *sales.SalesUseCase
	DuesUC      *dues.DueUseCase
	JWTSecret   string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Inventario (protegido). Las rutas fijas van antes que :productId.
	invGroup := protected.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.InventoryUC)
	invGroup.Post("/movements", inventoryHandler.ApplyMovement)
	invGroup.Get("/low-stock", inventoryHandler.LowStock)
	invGroup.Get("/:productId/movements", inventoryHandler.ListMovements)
	invGroup.Get("/:productId/replay", inventoryHandler.Replay)
	invGroup.Get("/:productId", inventoryHandler.Snapshot)

	// Ventas (protegido)
	salesGroup := protected.Group("/sales")
	saleHandler := NewSaleHandler(deps.SalesUC)
	salesGroup.Post("/", saleHandler.Create)
	salesGroup.Get("/:id", saleHandler.GetByID)
	salesGroup.Post("/:id/refund", saleHandler.Refund)
	salesGroup.Post("/:id/cancel", saleHandler.Cancel)
	salesGroup.Get("/:id/receipt", saleHandler.Receipt)

	// Saldos pendientes (protegido)
	duesGroup := protected.Group("/dues")
	dueHandler := NewDueHandler(deps.DuesUC)
	duesGroup.Get("/:id", dueHandler.GetByID)
	duesGroup.Post("/:id/transactions", dueHandler.PostTransaction)
	duesGroup.Get("/:id/transactions", dueHandler.ListTransactions)
}
