package http

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/pos-ledger/internal/application/dto"
	"github.com/jhoicas/pos-ledger/internal/application/inventory"
	"github.com/jhoicas/pos-ledger/internal/domain/entity"
	"github.com/jhoicas/pos-ledger/internal/domain/repository"
)

// InventoryHandler maneja las peticiones HTTP del ledger de inventario (protegido).
type InventoryHandler struct {
	uc *inventory.ApplyMovementUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(uc *inventory.ApplyMovementUseCase) *InventoryHandler {
	return &InventoryHandler{uc: uc}
}

// ApplyMovement godoc
// @Summary      Aplicar movimiento de stock
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ApplyMovementRequest  true  "product_id, movement_type, quantity; direction para adjustment/transfer"
// @Success      201   {object}  dto.InventoryResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [post]
func (h *InventoryHandler) ApplyMovement(c *fiber.Ctx) error {
	storeID := GetStoreID(c)
	userID := GetUserID(c)
	if storeID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.ApplyMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	inv, err := h.uc.ApplyMovement(c.Context(), inventory.ApplyMovementInput{
		StoreID:      storeID,
		ActorID:      userID,
		ProductID:    in.ProductID,
		MovementType: in.MovementType,
		Direction:    in.Direction,
		Quantity:     in.Quantity,
		PricePerUnit: in.PricePerUnit,
		MarkDamaged:  in.MarkDamaged,
		Notes:        in.Notes,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toInventoryResponse(inv))
}

// Snapshot godoc
// @Summary      Instantánea de stock de un producto
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        productId  path  string  true  "ID de producto"
// @Success      200  {object}  dto.InventoryResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/inventory/{productId} [get]
func (h *InventoryHandler) Snapshot(c *fiber.Ctx) error {
	storeID := GetStoreID(c)
	userID := GetUserID(c)
	if storeID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	inv, err := h.uc.Snapshot(c.Context(), userID, storeID, c.Params("productId"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toInventoryResponse(inv))
}

// LowStock godoc
// @Summary      Reporte de reposición
// @Description  Productos en o bajo su punto de reorden, con cantidad sugerida.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {array}   dto.LowStockDTO
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/inventory/low-stock [get]
func (h *InventoryHandler) LowStock(c *fiber.Ctx) error {
	storeID := GetStoreID(c)
	userID := GetUserID(c)
	if storeID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	list, err := h.uc.LowStock(c.Context(), userID, storeID)
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.LowStockDTO, 0, len(list))
	for _, inv := range list {
		out = append(out, dto.LowStockDTO{
			ProductID:         inv.ProductID,
			AvailableQuantity: inv.AvailableQuantity,
			ReorderLevel:      inv.ReorderLevel,
			SuggestedOrderQty: inv.ReorderQuantity,
		})
	}
	return c.JSON(out)
}

// ListMovements godoc
// @Summary      Diario de movimientos de un producto
// @Description  Página ordenada ascendente por (movement_date, id); after reanuda desde el cursor.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        productId  path   string  true   "ID de producto"
// @Param        from       query  string  false  "RFC3339, inicio del rango"
// @Param        to         query  string  false  "RFC3339, fin del rango"
// @Param        after      query  string  false  "cursor: <RFC3339Nano>|<id>"
// @Param        limit      query  int     false  "tamaño de página (máx 100)"
// @Success      200  {object}  dto.MovementPageResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/{productId}/movements [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	storeID := GetStoreID(c)
	userID := GetUserID(c)
	if storeID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()

	from, err := parseTimeQuery(c.Query("from"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "from inválido (RFC3339)"})
	}
	to, err := parseTimeQuery(c.Query("to"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "to inválido (RFC3339)"})
	}
	after, err := parseMovementCursor(c.Query("after"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "cursor inválido"})
	}

	list, next, err := h.uc.ListMovements(c.Context(), userID, storeID, c.Params("productId"), from, to, after, page.Limit)
	if err != nil {
		return writeError(c, err)
	}
	out := dto.MovementPageResponse{Movements: make([]dto.MovementDTO, 0, len(list))}
	for _, m := range list {
		out.Movements = append(out.Movements, toMovementDTO(m))
	}
	if next != nil {
		out.NextAfter = next.AfterDate.Format(time.RFC3339Nano) + "|" + next.AfterID
	}
	return c.JSON(out)
}

// Replay godoc
// @Summary      Reconstruir la instantánea desde el diario
// @Description  Pliega el diario completo del producto y la compara con la fila materializada.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        productId  path  string  true  "ID de producto"
// @Success      200  {object}  dto.ReplayResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/inventory/{productId}/replay [get]
func (h *InventoryHandler) Replay(c *fiber.Ctx) error {
	storeID := GetStoreID(c)
	userID := GetUserID(c)
	if storeID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	productID := c.Params("productId")
	rebuilt, err := h.uc.RebuildSnapshot(c.Context(), userID, storeID, productID)
	if err != nil {
		return writeError(c, err)
	}
	current, err := h.uc.Snapshot(c.Context(), userID, storeID, productID)
	if err != nil {
		return writeError(c, err)
	}
	matches := rebuilt.AvailableQuantity.Equal(current.AvailableQuantity) &&
		rebuilt.DamagedQuantity.Equal(current.DamagedQuantity)
	return c.JSON(dto.ReplayResponse{
		Rebuilt: toInventoryResponse(rebuilt),
		Current: toInventoryResponse(current),
		Matches: matches,
	})
}

func toInventoryResponse(inv *entity.Inventory) dto.InventoryResponse {
	return dto.InventoryResponse{
		ProductID:         inv.ProductID,
		StoreID:           inv.StoreID,
		QuantityInStock:   inv.QuantityInStock,
		AvailableQuantity: inv.AvailableQuantity,
		ReservedQuantity:  inv.ReservedQuantity,
		DamagedQuantity:   inv.DamagedQuantity,
		ReorderLevel:      inv.ReorderLevel,
		IsOutOfStock:      inv.IsOutOfStock,
		LastStockUpdate:   inv.LastStockUpdate,
	}
}

func toMovementDTO(m *entity.StockMovement) dto.MovementDTO {
	return dto.MovementDTO{
		ID:           m.ID,
		ProductID:    m.ProductID,
		MovementType: m.MovementType,
		Direction:    m.Direction,
		Quantity:     m.Quantity,
		PricePerUnit: m.PricePerUnit,
		TotalPrice:   m.TotalPrice,
		MovementDate: m.MovementDate,
		Reference:    m.Reference,
		Notes:        m.Notes,
	}
}

func parseTimeQuery(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// parseMovementCursor parsea "<RFC3339Nano>|<id>".
func parseMovementCursor(s string) (*repository.MovementCursor, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.SplitN(s, "|", 2)
	if len(parts) != 2 || parts[1] == "" {
		return nil, fiber.ErrBadRequest
	}
	t, err := time.Parse(time.RFC3339Nano, parts[0])
	if err != nil {
		return nil, err
	}
	return &repository.MovementCursor{AfterDate: t, AfterID: parts[1]}, nil
}
