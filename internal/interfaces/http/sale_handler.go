package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/pos-ledger/internal/application/dto"
	"github.com/jhoicas/pos-ledger/internal/application/sales"
	"github.com/jhoicas/pos-ledger/internal/domain/entity"
)

// SaleHandler maneja las peticiones HTTP del procesador de ventas (protegido).
type SaleHandler struct {
	uc *sales.SalesUseCase
}

// NewSaleHandler construye el handler.
func NewSaleHandler(uc *sales.SalesUseCase) *SaleHandler {
	return &SaleHandler{uc: uc}
}

// Create godoc
// @Summary      Crear venta
// @Description  Posteo todo-o-nada: calcula derivados por línea, descuenta stock
//
//	y abre el saldo pendiente si el pago no cubre el total.
//
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateSaleRequest  true  "lines, paid_amount, payment_method, sale_type"
// @Success      201   {object}  dto.SaleResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/sales [post]
func (h *SaleHandler) Create(c *fiber.Ctx) error {
	storeID := GetStoreID(c)
	userID := GetUserID(c)
	if storeID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.CreateSaleRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	sale, err := h.uc.CreateSale(c.Context(), userID, storeID, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toSaleResponse(sale))
}

// GetByID godoc
// @Summary      Consultar venta
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de venta"
// @Success      200  {object}  dto.SaleResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{id} [get]
func (h *SaleHandler) GetByID(c *fiber.Ctx) error {
	storeID := GetStoreID(c)
	userID := GetUserID(c)
	if storeID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	sale, err := h.uc.GetSale(c.Context(), userID, storeID, c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toSaleResponse(sale))
}

// Refund godoc
// @Summary      Devolver venta
// @Description  Solo desde completed. amount cero o ausente = devolución total;
//
//	parcial restaura stock prorrateado por el monto.
//
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de venta"
// @Param        body  body  dto.RefundSaleRequest  false  "amount"
// @Success      200   {object}  dto.SaleResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/sales/{id}/refund [post]
func (h *SaleHandler) Refund(c *fiber.Ctx) error {
	storeID := GetStoreID(c)
	userID := GetUserID(c)
	if storeID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.RefundSaleRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
		}
	}
	sale, err := h.uc.RefundSale(c.Context(), userID, storeID, c.Params("id"), in.Amount)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toSaleResponse(sale))
}

// Cancel godoc
// @Summary      Cancelar venta pendiente
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de venta"
// @Success      200  {object}  dto.SaleResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/sales/{id}/cancel [post]
func (h *SaleHandler) Cancel(c *fiber.Ctx) error {
	storeID := GetStoreID(c)
	userID := GetUserID(c)
	if storeID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	sale, err := h.uc.CancelSale(c.Context(), userID, storeID, c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toSaleResponse(sale))
}

// Receipt godoc
// @Summary      Recibo PDF de una venta
// @Tags         sales
// @Security     Bearer
// @Produce      application/pdf
// @Param        id  path  string  true  "ID de venta"
// @Success      200  {file}  binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{id}/receipt [get]
func (h *SaleHandler) Receipt(c *fiber.Ctx) error {
	storeID := GetStoreID(c)
	userID := GetUserID(c)
	if storeID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	pdfBytes, err := h.uc.Receipt(c.Context(), userID, storeID, c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="recibo.pdf"`)
	return c.Send(pdfBytes)
}

func toSaleResponse(s *entity.Sale) dto.SaleResponse {
	out := dto.SaleResponse{
		ID:              s.ID,
		StoreID:         s.StoreID,
		CustomerDueID:   s.CustomerDueID,
		TotalAmount:     s.TotalAmount,
		PaidAmount:      s.PaidAmount,
		RemainingAmount: s.RemainingAmount,
		TaxAmount:       s.TaxAmount,
		Discount:        s.Discount,
		SaleStatus:      s.SaleStatus,
		PaymentStatus:   s.PaymentStatus,
		PaymentMethod:   s.PaymentMethod,
		SaleType:        s.SaleType,
		SaleDate:        s.SaleDate,
		IsRefunded:      s.IsRefunded,
		RefundAmount:    s.RefundAmount,
		Lines:           make([]dto.SaleLineResponse, 0, len(s.Lines)),
	}
	for i := range s.Lines {
		l := &s.Lines[i]
		out.Lines = append(out.Lines, dto.SaleLineResponse{
			ID:            l.ID,
			ProductID:     l.ProductID,
			Quantity:      l.Quantity,
			SellPrice:     l.SellPrice,
			TotalPrice:    l.TotalPrice,
			TaxAmount:     l.TaxAmount,
			TotalDiscount: l.TotalDiscount,
			Profit:        l.Profit,
			IsReturned:    l.IsReturned,
			ReturnAmount:  l.ReturnAmount,
		})
	}
	return out
}
