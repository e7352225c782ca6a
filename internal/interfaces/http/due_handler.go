package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/pos-ledger/internal/application/dto"
	"github.com/jhoicas/pos-ledger/internal/application/dues"
	"github.com/jhoicas/pos-ledger/internal/domain/entity"
	"github.com/jhoicas/pos-ledger/internal/domain/repository"
)

// DueHandler maneja las peticiones HTTP del ledger de saldos (protegido).
type DueHandler struct {
	uc *dues.DueUseCase
}

// NewDueHandler construye el handler.
func NewDueHandler(uc *dues.DueUseCase) *DueHandler {
	return &DueHandler{uc: uc}
}

// PostTransaction godoc
// @Summary      Postear transacción sobre un saldo
// @Description  payment que exceda el saldo es rechazado (OVERPAYMENT);
//
//	adjustment re-basa el saldo con delta con signo.
//
// @Tags         dues
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del saldo"
// @Param        body  body  dto.PostDueTransactionRequest  true  "type, amount, remarks"
// @Success      201   {object}  dto.DueResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/dues/{id}/transactions [post]
func (h *DueHandler) PostTransaction(c *fiber.Ctx) error {
	storeID := GetStoreID(c)
	userID := GetUserID(c)
	if storeID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.PostDueTransactionRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	due, err := h.uc.PostTransaction(c.Context(), userID, storeID, c.Params("id"), in.Type, in.Amount, in.Remarks)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toDueResponse(due))
}

// GetByID godoc
// @Summary      Consultar saldo pendiente
// @Tags         dues
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del saldo"
// @Success      200  {object}  dto.DueResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/dues/{id} [get]
func (h *DueHandler) GetByID(c *fiber.Ctx) error {
	storeID := GetStoreID(c)
	userID := GetUserID(c)
	if storeID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	due, err := h.uc.GetDue(c.Context(), userID, storeID, c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toDueResponse(due))
}

// ListTransactions godoc
// @Summary      Historial de transacciones de un saldo
// @Description  Página ordenada ascendente por seq; after_seq reanuda desde el cursor.
// @Tags         dues
// @Security     Bearer
// @Produce      json
// @Param        id         path   string  true   "ID del saldo"
// @Param        after_seq  query  int     false  "cursor: último seq visto"
// @Param        limit      query  int     false  "tamaño de página (máx 100)"
// @Success      200  {object}  dto.DueTransactionPageResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/dues/{id}/transactions [get]
func (h *DueHandler) ListTransactions(c *fiber.Ctx) error {
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

	var after *repository.DueCursor
	if s := c.Query("after_seq"); s != "" {
		seq, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "after_seq inválido"})
		}
		after = &repository.DueCursor{AfterSeq: seq}
	}

	list, next, err := h.uc.ListTransactions(c.Context(), userID, storeID, c.Params("id"), after, page.Limit)
	if err != nil {
		return writeError(c, err)
	}
	out := dto.DueTransactionPageResponse{Transactions: make([]dto.DueTransactionDTO, 0, len(list))}
	for _, tx := range list {
		out.Transactions = append(out.Transactions, dto.DueTransactionDTO{
			ID:              tx.ID,
			Type:            tx.Type,
			Amount:          tx.Amount,
			Remarks:         tx.Remarks,
			TransactionDate: tx.TransactionDate,
			Seq:             tx.Seq,
		})
	}
	if next != nil {
		seq := next.AfterSeq
		out.NextAfterSeq = &seq
	}
	return c.JSON(out)
}

func toDueResponse(d *entity.CustomerDue) dto.DueResponse {
	return dto.DueResponse{
		ID:              d.ID,
		SaleID:          d.SaleID,
		StoreID:         d.StoreID,
		CustomerName:    d.CustomerName,
		TotalDue:        d.TotalDue,
		TotalPaid:       d.TotalPaid,
		RemainingAmount: d.RemainingAmount,
	}
}
