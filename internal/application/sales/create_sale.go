package sales

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-ledger/internal/application/dto"
	"github.com/jhoicas/pos-ledger/internal/domain"
	"github.com/jhoicas/pos-ledger/internal/domain/entity"
	"github.com/jhoicas/pos-ledger/internal/domain/money"
	"github.com/jhoicas/pos-ledger/internal/domain/repository"
	domainsales "github.com/jhoicas/pos-ledger/internal/domain/sales"
)

// SalesUseCase procesador de ventas: crea la venta con sus líneas, descuenta
// stock línea por línea en la misma transacción y abre el saldo pendiente
// cuando el pago no cubre el total.
type SalesUseCase struct {
	txRunner    TxRunner
	gate        Authorizer
	storeRepo   repository.StoreRepository
	productRepo repository.ProductRepository
	saleRepo    repository.SaleRepository
	dueRepo     repository.CustomerDueRepository
	receipts    ReceiptGenerator
}

// NewSalesUseCase construye el caso de uso.
func NewSalesUseCase(
	txRunner TxRunner,
	gate Authorizer,
	storeRepo repository.StoreRepository,
	productRepo repository.ProductRepository,
	saleRepo repository.SaleRepository,
	dueRepo repository.CustomerDueRepository,
	receipts ReceiptGenerator,
) *SalesUseCase {
	return &SalesUseCase{
		txRunner:    txRunner,
		gate:        gate,
		storeRepo:   storeRepo,
		productRepo: productRepo,
		saleRepo:    saleRepo,
		dueRepo:     dueRepo,
		receipts:    receipts,
	}
}

// CreateSale crea una venta completa: valida líneas contra productos activos de
// la tienda, calcula los derivados por línea y cabecera, descuenta stock por
// cada línea (todo-o-nada) y crea el CustomerDue si queda saldo.
// Los locks de producto se toman en orden ascendente de ProductID para evitar
// deadlocks entre ventas concurrentes con productos solapados.
func (uc *SalesUseCase) CreateSale(ctx context.Context, actorID, storeID string, in dto.CreateSaleRequest) (*entity.Sale, error) {
	if err := uc.gate.Authorize(ctx, actorID, ActionCreateSale, storeID); err != nil {
		return nil, err
	}
	if len(in.Lines) == 0 || in.PaidAmount.LessThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	saleType := in.SaleType
	if saleType == "" {
		saleType = entity.SaleTypeCustomer
	}
	if saleType != entity.SaleTypeCustomer && saleType != entity.SaleTypeInternal {
		return nil, domain.ErrInvalidInput
	}
	payMethod := in.PaymentMethod
	if payMethod == "" {
		payMethod = entity.PayCash
	}
	switch payMethod {
	case entity.PayCash, entity.PayCredit, entity.PayMobile, entity.PayBankTransfer:
	default:
		return nil, domain.ErrInvalidInput
	}

	store, err := uc.storeRepo.GetByID(storeID)
	if err != nil || store == nil || !store.IsActive {
		return nil, domain.ErrNotFound
	}

	now := time.Now()
	saleID := uuid.New().String()

	// Validación y cálculo de líneas fuera de la tx (solo lectura de productos;
	// los precios quedan copiados en la línea).
	lines := make([]entity.SaleLine, 0, len(in.Lines))
	for i := range in.Lines {
		lineIn := &in.Lines[i]
		product, err := uc.productRepo.GetByID(lineIn.ProductID)
		if err != nil || product == nil {
			return nil, domain.ErrNotFound
		}
		if product.StoreID != storeID {
			return nil, domain.ErrForbidden
		}
		if !product.IsActive {
			return nil, domain.ErrInvalidInput
		}
		if money.IsPositive(product.MinOrderQuantity) && lineIn.Quantity.LessThan(product.MinOrderQuantity) {
			return nil, domain.ErrInvalidInput
		}
		if money.IsPositive(lineIn.Discount) && !product.IsDiscountable {
			return nil, domain.ErrInvalidInput
		}
		totals, err := domainsales.ComputeLine(domainsales.LineInput{
			Quantity:      lineIn.Quantity,
			SellPrice:     product.SellPrice,
			PurchasePrice: product.PurchasePrice,
			TaxRate:       product.TaxRate,
			Discount:      lineIn.Discount,
			DiscountType:  lineIn.DiscountType,
		})
		if err != nil {
			return nil, err
		}
		discountType := lineIn.DiscountType
		if discountType == "" {
			discountType = entity.DiscountFlat
		}
		lines = append(lines, entity.SaleLine{
			ID:            uuid.New().String(),
			SaleID:        saleID,
			StoreID:       storeID,
			ProductID:     product.ID,
			Quantity:      money.Round(lineIn.Quantity),
			PurchasePrice: product.PurchasePrice,
			SellPrice:     product.SellPrice,
			TotalPrice:    totals.TotalPrice,
			TaxRate:       product.TaxRate,
			TaxAmount:     totals.TaxAmount,
			Discount:      lineIn.Discount,
			DiscountType:  discountType,
			TotalDiscount: totals.TotalDiscount,
			Profit:        totals.Profit,
			ReturnAmount:  decimal.Zero,
			Notes:         lineIn.Notes,
			CreatedAt:     now,
		})
	}

	sums := domainsales.SumLines(lines)
	sale := &entity.Sale{
		ID:            saleID,
		StoreID:       storeID,
		TotalAmount:   money.Round(sums.Total.Add(sums.Tax)),
		PaidAmount:    money.Round(in.PaidAmount),
		SaleStatus:    entity.SaleStatusPending,
		PaymentMethod: payMethod,
		SaleDate:      now,
		Discount:      sums.Discount,
		TaxAmount:     sums.Tax,
		SaleType:      saleType,
		RefundAmount:  decimal.Zero,
		CreatedBy:     actorID,
		CreatedAt:     now,
		UpdatedAt:     now,
		Lines:         lines,
	}
	sale.RecomputePayment()

	movementType := entity.MovementSale
	if saleType == entity.SaleTypeInternal {
		movementType = entity.MovementInternalUse
	}

	// Orden global de adquisición de locks: ProductID ascendente.
	ordered := make([]*entity.SaleLine, len(sale.Lines))
	for i := range sale.Lines {
		ordered[i] = &sale.Lines[i]
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ProductID < ordered[j].ProductID })

	err = uc.txRunner.RunSale(ctx, func(
		movRepo repository.StockMovementRepository,
		invRepo repository.InventoryRepository,
		saleRepo repository.SaleRepository,
		dueRepo repository.CustomerDueRepository,
	) error {
		for _, line := range ordered {
			inv, err := invRepo.GetForUpdate(storeID, line.ProductID)
			if err != nil {
				return err
			}
			if inv.AvailableQuantity.LessThan(line.Quantity) {
				return domain.ErrInsufficientStock
			}
			inv.AvailableQuantity = money.Round(inv.AvailableQuantity.Sub(line.Quantity))
			inv.LastStockUpdate = now
			inv.UpdatedBy = actorID
			inv.UpdatedAt = now
			inv.Recompute()
			if err := invRepo.Upsert(inv); err != nil {
				return err
			}
			mov := &entity.StockMovement{
				ID:           uuid.New().String(),
				ProductID:    line.ProductID,
				StoreID:      storeID,
				MovementType: movementType,
				Direction:    entity.DirectionOut,
				Quantity:     line.Quantity,
				PricePerUnit: line.SellPrice,
				MovementDate: now,
				Reference:    saleID,
				CreatedBy:    actorID,
				CreatedAt:    now,
			}
			mov.ComputeTotal()
			if err := movRepo.Create(mov); err != nil {
				return err
			}
		}

		if err := sale.Transition(entity.SaleStatusCompleted); err != nil {
			return err
		}

		// Saldo pendiente: solo ventas a cliente con pago incompleto.
		if saleType == entity.SaleTypeCustomer && money.IsPositive(sale.RemainingAmount) {
			due := &entity.CustomerDue{
				ID:              uuid.New().String(),
				SaleID:          saleID,
				StoreID:         storeID,
				CustomerName:    in.CustomerName,
				CustomerContact: in.CustomerContact,
				CustomerAddress: in.CustomerAddress,
				TotalDue:        decimal.Zero,
				TotalPaid:       decimal.Zero,
				CreatedAt:       now,
				UpdatedAt:       now,
			}
			opening := &entity.DueTransaction{
				ID:              uuid.New().String(),
				CustomerDueID:   due.ID,
				StoreID:         storeID,
				Type:            entity.DueTxDue,
				Amount:          sale.RemainingAmount,
				Remarks:         "apertura por venta " + saleID,
				TransactionDate: now,
				Seq:             due.NextSeq,
				CreatedBy:       actorID,
				CreatedAt:       now,
			}
			due.NextSeq++
			due.Apply(opening)
			if err := dueRepo.Create(due); err != nil {
				return err
			}
			if err := dueRepo.AppendTransaction(opening); err != nil {
				return err
			}
			sale.CustomerDueID = due.ID
		}

		return saleRepo.Create(sale)
	})
	if err != nil {
		return nil, err
	}
	return sale, nil
}

// GetSale lectura de una venta con sus líneas.
func (uc *SalesUseCase) GetSale(ctx context.Context, actorID, storeID, saleID string) (*entity.Sale, error) {
	if err := uc.gate.Authorize(ctx, actorID, ActionReadSale, storeID); err != nil {
		return nil, err
	}
	sale, err := uc.saleRepo.GetByID(storeID, saleID)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, domain.ErrNotFound
	}
	return sale, nil
}

// Receipt genera el recibo PDF de una venta.
func (uc *SalesUseCase) Receipt(ctx context.Context, actorID, storeID, saleID string) ([]byte, error) {
	sale, err := uc.GetSale(ctx, actorID, storeID, saleID)
	if err != nil {
		return nil, err
	}
	store, err := uc.storeRepo.GetByID(storeID)
	if err != nil || store == nil {
		return nil, domain.ErrNotFound
	}
	return uc.receipts.GenerateSaleReceipt(ctx, sale, store)
}
