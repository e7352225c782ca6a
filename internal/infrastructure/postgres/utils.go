package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/pos-ledger/internal/domain"
)

// translateError mapea errores de PostgreSQL a errores de dominio:
// 55P03 (lock_not_available, por lock_timeout) -> ErrContention;
// 23505 (unique_violation) -> ErrDuplicate.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "55P03":
			return domain.ErrContention
		case "23505":
			return domain.ErrDuplicate
		}
	}
	return err
}
