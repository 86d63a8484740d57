package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// isRetryableTxError verifica si un error de transacción es transitorio:
// conflicto de serialización (40001) o deadlock (40P01). En ambos casos la
// transacción murió pero los datos están intactos; reintentarla desde cero
// es seguro.
func isRetryableTxError(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "40001" || pgErr.Code == "40P01"
}

// nullable devuelve nil para strings vacíos, para persistir NULL en vez de "".
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
