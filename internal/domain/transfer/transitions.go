// Package transfer contiene la máquina de estados de los traslados.
// La tabla de transiciones es única y la comparten todos los puntos de
// llamada; no se duplican literales de estado por handler.
package transfer

import (
	"fmt"

	"github.com/jhoicas/StockLedger-api/internal/domain"
	"github.com/jhoicas/StockLedger-api/internal/domain/entity"
)

// transitions tabla explícita estado → destinos permitidos.
var transitions = map[entity.TransferStatus][]entity.TransferStatus{
	entity.TransferPending:   {entity.TransferInTransit, entity.TransferCancelled},
	entity.TransferInTransit: {entity.TransferCompleted, entity.TransferCancelled},
	entity.TransferCompleted: {},
	entity.TransferCancelled: {},
}

// ValidStatus indica si el string corresponde a un estado conocido.
func ValidStatus(s entity.TransferStatus) bool {
	_, ok := transitions[s]
	return ok
}

// Terminal indica si un estado no admite más transiciones.
func Terminal(s entity.TransferStatus) bool {
	return ValidStatus(s) && len(transitions[s]) == 0
}

// CanTransition indica si la transición from → to está permitida por la tabla.
func CanTransition(from, to entity.TransferStatus) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Guard devuelve nil si la transición es válida; si no, ErrInvalidTransition
// envuelto con el estado actual y el solicitado.
func Guard(from, to entity.TransferStatus) error {
	if !ValidStatus(to) {
		return fmt.Errorf("%w: estado desconocido %q", domain.ErrInvalidTransition, to)
	}
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s → %s", domain.ErrInvalidTransition, from, to)
	}
	return nil
}
