package domain

import "errors"

// Errores de dominio (sin dependencias externas).
// La capa HTTP los traduce a códigos 4xx; ninguno corrompe el estado del
// ledger: toda operación que falla se revierte completa (ver TxRunner).
var (
	ErrNotFound             = errors.New("recurso no encontrado")
	ErrDuplicate            = errors.New("recurso duplicado")
	ErrValidation           = errors.New("entrada inválida")
	ErrInsufficientStock    = errors.New("stock disponible insuficiente")
	ErrInsufficientQuantity = errors.New("cantidad en existencia insuficiente")
	ErrInvalidTransfer      = errors.New("traslado inválido")
	ErrInvalidTransition    = errors.New("transición de estado no permitida")
	ErrUnauthorized         = errors.New("no autorizado")
	ErrForbidden            = errors.New("acceso denegado")
)
