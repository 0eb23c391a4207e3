package service

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinels por tipo de falla. Cada error tipado responde a errors.Is con su sentinel,
// asi los handlers pueden elegir el mensaje sin conocer el detalle.
var (
	ErrValidation         = errors.New("validation failed")
	ErrComputation        = errors.New("computation failed")
	ErrPersistence        = errors.New("persistence failed")
	ErrTimeout            = errors.New("timeout exceeded")
	ErrRateLimited        = errors.New("rate limited")
	ErrPredictionNotFound = errors.New("prediction not found")
)

// ValidationError nombra los campos faltantes o invalidos del input.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing or invalid fields: %s", strings.Join(e.Fields, ", "))
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// HasField indica si el campo esta entre los invalidos.
func (e *ValidationError) HasField(field string) bool {
	for _, f := range e.Fields {
		if f == field {
			return true
		}
	}
	return false
}

// ComputationError envuelve una falla inesperada de los modelos de impacto.
type ComputationError struct {
	Err error
}

func (e *ComputationError) Error() string { return "impact computation: " + e.Err.Error() }
func (e *ComputationError) Unwrap() error { return e.Err }
func (e *ComputationError) Is(target error) bool {
	return target == ErrComputation
}

// PersistenceError envuelve una falla del almacenamiento de predicciones.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *PersistenceError) Unwrap() error { return e.Err }
func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistence
}

// TimeoutError indica que una dependencia externa supero el limite del llamador.
type TimeoutError struct {
	Op  string
	Err error
}

func (e *TimeoutError) Error() string { return e.Op + " timed out: " + e.Err.Error() }
func (e *TimeoutError) Unwrap() error { return e.Err }
func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimeout
}
