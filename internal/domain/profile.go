package domain

import (
	"math"
	"time"
)

const (
	// DefaultIncome se usa cuando el perfil no trae ingresos (o trae un valor no positivo).
	DefaultIncome = 50000.0
	// DefaultAge es la edad asumida para usuarios anonimos.
	DefaultAge = 30
	// DefaultHealthStatus es el estado de salud asumido para usuarios anonimos.
	DefaultHealthStatus = "good"
)

// UserProfile contiene los datos del usuario que alimentan los modelos de impacto.
// Todos los campos son opcionales; los ausentes caen a valores por defecto.
type UserProfile struct {
	Age             *int             `json:"age,omitempty"`
	CurrentIncome   *float64         `json:"current_income,omitempty"`
	HealthStatus    string           `json:"health_status,omitempty"` // excellent, good, fair, poor
	Location        string           `json:"location,omitempty"`
	Lifestyle       []string         `json:"lifestyle_preferences,omitempty"`
	PurchaseHistory []PurchaseRecord `json:"purchase_history,omitempty"`
}

type PurchaseRecord struct {
	Item               string    `json:"item"`
	Price              float64   `json:"price"`
	Category           string    `json:"category"`
	Date               time.Time `json:"date"`
	SatisfactionRating int       `json:"satisfaction_rating,omitempty"`
}

// DefaultUserProfile es el perfil que se usa cuando no hay usuario o no existe en la base.
func DefaultUserProfile() UserProfile {
	age := DefaultAge
	income := DefaultIncome
	return UserProfile{
		Age:           &age,
		CurrentIncome: &income,
		HealthStatus:  DefaultHealthStatus,
	}
}

// AgeOrZero devuelve la edad o 0 si no esta informada (0 nunca activa el bonus por edad).
func (p UserProfile) AgeOrZero() int {
	if p.Age == nil {
		return 0
	}
	return *p.Age
}

// IncomeOrDefault devuelve el ingreso informado o DefaultIncome si falta, no es positivo o no es finito.
func (p UserProfile) IncomeOrDefault() float64 {
	if p.CurrentIncome == nil || *p.CurrentIncome <= 0 || math.IsNaN(*p.CurrentIncome) || math.IsInf(*p.CurrentIncome, 0) {
		return DefaultIncome
	}
	return *p.CurrentIncome
}
