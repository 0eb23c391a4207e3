package domain

import "strings"

// Categorias de producto reconocidas por el motor de impacto.
const (
	CategoryElectronics = "electronics"
	CategoryFurniture   = "furniture"
	CategoryClothing    = "clothing"
	CategoryFitness     = "fitness"
	CategoryAppliances  = "appliances"
	CategoryAutomotive  = "automotive"
	CategoryHome        = "home"
	CategoryPersonal    = "personal"
	CategoryOther       = "other"
)

// KnownCategories lista las categorias del catalogo. Una categoria fuera de la lista
// es valida: simplemente recibe multiplicadores neutros.
var KnownCategories = []string{
	CategoryElectronics,
	CategoryFurniture,
	CategoryClothing,
	CategoryFitness,
	CategoryAppliances,
	CategoryAutomotive,
	CategoryHome,
	CategoryPersonal,
	CategoryOther,
}

// NormalizeCategory deja la categoria en minusculas y sin espacios.
func NormalizeCategory(category string) string {
	return strings.ToLower(strings.TrimSpace(category))
}

// PurchaseDecision describe la compra a comparar entre la opcion barata y la de calidad.
type PurchaseDecision struct {
	ItemName     string  `json:"item_name"`
	Category     string  `json:"category"`
	CheapPrice   float64 `json:"cheap_price"`
	QualityPrice float64 `json:"quality_price"`
}

// Variant identifica una de las dos alternativas de compra.
type Variant string

const (
	VariantCheap   Variant = "cheap"
	VariantQuality Variant = "quality"
)

// Variants en el orden en que se evaluan.
var Variants = []Variant{VariantCheap, VariantQuality}

// Price devuelve el precio de la variante dentro de la decision.
func (d PurchaseDecision) Price(v Variant) float64 {
	if v == VariantQuality {
		return d.QualityPrice
	}
	return d.CheapPrice
}

// IsKnownCategory indica si la categoria (ya normalizada) pertenece al catalogo.
func IsKnownCategory(category string) bool {
	for _, c := range KnownCategories {
		if c == category {
			return true
		}
	}
	return false
}
