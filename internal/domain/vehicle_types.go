package domain

import (
	"fmt"
	"strings"
)

type VehicleCategory string

func (c VehicleCategory) String() string {
	return string(c)
}

const (
	CategoryCars        VehicleCategory = "carros"    // Cars
	CategoryMotorcycles VehicleCategory = "motos"     // Motorcycles
	CategoryTrucks      VehicleCategory = "caminhoes" // Trucks
)

var VehicleCategories = []VehicleCategory{
	CategoryCars,
	CategoryMotorcycles,
	CategoryTrucks,
}

func (c VehicleCategory) GetCategoryName() string {
	switch c {
	case CategoryCars:
		return "Carros"
	case CategoryMotorcycles:
		return "Motos"
	case CategoryTrucks:
		return "Caminhões"
	default:
		return "Desconhecido"
	}
}

// ParseVehicleCategory accepts the API path segment or its English alias.
func ParseVehicleCategory(s string) (VehicleCategory, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "carros", "cars", "car":
		return CategoryCars, nil
	case "motos", "motorcycles", "motorcycle":
		return CategoryMotorcycles, nil
	case "caminhoes", "trucks", "truck":
		return CategoryTrucks, nil
	case "":
		return "", fmt.Errorf("%w: vehicle category is required", ErrValidation)
	default:
		return "", fmt.Errorf("%w: unknown vehicle category %q", ErrValidation, s)
	}
}
