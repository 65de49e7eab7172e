package sandbox

import "github.com/shopspring/decimal"

// Catalog categories offered by the storefront
const (
	CategoryBeauty  = "BEAUTY_PRODUCTS"
	CategoryCloths  = "CLOTHS"
	CategoryGadgets = "GADGETS"
	CategoryMobiles = "MOBILES"
)

// Categories a product may be filed under
var Categories = []string{CategoryBeauty, CategoryCloths, CategoryGadgets, CategoryMobiles}

// SeedCatalog fills an empty state with a small demo catalog
func SeedCatalog(s *State) {
	price := decimal.RequireFromString

	s.AddProduct("Classic Tee", "Heavyweight cotton t-shirt", CategoryCloths,
		Variant{Size: "M", Color: "black", Price: price("100.00"), Stock: 25},
		Variant{Size: "L", Color: "black", Price: price("100.00"), Stock: 10},
	)
	s.AddProduct("Canvas Cap", "Adjustable six-panel cap", CategoryCloths,
		Variant{Size: "OS", Color: "navy", Price: price("50.00"), Stock: 40},
	)
	s.AddProduct("Rose Face Oil", "Cold-pressed facial oil, 30ml", CategoryBeauty,
		Variant{Size: "30ml", Price: price("24.90"), Stock: 12},
	)
	s.AddProduct("Pocket Speaker", "Bluetooth speaker with 12h battery", CategoryGadgets,
		Variant{Color: "red", Price: price("39.99"), Stock: 8},
		Variant{Color: "grey", Price: price("39.99"), Stock: 0},
	)
	s.AddProduct("Nova 5", "6.1 inch phone, 128GB", CategoryMobiles,
		Variant{Size: "128GB", Color: "silver", Price: price("499.00"), Stock: 3},
	)
}
