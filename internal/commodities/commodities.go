/**
 * @description
 * Static catalog of tracked commodity symbols.
 * Symbols are verified to resolve against the commodities-api.com rate endpoint.
 *
 * @dependencies
 * - none (pure data)
 */

package commodities

import "sort"

// Info describes one tracked commodity
type Info struct {
	Name     string
	Category string
	Unit     string
}

// Category values used across the catalog
const (
	CategoryAgriculture      = "agriculture"
	CategoryMetalsPrecious   = "metals_precious"
	CategoryMetalsIndustrial = "metals_industrial"
	CategoryEnergy           = "energy"
)

// Catalog maps symbol -> commodity metadata
var Catalog = map[string]Info{
	// Agriculture (7)
	"COFFEE":  {Name: "Coffee", Category: CategoryAgriculture, Unit: "per lb"},
	"WHEAT":   {Name: "Wheat", Category: CategoryAgriculture, Unit: "per bushel"},
	"CORN":    {Name: "Corn", Category: CategoryAgriculture, Unit: "per bushel"},
	"SOYBEAN": {Name: "Soybeans", Category: CategoryAgriculture, Unit: "per bushel"},
	"RICE":    {Name: "Rice", Category: CategoryAgriculture, Unit: "per cwt"},
	"SUGAR":   {Name: "Sugar", Category: CategoryAgriculture, Unit: "per lb"},
	"COTTON":  {Name: "Cotton", Category: CategoryAgriculture, Unit: "per lb"},

	// Precious Metals (4)
	"XAU": {Name: "Gold", Category: CategoryMetalsPrecious, Unit: "per troy ounce"},
	"XAG": {Name: "Silver", Category: CategoryMetalsPrecious, Unit: "per troy ounce"},
	"XPT": {Name: "Platinum", Category: CategoryMetalsPrecious, Unit: "per troy ounce"},
	"XPD": {Name: "Palladium", Category: CategoryMetalsPrecious, Unit: "per troy ounce"},

	// Industrial Metals (4)
	"XCU": {Name: "Copper", Category: CategoryMetalsIndustrial, Unit: "per lb"},
	"ALU": {Name: "Aluminum", Category: CategoryMetalsIndustrial, Unit: "per metric ton"},
	"NI":  {Name: "Nickel", Category: CategoryMetalsIndustrial, Unit: "per metric ton"},
	"ZNC": {Name: "Zinc", Category: CategoryMetalsIndustrial, Unit: "per metric ton"},

	// Energy (3)
	"BRENTOIL": {Name: "Brent Crude Oil", Category: CategoryEnergy, Unit: "per barrel"},
	"WTIOIL":   {Name: "WTI Crude Oil", Category: CategoryEnergy, Unit: "per barrel"},
	"NG":       {Name: "Natural Gas", Category: CategoryEnergy, Unit: "per MMBtu"},
}

// AllSymbols returns every tracked symbol in stable (sorted) order.
// Jobs iterate this list, so a stable order keeps run logs comparable.
func AllSymbols() []string {
	symbols := make([]string, 0, len(Catalog))
	for symbol := range Catalog {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)
	return symbols
}

// Lookup returns the catalog entry for a symbol
func Lookup(symbol string) (Info, bool) {
	info, ok := Catalog[symbol]
	return info, ok
}
