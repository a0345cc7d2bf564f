package service

import (
	"strings"

	"bridge/internal/model"
)

// fuelFilterMap translates canonical Arabic fuel values into the Haraj
// filter vocabulary. Unmapped values pass through unchanged.
var fuelFilterMap = map[string]string{
	"بنزين":  "gasoline",
	"ديزل":   "diesel",
	"هايبرد": "hybrid",
	"كهرب":   "electric",
	"كهرباء": "electric",
}

// CompileFilters maps a preference record onto the Haraj search filter
// schema. Unset fields never produce a key. Deterministic and total.
func CompileFilters(p *model.Preferences) map[string]any {
	f := map[string]any{}
	if p == nil {
		return f
	}
	if p.Make != nil {
		f["make"] = *p.Make
	}
	if p.Model != nil {
		f["model"] = *p.Model
	}
	if p.City != nil {
		f["cityName"] = *p.City
	}
	if p.YearMin != nil {
		f["yearMin"] = *p.YearMin
	}
	if p.YearMax != nil {
		f["yearMax"] = *p.YearMax
	}
	if p.PriceMin != nil {
		f["priceMin"] = *p.PriceMin
	}
	if p.PriceMax != nil {
		f["priceMax"] = *p.PriceMax
	}
	if p.Gear != nil {
		// Substring check on the canonical marker: the merged gear
		// value may carry dialect variants of "automatic".
		if strings.Contains(*p.Gear, "اوت") {
			f["gear"] = "automatic"
		} else {
			f["gear"] = "manual"
		}
	}
	if p.Fuel != nil {
		if mapped, ok := fuelFilterMap[*p.Fuel]; ok {
			f["fuel"] = mapped
		} else {
			f["fuel"] = *p.Fuel
		}
	}
	return f
}
