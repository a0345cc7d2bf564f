package model

// Preferences represents the structured vehicle-search criteria
// accumulated for one conversation. Every field is optional; nil means
// the user has not expressed that criterion yet.
type Preferences struct {
	Make     *string `json:"make,omitempty"`
	Model    *string `json:"model,omitempty"`
	City     *string `json:"city,omitempty"`
	YearMin  *int    `json:"year_min,omitempty"`
	YearMax  *int    `json:"year_max,omitempty"`
	PriceMin *int    `json:"price_min,omitempty"`
	PriceMax *int    `json:"price_max,omitempty"`
	Gear     *string `json:"gear,omitempty"`
	Fuel     *string `json:"fuel,omitempty"`
}

// MergePreferences combines an accumulated record with a newly extracted
// one, field by field. A field from next wins only when it is set;
// otherwise the previous value carries over. Neither input is mutated.
func MergePreferences(prev, next *Preferences) *Preferences {
	merged := &Preferences{}
	if prev != nil {
		*merged = *prev
	}
	if next == nil {
		return merged
	}
	if next.Make != nil {
		merged.Make = next.Make
	}
	if next.Model != nil {
		merged.Model = next.Model
	}
	if next.City != nil {
		merged.City = next.City
	}
	if next.YearMin != nil {
		merged.YearMin = next.YearMin
	}
	if next.YearMax != nil {
		merged.YearMax = next.YearMax
	}
	if next.PriceMin != nil {
		merged.PriceMin = next.PriceMin
	}
	if next.PriceMax != nil {
		merged.PriceMax = next.PriceMax
	}
	if next.Gear != nil {
		merged.Gear = next.Gear
	}
	if next.Fuel != nil {
		merged.Fuel = next.Fuel
	}
	return merged
}

// IsEmpty reports whether no criterion has been set at all.
func (p *Preferences) IsEmpty() bool {
	if p == nil {
		return true
	}
	return p.Make == nil && p.Model == nil && p.City == nil &&
		p.YearMin == nil && p.YearMax == nil &&
		p.PriceMin == nil && p.PriceMax == nil &&
		p.Gear == nil && p.Fuel == nil
}
