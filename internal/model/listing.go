package model

// SearchResult is the payload of a Haraj GraphQL Search call: the total
// match count plus one page of listings.
type SearchResult struct {
	Total int       `json:"total"`
	Items []Listing `json:"items"`
}

// Listing represents a single vehicle listing as returned by Haraj.
type Listing struct {
	ID     int64   `json:"id"`
	Title  string  `json:"title"`
	Price  int     `json:"price"`
	City   *City   `json:"city,omitempty"`
	Car    *Car    `json:"car,omitempty"`
	URL    string  `json:"url"`
	Images []Image `json:"images,omitempty"`
}

// City identifies the listing's city in both scripts.
type City struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	EnName string `json:"enName"`
}

// Car holds the vehicle attributes attached to a listing.
type Car struct {
	Make    string `json:"make"`
	Model   string `json:"model"`
	Year    int    `json:"year"`
	Mileage int    `json:"mileage"`
	Fuel    string `json:"fuel"`
	Gear    string `json:"gear"`
}

// Image is a listing photo reference.
type Image struct {
	URL string `json:"url"`
}
