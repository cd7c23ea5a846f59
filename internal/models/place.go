package models

// Place is a static catalog entry.
type Place struct {
	ID          int      `json:"id" expr:"id"`
	Name        string   `json:"name" expr:"name"`
	Category    string   `json:"category" expr:"category"`
	Address     string   `json:"address" expr:"address"`
	Description string   `json:"description" expr:"description"`
	Image       string   `json:"image,omitempty" expr:"image"`
	Rating      float64  `json:"rating" expr:"rating"`
	Tags        []string `json:"tags,omitempty" expr:"tags"`
}

// Location is a static coordinate entry.
type Location struct {
	ID      int     `json:"id"`
	PlaceID int     `json:"place_id"`
	Name    string  `json:"name"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
}
