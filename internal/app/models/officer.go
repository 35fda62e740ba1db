package models

// Officer is an officer card; Name is the key inside officers and every history bucket
type Officer struct {
	Name          string `json:"name"`
	Position      string `json:"position"`
	PhotoPath     string `json:"photo_path"`
	CardImagePath string `json:"card_image_path"`
	StartDate     string `json:"start_date"`
}

// WithPhoto sets both the portrait and the card image to path
func (o Officer) WithPhoto(path string) Officer {
	o.PhotoPath = path
	o.CardImagePath = path
	return o
}
