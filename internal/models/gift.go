package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Category codes for gifts. The catalog is rendered as four fixed sections
// in this order; gifts are seeded out-of-band with one of these codes.
const (
	CategoryTechnology = 1
	CategoryClothing   = 2
	CategoryCamping    = 3
	CategorySports     = 4
)

// CategoryOrder is the rendering order of catalog sections.
var CategoryOrder = []int{CategoryTechnology, CategoryClothing, CategoryCamping, CategorySports}

var categoryLabels = map[int]string{
	CategoryTechnology: "Technology",
	CategoryClothing:   "Clothing",
	CategoryCamping:    "Camping",
	CategorySports:     "Sports",
}

// CategoryLabel returns the display label for a category code, or "" for
// codes outside the known set.
func CategoryLabel(code int) string {
	return categoryLabels[code]
}

type Gift struct {
	ID primitive.ObjectID `bson:"_id,omitempty" json:"id"`

	Name      string  `bson:"name" json:"name"`
	Price     float64 `bson:"price" json:"price"`
	Available bool    `bson:"available" json:"available"`
	Link      string  `bson:"link" json:"link"`   // external retailer URL
	Image     string  `bson:"image" json:"image"` // object-storage file id
	Type      int     `bson:"type" json:"type"`   // category code
}

// CatalogSection is one labeled category block of the catalog view.
type CatalogSection struct {
	Type  int    `json:"type"`
	Label string `json:"label"`
	Gifts []Gift `json:"gifts"`
}

// GroupByCategory splits gifts into the fixed ordered sections. Categories
// with no gifts are omitted; gifts with an unknown category code are dropped,
// matching how the dashboard renders only the four known sections.
func GroupByCategory(gifts []Gift) []CatalogSection {
	byType := make(map[int][]Gift)
	for _, g := range gifts {
		byType[g.Type] = append(byType[g.Type], g)
	}

	sections := make([]CatalogSection, 0, len(CategoryOrder))
	for _, code := range CategoryOrder {
		group := byType[code]
		if len(group) == 0 {
			continue
		}
		sections = append(sections, CatalogSection{
			Type:  code,
			Label: categoryLabels[code],
			Gifts: group,
		})
	}
	return sections
}
