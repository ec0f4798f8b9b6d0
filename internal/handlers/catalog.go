package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/Romeo-the-rebel/Graduation-wishlist/internal/models"
)

// CatalogGift is one gift as the catalog renders it.
type CatalogGift struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	Price            float64 `json:"price"`
	Available        bool    `json:"available"`
	Link             string  `json:"link"`
	Image            string  `json:"image"`
	ImageURL         string  `json:"image_url,omitempty"`
	Type             int     `json:"type"`
	SelectedByViewer bool    `json:"selected_by_viewer"`
}

type CatalogSectionView struct {
	Type  int           `json:"type"`
	Label string        `json:"label"`
	Gifts []CatalogGift `json:"gifts"`
}

type CatalogResponse struct {
	Success  bool                 `json:"success"`
	Message  string               `json:"message,omitempty"`
	Sections []CatalogSectionView `json:"sections"`
}

// GetCatalog returns all gifts grouped into the four ordered category
// sections. Whether a gift is "selected by viewer" comes from the viewer's
// actual reservations, not from ad-hoc client state.
func GetCatalog(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := requireAuth(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	gifts, err := reservationService.ListGifts(ctx)
	if err != nil {
		log.Printf("ERROR: Failed to list gifts: %v", err)
		writeJSON(w, http.StatusInternalServerError, CatalogResponse{
			Success:  false,
			Message:  "Failed to load gifts",
			Sections: []CatalogSectionView{},
		})
		return
	}

	selected, err := reservationService.SelectedGiftIDs(ctx, userID)
	if err != nil {
		// The catalog still renders; the viewer's marks are just absent.
		log.Printf("failed to load selected gifts for %s: %v", userID, err)
		selected = map[string]bool{}
	}

	sections := make([]CatalogSectionView, 0, len(models.CategoryOrder))
	for _, section := range models.GroupByCategory(gifts) {
		view := CatalogSectionView{
			Type:  section.Type,
			Label: section.Label,
			Gifts: make([]CatalogGift, 0, len(section.Gifts)),
		}
		for _, g := range section.Gifts {
			cg := CatalogGift{
				ID:               g.ID.Hex(),
				Name:             g.Name,
				Price:            g.Price,
				Available:        g.Available,
				Link:             g.Link,
				Image:            g.Image,
				Type:             g.Type,
				SelectedByViewer: selected[g.ID.Hex()],
			}
			if cloudinaryService != nil {
				cg.ImageURL = cloudinaryService.ImageURL(g.Image)
			}
			view.Gifts = append(view.Gifts, cg)
		}
		sections = append(sections, view)
	}

	writeJSON(w, http.StatusOK, CatalogResponse{Success: true, Sections: sections})
}
