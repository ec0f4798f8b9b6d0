package handlers

import (
	"net/http"

	"github.com/Romeo-the-rebel/Graduation-wishlist/internal/config"
	"github.com/Romeo-the-rebel/Graduation-wishlist/internal/services"
)

// uploadFolder is the Cloudinary folder all wishlist images land in.
const uploadFolder = "wishlist"

var cloudinaryService *services.CloudinaryService

func InitCloudinaryService(cfg *config.Config) error {
	service, err := services.NewCloudinaryService(
		cfg.CloudinaryName,
		cfg.CloudinaryAPIKey,
		cfg.CloudinaryAPISecret,
	)
	if err != nil {
		return err
	}
	cloudinaryService = service
	return nil
}

type UploadResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	FileID  string `json:"file_id,omitempty"`
	URL     string `json:"url,omitempty"`
}

// UploadFile uploads an image and returns its storage id plus delivery URL.
// Requires an authenticated session.
func UploadFile(w http.ResponseWriter, r *http.Request) {
	if _, _, ok := requireAuth(r); !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	if cloudinaryService == nil {
		writeError(w, http.StatusInternalServerError, "File upload service not available")
		return
	}

	// Parse multipart form (max 10MB)
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "Failed to parse form")
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file provided")
		return
	}
	defer file.Close()

	fileID, err := cloudinaryService.UploadImageFromHeader(r.Context(), fileHeader, uploadFolder)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to upload file")
		return
	}

	writeJSON(w, http.StatusOK, UploadResponse{
		Success: true,
		Message: "File uploaded successfully",
		FileID:  fileID,
		URL:     cloudinaryService.ImageURL(fileID),
	})
}
