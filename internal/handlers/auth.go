package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Romeo-the-rebel/Graduation-wishlist/internal/database"
	"github.com/Romeo-the-rebel/Graduation-wishlist/internal/models"
	"github.com/Romeo-the-rebel/Graduation-wishlist/internal/services"
	"github.com/Romeo-the-rebel/Graduation-wishlist/pkg/utils"
)

type SigninRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Seams over the profile cache and the authoritative user lookup so handler
// tests can stub the Redis and Mongo layers (same pattern as validateSession).
var (
	cachedProfile     = services.CachedProfile
	cacheProfile      = services.CacheProfile
	dropCachedProfile = services.DropCachedProfile
	findUserByID      = loadUserByID
)

func loadUserByID(ctx context.Context, userID string) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, mongo.ErrNoDocuments
	}
	var user models.User
	if err := database.DB.Collection(database.UsersCollection).
		FindOne(ctx, bson.M{"_id": oid}).Decode(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

// AuthResponse is the envelope for all auth endpoints.
type AuthResponse struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message"`
	User    map[string]interface{} `json:"user,omitempty"`
	Token   string                 `json:"token,omitempty"`
}

// userPayload builds the client-facing view of a user. Missing display
// fields fall back to placeholders here, at the session boundary only.
func userPayload(user *models.User) map[string]interface{} {
	username := user.Username
	if username == "" {
		username = "User"
	}

	payload := map[string]interface{}{
		"id":              user.ID.Hex(),
		"username":        username,
		"email":           user.Email,
		"phone":           user.Phone,
		"profile_picture": user.ProfilePicture,
		"created_at":      user.CreatedAt,
	}
	if cloudinaryService != nil {
		payload["picture_url"] = cloudinaryService.ImageURL(user.ProfilePicture)
	}
	return payload
}

// Signup handles profile creation: multipart form with username, email,
// phone, password and a profile_picture file. The image is uploaded first;
// the account document references it by public id.
func Signup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	username := r.FormValue("username")
	email := r.FormValue("email")
	phone := r.FormValue("phone")
	password := r.FormValue("password")

	// All fields are required, including the picture
	if username == "" || email == "" || phone == "" || password == "" {
		writeError(w, http.StatusBadRequest, "All fields are required")
		return
	}
	pictureFile, pictureHeader, err := r.FormFile("profile_picture")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Profile picture is required")
		return
	}
	pictureFile.Close()

	if cloudinaryService == nil {
		log.Printf("ERROR: Cloudinary service not initialized")
		writeError(w, http.StatusInternalServerError, "File upload service not available")
		return
	}

	pictureID, err := cloudinaryService.UploadImageFromHeader(r.Context(), pictureHeader, uploadFolder)
	if err != nil {
		log.Printf("ERROR: Profile picture upload failed: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to upload profile picture")
		return
	}

	hashedPassword, err := utils.HashPassword(password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to hash password")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	now := time.Now().UTC()
	user := models.User{
		ID:             primitive.NewObjectID(),
		CreatedAt:      now,
		UpdatedAt:      now,
		Username:       username,
		Email:          email,
		Phone:          phone,
		Password:       hashedPassword,
		ProfilePicture: pictureID,
	}

	_, err = database.DB.Collection(database.UsersCollection).InsertOne(ctx, user)
	if mongo.IsDuplicateKeyError(err) {
		writeError(w, http.StatusConflict, "A user with this email already exists")
		return
	}
	if err != nil {
		log.Printf("ERROR: Failed to insert user: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to create profile")
		return
	}

	token, err := services.CreateSession(ctx, user.ID.Hex())
	if err != nil {
		log.Printf("ERROR: Failed to create session after signup: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to create session")
		return
	}
	if err := cacheProfile(ctx, &user); err != nil {
		log.Printf("failed to cache profile for %s: %v", user.ID.Hex(), err)
	}

	writeJSON(w, http.StatusCreated, AuthResponse{
		Success: true,
		Message: "Profile created successfully",
		User:    userPayload(&user),
		Token:   token,
	})
}

// Signin handles user login against the users collection.
func Signin(w http.ResponseWriter, r *http.Request) {
	var req SigninRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var user models.User
	err := database.DB.Collection(database.UsersCollection).
		FindOne(ctx, bson.M{"email": req.Email}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	if err != nil {
		log.Printf("ERROR: Failed to look up user %s: %v", req.Email, err)
		writeError(w, http.StatusInternalServerError, "Something went wrong. Please try again.")
		return
	}

	valid, err := utils.VerifyPassword(req.Password, user.Password)
	if err != nil || !valid {
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	token, err := services.CreateSession(ctx, user.ID.Hex())
	if err != nil {
		log.Printf("ERROR: Failed to create session: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to create session")
		return
	}
	if err := cacheProfile(ctx, &user); err != nil {
		log.Printf("failed to cache profile for %s: %v", user.ID.Hex(), err)
	}

	writeJSON(w, http.StatusOK, AuthResponse{
		Success: true,
		Message: "Login successful",
		User:    userPayload(&user),
		Token:   token,
	})
}

// GetMe returns the authenticated user's profile. The Redis-cached profile
// is served without a database read when present; the session token itself
// has already been validated, so the cache is only a rehydration shortcut.
func GetMe(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := requireAuth(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if user, hit := cachedProfile(ctx, userID); hit {
		writeJSON(w, http.StatusOK, AuthResponse{Success: true, Message: "OK", User: userPayload(user)})
		return
	}

	user, err := findUserByID(ctx, userID)
	if err != nil {
		// Identity lookup failed: drop the cached payload and reset to
		// unauthenticated rather than serving stale state.
		dropCachedProfile(ctx, userID)
		if err == mongo.ErrNoDocuments {
			writeError(w, http.StatusUnauthorized, "Authentication required")
			return
		}
		log.Printf("ERROR: Failed to load profile %s: %v", userID, err)
		writeError(w, http.StatusInternalServerError, "Something went wrong. Please try again.")
		return
	}

	if err := cacheProfile(ctx, user); err != nil {
		log.Printf("failed to cache profile for %s: %v", userID, err)
	}

	writeJSON(w, http.StatusOK, AuthResponse{Success: true, Message: "OK", User: userPayload(user)})
}

// Logout invalidates the current session.
func Logout(w http.ResponseWriter, r *http.Request) {
	_, token, ok := requireAuth(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := services.InvalidateSession(ctx, token); err != nil {
		log.Printf("ERROR: Failed to invalidate session: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to log out")
		return
	}

	writeJSON(w, http.StatusOK, AuthResponse{Success: true, Message: "Logged out"})
}
