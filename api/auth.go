package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"log/slog"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/garnizeh/gigmarket/pkg/models"
	"github.com/garnizeh/gigmarket/pkg/repository"
)

// AuthHandler is the identity provider: it owns users and creates the
// profile the marketplace reads.
type AuthHandler struct {
	userRepo      repository.UserRepo
	profileRepo   repository.ProfileRepo
	jwtSecret     string
	tokenDuration time.Duration
}

// NewAuthHandler creates a new AuthHandler with required dependencies.
func NewAuthHandler(ur repository.UserRepo, pr repository.ProfileRepo, jwtSecret string, tokenDuration time.Duration) *AuthHandler {
	return &AuthHandler{userRepo: ur, profileRepo: pr, jwtSecret: jwtSecret, tokenDuration: tokenDuration}
}

type signupRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signinRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token  string `json:"token"`
	UserID string `json:"user_id"`
}

func (h *AuthHandler) issueToken(u *models.User) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   u.ID,
		"email": u.Email,
		"iat":   now.Unix(),
		"exp":   now.Add(h.tokenDuration).Unix(),
	})
	return token.SignedString([]byte(h.jwtSecret))
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeBody(r.Context(), r, "signup", &req); err != nil {
		writeDecodeError(w, r, err)
		return
	}
	req.FullName = strings.TrimSpace(req.FullName)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.FullName == "" || req.Email == "" || req.Password == "" {
		writeErrorBody(w, http.StatusBadRequest, "invalid_input", "Missing fields", "")
		return
	}
	if !strings.Contains(req.Email, "@") {
		writeErrorBody(w, http.StatusBadRequest, "invalid_input", "email is invalid", "email")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		writeErrorBody(w, http.StatusInternalServerError, "internal", "Error hashing password", "")
		return
	}

	ctx := r.Context()
	user := models.User{
		Email:        req.Email,
		PasswordHash: string(hash),
		Created:      time.Now().UTC(),
	}
	userID, err := h.userRepo.CreateUser(ctx, &user)
	if errors.Is(err, repository.ErrDuplicate) {
		writeErrorBody(w, http.StatusConflict, "email_taken", "An account with this email already exists", "email")
		return
	}
	if err != nil {
		logger.Error("create user", slog.Any("err", err))
		writeErrorBody(w, http.StatusInternalServerError, "internal", "Error creating user", "")
		return
	}
	user.ID = userID

	// new profiles start unrated
	profile := models.Profile{UserID: userID, FullName: req.FullName}
	if err := h.profileRepo.CreateProfile(ctx, &profile); err != nil {
		logger.Error("create profile", slog.String("user_id", userID), slog.Any("err", err))
		writeErrorBody(w, http.StatusInternalServerError, "internal", "Error creating user profile", "")
		return
	}

	tokenStr, err := h.issueToken(&user)
	if err != nil {
		writeErrorBody(w, http.StatusInternalServerError, "internal", "Error signing token", "")
		return
	}

	writeJSON(w, authResponse{Token: tokenStr, UserID: userID}, http.StatusCreated)
}

func (h *AuthHandler) Signin(w http.ResponseWriter, r *http.Request) {
	var req signinRequest
	if err := decodeBody(r.Context(), r, "signin", &req); err != nil {
		writeDecodeError(w, r, err)
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		writeErrorBody(w, http.StatusBadRequest, "invalid_input", "Missing fields", "")
		return
	}

	user, err := h.userRepo.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		logger.Error("get user", slog.Any("err", err))
		w.Header().Set("Retry-After", retryAfterSeconds)
		writeErrorBody(w, http.StatusServiceUnavailable, "store_unavailable", "service temporarily unavailable, retry later", "")
		return
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		writeErrorBody(w, http.StatusUnauthorized, "unauthenticated", "Credentials not found", "")
		return
	}

	tokenStr, err := h.issueToken(user)
	if err != nil {
		writeErrorBody(w, http.StatusInternalServerError, "internal", "Error signing token", "")
		return
	}

	writeJSON(w, authResponse{Token: tokenStr, UserID: user.ID}, http.StatusOK)
}

func (h *AuthHandler) Signout(w http.ResponseWriter, r *http.Request) {
	// For stateless JWT, signout is client-side (just delete token)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, `{"message":"signed out"}`)
}
