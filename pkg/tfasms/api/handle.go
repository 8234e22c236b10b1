package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/go-chi/jwtauth/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/tendant/simple-tfa/pkg/tfasms"
)

// Handler handles HTTP requests for the SMS verification flow
type Handler struct {
	service     *tfasms.VerificationService
	resendLimit func(http.Handler) http.Handler
}

// HandlerOption defines configuration options
type HandlerOption func(*Handler)

// WithResendRateLimit throttles the resend route per client IP. The service
// itself sends resends unconditionally, so this is the only guard against a
// client looping on the resend endpoint.
func WithResendRateLimit(limit int, window time.Duration) HandlerOption {
	return func(h *Handler) {
		h.resendLimit = httprate.LimitByIP(limit, window)
	}
}

// NewHandler creates a new verification API handler
func NewHandler(service *tfasms.VerificationService, opts ...HandlerOption) *Handler {
	handler := &Handler{
		service: service,
	}
	for _, opt := range opts {
		opt(handler)
	}
	return handler
}

// RegisterRoutes registers the verification routes.
// These routes should be mounted under an authenticated route group.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/begin", h.Begin)
	r.Get("/status", h.Status)
	r.Post("/validate", h.Validate)
	if h.resendLimit != nil {
		r.With(h.resendLimit).Post("/resend/{uid}", h.Resend)
	} else {
		r.Post("/resend/{uid}", h.Resend)
	}
	r.Post("/clear", h.Clear)
}

// Begin handles POST /begin - start a verification round for the current user
func (h *Handler) Begin(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserIDFromContext(r)
	if err != nil {
		slog.Error("Failed to get user ID from context", "error", err)
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, ErrorResponse{Error: "Unauthorized"})
		return
	}

	if err := h.service.Begin(r.Context(), userID); err != nil {
		status, message := sendErrorStatus(err)
		render.Status(r, status)
		render.JSON(w, r, ErrorResponse{Error: message})
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, BeginResponse{
		Message: "Verification code sent",
	})
}

// Status handles GET /status - describe the current verification round
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserIDFromContext(r)
	if err != nil {
		slog.Error("Failed to get user ID from context", "error", err)
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, ErrorResponse{Error: "Unauthorized"})
		return
	}

	cooldown, err := h.service.CooldownRemaining(r.Context(), userID)
	if err != nil {
		slog.Error("Failed to get cooldown", "userId", userID, "error", err)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, ErrorResponse{Error: "An error occurred while retrieving verification status"})
		return
	}

	remaining, err := h.service.RemainingAttempts(r.Context(), userID)
	if err != nil {
		slog.Error("Failed to get remaining attempts", "userId", userID, "error", err)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, ErrorResponse{Error: "An error occurred while retrieving verification status"})
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, StatusResponse{
		Ready:             h.service.Ready(r.Context(), userID),
		CanResend:         cooldown == 0,
		CooldownSeconds:   int(math.Ceil(cooldown.Seconds())),
		AttemptsRemaining: remaining,
	})
}

// Validate handles POST /validate - check a submitted code
func (h *Handler) Validate(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserIDFromContext(r)
	if err != nil {
		slog.Error("Failed to get user ID from context", "error", err)
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req ValidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Failed to decode request body", "error", err)
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Error: "Invalid request body"})
		return
	}

	err = h.service.Validate(r.Context(), userID, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, tfasms.ErrMaxAttemptsReached):
			render.Status(r, http.StatusTooManyRequests)
			render.JSON(w, r, ErrorResponse{
				Error:  "Maximum attempts reached",
				Errors: map[string]string{"sms_code": "You have reached the maximum number of attempts. Please request a new code."},
			})
		case errors.Is(err, tfasms.ErrInvalidCode):
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, ErrorResponse{
				Error:  "Invalid code",
				Errors: map[string]string{"sms_code": "Invalid code, please try again."},
			})
		default:
			slog.Error("Failed to validate code", "userId", userID, "error", err)
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, ErrorResponse{Error: "An error occurred while validating the code"})
		}
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, ValidateResponse{
		Message: "Code accepted",
	})
}

// Resend handles POST /resend/{uid} - discard state and send a fresh code.
// Only the user named in the path may resend their own code.
func (h *Handler) Resend(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserIDFromContext(r)
	if err != nil {
		slog.Error("Failed to get user ID from context", "error", err)
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, ErrorResponse{Error: "Unauthorized"})
		return
	}

	targetID, err := uuid.Parse(chi.URLParam(r, "uid"))
	if err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Error: "Invalid user id"})
		return
	}

	if targetID != userID {
		slog.Warn("Attempted to resend code for different user",
			"requesterId", userID,
			"targetId", targetID)
		render.Status(r, http.StatusForbidden)
		render.JSON(w, r, ErrorResponse{Error: "You are not authorized to perform this operation"})
		return
	}

	if err := h.service.Resend(r.Context(), targetID); err != nil {
		status, message := sendErrorStatus(err)
		render.Status(r, status)
		render.JSON(w, r, ErrorResponse{Error: message})
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, ResendResponse{
		Message: "Verification code sent",
	})
}

// Clear handles POST /clear - discard all verification state for the current
// user. Hosts call this on logout and after a successful verification.
func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserIDFromContext(r)
	if err != nil {
		slog.Error("Failed to get user ID from context", "error", err)
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, ErrorResponse{Error: "Unauthorized"})
		return
	}

	if err := h.service.Clear(r.Context(), userID); err != nil {
		slog.Error("Failed to clear verification state", "userId", userID, "error", err)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, ErrorResponse{Error: "An error occurred while clearing verification state"})
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, ClearResponse{
		Message: "Verification state cleared",
	})
}

// sendErrorStatus maps code-dispatch errors to an HTTP status and message
func sendErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, tfasms.ErrNoDestination):
		return http.StatusConflict, "No phone number on file"
	case errors.Is(err, tfasms.ErrCooldownActive):
		return http.StatusTooManyRequests, "Please wait before requesting another code"
	case errors.Is(err, tfasms.ErrTransportFailure):
		slog.Error("Failed to send verification code", "error", err)
		return http.StatusBadGateway, "Failed to send verification code"
	default:
		slog.Error("Failed to dispatch verification code", "error", err)
		return http.StatusInternalServerError, "An error occurred while sending the verification code"
	}
}

// getUserIDFromContext extracts the user ID from the JWT token in the request
// context (set by the jwtauth middleware)
func getUserIDFromContext(r *http.Request) (uuid.UUID, error) {
	_, claims, err := jwtauth.FromContext(r.Context())
	if err != nil {
		return uuid.Nil, err
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return uuid.Nil, errors.New("sub not found in JWT claims")
	}

	userID, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, errors.New("invalid sub in JWT claims")
	}

	return userID, nil
}
