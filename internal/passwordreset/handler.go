package passwordreset

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/satyapradip/employee-task-management/internal"
	"github.com/satyapradip/employee-task-management/internal/transport"
	"github.com/satyapradip/employee-task-management/pkg/logger"
)

type ServiceAPI interface {
	RequestReset(email string) error
	VerifyResetToken(token string) (*VerifyResult, error)
	CompleteReset(token, newPassword string) (*ResetResult, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(svc ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(logger.L()),
		Service:     svc,
	}
}

type forgotPasswordDTO struct {
	Email string `json:"email"`
}

type resetPasswordDTO struct {
	Password string `json:"password"`
}

// genericResetMessage is returned for every forgot-password request so the
// response gives away nothing about account existence.
const genericResetMessage = "If an account with that email exists, a password reset link has been sent"

func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var dto forgotPasswordDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if dto.Email == "" {
		h.WriteError(w, http.StatusBadRequest, "email is required")
		return
	}

	if err := h.Service.RequestReset(dto.Email); err != nil {
		// Only infrastructure failures surface; unknown emails do not.
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"message": genericResetMessage})
}

func (h *Handler) VerifyResetToken(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if token == "" {
		h.WriteError(w, http.StatusBadRequest, "reset token is required")
		return
	}

	result, err := h.Service.VerifyResetToken(token)
	if err != nil {
		if appErr, ok := internal.IsAppError(err); ok && appErr == internal.ErrInvalidResetToken {
			h.WriteError(w, http.StatusBadRequest, "invalid or expired reset token")
			return
		}
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if token == "" {
		h.WriteError(w, http.StatusBadRequest, "reset token is required")
		return
	}

	var dto resetPasswordDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.Service.CompleteReset(token, dto.Password)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("password reset completed, session reissued", "user_id", result.User.ID)
	h.WriteJSON(w, http.StatusOK, result)
}
