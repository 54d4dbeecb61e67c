package handler

import (
	"fmt"
	"net/http"

	"github.com/folioworks/api/internal/config"
	"github.com/folioworks/api/pkg/apierror"
	"github.com/folioworks/api/pkg/email"
	"github.com/folioworks/api/pkg/logger"
	"github.com/folioworks/api/pkg/validator"
)

// ContactHandler forwards contact form submissions by email.
type ContactHandler struct {
	sender    email.Sender
	cfg       config.SMTPConfig
	validator *validator.Validator
	logger    *logger.Logger
}

// NewContactHandler creates a new ContactHandler.
func NewContactHandler(sender email.Sender, cfg config.SMTPConfig, v *validator.Validator, log *logger.Logger) *ContactHandler {
	return &ContactHandler{
		sender:    sender,
		cfg:       cfg,
		validator: v,
		logger:    log,
	}
}

// ContactRequest is the contact form payload.
type ContactRequest struct {
	Name    string `json:"name" validate:"required,max=200"`
	Email   string `json:"email" validate:"required,email,max=320"`
	Message string `json:"message" validate:"required,max=5000"`
}

// Submit handles POST /api/v1/contact.
func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req ContactRequest
	if apiErr := decodeJSON(w, r, 32<<10, &req); apiErr != nil {
		apiErr.WriteJSON(w)
		return
	}
	if err := h.validator.Validate(req); err != nil {
		apierror.ValidationFailed("Invalid contact request", err).WriteJSON(w)
		return
	}

	msg := &email.Message{
		To:      []string{h.cfg.To},
		Subject: fmt.Sprintf("Contact form: %s", req.Name),
		Body:    fmt.Sprintf("From: %s <%s>\n\n%s", req.Name, req.Email, req.Message),
		ReplyTo: req.Email,
	}

	if err := h.sender.Send(r.Context(), msg); err != nil {
		h.logger.Error("contact email send failed",
			"from", req.Email,
			"error", err,
		)
		apierror.ServiceUnavailable("Unable to deliver message, try again later").WriteJSON(w)
		return
	}

	writeJSONResponse(w, http.StatusOK, map[string]any{"success": true})
}
