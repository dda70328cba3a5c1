package v1

import (
	"errors"
	"net/http"

	"contact-relay-backend/internal/delivery/http/response"
	"contact-relay-backend/internal/domain"
	"contact-relay-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type ContactHandler struct {
	contactUC domain.ContactUsecase
}

// NewContactHandler registers the contact routes (public, no auth required).
// guards run before the handler, in order.
func NewContactHandler(r gin.IRoutes, contactUC domain.ContactUsecase, guards ...gin.HandlerFunc) {
	handler := &ContactHandler{
		contactUC: contactUC,
	}

	r.POST("/send", append(guards, handler.SubmitContact)...)
}

// SubmitContact godoc
// @Summary      Submit Contact Form
// @Description  Validates a contact form submission and hands it to the email provider. 202 only means the provider accepted it.
// @Tags         contact
// @Accept       json
// @Produce      json
// @Param        contact  body      domain.ContactRequest  true  "Contact Form Data"
// @Success      202      {object}  response.Response
// @Failure      400      {object}  response.Response
// @Failure      403      "Origin not allowed"
// @Failure      413      {object}  response.Response
// @Failure      429      {object}  response.Response
// @Failure      500      {object}  response.Response
// @Router       /send [post]
func (h *ContactHandler) SubmitContact(c *gin.Context) {
	var req domain.ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			c.Error(apperror.PayloadTooLarge(err))
			return
		}
		c.Error(apperror.InvalidInput(err))
		return
	}

	if err := h.contactUC.SendContactMessage(c.Request.Context(), &req); err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			c.Error(apperror.InvalidInput(err))
			return
		}
		c.Error(apperror.Internal(err))
		return
	}

	response.Success(c, http.StatusAccepted)
}
