package borrowings

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"library-backend/internal/platform/apperr"
	"library-backend/internal/platform/auth"
	"library-backend/internal/platform/validation"
)

type Handler struct{ svc *Service }

func RegisterRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}

	// members
	r.POST("/borrowings/borrow", h.Borrow)
	r.PUT("/borrowings/return/:borrowing_id", h.Return)
	r.GET("/borrowings/user", h.ListForUser)

	// admin
	r.GET("/borrowings/all", auth.RequireAdmin(), h.ListAll)
}

// ---------- handlers ----------

// POST /borrowings/borrow
func (h *Handler) Borrow(c *gin.Context) {
	id := auth.FromContext(c)
	// guests are turned away before the body is looked at
	if id.IsGuest() {
		apperr.Respond(c, apperr.ErrForbidden("Only registered members can borrow books."))
		return
	}
	var req BorrowRequest
	if err := validation.BindJSON(c, &req); err != nil {
		apperr.Respond(c, err)
		return
	}
	res, err := h.svc.Borrow(c.Request.Context(), id, req)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, LoanResponse{Message: "Book borrowed successfully!", Borrowing: *res})
}

// PUT /borrowings/return/:borrowing_id
func (h *Handler) Return(c *gin.Context) {
	id := auth.FromContext(c)
	if id.IsGuest() {
		apperr.Respond(c, apperr.ErrForbidden("Only registered members can return books."))
		return
	}
	loanID, err := strconv.ParseInt(c.Param("borrowing_id"), 10, 64)
	if err != nil || loanID <= 0 {
		apperr.Respond(c, apperr.ErrInvalid("invalid borrowing id"))
		return
	}
	res, err := h.svc.Return(c.Request.Context(), id, loanID)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, LoanResponse{Message: "Book returned successfully!", Borrowing: *res})
}

func (h *Handler) ListForUser(c *gin.Context) {
	res, err := h.svc.ListForUser(c.Request.Context(), auth.FromContext(c))
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) ListAll(c *gin.Context) {
	res, err := h.svc.ListAll(c.Request.Context(), auth.FromContext(c))
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
