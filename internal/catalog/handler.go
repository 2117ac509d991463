package catalog

import (
	"bytes"
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

	// public
	r.GET("/books", h.ListBooks)
	r.GET("/books/export", auth.RequireAdmin(), h.ExportCSV)
	r.GET("/books/:id", h.GetBook)

	// admin
	r.POST("/books", auth.RequireAdmin(), h.AddBook)
	r.PUT("/books/:id", auth.RequireAdmin(), h.EditBook)
	r.DELETE("/books/:id", auth.RequireAdmin(), h.DeleteBook)
}

// ---------- handlers ----------

// GET /books?q=&by=
func (h *Handler) ListBooks(c *gin.Context) {
	f := ListFilter{Q: c.Query("q"), By: SearchField(c.DefaultQuery("by", string(ByTitle)))}
	res, err := h.svc.ListBooks(c.Request.Context(), f)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) GetBook(c *gin.Context) {
	id, ok := bookID(c)
	if !ok {
		return
	}
	res, err := h.svc.GetBook(c.Request.Context(), id)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// POST /books
func (h *Handler) AddBook(c *gin.Context) {
	var req BookRequest
	if err := validation.BindJSON(c, &req); err != nil {
		apperr.Respond(c, err)
		return
	}
	res, err := h.svc.AddBook(c.Request.Context(), auth.FromContext(c), req)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.Header("Location", "/api/books/"+strconv.FormatInt(res.ID, 10))
	c.JSON(http.StatusCreated, BookResponse{Message: "Book added successfully", Book: res})
}

// PUT /books/:id
func (h *Handler) EditBook(c *gin.Context) {
	id, ok := bookID(c)
	if !ok {
		return
	}
	var req BookRequest
	if err := validation.BindJSON(c, &req); err != nil {
		apperr.Respond(c, err)
		return
	}
	res, err := h.svc.EditBook(c.Request.Context(), auth.FromContext(c), id, req)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, BookResponse{Message: "Book updated successfully", Book: res})
}

// DELETE /books/:id
func (h *Handler) DeleteBook(c *gin.Context) {
	id, ok := bookID(c)
	if !ok {
		return
	}
	res, err := h.svc.DeleteBook(c.Request.Context(), auth.FromContext(c), id)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, BookResponse{Message: "Book deleted successfully", Book: res})
}

// GET /books/export
func (h *Handler) ExportCSV(c *gin.Context) {
	// buffered so a failure halfway still produces a JSON error
	var buf bytes.Buffer
	if err := h.svc.ExportCSV(c.Request.Context(), auth.FromContext(c), &buf); err != nil {
		apperr.Respond(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="books.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// ---------- helpers ----------

func bookID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		apperr.Respond(c, apperr.ErrInvalid("invalid book id"))
		return 0, false
	}
	return id, true
}
