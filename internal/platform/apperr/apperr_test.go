package apperr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_ToHTTPStatus(t *testing.T) {
	testCases := []struct {
		err  error
		want int
	}{
		{ErrValidation([]FieldError{{Field: "title", Message: "Title is required."}}), http.StatusBadRequest},
		{ErrInvalid("bad id"), http.StatusBadRequest},
		{ErrUnavailable("no copies"), http.StatusBadRequest},
		{ErrDuplicateLoan("already borrowed"), http.StatusBadRequest},
		{ErrLimitExceeded("cap reached"), http.StatusBadRequest},
		{ErrUnauthorized("bad token"), http.StatusUnauthorized},
		{ErrForbidden("admins only"), http.StatusForbidden},
		{ErrNotFound("missing"), http.StatusNotFound},
		{ErrConflict("duplicate isbn"), http.StatusConflict},
		{ErrTooManyRequests("slow down"), http.StatusTooManyRequests},
		{ErrInternal("boom"), http.StatusInternalServerError},
		{errors.New("driver: bad connection"), http.StatusInternalServerError},
		{fmt.Errorf("wrapped: %w", ErrNotFound("missing")), http.StatusNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			assert.Equal(t, tc.want, ToHTTPStatus(tc.err))
		})
	}
}

func Test_Is(t *testing.T) {
	err := fmt.Errorf("borrow: %w", ErrLimitExceeded("cap"))

	assert.True(t, Is(err, CodeLimitExceeded))
	assert.False(t, Is(err, CodeUnavailable))
	assert.False(t, Is(nil, CodeInternal))
}

func Test_Body_MergesDetailsAndFields(t *testing.T) {
	err := ErrValidation([]FieldError{
		{Field: "available_copies", Message: "Cannot set available copies below 2."},
	}).With("min_available", 2)

	body := Body(err)

	assert.Equal(t, CodeInvalidArgument, body["code"])
	assert.Equal(t, "Validation failed.", body["message"])
	assert.Equal(t, 2, body["min_available"])
	assert.Len(t, body["errors"], 1)
}

func Test_Body_HidesInternalsUnlessExposed(t *testing.T) {
	t.Cleanup(func() { ExposeInternal(false) })
	cause := errors.New("dial tcp 10.0.0.5:3306: connection refused")

	ExposeInternal(false)
	assert.NotContains(t, Body(cause), "error")

	ExposeInternal(true)
	assert.Equal(t, cause.Error(), Body(cause)["error"])
}

func Test_Respond_WritesStatusAndJSON(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/books/9", nil)

	Respond(c, ErrNotFound("Book not found."))

	assert.Equal(t, http.StatusNotFound, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "NOT_FOUND", body["code"])
	assert.Equal(t, "Book not found.", body["message"])
	assert.True(t, c.IsAborted())
}
