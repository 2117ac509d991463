package validation

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-backend/internal/platform/apperr"
)

type shelfRequest struct {
	Name  string  `json:"shelf_name" binding:"required,max=5"`
	Floor int     `json:"floor" binding:"gte=1"`
	Note  *string `json:"note,omitempty" binding:"omitempty,max=3"`
}

func shelfMessage(fe validator.FieldError) string { return fe.Field() + ":" + fe.Tag() }

func TestCheck_ListsEveryFieldByJSONName(t *testing.T) {
	note := "long"
	err := Check(&shelfRequest{Note: &note}, shelfMessage,
		apperr.FieldError{Field: "capacity", Message: "cross-field"})

	var api *apperr.APIError
	require.ErrorAs(t, err, &api)
	assert.Equal(t, apperr.CodeInvalidArgument, api.Code)
	assert.Equal(t, []apperr.FieldError{
		{Field: "shelf_name", Message: "shelf_name:required"},
		{Field: "floor", Message: "floor:gte"},
		{Field: "note", Message: "note:max"},
		{Field: "capacity", Message: "cross-field"},
	}, api.Fields)

	assert.NoError(t, Check(&shelfRequest{Name: "A", Floor: 2}, shelfMessage))
}

func TestBindJSON(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"valid", `{"shelf_name":"A","floor":1}`, false},
		{"empty body", ``, false},
		{"rule failures are deferred", `{"floor":0}`, false},
		{"malformed", `{"floor":`, true},
		{"wrong type", `{"floor":"x"}`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			c.Request.Header.Set("Content-Type", "application/json")

			var req shelfRequest
			err := BindJSON(c, &req)
			if tt.wantErr {
				assert.True(t, apperr.Is(err, apperr.CodeInvalidArgument), "got %v", err)
				return
			}
			assert.NoError(t, err)
		})
	}
}
