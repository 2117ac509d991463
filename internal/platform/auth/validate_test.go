package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-backend/internal/platform/apperr"
)

func TestValidateRegistration_Password(t *testing.T) {
	tests := []struct {
		name string
		pw   string
		want string
	}{
		{"empty", "", "Password is required."},
		{"short", "Ab1!", "Password must be between 8 and 128 characters long."},
		{"too long", "Ab1!" + strings.Repeat("x", 125), "Password must be between 8 and 128 characters long."},
		{"no upper", "abcdef1!", "Password must contain at least one uppercase letter, one lowercase letter, one number, and one special character."},
		{"no lower", "ABCDEF1!", "Password must contain at least one uppercase letter, one lowercase letter, one number, and one special character."},
		{"no digit", "Abcdefg!", "Password must contain at least one uppercase letter, one lowercase letter, one number, and one special character."},
		{"no special", "Abcdefg1", "Password must contain at least one uppercase letter, one lowercase letter, one number, and one special character."},
		{"good", "Abcdef1!", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := RegisterRequest{
				Surname: "Le Guin", Firstname: "Ursula", Username: "ursula_k",
				Password: tt.pw, DisplayName: "Ursula",
			}
			err := validateRegistration(&req)
			if tt.want == "" {
				assert.NoError(t, err)
				return
			}
			var api *apperr.APIError
			require.ErrorAs(t, err, &api)
			require.Len(t, api.Fields, 1)
			assert.Equal(t, apperr.FieldError{Field: "password", Message: tt.want}, api.Fields[0])
		})
	}
}

func TestNormalize_DropsBlankMiddleInitial(t *testing.T) {
	blank := "  "
	req := RegisterRequest{
		Surname: " Le Guin ", Firstname: "Ursula", MiddleInitial: &blank,
		Username: "ursula_k", Password: "Abcdef1!", DisplayName: "Ursula",
	}
	req.normalize()

	assert.Nil(t, req.MiddleInitial)
	assert.Equal(t, "Le Guin", req.Surname)
	assert.NoError(t, validateRegistration(&req))
}
