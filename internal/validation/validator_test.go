package validation_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/thumblifyapp/thumblify-server/internal/domain"
	"github.com/thumblifyapp/thumblify-server/internal/errors"
	"github.com/thumblifyapp/thumblify-server/internal/validation"
)

type TestRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=1024"`
	Name     string `json:"name" validate:"required"`
}

type TestGenerateRequest struct {
	Title       string             `json:"title" validate:"required,max=200"`
	Style       domain.Style       `json:"style" validate:"required,style"`
	AspectRatio domain.AspectRatio `json:"aspect_ratio" validate:"required,aspect_ratio"`
	ColorScheme domain.ColorScheme `json:"color_scheme" validate:"omitempty,color_scheme"`
}

func TestValidator_ValidateSuccess(t *testing.T) {
	v := validation.New()

	req := TestRequest{
		Email:    "test@example.com",
		Password: "password123",
		Name:     "Test User",
	}

	err := v.Validate(req)
	assert.NoError(t, err)
}

func TestValidator_ValidateErrors(t *testing.T) {
	v := validation.New()

	//nolint:govet // fieldalignment: Minor memory optimization not worth the complexity in test code
	tests := []struct {
		name        string
		req         TestRequest
		wantErrCode int
		wantErrMsg  string
	}{
		{
			name: "missing required field",
			req: TestRequest{
				Email:    "test@example.com",
				Password: "password123",
				Name:     "", // Missing
			},
			wantErrCode: http.StatusBadRequest,
			wantErrMsg:  "name",
		},
		{
			name: "invalid email",
			req: TestRequest{
				Email:    "not-an-email",
				Password: "password123",
				Name:     "Test",
			},
			wantErrCode: http.StatusBadRequest,
			wantErrMsg:  "email",
		},
		{
			name: "password too short",
			req: TestRequest{
				Email:    "test@example.com",
				Password: "short",
				Name:     "Test",
			},
			wantErrCode: http.StatusBadRequest,
			wantErrMsg:  "password",
		},
		{
			name: "password too long",
			req: TestRequest{
				Email:    "test@example.com",
				Password: string(make([]byte, 1025)),
				Name:     "Test",
			},
			wantErrCode: http.StatusBadRequest,
			wantErrMsg:  "password",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.req)
			assert.Error(t, err)

			var domainErr *errors.Error
			if assert.True(t, errors.As(err, &domainErr)) {
				assert.Equal(t, tt.wantErrCode, domainErr.HTTPStatus())
				details, ok := domainErr.Details.(map[string]string)
				if assert.True(t, ok, "details should carry field errors") {
					assert.Contains(t, details, tt.wantErrMsg)
				}
			}
		})
	}
}

func TestValidator_EnumTags(t *testing.T) {
	v := validation.New()

	valid := TestGenerateRequest{
		Title:       "10 sleep tips",
		Style:       domain.StyleMinimalist,
		AspectRatio: domain.AspectRatio1x1,
		ColorScheme: domain.ColorSchemePastel,
	}
	assert.NoError(t, v.Validate(valid))

	// Optional color scheme may be empty.
	valid.ColorScheme = ""
	assert.NoError(t, v.Validate(valid))

	//nolint:govet // fieldalignment: Minor memory optimization not worth the complexity in test code
	tests := []struct {
		name      string
		req       TestGenerateRequest
		wantField string
		wantMsg   string
	}{
		{
			name: "unknown style",
			req: TestGenerateRequest{
				Title:       "10 sleep tips",
				Style:       "vaporwave",
				AspectRatio: domain.AspectRatio16x9,
			},
			wantField: "style",
			wantMsg:   "must be one of: minimalist",
		},
		{
			name: "unknown aspect ratio",
			req: TestGenerateRequest{
				Title:       "10 sleep tips",
				Style:       domain.StyleBold,
				AspectRatio: "21:9",
			},
			wantField: "aspect_ratio",
			wantMsg:   "must be one of: 16:9",
		},
		{
			name: "unknown color scheme",
			req: TestGenerateRequest{
				Title:       "10 sleep tips",
				Style:       domain.StyleBold,
				AspectRatio: domain.AspectRatio16x9,
				ColorScheme: "sepia",
			},
			wantField: "color_scheme",
			wantMsg:   "must be one of: vibrant",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.req)
			assert.Error(t, err)

			var domainErr *errors.Error
			if assert.True(t, errors.As(err, &domainErr)) {
				assert.Equal(t, errors.CodeValidation, domainErr.Code)
				details, ok := domainErr.Details.(map[string]string)
				if assert.True(t, ok) {
					assert.Contains(t, details[tt.wantField], tt.wantMsg)
				}
			}
		})
	}
}

func TestValidator_JSONFieldNames(t *testing.T) {
	v := validation.New()

	req := TestRequest{
		Email:    "",
		Password: "password123",
		Name:     "Test",
	}

	err := v.Validate(req)
	assert.Error(t, err)

	var domainErr *errors.Error
	if assert.True(t, errors.As(err, &domainErr)) {
		details, ok := domainErr.Details.(map[string]string)
		if assert.True(t, ok) {
			// Should use JSON tag name "email", not struct field name "Email"
			assert.Contains(t, details, "email")
			assert.NotContains(t, details, "Email")
		}
	}
}
