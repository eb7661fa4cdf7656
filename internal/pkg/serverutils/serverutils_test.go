package serverutils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"billing-engine-be/internal/pkg/apperror"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func decode(t *testing.T, resp *http.Response) BaseResponse[any] {
	t.Helper()
	var body BaseResponse[any]
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestErrorHandlerMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"not found", apperror.NotFound("invoice"), 404, "Invoice not found"},
		{"forbidden", apperror.Forbidden("invoice"), 403, "This action is unauthorized."},
		{"business rule", apperror.BusinessRule("invoice", "Invoice is not payable."), 422, "Invoice is not payable."},
		{"fiber error", fiber.NewError(fiber.StatusBadRequest, "bad body"), 400, "bad body"},
		{"infrastructure", assert.AnError, 500, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Use(ErrorHandlerMiddleware())
			app.Get("/", func(ctx *fiber.Ctx) error { return tt.err })

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			body := decode(t, resp)
			assert.False(t, body.Success)
			assert.Equal(t, tt.wantMsg, body.Message)
			if tt.wantStatus == 422 {
				assert.Equal(t, []string{"Invoice is not payable."}, body.Errors["invoice"])
			}
		})
	}
}

type sampleRequest struct {
	Type   string `json:"type" validate:"required,oneof=pix boleto"`
	Amount *int64 `json:"amount_in_cents" validate:"omitempty,gt=0"`
}

func TestValidateRequest(t *testing.T) {
	assert.NoError(t, ValidateRequest(sampleRequest{Type: "pix"}))

	err := ValidateRequest(sampleRequest{Type: "cash"})
	rule, ok := apperror.AsBusinessRule(err)
	require.True(t, ok)
	assert.Equal(t, "The selected type is invalid.", rule.Message("type"))

	zero := int64(0)
	err = ValidateRequest(sampleRequest{Amount: &zero})
	rule, ok = apperror.AsBusinessRule(err)
	require.True(t, ok)
	assert.Equal(t, "The type field is required.", rule.Message("type"))
	assert.NotEmpty(t, rule.Message("amount_in_cents"))
}

func signed(t *testing.T, claims jwt.MapClaims, secret string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestJwtMiddleware(t *testing.T) {
	userId := uuid.New()

	app := fiber.New()
	app.Get("/me", NewJwtMiddleware(testSecret), func(ctx *fiber.Ctx) error {
		id, err := UserID(ctx)
		if err != nil {
			return err
		}
		return ctx.SendString(id.String())
	})

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"missing", "", 401},
		{"wrong secret", "Bearer " + signed(t, jwt.MapClaims{"user_id": userId.String()}, "other"), 401},
		{"expired", "Bearer " + signed(t, jwt.MapClaims{"user_id": userId.String(), "exp": time.Now().Add(-time.Hour).Unix()}, testSecret), 401},
		{"bad user id", "Bearer " + signed(t, jwt.MapClaims{"user_id": "nope"}, testSecret), 401},
		{"valid", "Bearer " + signed(t, jwt.MapClaims{"user_id": userId.String(), "exp": time.Now().Add(time.Hour).Unix()}, testSecret), 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}
}
