package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondJSONEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	RespondJSON(c, StatusSuccess, http.StatusOK, "ok", map[string]int{"n": 1}, nil)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "success", body["status"])
	assert.Equal(t, float64(200), body["status_code"])
	assert.NotContains(t, body, "errors")
}

func TestValidationErrors(t *testing.T) {
	type item struct {
		Title string `validate:"required"`
		Price int    `validate:"gte=0"`
	}
	type payload struct {
		Items []item `validate:"dive"`
	}

	err := validator.New().Struct(payload{Items: []item{{Price: -1}}})
	out := ValidationErrors(err)

	assert.Equal(t, "required", out["Items[0].Title"])
	assert.Equal(t, "gte=0", out["Items[0].Price"])
}

func TestValidationErrorsPlainError(t *testing.T) {
	assert.Equal(t, map[string]string{"request": "EOF"}, ValidationErrors(errors.New("EOF")))
}
