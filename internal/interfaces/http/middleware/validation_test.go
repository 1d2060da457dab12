package middleware

import (
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type validationSubject struct {
	PartnerID string `json:"partner_id" binding:"required,uuid"`
	Email     string `json:"email" binding:"omitempty,email"`
	Comment   string `json:"comment" binding:"max=10"`
}

func TestValidationDetails(t *testing.T) {
	SetupValidator()
	v, ok := binding.Validator.Engine().(*validator.Validate)
	require.True(t, ok)

	t.Run("reports json field names", func(t *testing.T) {
		err := v.Struct(validationSubject{
			Email:   "not-an-email",
			Comment: "this comment is far too long",
		})
		require.Error(t, err)

		details := ValidationDetails(err)
		require.Len(t, details, 3)

		byField := make(map[string]string, len(details))
		for _, d := range details {
			byField[d.Field] = d.Message
		}
		assert.Equal(t, "this field is required", byField["partner_id"])
		assert.Equal(t, "invalid email format", byField["email"])
		assert.Equal(t, "must be at most 10 characters", byField["comment"])
	})

	t.Run("non validator errors produce nothing", func(t *testing.T) {
		assert.Nil(t, ValidationDetails(assert.AnError))
	})
}
