package httputil

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func ownerTestContext(header string) *gin.Context {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	req := httptest.NewRequest(http.MethodGet, "/v1/records", nil)
	if header != "" {
		req.Header.Set(OwnerIDHeader, header)
	}
	c.Request = req

	return c
}

func TestOwnerID(t *testing.T) {
	t.Run("ValidHeader", func(t *testing.T) {
		ownerID := uuid.Must(uuid.NewV7())

		c := ownerTestContext(ownerID.String())

		got, err := OwnerID(c)
		assert.NoError(t, err)
		assert.Equal(t, ownerID, got)
	})

	t.Run("MissingHeader", func(t *testing.T) {
		c := ownerTestContext("")

		_, err := OwnerID(c)
		assert.ErrorContains(t, err, "missing")
	})

	t.Run("MalformedHeader", func(t *testing.T) {
		c := ownerTestContext("not-a-uuid")

		_, err := OwnerID(c)
		assert.ErrorContains(t, err, "must be a UUID")
	})

	t.Run("NilUUID", func(t *testing.T) {
		c := ownerTestContext(uuid.Nil.String())

		_, err := OwnerID(c)
		assert.ErrorContains(t, err, "nil UUID")
	})
}
