package httputil_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/fitsync/fitsync/internal/httputil"
)

func TestParseLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name          string
		url           string
		expectedLimit int
		expectError   bool
	}{
		{
			name:          "default value",
			url:           "/",
			expectedLimit: 50,
			expectError:   false,
		},
		{
			name:          "valid custom value",
			url:           "/?limit=20",
			expectedLimit: 20,
			expectError:   false,
		},
		{
			name:          "max limit",
			url:           "/?limit=100",
			expectedLimit: 100,
			expectError:   false,
		},
		{
			name:        "limit zero",
			url:         "/?limit=0",
			expectError: true,
		},
		{
			name:        "limit exceeds max",
			url:         "/?limit=101",
			expectError: true,
		},
		{
			name:        "limit not an integer",
			url:         "/?limit=xyz",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			req, _ := http.NewRequest(http.MethodGet, tt.url, nil)
			c.Request = req

			limit, err := httputil.ParseLimit(c)

			if tt.expectError {
				assert.Error(t, err)
				assert.Equal(t, "invalid limit parameter: must be between 1 and 100", err.Error())
				assert.Equal(t, 0, limit)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expectedLimit, limit)
			}
		})
	}
}
