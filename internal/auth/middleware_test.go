package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestMiddleware(t *testing.T) {
	t.Parallel()

	tokens, err := NewTokenManager("test-secret", time.Hour)
	require.NoError(t, err)
	token, err := tokens.GenerateToken("user1", "rajpatel")
	require.NoError(t, err)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/private", Middleware(tokens), func(c *gin.Context) {
		id, ok := GetUserID(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"user_id": id, "username": c.GetString("username")})
	})

	tests := []struct {
		name           string
		header         string
		expectedStatus int
	}{
		{name: "valid_token", header: "Bearer " + token, expectedStatus: http.StatusOK},
		{name: "lowercase_scheme", header: "bearer " + token, expectedStatus: http.StatusOK},
		{name: "missing_header", header: "", expectedStatus: http.StatusUnauthorized},
		{name: "wrong_scheme", header: "Basic " + token, expectedStatus: http.StatusUnauthorized},
		{name: "no_token", header: "Bearer ", expectedStatus: http.StatusUnauthorized},
		{name: "bad_token", header: "Bearer abc.def.ghi", expectedStatus: http.StatusUnauthorized},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, "/private", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			require.Equal(t, tc.expectedStatus, w.Code)

			var resp map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			if tc.expectedStatus == http.StatusOK {
				require.Equal(t, "user1", resp["user_id"])
				require.Equal(t, "rajpatel", resp["username"])
				return
			}
			require.Equal(t, "unauthenticated", resp["reason"])
			require.Equal(t, "authentication required", resp["message"])
		})
	}
}
