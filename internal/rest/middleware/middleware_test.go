package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/flexprice/feeledger/internal/auth"
	"github.com/flexprice/feeledger/internal/config"
	ierr "github.com/flexprice/feeledger/internal/errors"
	"github.com/flexprice/feeledger/internal/logger"
	"github.com/flexprice/feeledger/internal/types"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func signToken(t *testing.T, method jwt.SigningMethod, key any, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func newAuthRouter() (*gin.Engine, auth.Provider) {
	cfg := config.GetDefaultConfig()
	cfg.Auth.Secret = testSecret
	log := logger.NewNoopLogger()
	provider := auth.NewProvider(cfg)

	router := gin.New()
	router.Use(ErrorHandler(log), AuthenticateMiddleware(provider, log))
	router.GET("/whoami", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id":   types.GetUserID(c.Request.Context()),
			"campus_id": types.GetCampusID(c.Request.Context()),
		})
	})
	return router, provider
}

func TestAuthenticateMiddleware(t *testing.T) {
	router, provider := newAuthRouter()
	expiry := time.Now().Add(time.Hour).Unix()

	scoped, _, err := provider.GenerateToken("op_2", "south", time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name       string
		header     string
		campus     string
		wantStatus int
		wantUser   string
		wantCampus string
	}{
		{
			name:       "valid_token",
			header:     "Bearer " + signToken(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{"sub": "op_1", "exp": expiry}),
			campus:     "north",
			wantStatus: http.StatusOK,
			wantUser:   "op_1",
			wantCampus: "north",
		},
		{
			name:       "campus_claim_wins_over_header",
			header:     "Bearer " + scoped,
			campus:     "north",
			wantStatus: http.StatusOK,
			wantUser:   "op_2",
			wantCampus: "south",
		},
		{
			name:       "missing_header",
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "not_bearer",
			header:     "Basic abc",
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "wrong_secret",
			header:     "Bearer " + signToken(t, jwt.SigningMethodHS256, []byte("other"), jwt.MapClaims{"sub": "op_1", "exp": expiry}),
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "expired",
			header:     "Bearer " + signToken(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{"sub": "op_1", "exp": time.Now().Add(-time.Hour).Unix()}),
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "missing_subject",
			header:     "Bearer " + signToken(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{"exp": expiry}),
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "unsigned",
			header:     "Bearer " + signToken(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, jwt.MapClaims{"sub": "op_1"}),
			wantStatus: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			if tt.header != "" {
				req.Header.Set(types.HeaderAuthorization, tt.header)
			}
			if tt.campus != "" {
				req.Header.Set(types.HeaderCampusID, tt.campus)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			require.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			if tt.wantStatus != http.StatusOK {
				assert.False(t, jsoniter.Get(w.Body.Bytes(), "success").ToBool())
				return
			}
			assert.Equal(t, tt.wantUser, jsoniter.Get(w.Body.Bytes(), "user_id").ToString())
			assert.Equal(t, tt.wantCampus, jsoniter.Get(w.Body.Bytes(), "campus_id").ToString())
		})
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(RequestIDMiddleware)
	router.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, types.GetRequestID(c.Request.Context()))
	})

	t.Run("propagates_header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set(types.HeaderRequestID, "req_upstream")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, "req_upstream", w.Body.String())
		assert.Equal(t, "req_upstream", w.Header().Get(types.HeaderRequestID))
	})

	t.Run("mints_when_absent", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.True(t, strings.HasPrefix(w.Body.String(), types.UUID_PREFIX_REQUEST+"_"))
		assert.Equal(t, w.Body.String(), w.Header().Get(types.HeaderRequestID))
	})
}

func TestErrorHandler(t *testing.T) {
	router := gin.New()
	router.Use(ErrorHandler(logger.NewNoopLogger()))
	router.GET("/conflict", func(c *gin.Context) {
		c.Error(ierr.NewError("version mismatch").
			WithHint("Invoice was modified concurrently").
			Mark(ierr.ErrVersionConflict))
	})
	router.GET("/boom", func(c *gin.Context) {
		c.Error(ierr.NewError("connection reset").Mark(ierr.ErrDatabase))
	})
	router.GET("/ok", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	tests := []struct {
		path        string
		wantStatus  int
		wantMessage string
	}{
		{path: "/conflict", wantStatus: http.StatusConflict, wantMessage: "Invoice was modified concurrently"},
		{path: "/boom", wantStatus: http.StatusInternalServerError, wantMessage: "An unexpected error occurred"},
		{path: "/ok", wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(strings.TrimPrefix(tt.path, "/"), func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))

			require.Equal(t, tt.wantStatus, w.Code)
			if tt.wantMessage != "" {
				assert.Equal(t, tt.wantMessage, jsoniter.Get(w.Body.Bytes(), "error", "message").ToString())
			}
			if tt.wantStatus == http.StatusInternalServerError {
				assert.NotContains(t, w.Body.String(), "connection reset")
			}
		})
	}
}
