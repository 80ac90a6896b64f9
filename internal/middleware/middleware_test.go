package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jumpyouth/checkin/internal/app/models"
	"github.com/jumpyouth/checkin/internal/app/models/dto"
	"github.com/jumpyouth/checkin/internal/pkg/apperrors"
	"github.com/jumpyouth/checkin/internal/pkg/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newJWT(exp time.Duration) *auth.JWTService {
	return auth.NewJWTService(auth.JWTConfig{SecretKey: "test", AccessTokenExp: exp, TokenIssuer: "checkin.test"})
}

func tokenFor(t *testing.T, jwt *auth.JWTService, user *models.User) string {
	t.Helper()
	token, _, err := jwt.GenerateAccessToken(user)
	require.NoError(t, err)
	return token
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) dto.ErrorDetail {
	t.Helper()
	var body struct {
		Error dto.ErrorDetail `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Error
}

func TestJWTAuthAndPermissions(t *testing.T) {
	jwt := newJWT(time.Hour)
	m := NewAuthMiddleware(jwt)

	router := gin.New()
	router.GET("/dash", m.JWTAuth(), m.PermissionRequired(models.PermViewDashboard), func(c *gin.Context) {
		c.String(http.StatusOK, fmt.Sprint(UserID(c)))
	})

	viewer := tokenFor(t, jwt, &models.User{ID: 3, Username: "v", Permissions: []models.Permission{models.PermViewDashboard}})
	other := tokenFor(t, jwt, &models.User{ID: 4, Username: "o", Permissions: []models.Permission{models.PermExportData}})
	super := tokenFor(t, jwt, &models.User{ID: 5, Username: "s", IsSuperuser: true})
	expired := tokenFor(t, newJWT(-time.Minute), &models.User{ID: 3, Username: "v"})

	tests := []struct {
		name       string
		header     string
		cookie     string
		wantStatus int
		wantBody   string
		wantCode   dto.ErrorCode
	}{
		{name: "bearer", header: "Bearer " + viewer, wantStatus: http.StatusOK, wantBody: "3"},
		{name: "cookie", cookie: viewer, wantStatus: http.StatusOK, wantBody: "3"},
		{name: "superuser", header: "Bearer " + super, wantStatus: http.StatusOK, wantBody: "5"},
		{name: "missing", wantStatus: http.StatusUnauthorized, wantCode: dto.ErrorCodeUnauthorized},
		{name: "not bearer", header: "Token " + viewer, wantStatus: http.StatusUnauthorized, wantCode: dto.ErrorCodeUnauthorized},
		{name: "garbage", header: "Bearer abc.def.ghi", wantStatus: http.StatusUnauthorized, wantCode: dto.ErrorCodeInvalidToken},
		{name: "expired", header: "Bearer " + expired, wantStatus: http.StatusUnauthorized, wantCode: dto.ErrorCodeExpiredToken},
		{name: "lacks permission", header: "Bearer " + other, wantStatus: http.StatusForbidden, wantCode: dto.ErrorCodeForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/dash", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: TokenCookieName, Value: tt.cookie})
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, decodeError(t, w).Code)
				return
			}
			assert.Equal(t, tt.wantBody, w.Body.String())
		})
	}
}

func TestActiveYear(t *testing.T) {
	router := gin.New()
	router.GET("/y", ActiveYear(2025), func(c *gin.Context) {
		c.String(http.StatusOK, fmt.Sprint(Year(c)))
	})

	tests := []struct {
		name       string
		query      string
		header     string
		cookie     string
		wantStatus int
		wantYear   string
	}{
		{name: "default", wantStatus: http.StatusOK, wantYear: "2025"},
		{name: "cookie", cookie: "2023", wantStatus: http.StatusOK, wantYear: "2023"},
		{name: "header beats cookie", header: "2024", cookie: "2023", wantStatus: http.StatusOK, wantYear: "2024"},
		{name: "query beats header", query: "2022", header: "2024", wantStatus: http.StatusOK, wantYear: "2022"},
		{name: "bad cookie ignored", cookie: "abc", wantStatus: http.StatusOK, wantYear: "2025"},
		{name: "bad query", query: "20x", wantStatus: http.StatusBadRequest},
		{name: "out of range", header: "1999", wantStatus: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			url := "/y"
			if tt.query != "" {
				url += "?year=" + tt.query
			}
			req := httptest.NewRequest(http.MethodGet, url, nil)
			if tt.header != "" {
				req.Header.Set(YearHeader, tt.header)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: YearCookieName, Value: tt.cookie})
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, tt.wantYear, w.Body.String())
			}
		})
	}
}

func TestHandleAPIError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   dto.ErrorCode
		wantMsg    string
		wantField  string
		wantHint   bool
	}{
		{name: "validation", err: apperrors.NewValidationError("quantity", "quantity must be a positive number"), wantStatus: 400, wantCode: dto.ErrorCodeValidationFailed, wantMsg: "quantity must be a positive number", wantField: "quantity"},
		{name: "not found", err: fmt.Errorf("loading: %w", apperrors.ErrParticipantNotFound), wantStatus: 404, wantCode: dto.ErrorCodeResourceNotFound, wantMsg: "participant not found"},
		{name: "conflict", err: apperrors.NewConflictError("an event day already exists on this date"), wantStatus: 409, wantCode: dto.ErrorCodeResourceAlreadyExists},
		{name: "readonly year", err: apperrors.NewReadonlyYearError(2024, 2025), wantStatus: 403, wantCode: dto.ErrorCodeReadonlyYear},
		{name: "credentials", err: apperrors.ErrInvalidCredentials, wantStatus: 401, wantCode: dto.ErrorCodeInvalidCredentials},
		{name: "similarity", err: fmt.Errorf("suggest: %w", apperrors.ErrSimilarityUnavailable), wantStatus: 500, wantCode: dto.ErrorCodeExternalServiceError, wantHint: true},
		{name: "unknown", err: fmt.Errorf("boom"), wantStatus: 500, wantCode: dto.ErrorCodeInternalServer, wantMsg: "Internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.GET("/e", func(c *gin.Context) { HandleAPIError(c, tt.err) })

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/e", nil))

			assert.Equal(t, tt.wantStatus, w.Code)
			detail := decodeError(t, w)
			assert.Equal(t, tt.wantCode, detail.Code)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, detail.Message)
			}
			assert.Equal(t, tt.wantField, detail.Field)
			assert.Equal(t, tt.wantHint, detail.Hint != "")
		})
	}
}

func TestRegisterValidators(t *testing.T) {
	require.NoError(t, RegisterValidators())

	type body struct {
		Gender string `binding:"required,gender"`
	}
	router := gin.New()
	router.POST("/v", func(c *gin.Context) {
		var b body
		if err := c.ShouldBindJSON(&b); err != nil {
			c.Status(http.StatusBadRequest)
			return
		}
		c.Status(http.StatusOK)
	})

	for payload, want := range map[string]int{`{"Gender":"F"}`: 200, `{"Gender":"X"}`: 400} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/v", strings.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)
		assert.Equal(t, want, w.Code, payload)
	}
}
