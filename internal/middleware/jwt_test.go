package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/conference-checkin/internal/utils"
)

const testSecret = "middleware-test-secret"

func doRequest(t *testing.T, mw echo.MiddlewareFunc, authHeader string) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := mw(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, h(c))
	return rec, c
}

func TestJWTAuthValidToken(t *testing.T) {
	tok, err := utils.NewAccessToken(testSecret, 42, "STAFF", 5)
	require.NoError(t, err)

	rec, c := doRequest(t, JWTAuth(testSecret), "Bearer "+tok.Token)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "STAFF", c.Get("role"))
	// Numeric JSON claims come back as float64 from jwt.MapClaims.
	assert.EqualValues(t, 42, c.Get("user_id"))
}

func TestJWTAuthMissingHeader(t *testing.T) {
	rec, _ := doRequest(t, JWTAuth(testSecret), "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthWrongSecret(t *testing.T) {
	tok, err := utils.NewAccessToken("some-other-secret", 42, "STAFF", 5)
	require.NoError(t, err)

	rec, _ := doRequest(t, JWTAuth(testSecret), "Bearer "+tok.Token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRole(t *testing.T) {
	cases := []struct {
		name    string
		role    interface{}
		allowed []string
		want    int
	}{
		{"role in set", "STAFF", []string{"ORGANIZER", "STAFF"}, http.StatusOK},
		{"role not in set", "ATTENDEE", []string{"ORGANIZER", "STAFF"}, http.StatusForbidden},
		{"missing role", nil, []string{"ORGANIZER"}, http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)
			if tc.role != nil {
				c.Set("role", tc.role)
			}

			h := RequireRole(tc.allowed...)(func(c echo.Context) error {
				return c.NoContent(http.StatusOK)
			})
			require.NoError(t, h(c))
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}
