package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mamadbah2/dairyfarm/internal/domain/models"
)

func TestStatusFor(t *testing.T) {
	cases := map[error]int{
		models.Validationf("bad"):                       http.StatusBadRequest,
		models.ErrUnauthorized:                          http.StatusUnauthorized,
		models.ErrForbidden:                             http.StatusForbidden,
		fmt.Errorf("animal x: %w", models.ErrNotFound):  http.StatusNotFound,
		models.ErrDuplicateProduction:                   http.StatusConflict,
		models.ErrAlreadyClosed:                         http.StatusConflict,
		models.ErrAnimalNotReady:                        http.StatusUnprocessableEntity,
		models.ErrDayClosed:                             http.StatusUnprocessableEntity,
		models.ErrInsufficientBalance:                   http.StatusUnprocessableEntity,
		models.ErrTooEarly:                              http.StatusTooEarly,
		models.Transient("ping", fmt.Errorf("refused")): http.StatusServiceUnavailable,
		fmt.Errorf("something unexpected"):              http.StatusInternalServerError,
	}
	for err, want := range cases {
		require.Equal(t, want, statusFor(err), err.Error())
	}
}

func TestRespondErrorHidesInternalDetail(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/x", nil)

	respondError(c, zap.NewNop(), fmt.Errorf("db password is hunter2"))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "internal error", body["error"])
	require.Equal(t, "internal", body["kind"])
}

type staticIdentity struct{ user models.User }

func (s staticIdentity) CurrentUser(token string) (models.User, error) {
	if token != "good" {
		return models.User{}, models.ErrUnauthorized
	}
	return s.user, nil
}

func TestAuthenticateAndRequireRole(t *testing.T) {
	gin.SetMode(gin.TestMode)
	identity := staticIdentity{user: models.User{ID: "u1", Role: models.RoleFarmWorker}}

	r := gin.New()
	r.GET("/any", Authenticate(identity, nil), func(c *gin.Context) {
		user, ok := UserFrom(c)
		require.True(t, ok)
		c.String(http.StatusOK, user.ID)
	})
	r.GET("/manager", Authenticate(identity, nil), RequireRole(models.RoleFarmManager, nil), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	request := func(path, header string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec
	}

	require.Equal(t, http.StatusUnauthorized, request("/any", "").Code)
	require.Equal(t, http.StatusUnauthorized, request("/any", "Basic abc").Code)
	require.Equal(t, http.StatusUnauthorized, request("/any", "Bearer bad").Code)

	ok := request("/any", "Bearer good")
	require.Equal(t, http.StatusOK, ok.Code)
	require.Equal(t, "u1", ok.Body.String())

	require.Equal(t, http.StatusForbidden, request("/manager", "Bearer good").Code)
}

func TestTimeoutSetsDeadline(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Timeout(time.Second))
	r.GET("/", func(c *gin.Context) {
		_, ok := c.Request.Context().Deadline()
		require.True(t, ok)
		c.Status(http.StatusNoContent)
	})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestDates(t *testing.T) {
	now := time.Date(2026, 4, 1, 22, 0, 0, 0, time.UTC)
	d := Dates{Calendar: models.Calendar{Location: time.FixedZone("EAT", 3*3600)}, Now: func() time.Time { return now }}

	today, err := d.ParseOrToday("")
	require.NoError(t, err)
	require.Equal(t, "2026-04-02", models.FormatDay(today))

	day, err := d.ParseOptional("2026-03-30")
	require.NoError(t, err)
	require.Equal(t, "2026-03-30", models.FormatDay(*day))

	none, err := d.ParseOptional("")
	require.NoError(t, err)
	require.Nil(t, none)

	_, err = d.ParseOptional("yesterday")
	require.ErrorIs(t, err, models.ErrValidation)
}
