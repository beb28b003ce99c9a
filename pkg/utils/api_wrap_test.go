package utils

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func serviceErrorRecorder(t *testing.T, err error) (int, APIResponse) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Set("trace_id", "trace-1")
	HandleServiceError(c, err)

	var body APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body
}

func TestHandleServiceErrorStatusMapping(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{NewValidationError("email", "must be a valid email address"), http.StatusBadRequest},
		{ErrEmailAlreadyExists, http.StatusConflict},
		{ErrAccountNotVerified, http.StatusForbidden},
		{fmt.Errorf("refresh: %w", ErrInvalidToken), http.StatusUnauthorized},
		{fmt.Errorf("%w: smtp down", ErrDeliveryFailed), http.StatusBadGateway},
		{fmt.Errorf("%w: conn reset", ErrDatabaseError), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		code, body := serviceErrorRecorder(t, tc.err)
		require.Equal(t, tc.code, code, tc.err.Error())
		require.Equal(t, "error", body.Status)
		require.Equal(t, "trace-1", body.TraceID)
	}
}

func TestHandleServiceErrorHidesAccountExistence(t *testing.T) {
	notFoundCode, notFound := serviceErrorRecorder(t, ErrAccountNotFound)
	badPassCode, badPass := serviceErrorRecorder(t, ErrInvalidCredentials)

	require.Equal(t, badPassCode, notFoundCode)
	require.Equal(t, badPass.Message, notFound.Message)
}
