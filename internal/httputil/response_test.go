package httputil

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRespondJSON(t *testing.T) {
	rr := httptest.NewRecorder()
	RespondJSON(rr, map[string]string{"status": "ok"}, http.StatusOK)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
}

func TestRespondJSONNilDataHasNoBody(t *testing.T) {
	rr := httptest.NewRecorder()
	RespondJSON(rr, nil, http.StatusNoContent)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Empty(t, rr.Body.String())
}

func TestRespondError(t *testing.T) {
	rr := httptest.NewRecorder()
	RespondError(rr, "something broke", http.StatusInternalServerError)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"error":"something broke"}`, rr.Body.String())
}

func TestRespondErrorWithCode(t *testing.T) {
	rr := httptest.NewRecorder()
	RespondErrorWithCode(rr, "recipe not found", CodeNotFound, http.StatusNotFound)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.JSONEq(t, `{"error":"recipe not found","code":"not_found"}`, rr.Body.String())
}
