package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusCodeMapping(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, NotFound("appointment", nil).StatusCode())
	assert.Equal(t, http.StatusBadRequest, BadRequest("bad", nil).StatusCode())
	assert.Equal(t, http.StatusInternalServerError, Internal(stderrors.New("boom")).StatusCode())
	assert.Equal(t, http.StatusServiceUnavailable, Unavailable("down", nil).StatusCode())
}

func TestUpstreamRoundTripsStatus(t *testing.T) {
	for _, status := range []int{http.StatusNotFound, http.StatusBadRequest, http.StatusConflict, http.StatusServiceUnavailable} {
		assert.Equal(t, status, Upstream(status, "").StatusCode())
	}
	assert.Equal(t, http.StatusInternalServerError, Upstream(http.StatusTeapot, "").StatusCode())
}

func TestIsUnwrapsChains(t *testing.T) {
	err := fmt.Errorf("update status: %w", NotFound("appointment", nil))
	assert.True(t, Is(err, ErrNotFound))
	assert.False(t, Is(err, ErrBadRequest))
	assert.False(t, Is(stderrors.New("plain"), ErrNotFound))
	assert.Equal(t, "appointment not found", NotFound("appointment", nil).Error())
}
