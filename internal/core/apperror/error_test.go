package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_WrappedLookup(t *testing.T) {
	cause := errors.New("duplicate key value")
	err := fmt.Errorf("commit: %w", NewDuplicate("student", "email", "a@b.c").WithCause(cause))

	appErr, ok := AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, CodeDuplicate, appErr.Code)
	assert.Equal(t, http.StatusConflict, GetHTTPStatus(err))
	assert.True(t, HasCode(err, CodeDuplicate))
	assert.ErrorIs(t, err, cause)
}

func TestGetHTTPStatus_UnknownError(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, GetHTTPStatus(errors.New("boom")))
	assert.False(t, IsNotFound(errors.New("boom")))
}

func TestNewCourseFull_Details(t *testing.T) {
	err := NewCourseFull("c-1", 30)
	assert.Equal(t, http.StatusUnprocessableEntity, err.HTTPStatus)
	assert.Equal(t, 30, err.Details["capacity"])
	assert.Contains(t, err.Error(), CodeCourseFull)
}
