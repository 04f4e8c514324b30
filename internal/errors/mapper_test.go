package errors_test

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	svcErr "github.com/oggyb/yourcode/internal/errors"
)

func TestMap(t *testing.T) {
	cases := []struct {
		name string
		in   error
		kind svcErr.Kind
	}{
		{"not found", gorm.ErrRecordNotFound, svcErr.KindNotFound},
		{"wrapped not found", fmt.Errorf("lookup: %w", gorm.ErrRecordNotFound), svcErr.KindNotFound},
		{"duplicate", gorm.ErrDuplicatedKey, svcErr.KindConflict},
		{"deadline", context.DeadlineExceeded, svcErr.KindInternal},
		{"unknown", stderrors.New("boom"), svcErr.KindInternal},
		{"typed passthrough", svcErr.Validation("title is required"), svcErr.KindValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.kind, svcErr.KindOf(svcErr.Map(tc.in)))
		})
	}
	assert.NoError(t, svcErr.Map(nil))
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, svcErr.HTTPStatus(svcErr.Validation("x")))
	assert.Equal(t, http.StatusNotFound, svcErr.HTTPStatus(svcErr.NotFound("x")))
	assert.Equal(t, http.StatusConflict, svcErr.HTTPStatus(svcErr.Conflict("x")))
	assert.Equal(t, http.StatusUnauthorized, svcErr.HTTPStatus(svcErr.Unauthorized("x")))
	assert.Equal(t, http.StatusInternalServerError, svcErr.HTTPStatus(stderrors.New("x")))
}

func TestMessageHidesInternalDetails(t *testing.T) {
	err := svcErr.Internal("db down", stderrors.New("dial tcp 10.0.0.1:3306"))
	assert.Equal(t, "internal server error", svcErr.Message(err))
	assert.Equal(t, "post not found", svcErr.Message(svcErr.NotFound("post not found")))
}

func TestIsMatchesKind(t *testing.T) {
	err := fmt.Errorf("wrap: %w", svcErr.NotFound("post not found"))
	assert.True(t, stderrors.Is(err, svcErr.NotFound("")))
	assert.False(t, stderrors.Is(err, svcErr.Conflict("")))
}
