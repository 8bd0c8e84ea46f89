package apperr

import (
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindStatus(t *testing.T) {
	cases := map[Kind]int{
		KindInvalidInput:    http.StatusBadRequest,
		KindDuplicateEntity: http.StatusBadRequest,
		KindNotFound:        http.StatusNotFound,
		KindUpdateFailed:    http.StatusUnprocessableEntity,
		KindUnauthorized:    http.StatusUnauthorized,
		KindInternal:        http.StatusInternalServerError,
	}
	for kind, status := range cases {
		assert.Equal(t, status, kind.HTTPStatus(), kind.String())
	}
}

func TestAsThroughWrapping(t *testing.T) {
	err := fmt.Errorf("handler: %w", NotFound("Product not found."))
	e, ok := As(err)
	assert.True(t, ok)
	assert.Equal(t, KindNotFound, e.Kind)
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.Equal(t, KindInternal, KindOf(io.EOF))
}

func TestInternalHidesCause(t *testing.T) {
	e := Internal("", io.ErrUnexpectedEOF)
	assert.Equal(t, MsgInternal, e.Message)
	assert.ErrorIs(t, e, io.ErrUnexpectedEOF)
}

func TestFieldErrorsAdd(t *testing.T) {
	f := FieldErrors{}
	f.Add("email", "The email field is required.")
	f.Add("email", "The email field must be a valid email address.")
	assert.Len(t, f["email"], 2)
}
