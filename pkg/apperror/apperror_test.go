package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	wrapped := fmt.Errorf("repository: %w", Wrap(KindNotFound, "docstore.Set", errors.New("no such document")))

	assert.Equal(t, KindNotFound, KindOf(wrapped))
	assert.True(t, errors.Is(wrapped, ErrNotFound))
	assert.False(t, errors.Is(wrapped, ErrPermission))
	assert.True(t, IsNotFound(wrapped))

	assert.Equal(t, KindInternal, KindOf(errors.New("plain")))
	assert.Equal(t, Kind(""), KindOf(nil))
}

func TestErrorMessage(t *testing.T) {
	err := New(KindValidation, "auth.Register", "password confirmation does not match")
	assert.Equal(t, "auth.Register: password confirmation does not match", err.Error())

	cause := errors.New("connection refused")
	wrapped := Wrap(KindUnavailable, "docstore.List", cause)
	assert.Equal(t, "docstore.List: connection refused", wrapped.Error())
	assert.ErrorIs(t, wrapped, cause)

	assert.Nil(t, Wrap(KindInternal, "noop", nil))
}
