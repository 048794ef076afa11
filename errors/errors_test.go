package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSentinelWrapPreservesKind(t *testing.T) {
	err := Wrap(ErrUnknownTag, "library/title")
	assert.True(t, Is(err, ErrUnknownTag))
	assert.False(t, Is(err, ErrUnknownNamespace))
	assert.True(t, IsNotFound(err))
}

func TestNewPermissionDenied(t *testing.T) {
	err := NewPermissionDenied("actor %q may not write %s", "sam", "library/title")
	assert.True(t, IsPermissionDenied(err))
	assert.Contains(t, err.Error(), "sam")
	assert.Contains(t, err.Error(), "library/title")
}

func TestNewTypeMismatch(t *testing.T) {
	err := NewTypeMismatch("operator %q not valid for type %s", "<", "string")
	assert.True(t, IsTypeMismatch(err))
	assert.False(t, IsPermissionDenied(err))
}

func TestIsNotFoundCoversAllAbsenceKinds(t *testing.T) {
	assert.True(t, IsNotFound(NewUnknownNamespace("library")))
	assert.True(t, IsNotFound(NewUnknownTag("library/title")))
	assert.True(t, IsNotFound(Wrap(ErrValueAbsent, "obj-1")))
	assert.False(t, IsNotFound(ErrPermissionDenied))
	assert.False(t, IsNotFound(nil))
}

func TestIsTransient(t *testing.T) {
	assert.True(t, IsTransient(Wrap(ErrStorageTransient, "database is locked")))
	assert.False(t, IsTransient(ErrIntegrity))
	assert.False(t, IsTransient(nil))
}
