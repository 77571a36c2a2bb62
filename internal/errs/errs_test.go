package errs

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessage(t *testing.T) {
	err := NotFound("no module %q", "data")
	assert.Equal(t, `NOT_FOUND: no module "data"`, err.Error())
}

func TestKindChecks(t *testing.T) {
	assert.True(t, IsAlreadyExists(AlreadyExists("x")))
	assert.True(t, IsNotFound(NotFound("x")))
	assert.True(t, IsInvalidArgument(InvalidArgument("x")))

	assert.False(t, IsNotFound(AlreadyExists("x")))
	assert.False(t, IsNotFound(fmt.Errorf("plain error")))
	assert.False(t, IsNotFound(nil))
}

func TestKindChecksWrapped(t *testing.T) {
	err := fmt.Errorf("outer: %w", NotFound("inner"))
	assert.True(t, IsNotFound(err))
	assert.False(t, IsAlreadyExists(err))
}
