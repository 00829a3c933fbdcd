package bdev

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/sys/unix"
)

func TestErrnoNil(t *testing.T) {
	assert.Equal(t, 0, Errno(nil))
}

func TestErrnoInvalidArgument(t *testing.T) {
	assert.Equal(t, -int(unix.EINVAL), Errno(ErrInvalidArgument))
}

func TestErrnoGeneric(t *testing.T) {
	assert.Equal(t, -1, Errno(ErrNotFound))
}
