package bdev

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseZfsListRoot(t *testing.T) {
	out := "NAME               USED  AVAIL  REFER  MOUNTPOINT\n" +
		"lxc                1.2G  30.0G   128K  /var/lib/lxc\n" +
		"lxc/c1             1.1G  30.0G   1.1G  /var/lib/lxc/c1/rootfs\n"

	root, err := parseZfsListRoot(out, "lxc/c1")
	require.NoError(t, err)
	assert.Equal(t, "lxc", root)
}

func TestParseZfsListRootTopLevel(t *testing.T) {
	out := "NAME  USED  AVAIL  REFER  MOUNTPOINT\n" +
		"lxc   1.2G  30.0G   128K  /var/lib/lxc\n"

	root, err := parseZfsListRoot(out, "lxc")
	require.NoError(t, err)
	assert.Equal(t, "lxc", root)
}

func TestParseZfsListRootNotFound(t *testing.T) {
	_, err := parseZfsListRoot("NAME  USED  AVAIL  REFER  MOUNTPOINT\n", "lxc/c1")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestZFSDetectNonexistentPath(t *testing.T) {
	d := &zfsDriver{}
	assert.False(t, d.Detect("/definitely/does/not/exist/xyz123"))
}
