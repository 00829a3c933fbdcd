package bdev

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructByKindKnown(t *testing.T) {
	for _, kind := range []Kind{KindDir, KindZFS, KindLVM, KindBtrfs, KindOverlayFS} {
		inst, err := ConstructByKind(kind)
		require.NoError(t, err)
		assert.Equal(t, kind, inst.Kind)
		assert.Empty(t, inst.Source)
		assert.Empty(t, inst.Target)
	}
}

func TestConstructByKindUnknown(t *testing.T) {
	_, err := ConstructByKind(Kind("made-up"))
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestConstructByProbeExplicitPrefixes(t *testing.T) {
	inst, err := ConstructByProbe("lvm:/dev/lxc/c1", "", "")
	require.NoError(t, err)
	assert.Equal(t, KindLVM, inst.Kind)

	inst, err = ConstructByProbe("overlayfs:/a:/b", "", "")
	require.NoError(t, err)
	assert.Equal(t, KindOverlayFS, inst.Kind)

	inst, err = ConstructByProbe("dir:/some/path", "", "")
	require.NoError(t, err)
	assert.Equal(t, KindDir, inst.Kind)
}

// TestProbeOrderPrefersSpecificKinds documents the §8 "detect injectivity
// within ordering" law: an overlayfs:-prefixed source must not be mistaken
// for a plain directory. The dir driver is probed before overlayfs, so this
// holds because dir's Detect rejects the prefixed string.
func TestProbeOrderPrefersSpecificKinds(t *testing.T) {
	inst, err := ConstructByProbe("overlayfs:/a:/b", "", "")
	require.NoError(t, err)
	assert.NotEqual(t, KindDir, inst.Kind)
}

func TestConstructByProbeNotFound(t *testing.T) {
	_, err := ConstructByProbe("/this/path/almost-certainly/does/not/exist-xyz", "", "")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestInstanceDestroyIsIdempotent(t *testing.T) {
	var inst Instance
	assert.NotPanics(t, func() {
		inst.Destroy()
		inst.Destroy()
	})

	var nilInst *Instance
	assert.NotPanics(t, func() {
		nilInst.Destroy()
	})
}

func TestInstanceIncomplete(t *testing.T) {
	assert.True(t, (&Instance{}).Incomplete())
	assert.True(t, (&Instance{Source: "x"}).Incomplete())
	assert.False(t, (&Instance{Source: "x", Target: "y"}).Incomplete())
}
