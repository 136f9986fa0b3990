package refs

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/hannesdelbeke/maya-security-tools/internal/types"
)

func TestRegistry_UniqueOrdered(t *testing.T) {
	var r Registry
	assert.True(t, r.Add("a.ma"))
	assert.True(t, r.Add("b.ma"))
	assert.False(t, r.Add("a.ma"))
	assert.Equal(t, 2, r.Len())
	assert.True(t, r.Remove("a.ma"))
	assert.False(t, r.Remove("a.ma"))
	assert.Equal(t, []string{"b.ma"}, r.Paths())
	r.Clear()
	assert.Empty(t, r.Paths())
}

func TestTracker_CleanReferenceDropsOut(t *testing.T) {
	tr := NewTracker()
	tr.Before(types.OpOpen, "/proj/main.ma")

	for _, ref := range []struct {
		path     string
		infected bool
	}{{"/proj/A.ma", true}, {"/proj/B.ma", false}, {"/proj/C.ma", true}} {
		tr.Before(types.OpLoadReference, ref.path)
		got, ok := tr.After(types.OpLoadReference, ref.infected)
		assert.True(t, ok)
		assert.Equal(t, ref.path, got)
	}

	if diff := cmp.Diff([]string{"/proj/A.ma", "/proj/C.ma"}, tr.Unresolved()); diff != "" {
		t.Fatalf("unresolved references mismatch (-want +got):\n%s", diff)
	}
}

func TestTracker_NestedReferences(t *testing.T) {
	tr := NewTracker()
	tr.Before(types.OpOpen, "/proj/main.ma")

	outer := tr.Before(types.OpLoadReference, "/proj/set.ma")
	inner := tr.Before(types.OpLoadReference, "/proj/prop.ma")
	assert.Greater(t, inner, outer)
	assert.Equal(t, 2, tr.Depth(types.OpLoadReference))

	// inner load finishes first
	p, ok := tr.After(types.OpLoadReference, true)
	assert.True(t, ok)
	assert.Equal(t, "/proj/prop.ma", p)

	p, ok = tr.After(types.OpLoadReference, false)
	assert.True(t, ok)
	assert.Equal(t, "/proj/set.ma", p)

	assert.Equal(t, []string{"/proj/prop.ma"}, tr.Unresolved())

	_, ok = tr.After(types.OpLoadReference, false)
	assert.False(t, ok, "no pending load left")

	path, ok := tr.After(types.OpOpen, true)
	assert.True(t, ok)
	assert.Equal(t, "/proj/main.ma", path)
}

func TestTracker_KindsAreIndependent(t *testing.T) {
	tr := NewTracker()
	tr.Before(types.OpLoadReference, "/r.ma")
	tr.Before(types.OpImportReference, "/i.ma")

	p, _ := tr.Peek(types.OpLoadReference)
	assert.Equal(t, "/r.ma", p)
	p, _ = tr.After(types.OpImportReference, false)
	assert.Equal(t, "/i.ma", p)
	assert.Equal(t, []string{"/r.ma"}, tr.Unresolved())
}

func TestTracker_OpenClearsRegistry(t *testing.T) {
	tr := NewTracker()
	tr.Before(types.OpLoadReference, "/r.ma")
	tr.After(types.OpLoadReference, true)
	assert.Len(t, tr.Unresolved(), 1)

	tr.Before(types.OpImport, "/other.ma")
	assert.Empty(t, tr.Unresolved())
}
