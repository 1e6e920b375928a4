package schemapath_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lutaml/unibuf-go/internal/schemapath"
)

func TestResolveProbesRootsInOrder(t *testing.T) {
	dirA := t.TempDir()
	dirB := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dirB, "common.capnp"), []byte("@0x1;"), 0o644))

	r, err := schemapath.NewResolver([]string{dirA, dirB})
	require.NoError(t, err)

	path, err := r.Resolve("common.capnp")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dirB, "common.capnp"), path)
}

func TestResolveExpandsGlobRoots(t *testing.T) {
	base := t.TempDir()
	nested := filepath.Join(base, "vendor", "schemas")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(nested, "types.fbs"), []byte("table T {}"), 0o644))

	r, err := schemapath.NewResolver([]string{filepath.Join(base, "vendor", "**")})
	require.NoError(t, err)

	path, err := r.Resolve("types.fbs")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(nested, "types.fbs"), path)
}

func TestResolveReturnsErrorWhenNotFound(t *testing.T) {
	r, err := schemapath.NewResolver([]string{t.TempDir()})
	require.NoError(t, err)

	_, err = r.Resolve("missing.capnp")
	assert.Error(t, err)
}
