package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestLevelStore(t *testing.T) RelationStore {
	t.Helper()

	s, err := OpenLevelStore(filepath.Join(t.TempDir(), "relations.leveldb"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Init(context.Background()))
	return s
}

func TestLevelStore(t *testing.T) {
	runRelationStoreSuite(t, newTestLevelStore)
}
