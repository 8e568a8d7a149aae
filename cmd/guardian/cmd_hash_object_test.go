package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odvcencio/guardian/pkg/object"
)

func TestHashObjectCmd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hello.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello world\n"), 0o644))

	res := runGuardian(t, "hash-object", path)
	require.NoError(t, res.err)
	assert.Equal(t, "3b18e512dba79e4c8300dd08aeb37f8e728b8dad\n", res.stdout)
}

func TestHashObjectCmdType(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	res := runGuardian(t, "hash-object", "-t", "tree", path)
	require.NoError(t, res.err)
	assert.Equal(t, "4b825dc642cb6eb9a060e54bf8d69288fbee4904\n", res.stdout)

	res = runGuardian(t, "hash-object", "-t", "entity", path)
	require.Error(t, res.err)
}

func TestHashObjectCmdWrite(t *testing.T) {
	_, gitDir := newTestRepo(t)
	path := filepath.Join(t.TempDir(), "hello.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello world\n"), 0o644))

	res := runGuardian(t, "hash-object", "-w", "--git-dir", gitDir, path)
	require.NoError(t, res.err)

	h := object.Hash("3b18e512dba79e4c8300dd08aeb37f8e728b8dad")
	obj, err := object.NewStore(gitDir).Read(h)
	require.NoError(t, err)
	assert.Equal(t, "hello world\n", string(obj.Payload))

	scan := runGuardian(t, "scan", gitDir)
	require.NoError(t, scan.err)
}
