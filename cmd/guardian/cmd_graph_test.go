package main

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odvcencio/guardian/pkg/object"
)

func TestGraphCmdText(t *testing.T) {
	dir, gitDir := newTestRepo(t)
	a := writeTestCommit(t, gitDir, "first")
	b := writeTestCommit(t, gitDir, "second", a)
	writeTestObject(t, gitDir, object.TypeBlob, "not a commit")

	res := runGuardian(t, "graph", dir)
	require.NoError(t, res.err)
	assert.Equal(t, a.Short()+"  first\n"+b.Short()+" "+a.Short()+"  second\n", res.stdout)
}

func TestGraphCmdJSON(t *testing.T) {
	dir, gitDir := newTestRepo(t)
	a := writeTestCommit(t, gitDir, "first")
	b := writeTestCommit(t, gitDir, "second", a)

	res := runGuardian(t, "graph", dir, "--format", "json")
	require.NoError(t, res.err)

	var doc struct {
		Nodes []map[string]any    `json:"nodes"`
		Edges []map[string]string `json:"edges"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &doc))
	assert.Len(t, doc.Nodes, 2)
	require.Len(t, doc.Edges, 1)
	assert.Equal(t, map[string]string{"parent": string(a), "child": string(b)}, doc.Edges[0])
}

func TestGraphCmdDOT(t *testing.T) {
	dir, gitDir := newTestRepo(t)
	a := writeTestCommit(t, gitDir, "first")
	b := writeTestCommit(t, gitDir, "second", a)

	res := runGuardian(t, "graph", dir, "--format", "dot")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "digraph {")
	assert.Contains(t, res.stdout, `"`+string(a)+`" -> "`+string(b)+`"`)
}

func TestGraphCmdLineage(t *testing.T) {
	dir, gitDir := newTestRepo(t)
	a := writeTestCommit(t, gitDir, "first")
	b := writeTestCommit(t, gitDir, "second", a)
	c := writeTestCommit(t, gitDir, "third", b)

	res := runGuardian(t, "graph", dir, "--lineage", string(c)[:10])
	require.NoError(t, res.err)
	assert.Equal(t, string(a)+"\n"+string(b)+"\n"+string(c)+"\n", res.stdout)

	res = runGuardian(t, "graph", dir, "--lineage", "zzzz")
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "not found")
}

func TestGraphCmdSkipsInvalidFiles(t *testing.T) {
	dir, gitDir := newTestRepo(t)
	a := writeTestCommit(t, gitDir, "first")
	b := writeTestCommit(t, gitDir, "second", a)
	require.NoError(t, os.WriteFile(object.NewStore(gitDir).ObjectPath(a), []byte("broken"), 0o644))

	res := runGuardian(t, "graph", dir)
	require.NoError(t, res.err)
	assert.Contains(t, res.stderr, "1 invalid file(s)")
	assert.Equal(t, b.Short()+"  second\n", res.stdout, "parent outside the valid set adds no edge")
}

func TestGraphCmdRejectsUnknownFormat(t *testing.T) {
	dir, _ := newTestRepo(t)
	res := runGuardian(t, "graph", dir, "--format", "yaml")
	require.Error(t, res.err)
	assert.Equal(t, exitError, res.code)
}
