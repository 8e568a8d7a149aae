package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odvcencio/guardian/pkg/object"
)

type cmdResult struct {
	code   int
	err    error
	stdout string
	stderr string
}

func runGuardian(t *testing.T, args ...string) cmdResult {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := newRootCmd()
	root.SetArgs(append([]string{"--log-level", "error"}, args...))
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetIn(strings.NewReader(""))
	err := root.Execute()
	return cmdResult{code: exitCode(err), err: err, stdout: stdout.String(), stderr: stderr.String()}
}

// newTestRepo creates a working directory with .git/objects and returns both
// paths.
func newTestRepo(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	gitDir := filepath.Join(dir, ".git")
	require.NoError(t, os.MkdirAll(filepath.Join(gitDir, "objects"), 0o755))
	return dir, gitDir
}

func writeTestObject(t *testing.T, gitDir string, objType object.ObjectType, body string) object.Hash {
	t.Helper()
	h, err := object.NewStore(gitDir).Write(objType, []byte(body))
	require.NoError(t, err)
	return h
}

func writeTestCommit(t *testing.T, gitDir, message string, parents ...object.Hash) object.Hash {
	t.Helper()
	var b strings.Builder
	b.WriteString("tree 4b825dc642cb6eb9a060e54bf8d69288fbee4904\n")
	for _, p := range parents {
		b.WriteString("parent " + string(p) + "\n")
	}
	b.WriteString("author Test <test@example.com> 1234567890 +0000\n\n")
	b.WriteString(message + "\n")
	return writeTestObject(t, gitDir, object.TypeCommit, b.String())
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, exitOK, exitCode(nil))
	assert.Equal(t, exitError, exitCode(assert.AnError))
	assert.Equal(t, exitFailures, exitCode(&exitCodeError{code: exitFailures}))
}

func TestVersionCmd(t *testing.T) {
	res := runGuardian(t, "version")
	require.NoError(t, res.err)
	assert.Equal(t, "guardian "+version+"\n", res.stdout)
}

func TestUnknownFlagFails(t *testing.T) {
	res := runGuardian(t, "scan", "--bogus", ".")
	require.Error(t, res.err)
	assert.Equal(t, exitError, res.code)
}

func TestInvalidLogLevelFlag(t *testing.T) {
	dir, _ := newTestRepo(t)
	res := runGuardian(t, "scan", dir, "--log-level", "loud")
	require.Error(t, res.err)
	assert.Equal(t, exitError, res.code)
}
