package proc

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFakeLongestPrefixWins(t *testing.T) {
	f := NewFake().
		On("task", Result{Stdout: []byte("generic")}).
		On("task sync", Result{Stdout: []byte("sync")}).
		OnError("task export", errors.New("boom"))

	res, err := f.Run("task", "sync")
	require.NoError(t, err)
	assert.Equal(t, "sync", string(res.Stdout))

	res, err = f.Run("task", "add", "x")
	require.NoError(t, err)
	assert.Equal(t, "generic", string(res.Stdout))

	_, err = f.Run("task", "export")
	assert.EqualError(t, err, "boom")

	// "task syncx" must not match the "task sync" prefix.
	res, _ = f.Run("task", "syncx")
	assert.Equal(t, "generic", string(res.Stdout))

	_, err = f.Run("timew", "--version")
	assert.Error(t, err)

	assert.Equal(t, 4, f.CallCount("task"))
	assert.Equal(t, 1, f.CallCount("task sync"))
	assert.Equal(t, []string{"timew", "--version"}, f.Last())
}

func TestResultSuccess(t *testing.T) {
	assert.True(t, Result{}.Success())
	assert.False(t, Result{ExitCode: 1}.Success())
}

func TestExecMissingBinary(t *testing.T) {
	_, err := Exec{}.Run("taskview-test-no-such-binary")
	assert.Error(t, err)
}

func TestCommandLine(t *testing.T) {
	assert.Equal(t, "task rc.bulk=0 done", CommandLine("task", []string{"rc.bulk=0", "done"}))
	assert.Equal(t, "task", CommandLine("task", nil))
}
