package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/smolenkov/unarch-bot/types"
)

func TestParseUserIDArg(t *testing.T) {
	id, _, ok := parseUserIDArg([]string{"/ban", "42"})
	assert.True(t, ok)
	assert.Equal(t, int64(42), id)

	_, arg, ok := parseUserIDArg([]string{"/ban", "abc"})
	assert.False(t, ok)
	assert.Equal(t, "abc", arg)

	_, _, ok = parseUserIDArg([]string{"/ban"})
	assert.False(t, ok)

	_, _, ok = parseUserIDArg([]string{"/ban", "0"})
	assert.False(t, ok, "zero is not a valid user id")
}

func TestFileNameFromURL(t *testing.T) {
	assert.Equal(t, "dump.zip", fileNameFromURL("https://files.example.com/a/b/dump.zip"))
	assert.Equal(t, "dump.zip", fileNameFromURL("https://files.example.com/dump.zip?token=x"))
	assert.Equal(t, "archive", fileNameFromURL("https://files.example.com/"))
}

func TestMergeCollecting(t *testing.T) {
	assert.False(t, mergeCollecting(nil))
	assert.False(t, mergeCollecting(&types.OngoingTask{Kind: types.TaskExtract, FileID: "f"}))
	assert.True(t, mergeCollecting(&types.OngoingTask{Kind: types.TaskMerge}))
	assert.False(t, mergeCollecting(&types.OngoingTask{Kind: types.TaskMerge, FileID: "f"}), "sealed merge task")
}
