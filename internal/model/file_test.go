package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTagsScan(t *testing.T) {
	var tags Tags
	require.NoError(t, tags.Scan(`["go","notes"]`))
	assert.Equal(t, Tags{"go", "notes"}, tags)

	require.NoError(t, tags.Scan([]byte(`[]`)))
	assert.Empty(t, tags)

	require.NoError(t, tags.Scan(nil))
	assert.Nil(t, tags)

	assert.Error(t, tags.Scan(42))
}

func TestFileContentHelpers(t *testing.T) {
	empty := ""
	content := "hello"

	assert.False(t, (&File{}).HasContent())
	assert.False(t, (&File{Content: &empty}).HasContent())
	assert.True(t, (&File{Content: &content}).HasContent())

	assert.True(t, (&File{Kind: KindText}).TextLike())
	assert.True(t, (&File{Kind: KindCode}).TextLike())
	assert.False(t, (&File{Kind: KindImage}).TextLike())
}
