package dom

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDocument(t *testing.T) {
	doc, err := NewDocument()
	require.NoError(t, err)
	assert.Equal(t, "main", doc.Main.Data)
	assert.Equal(t, "select", doc.SelectMenu.Data)
	assert.Empty(t, doc.Articles())
	assert.Contains(t, doc.String(), `<select id="selectMenu"`)
}

func TestParseDocumentRequiresHandles(t *testing.T) {
	_, err := ParseDocument(strings.NewReader(`<html><body><main></main></body></html>`))
	assert.ErrorIs(t, err, ErrMissingElement)

	_, err = ParseDocument(strings.NewReader(`<html><body><select id="selectMenu"></select></body></html>`))
	assert.ErrorIs(t, err, ErrMissingElement)
}

func TestSetDisabled(t *testing.T) {
	doc, err := NewDocument()
	require.NoError(t, err)

	doc.SetDisabled(true)
	assert.True(t, doc.Disabled())
	assert.Contains(t, doc.String(), `disabled=""`)

	doc.SetDisabled(false)
	assert.False(t, doc.Disabled())
}

func TestClassHelpers(t *testing.T) {
	el := NewElement("section")
	AddClass(el, "comments", "hide", "hide")
	assert.Equal(t, []string{"comments", "hide"}, Classes(el))

	assert.False(t, ToggleClass(el, "hide"))
	assert.Equal(t, []string{"comments"}, Classes(el))
	assert.True(t, ToggleClass(el, "hide"))

	RemoveClass(el, "comments")
	RemoveClass(el, "hide")
	assert.False(t, HasAttr(el, "class"))
}
