package styles

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultStyles(t *testing.T) {
	s := DefaultStyles()

	assert.Equal(t, DefaultPalette(), s.Palette)
	assert.True(t, s.Title.GetBold())
	assert.Equal(t, 2, s.Citation.GetPaddingLeft())
	assert.Contains(t, s.Question.Render("What?"), "What?")
}
