package assistant

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListDuplicateKeysRejectedAtBuild(t *testing.T) {
	// AddItem must not validate; the duplicate surfaces at Build.
	l := NewList("Drinks").
		AddItem(NewOptionItem("espresso", "Espresso")).
		AddItem(NewOptionItem("espresso", "Double Espresso"))

	_, err := l.Build()
	require.Error(t, err)
	var shape *InvalidResponseShapeError
	require.True(t, errors.As(err, &shape))
	assert.True(t, strings.Contains(shape.Reason, "espresso"))
}

func TestListRequiresTwoItems(t *testing.T) {
	_, err := NewList("Drinks").AddItem(NewOptionItem("a", "A")).Build()
	require.Error(t, err)
}

func TestListBuildValid(t *testing.T) {
	l, err := NewList("Drinks").
		AddItem(NewOptionItem("espresso", "Espresso").AddSynonyms("short black")).
		AddItem(NewOptionItem("latte", "Latte").SetDescription("with milk")).
		Build()
	require.NoError(t, err)
	assert.Len(t, l.items, 2)
}

func TestCarouselDuplicateKeysRejected(t *testing.T) {
	_, err := NewCarousel().
		AddItem(NewOptionItem("x", "X")).
		AddItem(NewOptionItem("x", "Also X")).
		Build()
	require.Error(t, err)
}

func TestCarouselItemCap(t *testing.T) {
	c := NewCarousel()
	for i := 0; i < 11; i++ {
		c.AddItem(NewOptionItem(string(rune('a'+i)), "Item"))
	}
	_, err := c.Build()
	require.Error(t, err)
}

func TestOptionItemRequiresKeyAndTitle(t *testing.T) {
	_, err := NewOptionItem("", "Title").Build()
	require.Error(t, err)
	_, err = NewOptionItem("key", "").Build()
	require.Error(t, err)
}
