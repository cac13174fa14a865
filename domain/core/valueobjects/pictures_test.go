package valueobjects_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"trustie-admin/domain/core/valueobjects"
)

func TestOrderPictures(t *testing.T) {
	in := []string{"2#c.jpg", "bad", "0#a.jpg", "10#z.jpg", "1#b.jpg", "#x.jpg", "1#b2.jpg"}

	ordered := valueobjects.OrderPictures(in)
	assert.Equal(t, []string{"0#a.jpg", "1#b.jpg", "1#b2.jpg", "2#c.jpg", "10#z.jpg"}, ordered)
	assert.Equal(t,
		[]string{"a.jpg", "b.jpg", "b2.jpg", "c.jpg", "z.jpg"},
		valueobjects.OrderedPictureNames(in))
}

func TestOrderPicturesIsIdempotent(t *testing.T) {
	inputs := [][]string{
		nil,
		{"3#d", "1#b", "2#c", "0#a"},
		{"1#dup-first", "0#x", "1#dup-second", "junk", "1#dup-third"},
		{"007#padded", "7#plain"},
	}

	for _, in := range inputs {
		once := valueobjects.OrderPictures(in)
		twice := valueobjects.OrderPictures(once)
		assert.Equal(t, once, twice)
	}
}

func TestOrderPicturesIsStable(t *testing.T) {
	ordered := valueobjects.OrderedPictureNames([]string{"1#first", "0#zero", "1#second", "1#third"})
	assert.Equal(t, []string{"zero", "first", "second", "third"}, ordered)
}

func TestCoverPicture(t *testing.T) {
	name, ok := valueobjects.CoverPicture([]string{"1#b.jpg", "0#a.jpg"})
	assert.True(t, ok)
	assert.Equal(t, "a.jpg", name)

	_, ok = valueobjects.CoverPicture([]string{"nope"})
	assert.False(t, ok)
}
