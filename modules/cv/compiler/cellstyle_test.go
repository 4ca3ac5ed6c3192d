package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		raw  string
		kind CellKind
	}{
		{"10.1000/xyz123", CellDoi},
		{"https://doi.org/10.1000/xyz123", CellDoi},
		{"https://dx.doi.org/10.1000/xyz123.", CellDoi},
		{"<10.1000/xyz123>", CellDoi},
		{"see https://example.org/paper", CellUrl},
		{"2019 - 2021", CellDateLike},
		{"June 2021", CellDateLike},
		{"2020 - current", CellDateLike},
		{"Smith J, Doe A", CellPlain},
		{"", CellPlain},
		{"10.1000/xyz123 and more", CellPlain},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.kind, Classify(tc.raw), "raw=%q", tc.raw)
	}
}

// A DOI containing digit groups must never be reformatted as a date.
func TestClassify_DoiBeatsDateLike(t *testing.T) {
	assert.Equal(t, CellDoi, Classify("10.1016/j.2021.06.001"))
}

func TestStyle_Doi(t *testing.T) {
	got := Style("https://doi.org/10.1000/xyz123")
	assert.Equal(t,
		`<a href="https://doi.org/10.1000/xyz123" target="_blank">10.1000/xyz123</a>`,
		got)
}

func TestStyle_Url(t *testing.T) {
	got := Style("preprint: https://example.org/p?a=1")
	assert.Equal(t,
		`<span class="cv-link">preprint: <a href="https://example.org/p?a=1" target="_blank">https://example.org/p?a=1</a></span>`,
		got)
}

func TestStyle_DateLike(t *testing.T) {
	assert.Equal(t, "Sep 2019 <br> Jun 2021", Style("September 2019 - June 2021"))
	assert.Equal(t, "2020 <br> current", Style("2020 - current"))
	assert.Equal(t, "May 2021", Style("May, 2021"))
}

func TestStyle_Plain(t *testing.T) {
	assert.Equal(t, "Smith J, Doe A", Style("Smith J,Doe A"))
	assert.Equal(t, "a &amp; b", Style("a & b"))
}
