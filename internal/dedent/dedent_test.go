package dedent

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dshills/nixdoc/pkg/types"
)

func TestStripMarkers_LineComments(t *testing.T) {
	c := types.Comment{
		Style: types.CommentLine,
		Lines: []string{"# Concatenate strings.", "#", "# Example:", "#   concat \"a\" \"b\""},
	}

	assert.Equal(t, []string{" Concatenate strings.", "", " Example:", "   concat \"a\" \"b\""}, StripMarkers(c))
}

func TestStripMarkers_BlockComment(t *testing.T) {
	c := types.Comment{
		Style: types.CommentBlock,
		Lines: []string{"/* blah blah blah", "      foooo baaar", " */"},
	}

	assert.Equal(t, []string{" blah blah blah", "      foooo baaar", " "}, StripMarkers(c))
}

func TestStripMarkers_SingleLineBlock(t *testing.T) {
	c := types.Comment{
		Style: types.CommentBlock,
		Lines: []string{"/* Returns its argument. */"},
	}

	assert.Equal(t, "Returns its argument.", Block(c))
}

func TestStripMarkers_DocBlock(t *testing.T) {
	c := types.Comment{
		Style: types.CommentBlock,
		Lines: []string{"/**", "    Identity function.", "  */"},
	}

	assert.Equal(t, "Identity function.", Block(c))
}

func TestStripMarkers_DoesNotMutateInput(t *testing.T) {
	lines := []string{"# a", "# b"}
	c := types.Comment{Style: types.CommentLine, Lines: lines}

	_ = StripMarkers(c)
	assert.Equal(t, []string{"# a", "# b"}, lines)
}

func TestBlock_LineComments(t *testing.T) {
	c := types.Comment{
		Style: types.CommentLine,
		Lines: []string{"# Adds two numbers."},
	}

	assert.Equal(t, "Adds two numbers.", Block(c))
}

func TestBlock_PreservesRelativeIndentation(t *testing.T) {
	c := types.Comment{
		Style: types.CommentBlock,
		Lines: []string{
			"/* Map a function over a list.",
			"",
			"     Example:",
			"       map (x: x + 1) [ 1 2 ]",
			"       => [ 2 3 ]",
			"  */",
		},
	}

	expected := "Map a function over a list.\n\nExample:\n  map (x: x + 1) [ 1 2 ]\n  => [ 2 3 ]"
	assert.Equal(t, expected, Block(c))
}

func TestBlock_MarkerOnOwnLine(t *testing.T) {
	c := types.Comment{
		Style: types.CommentBlock,
		Lines: []string{
			"/*",
			"    Filter a list.",
			"",
			"    Example:",
			"      filter (x: x > 1) [ 1 2 ]",
			"  */",
		},
	}

	assert.Equal(t, "Filter a list.\n\nExample:\n  filter (x: x > 1) [ 1 2 ]", Block(c))
}

func TestBlock_MarkerAloneKeepsCodeIndentation(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		want  string
	}{
		{
			name:  "plain block",
			lines: []string{"/*", "   Example:", "     add 1 2", "*/"},
			want:  "Example:\n  add 1 2",
		},
		{
			name:  "doc block",
			lines: []string{"/**", "    Adds two numbers.", "      add 1 2", "  */"},
			want:  "Adds two numbers.\n  add 1 2",
		},
		{
			name:  "deeper first line",
			lines: []string{"/*", "      lone", "    shallower", "*/"},
			want:  "  lone\nshallower",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Comment(types.Comment{Style: types.CommentBlock, Lines: tt.lines})
			assert.False(t, res.Fallback)
			assert.Equal(t, tt.want, res.Text)
		})
	}
}

func TestComment_TextOnMarkerLineIsExcluded(t *testing.T) {
	c := types.Comment{
		Style: types.CommentBlock,
		Lines: []string{"/* Example:", "     add 1 2", "*/"},
	}

	assert.Equal(t, "Example:\nadd 1 2", Comment(c).Text)
}

func TestComment_BlankLeadingLineComment(t *testing.T) {
	c := types.Comment{
		Style: types.CommentLine,
		Lines: []string{"#", "#   Example:", "#     add 1 2"},
	}

	assert.Equal(t, "Example:\n  add 1 2", Block(c))
}

func TestLines_TrimsEdgeBlankLines(t *testing.T) {
	res := Lines([]string{"", "   ", " first", "   second", "", "  "})

	assert.Equal(t, "first\nsecond", res.Text)
	assert.False(t, res.Fallback)
}

func TestLines_Empty(t *testing.T) {
	assert.Equal(t, Result{}, Lines(nil))
	assert.Equal(t, Result{}, Lines([]string{"", "  ", "\t"}))
}

func TestLines_MixedTabsAndSpacesFallsBack(t *testing.T) {
	res := Lines([]string{" Summary.", "\tindented with tab", "    indented with spaces"})

	assert.True(t, res.Fallback)
	assert.Equal(t, "Summary.\n\tindented with tab\n    indented with spaces", res.Text)
}

func TestLines_ConsistentTabs(t *testing.T) {
	res := Lines([]string{"Summary.", "\tfirst", "\t\tnested"})

	assert.False(t, res.Fallback)
	assert.Equal(t, "Summary.\nfirst\n\tnested", res.Text)
}

func TestText_Idempotent(t *testing.T) {
	inputs := []string{
		"Adds two numbers.",
		" Concatenate strings.\n\n Example:\n   concat \"a\" \"b\"",
		"\n\n     lone\n       deeper\n    shallower\n",
		"   first\n  \n      code\n        more code\n\n",
		" a\n\tb\n    c",
		"",
		"\r\nwindows \r\n  line\r\n",
	}

	for _, in := range inputs {
		once := Text(in)
		twice := Text(once)
		assert.Equal(t, once, twice, "input %q", in)
	}
}

func TestBlock_Idempotent(t *testing.T) {
	c := types.Comment{
		Style: types.CommentBlock,
		Lines: []string{"/* Summary.", "", "       Example:", "         f 1", "*/"},
	}

	once := Block(c)
	assert.Equal(t, once, Text(once))
}
