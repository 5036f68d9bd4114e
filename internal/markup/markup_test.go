package markup

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ptasker/gutenberg/internal/block"
	"github.com/ptasker/gutenberg/internal/testutil"
)

func TestSerialize_StripsCoreNamespace(t *testing.T) {
	got, err := Serialize(block.Block{
		ID:         "b1",
		Type:       "core/paragraph",
		Attributes: block.Attributes{"content": "Hello"},
	})
	require.NoError(t, err)

	assert.Equal(t, `<!-- wp:paragraph {"content":"Hello"} /-->`, got)
}

func TestSerialize_KeepsOtherNamespaces(t *testing.T) {
	got, err := Serialize(block.Block{ID: "b1", Type: "myplugin/notice"})
	require.NoError(t, err)

	assert.Equal(t, `<!-- wp:myplugin/notice /-->`, got)
}

func TestSerialize_OmitsEmptyAttributes(t *testing.T) {
	got, err := Serialize(block.Block{ID: "b1", Type: "core/separator", Attributes: block.Attributes{}})
	require.NoError(t, err)

	assert.Equal(t, `<!-- wp:separator /-->`, got)
}

func TestSerialize_EscapesCommentBreakers(t *testing.T) {
	got, err := Serialize(block.Block{
		ID:         "b1",
		Type:       "core/paragraph",
		Attributes: block.Attributes{"content": "a --> b & <em>c</em>"},
	})
	require.NoError(t, err)

	// The fragment must stay one well-formed HTML comment.
	assert.NotContains(t, got[len("<!-- "):len(got)-len(" /-->")], "--")
	assert.NotContains(t, got, "<em>")
	assert.Equal(t, "<!-- wp:paragraph {\"content\":\"a \\u002d\\u002d\\u003e b \\u0026 \\u003cem\\u003ec\\u003c/em\\u003e\"} /-->", got)
}

func TestSerialize_SortsAttributeKeys(t *testing.T) {
	got, err := Serialize(block.Block{
		ID:         "b1",
		Type:       "core/heading",
		Attributes: block.Attributes{"level": float64(2), "content": "Title", "anchor": "top"},
	})
	require.NoError(t, err)

	assert.Equal(t, `<!-- wp:heading {"anchor":"top","content":"Title","level":2} /-->`, got)
}

func TestRoundTrip_TypeAndAttributes(t *testing.T) {
	in := block.Block{
		ID:   "irrelevant",
		Type: "core/paragraph",
		Attributes: block.Attributes{
			"content": "5 > 4 -- true & false",
			"dropCap": true,
			"level":   float64(3),
			"tags":    []any{"a", "b"},
		},
	}

	serialized, err := Serialize(in)
	require.NoError(t, err)

	p := Parser{IDs: testutil.NewFixedIDGenerator("fresh")}
	out, err := p.ParseFirst(serialized)
	require.NoError(t, err)

	assert.Equal(t, "fresh", out.ID)
	assert.Equal(t, in.Type, out.Type)
	assert.Equal(t, in.Attributes, out.Attributes)
}

func TestParseDocument_SkipsProseAndForeignComments(t *testing.T) {
	doc := `
Intro prose that is not a block.
<!-- just a comment -->
<!-- wp:paragraph {"content":"First"} /-->
More prose.
<!-- wp:quote {"value":"Q"} -->
<p>rendered body is skipped</p>
<!-- /wp:quote -->
<!-- wp:myplugin/notice {"level":1} /-->
`

	p := Parser{IDs: testutil.NewSequenceIDGenerator("block")}
	blocks, err := p.ParseDocument(doc)
	require.NoError(t, err)

	require.Len(t, blocks, 3)
	assert.Equal(t, block.Block{ID: "block-1", Type: "core/paragraph", Attributes: block.Attributes{"content": "First"}}, blocks[0])
	assert.Equal(t, block.Block{ID: "block-2", Type: "core/quote", Attributes: block.Attributes{"value": "Q"}}, blocks[1])
	assert.Equal(t, block.Block{ID: "block-3", Type: "myplugin/notice", Attributes: block.Attributes{"level": float64(1)}}, blocks[2])
}

func TestParseDocument_BalancesNestedSameName(t *testing.T) {
	doc := `<!-- wp:quote -->
  <!-- wp:quote -->inner<!-- /wp:quote -->
<!-- /wp:quote -->
<!-- wp:paragraph {"content":"After"} /-->`

	p := Parser{IDs: testutil.NewSequenceIDGenerator("block")}
	blocks, err := p.ParseDocument(doc)
	require.NoError(t, err)

	require.Len(t, blocks, 2)
	assert.Equal(t, "core/quote", blocks[0].Type)
	assert.Equal(t, "core/paragraph", blocks[1].Type)
}

func TestParseDocument_StrayCloserSkipped(t *testing.T) {
	doc := `<!-- /wp:paragraph -->
<!-- wp:paragraph {"content":"Real"} /-->`

	p := Parser{IDs: testutil.NewSequenceIDGenerator("block")}
	blocks, err := p.ParseDocument(doc)
	require.NoError(t, err)

	require.Len(t, blocks, 1)
	assert.Equal(t, "Real", blocks[0].Attributes["content"])
}

func TestParseDocument_UnterminatedComment(t *testing.T) {
	p := Parser{IDs: testutil.NewSequenceIDGenerator("block")}
	_, err := p.ParseDocument(`<!-- wp:paragraph {"content":"x"} /--`)
	require.Error(t, err)

	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Contains(t, pe.Reason, "unterminated comment")
}

func TestParseDocument_UnterminatedBlock(t *testing.T) {
	p := Parser{IDs: testutil.NewSequenceIDGenerator("block")}
	_, err := p.ParseDocument(`<!-- wp:quote --> body with no closer`)
	require.Error(t, err)

	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Contains(t, pe.Reason, `unterminated block "quote"`)
}

func TestParseDocument_InvalidAttributesJSON(t *testing.T) {
	p := Parser{IDs: testutil.NewSequenceIDGenerator("block")}
	_, err := p.ParseDocument(`<!-- wp:paragraph {"content":} /-->`)
	require.Error(t, err)

	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Contains(t, pe.Reason, "invalid attributes JSON")
}

func TestParseFirst_TakesFirstOfMany(t *testing.T) {
	content := `<!-- wp:paragraph {"content":"One"} /-->
<!-- wp:paragraph {"content":"Two"} /-->`

	p := Parser{IDs: testutil.NewSequenceIDGenerator("block")}
	b, err := p.ParseFirst(content)
	require.NoError(t, err)

	assert.Equal(t, "One", b.Attributes["content"])
}

func TestParseFirst_NoBlock(t *testing.T) {
	p := Parser{IDs: testutil.NewSequenceIDGenerator("block")}

	_, err := p.ParseFirst("just prose, no blocks")
	require.Error(t, err)

	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Contains(t, pe.Reason, "no block found")
}

func TestSerializeAll_Golden(t *testing.T) {
	blocks := []block.Block{
		{ID: "b1", Type: "core/paragraph", Attributes: block.Attributes{"content": "Hello world", "dropCap": true}},
		{ID: "b2", Type: "core/separator"},
		{ID: "b3", Type: "core/block", Attributes: block.Attributes{"ref": "abc-123"}},
		{ID: "b4", Type: "myplugin/notice", Attributes: block.Attributes{"level": float64(2), "text": "5 > 4 -- true & false"}},
	}

	doc, err := SerializeAll(blocks)
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "document", []byte(doc))
}
