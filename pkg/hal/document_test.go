package hal

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/waterwheel/pkg/errors"
)

const (
	relRevision = "http://foo.dev/rest/relation/node/movie/revision_uid"
	relActor    = "http://foo.dev/rest/relation/node/movie/field_actor"
)

func loadFixture(t *testing.T) *Document {
	t.Helper()
	data, err := os.ReadFile("testdata/hal.example.json")
	require.NoError(t, err)
	doc, err := Parse(data)
	require.NoError(t, err)
	return doc
}

func TestParseKeepsDeclarationOrder(t *testing.T) {
	doc := loadFixture(t)

	require.True(t, doc.HasEmbedded)
	require.Len(t, doc.Embedded, 2)
	assert.Equal(t, relRevision, doc.Embedded[0].Name)
	assert.Equal(t, relActor, doc.Embedded[1].Name)
	assert.Equal(t, "field_actor", doc.Embedded[1].Field())
	assert.Equal(t, 3, doc.Refs())

	assert.Equal(t, "http://foo.dev/user/1?_format=hal_json", doc.Embedded[0].Refs[0].Href)
	assert.Equal(t, "http://foo.dev/node/3", doc.Embedded[1].Refs[1].Href)
	assert.Equal(t, "http://foo.dev/node/1?_format=hal_json", doc.SelfHref())
}

func TestParseShapes(t *testing.T) {
	tests := []struct {
		name        string
		json        string
		hasEmbedded bool
		refs        int
	}{
		{"empty object", `{}`, false, 0},
		{"null", `null`, false, 0},
		{"array", `[1,2]`, false, 0},
		{"null embedded", `{"_embedded": null}`, false, 0},
		{"array embedded", `{"_embedded": []}`, false, 0},
		{"empty embedded", `{"_embedded": {}}`, true, 0},
		{"single object relation", `{"_embedded": {"tags": {"href": "/t/1"}}}`, true, 1},
		{"null relation", `{"_embedded": {"tags": null}}`, true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Parse([]byte(tt.json))
			require.NoError(t, err)
			assert.Equal(t, tt.hasEmbedded, doc.HasEmbedded)
			assert.Equal(t, tt.refs, doc.Refs())
		})
	}
}

func TestParseMalformed(t *testing.T) {
	_, err := Parse([]byte(`{"_embedded":`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))
}

func TestParseDuplicateRelation(t *testing.T) {
	doc, err := Parse([]byte(`{"_embedded": {"a": [{"href": "/1"}], "b": [], "a": [{"href": "/2"}, {"href": "/3"}]}}`))
	require.NoError(t, err)

	require.Len(t, doc.Embedded, 2)
	assert.Equal(t, "a", doc.Embedded[0].Name)
	assert.Len(t, doc.Embedded[0].Refs, 2)
}

func TestFromMap(t *testing.T) {
	doc := FromMap(map[string]any{
		"_embedded": map[string]any{
			"zeta":  []any{map[string]any{"href": "/z"}},
			"alpha": map[string]any{"_links": map[string]any{"self": map[string]any{"href": "/a"}}},
		},
	})

	require.True(t, doc.HasEmbedded)
	require.Len(t, doc.Embedded, 2)
	assert.Equal(t, "alpha", doc.Embedded[0].Name)
	assert.Equal(t, "/a", doc.Embedded[0].Refs[0].Href)
	assert.Equal(t, "zeta", doc.Embedded[1].Name)

	assert.False(t, FromMap(nil).HasEmbedded)
	assert.False(t, FromMap(map[string]any{}).HasEmbedded)
}

func TestErrNotHAL(t *testing.T) {
	assert.Equal(t, "This is probably not HAL+JSON", ErrNotHAL.Error())
	assert.Equal(t, errors.ErrCodeNotHAL, errors.GetCode(ErrNotHAL))
}
