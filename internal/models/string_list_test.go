package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestStringListDecodesLegacyShapes(t *testing.T) {
	tests := map[string]struct {
		doc  bson.M
		want StringList
	}{
		"array":        {bson.M{"images": bson.A{"a.jpg", "b.jpg"}}, StringList{"a.jpg", "b.jpg"}},
		"single":       {bson.M{"images": " a.jpg "}, StringList{"a.jpg"}},
		"empty string": {bson.M{"images": ""}, StringList{}},
		"null":         {bson.M{"images": nil}, StringList{}},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			raw, err := bson.Marshal(tc.doc)
			require.NoError(t, err)

			var p Product
			require.NoError(t, bson.Unmarshal(raw, &p))
			assert.Equal(t, tc.want, p.Images)
		})
	}
}

func TestStringListEncodesNilAsEmptyArray(t *testing.T) {
	raw, err := bson.Marshal(Product{Name: "Ring"})
	require.NoError(t, err)

	images, err := bson.Raw(raw).LookupErr("images")
	require.NoError(t, err)
	assert.Equal(t, bson.TypeArray, images.Type)
}
