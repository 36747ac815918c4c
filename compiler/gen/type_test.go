package gen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/apigen/compiler/load"
)

// userSchema mirrors a typical soft-deletable entity: text identifier,
// a numeric field, timestamps, and the marker.
func userSchema() *load.Schema {
	return load.MustNewSchema("User",
		&load.Field{Name: "id", Kind: load.KindScalar, Type: load.TypeText, Unique: true, Generated: true},
		&load.Field{Name: "email", Kind: load.KindScalar, Type: load.TypeText, Unique: true},
		&load.Field{Name: "age", Kind: load.KindScalar, Type: load.TypeInteger, Optional: true},
		&load.Field{Name: "createdAt", Kind: load.KindScalar, Type: load.TypeTimestamp, Generated: true},
		&load.Field{Name: load.MarkerField, Kind: load.KindScalar, Type: load.TypeTimestamp, Optional: true},
		&load.Field{Name: "posts", Kind: load.KindObject, Type: load.TypeInvalid, List: true,
			Relation: &load.Relation{Name: "UserPosts", Fields: []string{"id"}, References: []string{"authorId"}}},
	)
}

// postSchema has no soft-delete marker and no field named "id".
func postSchema() *load.Schema {
	return load.MustNewSchema("Post",
		&load.Field{Name: "slug", Kind: load.KindScalar, Type: load.TypeText, Unique: true},
		&load.Field{Name: "title", Kind: load.KindScalar, Type: load.TypeText},
		&load.Field{Name: "views", Kind: load.KindScalar, Type: load.TypeBigInt},
		&load.Field{Name: "published", Kind: load.KindScalar, Type: load.TypeBoolean},
	)
}

// flagSchema carries only booleans: no numeric or comparable fields,
// and no identifier.
func flagSchema() *load.Schema {
	return load.MustNewSchema("Flag",
		&load.Field{Name: "enabled", Kind: load.KindScalar, Type: load.TypeBoolean},
		&load.Field{Name: "inherited", Kind: load.KindScalar, Type: load.TypeBoolean},
	)
}

func TestNewType(t *testing.T) {
	typ, err := NewType(MustNewConfig(), userSchema())
	require.NoError(t, err)

	assert.Equal(t, "User", typ.Name)
	assert.Equal(t, "user", typ.Key())
	// Relation fields never participate in synthesis.
	assert.Nil(t, typ.Field("posts"))
	assert.Len(t, typ.Fields, 5)

	require.NotNil(t, typ.ID)
	assert.Equal(t, "id", typ.ID.Name)
}

func TestNewTypeInvalidName(t *testing.T) {
	tests := []string{"", "user", "User Name", "2User", "User-Profile"}
	for _, name := range tests {
		t.Run(name, func(t *testing.T) {
			err := ValidEntityName(name)
			require.Error(t, err)
			assert.True(t, IsSchemaError(err))
		})
	}
	assert.NoError(t, ValidEntityName("AccommodationPricing"))
	assert.NoError(t, ValidEntityName("OAuth2Token"))
}

func TestNewTypeNoScalarFields(t *testing.T) {
	schema := load.MustNewSchema("Orphan",
		&load.Field{Name: "owner", Kind: load.KindObject,
			Relation: &load.Relation{Name: "Owner", Fields: []string{"ownerId"}, References: []string{"id"}}},
	)
	_, err := NewType(MustNewConfig(), schema)
	require.Error(t, err)
	assert.True(t, IsSchemaError(err))
}

func TestIdentifierFallback(t *testing.T) {
	t.Run("field named id wins", func(t *testing.T) {
		typ, err := NewType(MustNewConfig(), userSchema())
		require.NoError(t, err)
		assert.Equal(t, "id", typ.ID.Name)
	})

	t.Run("first unique field without id", func(t *testing.T) {
		typ, err := NewType(MustNewConfig(), postSchema())
		require.NoError(t, err)
		require.NotNil(t, typ.ID)
		assert.Equal(t, "slug", typ.ID.Name)
	})

	t.Run("no identifier", func(t *testing.T) {
		typ, err := NewType(MustNewConfig(), flagSchema())
		require.NoError(t, err)
		assert.Nil(t, typ.ID)
	})
}

func TestAggregationEligibility(t *testing.T) {
	t.Run("numeric and comparable", func(t *testing.T) {
		typ, err := NewType(MustNewConfig(), userSchema())
		require.NoError(t, err)

		agg := typ.Aggregation
		assert.True(t, agg.Count)
		assert.True(t, agg.Sum)
		assert.True(t, agg.Avg)
		assert.True(t, agg.Min)
		assert.True(t, agg.Max)
		assert.Equal(t, []string{"age"}, agg.Numeric)
		assert.Equal(t, []string{"id", "email", "age", "createdAt", load.MarkerField}, agg.Comparable)
	})

	t.Run("booleans only", func(t *testing.T) {
		typ, err := NewType(MustNewConfig(), flagSchema())
		require.NoError(t, err)

		agg := typ.Aggregation
		assert.True(t, agg.Count)
		assert.False(t, agg.Sum)
		assert.False(t, agg.Avg)
		assert.False(t, agg.Min)
		assert.False(t, agg.Max)
	})

	t.Run("list fields never count", func(t *testing.T) {
		schema := load.MustNewSchema("Metric",
			&load.Field{Name: "name", Kind: load.KindScalar, Type: load.TypeText, Unique: true},
			&load.Field{Name: "samples", Kind: load.KindScalar, Type: load.TypeFloat, List: true},
		)
		typ, err := NewType(MustNewConfig(), schema)
		require.NoError(t, err)
		assert.False(t, typ.Aggregation.Sum)
		assert.Equal(t, []string{"name"}, typ.Aggregation.Comparable)
	})
}

func TestSelectors(t *testing.T) {
	typ, err := NewType(MustNewConfig(), userSchema())
	require.NoError(t, err)
	assert.Equal(t, []string{"_count", "_sum", "_avg", "_min", "_max"}, typ.Selectors())

	typ, err = NewType(MustNewConfig(), flagSchema())
	require.NoError(t, err)
	assert.Equal(t, []string{"_count"}, typ.Selectors())
}

func TestMarker(t *testing.T) {
	t.Run("marker present", func(t *testing.T) {
		typ, err := NewType(MustNewConfig(), userSchema())
		require.NoError(t, err)
		require.NotNil(t, typ.Marker())
		assert.Equal(t, load.MarkerField, typ.Marker().Name)
		assert.True(t, typ.SoftDeletable())
	})

	t.Run("marker absent", func(t *testing.T) {
		typ, err := NewType(MustNewConfig(), postSchema())
		require.NoError(t, err)
		assert.Nil(t, typ.Marker())
		assert.False(t, typ.SoftDeletable())
	})

	t.Run("toggle restricts", func(t *testing.T) {
		typ, err := NewType(MustNewConfig(WithSoftDelete(false)), userSchema())
		require.NoError(t, err)
		require.NotNil(t, typ.Marker())
		assert.False(t, typ.SoftDeletable())
	})
}

func TestBundle(t *testing.T) {
	typ, err := NewType(MustNewConfig(), load.MustNewSchema("AccommodationPricing",
		&load.Field{Name: "id", Kind: load.KindScalar, Type: load.TypeText, Unique: true},
	))
	require.NoError(t, err)

	b := typ.Bundle()
	assert.Equal(t, "AccommodationPricing", b.Entity)
	assert.Equal(t, "accommodationPricing", b.Key)
	assert.Equal(t, "AccommodationPricingProcedures", b.Export)
	assert.Equal(t, "accommodation_pricing_handlers.go", b.File)
	assert.Equal(t, "/accommodationPricing", b.Mount)
}

func TestGraph(t *testing.T) {
	g, err := NewGraph(MustNewConfig(), userSchema(), postSchema())
	require.NoError(t, err)

	require.Len(t, g.Nodes, 2)
	assert.NotNil(t, g.Type("User"))
	assert.NotNil(t, g.Type("Post"))
	assert.Nil(t, g.Type("Missing"))
}

func TestGraphSkipsHidden(t *testing.T) {
	hidden := userSchema()
	hidden.Doc = "internal audit mirror @hidden"

	g, err := NewGraph(MustNewConfig(), hidden, postSchema())
	require.NoError(t, err)
	require.Len(t, g.Nodes, 1)
	assert.Nil(t, g.Type("User"))
}

func TestGraphDuplicateEntity(t *testing.T) {
	_, err := NewGraph(MustNewConfig(), userSchema(), userSchema())
	require.Error(t, err)
	assert.True(t, IsSchemaError(err))
}
