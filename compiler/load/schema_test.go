package load

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const userDoc = `
entities:
  - name: User
    doc: Application account.
    fields:
      - name: id
        type: text
        unique: true
        generated: true
      - name: email
        type: text
        unique: true
      - name: name
        type: text
        optional: true
      - name: age
        type: integer
        optional: true
      - name: updatedAt
        type: timestamp
        updatedAt: true
      - name: posts
        kind: object
        list: true
        relation:
          name: UserPosts
          fields: [id]
          references: [authorId]
    unique:
      - [email]
    indexes:
      - name: user_email_idx
        fields: [email]
        unique: true
`

func TestParseDocument(t *testing.T) {
	schemas, err := ParseDocument([]byte(userDoc))
	require.NoError(t, err)
	require.Len(t, schemas, 1)

	user := schemas[0]
	assert.Equal(t, "User", user.Name)

	// Declaration order is preserved.
	names := make([]string, 0, len(user.Fields))
	for _, f := range user.Fields {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"id", "email", "name", "age", "updatedAt", "posts"}, names)

	email := user.Field("email")
	require.NotNil(t, email)
	assert.Equal(t, KindScalar, email.Kind)
	assert.Equal(t, TypeText, email.Type)
	assert.True(t, email.Unique)

	age := user.Field("age")
	require.NotNil(t, age)
	assert.True(t, age.Type.Numeric())
	assert.True(t, age.Optional)

	updated := user.Field("updatedAt")
	require.NotNil(t, updated)
	assert.True(t, updated.UpdatedAt)

	posts := user.Field("posts")
	require.NotNil(t, posts)
	assert.True(t, posts.IsRelation())
	require.NotNil(t, posts.Relation)
	assert.Equal(t, "UserPosts", posts.Relation.Name)
	assert.Equal(t, []string{"id"}, posts.Relation.Fields)
	assert.Equal(t, []string{"authorId"}, posts.Relation.References)

	require.Len(t, user.Indexes, 1)
	assert.True(t, user.Indexes[0].Unique)
	assert.Equal(t, [][]string{{"email"}}, user.UniqueSets)
}

func TestParseDocumentHiddenEntity(t *testing.T) {
	doc := `
entities:
  - name: Visible
    fields:
      - name: id
        type: text
  - name: Internal
    doc: "Bookkeeping rows. @hidden"
    fields:
      - name: id
        type: text
`
	schemas, err := ParseDocument([]byte(doc))
	require.NoError(t, err)
	require.Len(t, schemas, 1)
	assert.Equal(t, "Visible", schemas[0].Name)
}

func TestHiddenDirectiveBoundary(t *testing.T) {
	tests := []struct {
		doc      string
		expected bool
	}{
		{"@hidden", true},
		{"legacy table @hidden", true},
		{"@hidden do not expose", true},
		{"@hiddenlegacy", false},
		{"not hidden", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.doc, func(t *testing.T) {
			s := &Schema{Doc: tt.doc}
			assert.Equal(t, tt.expected, s.Hidden())
		})
	}
}

func TestParseDocumentErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{
			name: "unknown type",
			doc: `
entities:
  - name: User
    fields:
      - name: balance
        type: money
`,
			want: "unsupported field type",
		},
		{
			name: "unknown kind",
			doc: `
entities:
  - name: User
    fields:
      - name: thing
        kind: widget
        type: text
`,
			want: "unsupported field kind",
		},
		{
			name: "scalar with relation",
			doc: `
entities:
  - name: User
    fields:
      - name: owner
        type: text
        relation:
          name: Owner
`,
			want: "cannot carry a relation",
		},
		{
			name: "object without relation",
			doc: `
entities:
  - name: User
    fields:
      - name: owner
        kind: object
`,
			want: "requires a relation",
		},
		{
			name: "duplicate field",
			doc: `
entities:
  - name: User
    fields:
      - name: id
        type: text
      - name: id
        type: text
`,
			want: "field redeclared",
		},
		{
			name: "duplicate entity",
			doc: `
entities:
  - name: User
    fields:
      - name: id
        type: text
  - name: User
    fields:
      - name: id
        type: text
`,
			want: "entity redeclared",
		},
		{
			name: "missing type on scalar",
			doc: `
entities:
  - name: User
    fields:
      - name: id
`,
			want: "unsupported field type",
		},
		{
			name: "unknown unique set field",
			doc: `
entities:
  - name: User
    fields:
      - name: id
        type: text
    unique:
      - [email]
`,
			want: "unknown field",
		},
		{
			name: "empty document",
			doc:  `entities: []`,
			want: "no entities",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDocument([]byte(tt.doc))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMapping))
			assert.True(t, IsMappingError(err))
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestSoftDeleteField(t *testing.T) {
	t.Run("detected", func(t *testing.T) {
		doc := `
entities:
  - name: Post
    fields:
      - name: id
        type: text
      - name: deletedAt
        type: timestamp
        optional: true
`
		schemas, err := ParseDocument([]byte(doc))
		require.NoError(t, err)
		marker := schemas[0].SoftDeleteField()
		require.NotNil(t, marker)
		assert.Equal(t, MarkerField, marker.Name)
	})

	t.Run("wrong type", func(t *testing.T) {
		doc := `
entities:
  - name: Post
    fields:
      - name: deletedAt
        type: boolean
`
		schemas, err := ParseDocument([]byte(doc))
		require.NoError(t, err)
		assert.Nil(t, schemas[0].SoftDeleteField())
	})

	t.Run("absent", func(t *testing.T) {
		doc := `
entities:
  - name: Post
    fields:
      - name: id
        type: text
`
		schemas, err := ParseDocument([]byte(doc))
		require.NoError(t, err)
		assert.Nil(t, schemas[0].SoftDeleteField())
	})
}

func TestFieldTypeEligibility(t *testing.T) {
	tests := []struct {
		typ        FieldType
		numeric    bool
		comparable bool
	}{
		{TypeInteger, true, true},
		{TypeBigInt, true, true},
		{TypeFloat, true, true},
		{TypeDecimal, true, true},
		{TypeTimestamp, false, true},
		{TypeText, false, true},
		{TypeBoolean, false, false},
		{TypeBinary, false, false},
		{TypeJSON, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.typ.String(), func(t *testing.T) {
			assert.Equal(t, tt.numeric, tt.typ.Numeric())
			assert.Equal(t, tt.comparable, tt.typ.Comparable())
		})
	}
}

func TestParseTypeRoundTrip(t *testing.T) {
	for _, typ := range []FieldType{
		TypeText, TypeInteger, TypeBigInt, TypeFloat, TypeDecimal,
		TypeBoolean, TypeTimestamp, TypeBinary, TypeJSON,
	} {
		parsed, err := ParseType(typ.String())
		require.NoError(t, err)
		assert.Equal(t, typ, parsed)
		assert.True(t, parsed.Valid())
	}
	_, err := ParseType("invalid")
	assert.Error(t, err)
	assert.False(t, TypeInvalid.Valid())
}
