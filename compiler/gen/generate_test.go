package gen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/apigen/compiler/load"
)

func TestGenerateRequiresClientPackage(t *testing.T) {
	_, err := Generate(MustNewConfig(), userSchema())
	require.Error(t, err)
	assert.True(t, IsConfigError(err))

	_, err = Generate(nil, userSchema())
	require.Error(t, err)
}

func TestGenerateEndToEnd(t *testing.T) {
	c := MustNewConfig(
		WithClientPackage("github.com/acme/blog/client"),
		WithPackage("github.com/acme/blog/api"),
		WithDefaultRules("allow", "authenticated"),
		WithPrefixNames(true),
	)
	arts, err := Generate(c, userSchema(), postSchema())
	require.NoError(t, err)

	require.Len(t, arts.Bundles, 2)
	require.Len(t, arts.Procedures, 26)
	assert.Len(t, arts.ByEntity["user"], 13)
	assert.Len(t, arts.ByEntity["post"], 13)

	// User carries the marker, Post does not: identical configuration,
	// different call shapes.
	var userDelete, postDelete *Procedure
	for _, p := range arts.Procedures {
		if p.Op != OpDelete {
			continue
		}
		switch p.Entity {
		case "User":
			userDelete = p
		case "Post":
			postDelete = p
		}
	}
	require.NotNil(t, userDelete)
	require.NotNil(t, postDelete)
	assert.Equal(t, "update", userDelete.Call.Method)
	assert.Equal(t, "delete", postDelete.Call.Method)

	assert.Equal(t, "userDelete", userDelete.Name)
	assert.Equal(t, RuleAuthenticated, arts.Rules.Rule("user", "userDelete"))
	assert.Equal(t, RuleAllow, arts.Rules.Rule("post", "postFindMany"))

	require.NoError(t, arts.Verify())
}

func TestGenerateFromDocument(t *testing.T) {
	const doc = `
entities:
  - name: User
    fields:
      - name: id
        type: text
        unique: true
        generated: true
      - name: email
        type: text
        unique: true
      - name: visits
        type: integer
      - name: deletedAt
        type: timestamp
        optional: true
  - name: Session
    doc: server-side session cache @hidden
    fields:
      - name: id
        type: text
        unique: true
`
	schemas, err := load.ParseDocument([]byte(doc))
	require.NoError(t, err)
	require.Len(t, schemas, 1)

	c, err := ConfigFromLoad(&load.Config{
		Operations:    []string{"findMany", "groupBy"},
		SoftDelete:    true,
		Envelope:      true,
		ReadRule:      "allow",
		ClientPackage: "github.com/acme/app/client",
	})
	require.NoError(t, err)

	arts, err := Generate(c, schemas...)
	require.NoError(t, err)

	require.Len(t, arts.ByEntity["user"], 7)
	var groupBy *Procedure
	for _, p := range arts.ByEntity["user"] {
		if p.Op == OpGroupBy {
			groupBy = p
		}
	}
	require.NotNil(t, groupBy)
	assert.Equal(t, []string{"id"}, groupBy.Call.DefaultBy)
	assert.True(t, groupBy.Call.FilterDeleted)

	// Unset write rule resolves to deny.
	assert.Equal(t, RuleAllow, arts.Rules.Rule("user", "findMany"))
	assert.Equal(t, RuleDeny, arts.Rules.Rule("user", "create"))
}
