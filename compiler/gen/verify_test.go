package gen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testArtifacts(t *testing.T) *Artifacts {
	t.Helper()
	c := MustNewConfig(WithClientPackage("github.com/acme/app/client"))
	arts, err := Generate(c, userSchema(), postSchema())
	require.NoError(t, err)
	return arts
}

func TestVerifyPasses(t *testing.T) {
	arts := testArtifacts(t)
	assert.NoError(t, arts.Verify())
}

func TestVerifyRuleDrift(t *testing.T) {
	t.Run("missing rule entry", func(t *testing.T) {
		arts := testArtifacts(t)
		delete(arts.Rules["user"], "create")

		err := arts.Verify()
		require.Error(t, err)
		assert.True(t, IsConsistencyError(err))
	})

	t.Run("orphan rule entry", func(t *testing.T) {
		arts := testArtifacts(t)
		arts.Rules["user"]["drop"] = RuleAllow

		err := arts.Verify()
		require.Error(t, err)
		assert.True(t, IsConsistencyError(err))
	})

	t.Run("missing entity", func(t *testing.T) {
		arts := testArtifacts(t)
		delete(arts.Rules, "post")

		err := arts.Verify()
		require.Error(t, err)
		assert.True(t, IsConsistencyError(err))
	})
}

func TestVerifyBundleCaseCollision(t *testing.T) {
	arts := testArtifacts(t)
	arts.Bundles = append(arts.Bundles, &Bundle{
		Entity: "USER",
		Key:    "uSER",
		Export: "USERProcedures",
		File:   "u_s_e_r_handlers.go",
		Mount:  "/uSER",
	})
	// "USERProcedures" and "UserProcedures" fold to the same identifier
	// on case-insensitive filesystems and in route matching.
	err := arts.Verify()
	require.Error(t, err)
	assert.True(t, IsConsistencyError(err))
}

func TestVerifyRouteCollision(t *testing.T) {
	arts := testArtifacts(t)
	arts.ByEntity["user"][0].Route = arts.ByEntity["post"][0].Route

	err := arts.Verify()
	require.Error(t, err)
	assert.True(t, IsConsistencyError(err))
}

func TestVerifyDuplicateProcedureName(t *testing.T) {
	arts := testArtifacts(t)
	arts.ByEntity["user"][1].Name = arts.ByEntity["user"][0].Name
	arts.ByEntity["user"][1].Route = arts.ByEntity["user"][0].Route + "X"
	arts.Rules["user"] = map[string]Rule{}
	for _, p := range arts.ByEntity["user"] {
		arts.Rules["user"][p.Name] = RuleDeny
	}

	err := arts.Verify()
	require.Error(t, err)
	assert.True(t, IsConsistencyError(err))
}

func TestVerifyPolicyInvariants(t *testing.T) {
	t.Run("rules alongside custom policy", func(t *testing.T) {
		arts := testArtifacts(t)
		arts.Policy = &PolicyImport{Source: "./policy", Kind: ImportRelative, Export: PolicyExport}

		err := arts.Verify()
		require.Error(t, err)
		assert.True(t, IsConsistencyError(err))
	})

	t.Run("wrong export", func(t *testing.T) {
		arts := testArtifacts(t)
		arts.Rules = nil
		arts.Policy = &PolicyImport{Source: "./policy", Kind: ImportRelative, Export: "Rules"}

		err := arts.Verify()
		require.Error(t, err)
		assert.True(t, IsConsistencyError(err))
	})
}
