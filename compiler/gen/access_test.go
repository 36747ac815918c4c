package gen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRule(t *testing.T) {
	tests := []struct {
		input    string
		expected Rule
	}{
		{"allow", RuleAllow},
		{"authenticated", RuleAuthenticated},
		{"deny", RuleDeny},
		// Everything unrecognized resolves to deny, never to allow.
		{"", RuleDeny},
		{"Allow", RuleDeny},
		{"ALLOW", RuleDeny},
		{"authentcated", RuleDeny},
		{"public", RuleDeny},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseRule(tt.input))
		})
	}
}

func TestRuleString(t *testing.T) {
	assert.Equal(t, "deny", RuleDeny.String())
	assert.Equal(t, "allow", RuleAllow.String())
	assert.Equal(t, "authenticated", RuleAuthenticated.String())
	assert.Equal(t, "custom", RuleCustom.String())
	assert.Equal(t, "deny", Rule(42).String())
}

func TestSynthesizeRules(t *testing.T) {
	c := MustNewConfig(
		WithDefaultRules("allow", "authenticated"),
		WithClientPackage("github.com/acme/app/client"),
	)
	arts, err := Generate(c, userSchema())
	require.NoError(t, err)

	rules := arts.Rules
	require.Contains(t, rules, "user")
	assert.Len(t, rules["user"], 13)

	assert.Equal(t, RuleAllow, rules.Rule("user", "findMany"))
	assert.Equal(t, RuleAllow, rules.Rule("user", "findById"))
	assert.Equal(t, RuleAllow, rules.Rule("user", "count"))
	assert.Equal(t, RuleAuthenticated, rules.Rule("user", "create"))
	assert.Equal(t, RuleAuthenticated, rules.Rule("user", "delete"))
	assert.Equal(t, RuleAuthenticated, rules.Rule("user", "upsert"))
}

func TestSynthesizeRulesDefaultsDeny(t *testing.T) {
	c := MustNewConfig(WithClientPackage("github.com/acme/app/client"))
	arts, err := Generate(c, userSchema())
	require.NoError(t, err)

	for name := range arts.Rules["user"] {
		assert.Equal(t, RuleDeny, arts.Rules.Rule("user", name), "rule for %s", name)
	}
}

func TestRuleTableMissingEntriesDeny(t *testing.T) {
	var table RuleTable
	assert.Equal(t, RuleDeny, table.Rule("user", "create"))

	table = RuleTable{"user": {"create": RuleAllow}}
	assert.Equal(t, RuleDeny, table.Rule("user", "drop"))
	assert.Equal(t, RuleDeny, table.Rule("post", "create"))
}

func TestResolvePolicy(t *testing.T) {
	tests := []struct {
		source string
		kind   PolicyImportKind
	}{
		{"github.com/acme/app/policy", ImportBare},
		{"./policy", ImportRelative},
		{"../shared/policy", ImportRelative},
		{"/srv/app/policy", ImportAbsolute},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			imp, err := resolvePolicy(tt.source)
			require.NoError(t, err)
			require.NotNil(t, imp)
			assert.Equal(t, tt.kind, imp.Kind)
			assert.Equal(t, tt.source, imp.Source)
			assert.Equal(t, PolicyExport, imp.Export)
		})
	}
}

func TestResolvePolicyEmpty(t *testing.T) {
	imp, err := resolvePolicy("")
	require.NoError(t, err)
	assert.Nil(t, imp)
}

func TestResolvePolicyWhitespace(t *testing.T) {
	_, err := resolvePolicy("github.com/acme /policy")
	require.Error(t, err)
	assert.True(t, IsConfigError(err))
}

func TestCustomPolicyBypassesRules(t *testing.T) {
	c := MustNewConfig(
		WithClientPackage("github.com/acme/app/client"),
		WithPolicySource("./policy"),
		WithDefaultRules("allow", "allow"),
	)
	arts, err := Generate(c, userSchema())
	require.NoError(t, err)

	assert.Empty(t, arts.Rules)
	require.NotNil(t, arts.Policy)
	assert.Equal(t, ImportRelative, arts.Policy.Kind)
	assert.Equal(t, "Permissions", arts.Policy.Export)
}
