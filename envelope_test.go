package apigen

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrap(t *testing.T) {
	at := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	orig := envelopeNow
	envelopeNow = func() time.Time { return at }
	t.Cleanup(func() { envelopeNow = orig })

	env := Wrap("findMany", []string{"a", "b"})
	require.NotNil(t, env)
	assert.Equal(t, []string{"a", "b"}, env.Data)
	assert.Equal(t, "findMany", env.Meta.Operation)
	assert.Equal(t, at, env.Meta.Timestamp)
	assert.NotEqual(t, uuid.Nil, env.Meta.RequestID)
}

func TestWrapCount(t *testing.T) {
	env := WrapCount("deleteMany", 3)
	require.NotNil(t, env)
	assert.Equal(t, CountResult{Count: 3}, env.Data)
	assert.Equal(t, "deleteMany", env.Meta.Operation)
}
