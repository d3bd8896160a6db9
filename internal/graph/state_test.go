package graph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obonovai/graphonauts/internal/tpch"
)

func TestState_String(t *testing.T) {
	assert.Equal(t, "unconnected", StateUnconnected.String())
	assert.Equal(t, "schema-provisioned", StateSchemaProvisioned.String())
	assert.Equal(t, "state(42)", State(42).String())
}

func TestLifecycle_Preconditions(t *testing.T) {
	ctx := context.Background()
	region := tpch.MustLookup(tpch.Region)
	nationRegion, err := tpch.LookupRelationship("nation_region")
	require.NoError(t, err)

	tests := []struct {
		name string
		op   func(a *MockAdapter) error
	}{
		{"query before connect", func(a *MockAdapter) error {
			_, err := a.Query(ctx, "RETURN 1", nil)
			return err
		}},
		{"provision before connect", func(a *MockAdapter) error { return a.ProvisionSchema(ctx) }},
		{"clear before connect", func(a *MockAdapter) error { return a.Clear(ctx) }},
		{"write vertices before provision", func(a *MockAdapter) error {
			require.NoError(t, a.Connect(ctx))
			return a.WriteVertices(ctx, region, nil)
		}},
		{"write edges before provision", func(a *MockAdapter) error {
			require.NoError(t, a.Connect(ctx))
			return a.WriteEdges(ctx, nationRegion, nil)
		}},
		{"mark loaded before provision", func(a *MockAdapter) error {
			require.NoError(t, a.Connect(ctx))
			return a.MarkLoaded()
		}},
		{"write after clear", func(a *MockAdapter) error {
			require.NoError(t, a.Connect(ctx))
			require.NoError(t, a.ProvisionSchema(ctx))
			require.NoError(t, a.Clear(ctx))
			return a.WriteVertices(ctx, region, nil)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.op(NewMockAdapter(WriteModeMerge))
			require.Error(t, err)
			assert.True(t, IsPreconditionError(err), "got %v", err)
			assert.False(t, IsConnectionError(err))
		})
	}
}

func TestLifecycle_Transitions(t *testing.T) {
	ctx := context.Background()
	a := NewMockAdapter(WriteModeMerge)
	assert.Equal(t, StateUnconnected, a.State())

	require.NoError(t, a.Connect(ctx))
	assert.Equal(t, StateConnected, a.State())

	require.NoError(t, a.ProvisionSchema(ctx))
	assert.Equal(t, StateSchemaProvisioned, a.State())

	require.NoError(t, a.MarkLoaded())
	assert.Equal(t, StateLoaded, a.State())

	require.NoError(t, a.ProvisionSchema(ctx))
	assert.Equal(t, StateLoaded, a.State(), "re-provisioning keeps loaded data visible")

	require.NoError(t, a.Clear(ctx))
	assert.Equal(t, StateCleared, a.State())

	require.NoError(t, a.ProvisionSchema(ctx))
	assert.Equal(t, StateSchemaProvisioned, a.State())

	require.NoError(t, a.Close(ctx))
	require.NoError(t, a.Close(ctx))
	assert.Equal(t, StateUnconnected, a.State())
}
