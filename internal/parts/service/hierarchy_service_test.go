package service_test

import (
	"context"
	"testing"

	"github.com/bitfantasy/partslib/internal/parts/service"
	"github.com/bitfantasy/partslib/internal/parts/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddChild(t *testing.T) {
	ctx := context.Background()
	env := testutil.SetupEnv(t)
	a := testutil.SeedComponent(t, env, "A")
	b := testutil.SeedComponent(t, env, "B")

	edge, err := env.Services.Hierarchy.AddChild(ctx, a.ID, b.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, a.ID, edge.ParentID)
	assert.Equal(t, b.ID, edge.ChildID)
	assert.Equal(t, 4, edge.Quantity)

	children, err := env.Services.Hierarchy.Children(ctx, a.ID, false)
	require.NoError(t, err)
	require.Len(t, children, 1)
	assert.Equal(t, "B", children[0].Child.Number)

	parents, err := env.Services.Hierarchy.Parents(ctx, b.ID, false)
	require.NoError(t, err)
	require.Len(t, parents, 1)
	assert.Equal(t, "A", parents[0].Parent.Number)
}

func TestAddChild_DefaultQuantity(t *testing.T) {
	env := testutil.SetupEnv(t)
	a := testutil.SeedComponent(t, env, "A")
	b := testutil.SeedComponent(t, env, "B")

	edge, err := env.Services.Hierarchy.AddChild(context.Background(), a.ID, b.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, edge.Quantity)
}

func TestAddChild_RejectsCycles(t *testing.T) {
	ctx := context.Background()
	env := testutil.SetupEnv(t)
	a := testutil.SeedComponent(t, env, "A")
	b := testutil.SeedComponent(t, env, "B")
	c := testutil.SeedComponent(t, env, "C")

	_, err := env.Services.Hierarchy.AddChild(ctx, a.ID, b.ID, 1)
	require.NoError(t, err)
	_, err = env.Services.Hierarchy.AddChild(ctx, b.ID, c.ID, 1)
	require.NoError(t, err)

	tests := []struct {
		name          string
		parent, child string
	}{
		{"self loop", a.ID, a.ID},
		{"direct", b.ID, a.ID},
		{"transitive", c.ID, a.ID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.Services.Hierarchy.AddChild(ctx, tt.parent, tt.child, 1)
			assert.ErrorIs(t, err, service.ErrCycle)

			n, err := env.Repos.Hierarchy.Count(ctx)
			require.NoError(t, err)
			assert.Equal(t, int64(2), n, "edge set must be unchanged")
		})
	}
}

func TestAddChild_SharedSubAssemblyIsNotACycle(t *testing.T) {
	ctx := context.Background()
	env := testutil.SetupEnv(t)
	top := testutil.SeedComponent(t, env, "TOP")
	left := testutil.SeedComponent(t, env, "L")
	right := testutil.SeedComponent(t, env, "R")
	screw := testutil.SeedComponent(t, env, "SCREW")

	for _, e := range [][2]string{{top.ID, left.ID}, {top.ID, right.ID}, {left.ID, screw.ID}, {right.ID, screw.ID}} {
		_, err := env.Services.Hierarchy.AddChild(ctx, e[0], e[1], 1)
		require.NoError(t, err)
	}

	tree, err := env.Services.Hierarchy.Tree(ctx, top.ID, false)
	require.NoError(t, err)
	require.Len(t, tree.Children, 2)
	for _, sub := range tree.Children {
		require.Len(t, sub.Children, 1)
		assert.Equal(t, "SCREW", sub.Children[0].Number)
	}
}

func TestAddChild_Duplicate(t *testing.T) {
	ctx := context.Background()
	env := testutil.SetupEnv(t)
	a := testutil.SeedComponent(t, env, "A")
	b := testutil.SeedComponent(t, env, "B")

	_, err := env.Services.Hierarchy.AddChild(ctx, a.ID, b.ID, 1)
	require.NoError(t, err)
	_, err = env.Services.Hierarchy.AddChild(ctx, a.ID, b.ID, 3)
	assert.ErrorIs(t, err, service.ErrDuplicateEdge)
}

func TestAddChild_MissingComponent(t *testing.T) {
	env := testutil.SetupEnv(t)
	a := testutil.SeedComponent(t, env, "A")

	_, err := env.Services.Hierarchy.AddChild(context.Background(), a.ID, "does-not-exist", 1)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestRemoveChildAndSetQuantity(t *testing.T) {
	ctx := context.Background()
	env := testutil.SetupEnv(t)
	a := testutil.SeedComponent(t, env, "A")
	b := testutil.SeedComponent(t, env, "B")
	_, err := env.Services.Hierarchy.AddChild(ctx, a.ID, b.ID, 1)
	require.NoError(t, err)

	require.NoError(t, env.Services.Hierarchy.SetQuantity(ctx, a.ID, b.ID, 7))
	children, err := env.Services.Hierarchy.Children(ctx, a.ID, false)
	require.NoError(t, err)
	require.Len(t, children, 1)
	assert.Equal(t, 7, children[0].Quantity)

	assert.ErrorIs(t, env.Services.Hierarchy.SetQuantity(ctx, a.ID, b.ID, 0), service.ErrValidation)

	require.NoError(t, env.Services.Hierarchy.RemoveChild(ctx, a.ID, b.ID))
	assert.ErrorIs(t, env.Services.Hierarchy.RemoveChild(ctx, a.ID, b.ID), service.ErrEdgeNotFound)
	assert.ErrorIs(t, env.Services.Hierarchy.SetQuantity(ctx, a.ID, b.ID, 2), service.ErrEdgeNotFound)
}

func TestChildren_ArchivedFiltering(t *testing.T) {
	ctx := context.Background()
	env := testutil.SetupEnv(t)
	a := testutil.SeedComponent(t, env, "A")
	b := testutil.SeedComponent(t, env, "B")
	c := testutil.SeedComponent(t, env, "C")
	_, err := env.Services.Hierarchy.AddChild(ctx, a.ID, b.ID, 1)
	require.NoError(t, err)
	_, err = env.Services.Hierarchy.AddChild(ctx, a.ID, c.ID, 1)
	require.NoError(t, err)

	require.NoError(t, env.Services.Component.Archive(ctx, b.ID))

	active, err := env.Services.Hierarchy.Children(ctx, a.ID, false)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "C", active[0].Child.Number)

	all, err := env.Services.Hierarchy.Children(ctx, a.ID, true)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
