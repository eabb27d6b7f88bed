package ports

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/aretw0/mbt/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSequenceStoreContract runs a suite of tests to verify that a SequenceStore implementation
// adheres to the defined interface contract.
func RunSequenceStoreContract(t *testing.T, store SequenceStore) {
	ctx := context.Background()
	id := "contract-test-sequence-" + time.Now().Format("20060102150405")

	sample := func(id string) *domain.Sequence {
		seq := domain.NewSequence(id)
		seq.Model = "login"
		seq.Generator = "Random"
		seq.Append(domain.Step{Navigate: "e_Start", Verify: "v_LoggedOut"})
		seq.Append(domain.Step{Navigate: "e_Login user", Verify: "v_LoggedIn"})
		return seq
	}

	t.Run("Save and Load", func(t *testing.T) {
		seq := sample(id)
		require.NoError(t, store.Save(ctx, seq), "Save should not return error")

		loaded, err := store.Load(ctx, id)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, seq.ID, loaded.ID)
		assert.Equal(t, seq.Model, loaded.Model)
		assert.Equal(t, seq.Steps, loaded.Steps)
		assert.WithinDuration(t, seq.CreatedAt, loaded.CreatedAt, time.Second)
	})

	t.Run("Save Replaces", func(t *testing.T) {
		seq := sample(id)
		seq.Append(domain.Step{Navigate: "e_Logout", Verify: "v_LoggedOut"})
		require.NoError(t, store.Save(ctx, seq))

		loaded, err := store.Load(ctx, id)
		require.NoError(t, err)
		assert.Len(t, loaded.Steps, 3)
	})

	t.Run("Load Isolation", func(t *testing.T) {
		loaded, err := store.Load(ctx, id)
		require.NoError(t, err)
		loaded.Steps[0].Navigate = "mutated"

		again, err := store.Load(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "e_Start", again.Steps[0].Navigate)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+id)
		assert.ErrorIs(t, err, domain.ErrSequenceNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, sample(id)))
		require.NoError(t, store.Delete(ctx, id), "Delete should not return error")

		_, err := store.Load(ctx, id)
		assert.ErrorIs(t, err, domain.ErrSequenceNotFound, "Load after Delete should return ErrSequenceNotFound")
		assert.NoError(t, store.Delete(ctx, id), "deleting twice is not an error")
	})

	t.Run("List", func(t *testing.T) {
		id1 := id + "-1"
		id2 := id + "-2"
		require.NoError(t, store.Save(ctx, sample(id1)))
		require.NoError(t, store.Save(ctx, sample(id2)))
		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		ids, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, ids, id1)
		assert.Contains(t, ids, id2)
	})
}

// RunModelLoaderContract verifies that loader resolves ref into a usable graph and
// reports missing references as errors. want lists the expected state labels.
func RunModelLoaderContract(t *testing.T, loader ModelLoader, ref string, want []string) {
	t.Helper()
	ctx := context.Background()

	t.Run("LoadModel_Success", func(t *testing.T) {
		g, err := loader.LoadModel(ctx, ref)
		require.NoError(t, err)
		require.NotNil(t, g.Start(), "the model must have a Start vertex")
		assert.NotEmpty(t, g.StartEdges(), "the model must have Start edges")

		var labels []string
		for _, v := range g.States() {
			labels = append(labels, v.Label)
		}
		assert.ElementsMatch(t, want, labels)
	})

	t.Run("LoadModel_NotFound", func(t *testing.T) {
		_, err := loader.LoadModel(ctx, fmt.Sprintf("%s.missing-%d", ref, time.Now().UnixNano()))
		assert.Error(t, err)
	})
}
