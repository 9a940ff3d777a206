package dataset

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

const sampleCSV = "Unite_temps;Zone_geographique;Valeurs;Indicateur\n" +
	"2023;75-Paris;10;Cambriolages\n"

func TestStore_GetCachesByModTime(t *testing.T) {
	path := filepath.Join(t.TempDir(), "serieschrono-datagouv.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o644))

	loads := 0
	store := NewStore(path, DefaultOptions(), nil,
		WithLoadObserver(func(LoadReport, error) { loads++ }))

	ctx := context.Background()

	first, err := store.Get(ctx)
	require.NoError(t, err)
	second, err := store.Get(ctx)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, loads)
}

func TestStore_GetReloadsOnFileChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "serieschrono-datagouv.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o644))

	store := NewStore(path, DefaultOptions(), nil)
	ctx := context.Background()

	first, err := store.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Len())

	updated := sampleCSV + "2023;38-Isere;20;Cambriolages\n"
	require.NoError(t, os.WriteFile(path, []byte(updated), 0o644))
	// Coarse filesystem timestamps could hide the rewrite.
	bumped := time.Now().Add(2 * time.Second)
	require.NoError(t, os.Chtimes(path, bumped, bumped))

	second, err := store.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, second.Len())
}

func TestStore_GetMissingFile(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "nope.csv"), DefaultOptions(), nil)

	_, err := store.Get(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDatasetNotFound)
}

func TestStore_Invalidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "serieschrono-datagouv.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o644))

	loads := 0
	store := NewStore(path, DefaultOptions(), nil,
		WithLoadObserver(func(LoadReport, error) { loads++ }))
	ctx := context.Background()

	_, err := store.Get(ctx)
	require.NoError(t, err)
	store.Invalidate()
	_, err = store.Get(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, loads)
}

func TestStore_ConcurrentGets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "serieschrono-datagouv.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o644))

	store := NewStore(path, DefaultOptions(), nil)

	var g errgroup.Group
	for i := 0; i < 8; i++ {
		g.Go(func() error {
			ds, err := store.Get(context.Background())
			if err != nil {
				return err
			}
			if ds.Len() != 1 {
				t.Errorf("unexpected record count %d", ds.Len())
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
}
