package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilter(t *testing.T) {
	services := DemoServices()

	t.Run("empty term and all category pass everything", func(t *testing.T) {
		assert.Len(t, Filter(services, "", CategoryAll), len(services))
		assert.Len(t, Filter(services, "", ""), len(services))
	})

	t.Run("term matches name case-insensitively", func(t *testing.T) {
		got := Filter(services, "BIRTH", "")
		require.Len(t, got, 1)
		assert.Equal(t, "Birth Certificate", got[0].Name)
	})

	t.Run("term matches description", func(t *testing.T) {
		got := Filter(services, "household", "")
		require.Len(t, got, 2, "income and water connection both mention household")
	})

	t.Run("category narrows results", func(t *testing.T) {
		got := Filter(services, "", string(CategoryCertificates))
		assert.Len(t, got, 3)
	})

	t.Run("term and category combine", func(t *testing.T) {
		got := Filter(services, "certificate", string(CategoryUtilities))
		assert.Empty(t, got)
	})

	t.Run("filtering is idempotent", func(t *testing.T) {
		once := Filter(services, "certificate", string(CategoryCertificates))
		twice := Filter(once, "certificate", string(CategoryCertificates))
		assert.Equal(t, once, twice)
	})

	t.Run("input slice is not mutated", func(t *testing.T) {
		before := len(services)
		Filter(services, "birth", "")
		assert.Len(t, services, before)
	})
}

func TestComputeStats(t *testing.T) {
	stats := ComputeStats(DemoServices())
	assert.Equal(t, 5, stats.Total)
	assert.Equal(t, 3, stats.ByCategory[string(CategoryCertificates)])
	assert.Equal(t, 1, stats.ByCategory[string(CategoryUtilities)])
	assert.Equal(t, 1, stats.ByCategory[string(CategoryLicenses)])
	assert.Equal(t, 2, stats.Free)
	assert.Equal(t, 3, stats.Paid)
}
