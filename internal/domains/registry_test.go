package domains_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/DeafMist/news-scraper/internal/domains"
)

func TestRegistryAddRemove(t *testing.T) {
	reg := domains.New("a.com", "b.com")

	require.False(t, reg.Add("a.com"))
	require.Equal(t, []string{"a.com", "b.com"}, reg.List())

	require.True(t, reg.Add("c.com"))
	require.Equal(t, []string{"a.com", "b.com", "c.com"}, reg.List())

	require.True(t, reg.Remove("b.com"))
	require.Equal(t, []string{"a.com", "c.com"}, reg.List())
}

func TestRegistryIgnoresEmptyAndMissing(t *testing.T) {
	reg := domains.New("a.com")

	require.False(t, reg.Add(""))
	require.False(t, reg.Remove("missing.com"))
	require.Equal(t, []string{"a.com"}, reg.List())
	require.Equal(t, 1, reg.Len())
}

func TestRegistrySeedDropsDuplicates(t *testing.T) {
	reg := domains.New("a.com", "", "a.com", "A.com")
	require.Equal(t, []string{"a.com", "A.com"}, reg.List())
}

func TestRegistryAddThenRemoveRestores(t *testing.T) {
	seeds := [][]string{
		nil,
		{"a.com"},
		{"a.com", "b.com", "c.com"},
	}

	for _, seed := range seeds {
		reg := domains.New(seed...)
		before := reg.List()

		require.True(t, reg.Add("new.com"))
		require.True(t, reg.Remove("new.com"))
		require.Equal(t, before, reg.List())
	}
}

func TestRegistryAddIdempotent(t *testing.T) {
	once := domains.New("a.com")
	once.Add("b.com")

	twice := domains.New("a.com")
	twice.Add("b.com")
	twice.Add("b.com")

	require.Equal(t, once.List(), twice.List())
}

func TestRegistryListIsCopy(t *testing.T) {
	reg := domains.New("a.com", "b.com")
	list := reg.List()
	list[0] = "mutated"

	require.Equal(t, []string{"a.com", "b.com"}, reg.List())
	require.True(t, reg.Contains("a.com"))
}
