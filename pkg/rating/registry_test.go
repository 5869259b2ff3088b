package rating_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ordercraft/shiprate/pkg/rating"
	"github.com/ordercraft/shiprate/pkg/rating/mock"
)

func TestRegistry_RegisterAndGet(t *testing.T) {
	registry := rating.NewRegistry()
	registry.Register(mock.New("usps"))

	finder, err := registry.Get("usps")
	require.NoError(t, err)
	assert.Equal(t, "usps", finder.Name())
}

func TestRegistry_GetUnknownCarrier(t *testing.T) {
	registry := rating.NewRegistry()

	_, err := registry.Get("nope")
	assert.ErrorIs(t, err, rating.ErrCarrierNotFound)
}

func TestRegistry_NamesAndCount(t *testing.T) {
	registry := rating.NewRegistry()
	registry.Register(mock.New("usps"))
	registry.Register(mock.New("fedex"))

	assert.Equal(t, 2, registry.Count())
	assert.ElementsMatch(t, []string{"usps", "fedex"}, registry.Names())
}

func TestRegistry_RegisterOverwritesSameName(t *testing.T) {
	registry := rating.NewRegistry()
	first := mock.New("usps")
	second := mock.New("usps")
	registry.Register(first)
	registry.Register(second)

	assert.Equal(t, 1, registry.Count())
	finder, err := registry.Get("usps")
	require.NoError(t, err)
	assert.Same(t, second, finder)
}

func TestRegistry_FindAllRates(t *testing.T) {
	registry := rating.NewRegistry()
	registry.Register(mock.New("usps"))
	registry.Register(mock.New("fedex"))

	quotes, errs := registry.FindAllRates(context.Background(),
		rating.Location{CountryCode: "US", PostalCode: "94107"},
		rating.Location{CountryCode: "US", PostalCode: "10001"},
		[]rating.Package{{Weight: 5, Units: rating.UnitsImperial}},
	)

	assert.Empty(t, errs)
	require.Len(t, quotes, 2)
}

func TestRegistry_FindAllRates_PartialFailure(t *testing.T) {
	registry := rating.NewRegistry()
	registry.Register(mock.New("usps"))

	failing := mock.New("fedex")
	failing.Err = errors.New("upstream down")
	registry.Register(failing)

	quotes, errs := registry.FindAllRates(context.Background(),
		rating.Location{}, rating.Location{}, nil)

	require.Len(t, quotes, 1)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "fedex")
}

func TestRegistry_FindAllRates_Empty(t *testing.T) {
	registry := rating.NewRegistry()

	quotes, errs := registry.FindAllRates(context.Background(),
		rating.Location{}, rating.Location{}, nil)

	assert.Nil(t, quotes)
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], rating.ErrCarrierNotFound)
}
