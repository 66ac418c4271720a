package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBeerOrderAddLineSetsBackReference(t *testing.T) {
	order := &BeerOrder{ID: 7}
	order.AddLine(BeerOrderLine{BeerID: 1, OrderQuantity: 2})
	order.AddLine(BeerOrderLine{BeerID: 2, OrderQuantity: 1})

	require.Len(t, order.Lines, 2)
	for _, line := range order.Lines {
		assert.Equal(t, int64(7), line.BeerOrderID)
	}
}

func TestBeerOrderRemoveLineClearsBackReference(t *testing.T) {
	order := &BeerOrder{ID: 7}
	order.AddLine(BeerOrderLine{BeerID: 1})
	order.AddLine(BeerOrderLine{BeerID: 2})

	removed, ok := order.RemoveLine(0)
	require.True(t, ok)
	assert.Equal(t, int64(0), removed.BeerOrderID)
	assert.Equal(t, int64(1), removed.BeerID)
	require.Len(t, order.Lines, 1)
	assert.Equal(t, int64(2), order.Lines[0].BeerID)

	_, ok = order.RemoveLine(5)
	assert.False(t, ok)
}
