package rating

import (
	"math"
	"sort"
)

// WeightConfig controls how line-item weights are derived.
type WeightConfig struct {
	// UnitMultiplier scales recorded variant weights into the carrier's
	// weight unit (e.g. pounds to ounces).
	UnitMultiplier float64

	// DefaultWeight substitutes for variants with a zero or negative
	// recorded weight.
	DefaultWeight float64
}

// ItemWeights converts an order's line items into an ascending-sorted flat
// sequence of weight values, splitting any line item whose total quantity
// would exceed the per-package cap into multiple entries. maxWeight <= 0
// means unbounded.
//
// The ascending sort is a packing heuristic: BuildPackages accumulates
// first-fit in this order, and changing it changes how many packages the
// greedy pass produces.
func ItemWeights(items []LineItem, maxWeight float64, cfg WeightConfig) ([]float64, error) {
	var weights []float64

	for _, item := range items {
		unit := item.Weight
		if unit <= 0 {
			// A misconfigured negative default must not emit negative
			// weight values.
			unit = math.Max(cfg.DefaultWeight, 0)
		}
		unit *= cfg.UnitMultiplier

		switch {
		case maxWeight <= 0 || unit <= 0:
			// Unbounded destination, or weightless variant: a zero unit
			// weight can never exceed the cap, so no split is needed.
			weights = append(weights, unit*float64(item.Quantity))

		case unit >= maxWeight:
			return nil, &OverweightError{
				VariantID:  item.VariantID,
				UnitWeight: unit,
				MaxWeight:  maxWeight,
			}

		default:
			maxQty := int(math.Floor(maxWeight / unit))
			remaining := item.Quantity
			for remaining > 0 {
				qty := remaining
				if qty > maxQty {
					qty = maxQty
				}
				weights = append(weights, unit*float64(qty))
				remaining -= qty
			}
		}
	}

	sort.Float64s(weights)
	return weights, nil
}

// BuildPackages bins an ascending weight sequence into packages not
// exceeding maxWeight (<= 0 meaning unbounded). The accumulation is greedy
// first-fit in sorted order; it minimizes package count well in practice
// but does not guarantee an optimal packing.
//
// An empty weight sequence yields zero packages; callers short-circuit to
// "no rate available" before invoking the carrier.
func BuildPackages(weights []float64, maxWeight float64, units UnitSystem) []Package {
	if len(weights) == 0 {
		return nil
	}

	if maxWeight <= 0 {
		var total float64
		for _, w := range weights {
			total += w
		}
		return []Package{{Weight: total, Units: units}}
	}

	var packages []Package
	var acc float64
	for _, w := range weights {
		if acc+w <= maxWeight {
			acc += w
			continue
		}
		packages = append(packages, Package{Weight: acc, Units: units})
		acc = w
	}
	if acc > 0 {
		packages = append(packages, Package{Weight: acc, Units: units})
	}
	return packages
}
