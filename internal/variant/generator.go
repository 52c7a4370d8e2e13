// Package variant expands a compact set of option axes into concrete
// purchasable variant drafts. It performs no I/O and is deterministic for
// identical input.
package variant

import (
	"fmt"
	"strings"

	"storefront/internal/model"
)

// EmptyAxesPolicy decides what Generate produces when no axes are supplied.
type EmptyAxesPolicy int

const (
	// EmptyAxesNone yields zero drafts for an empty axis list.
	EmptyAxesNone EmptyAxesPolicy = iota
	// EmptyAxesDefaultVariant yields a single draft carrying the base
	// price/stock and no attributes.
	EmptyAxesDefaultVariant
)

// Axis is one named dimension of product variation.
type Axis struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

// Override adjusts price, original price or stock for every combination
// whose attribute values satisfy all Match pairs. The first satisfied
// override in declaration order wins.
type Override struct {
	Match         map[string]string `json:"match"`
	Price         *int64            `json:"price,omitempty"`
	OriginalPrice *int64            `json:"originalPrice,omitempty"`
	Stock         *int              `json:"stock,omitempty"`
}

// GenerateInput is the compact description a generation run expands.
type GenerateInput struct {
	ProductName string
	Slug        string
	BaseSKU     string
	BasePrice   int64
	BaseStock   int
	MainImage   string
	Axes        []Axis
	Overrides   []Override
	// ImageMap assigns an image to combinations containing a value; the
	// first axis value (in axis declaration order) with an entry wins.
	ImageMap map[string]string
}

// Draft is one generated variant before persistence.
type Draft struct {
	Name          string
	SKU           string
	Price         int64
	OriginalPrice *int64
	Stock         int
	Attributes    model.AxisValues
	Image         string
}

// Generate computes the cartesian product of the axes' value sets in
// declaration order and emits one draft per combination. Axis values are
// de-duplicated (first occurrence wins) before expansion. It returns an
// error when the combination count would exceed maxCombinations.
func Generate(in GenerateInput, policy EmptyAxesPolicy, maxCombinations int) ([]Draft, error) {
	axes := dedupeAxes(in.Axes)

	if len(axes) == 0 {
		if policy == EmptyAxesDefaultVariant {
			return []Draft{buildDraft(in, axes, nil)}, nil
		}
		return nil, nil
	}

	count := 1
	for _, axis := range axes {
		if len(axis.Values) == 0 {
			return nil, fmt.Errorf("axis %q has no values", axis.Name)
		}
		count *= len(axis.Values)
		if maxCombinations > 0 && count > maxCombinations {
			return nil, fmt.Errorf("axis expansion yields more than %d combinations", maxCombinations)
		}
	}

	drafts := make([]Draft, 0, count)
	combination := make([]string, len(axes))

	var expand func(depth int)
	expand = func(depth int) {
		if depth == len(axes) {
			drafts = append(drafts, buildDraft(in, axes, combination))
			return
		}
		for _, value := range axes[depth].Values {
			combination[depth] = value
			expand(depth + 1)
		}
	}
	expand(0)

	return drafts, nil
}

// buildDraft assembles a single draft for one combination of axis values.
func buildDraft(in GenerateInput, axes []Axis, combination []string) Draft {
	attributes := make(model.AxisValues, len(axes))
	for i, axis := range axes {
		attributes[axis.Name] = []string{combination[i]}
	}

	name := in.ProductName
	if len(combination) > 0 {
		name = in.ProductName + " - " + strings.Join(combination, " / ")
	}

	draft := Draft{
		Name:       name,
		SKU:        buildSKU(in, combination),
		Price:      in.BasePrice,
		Stock:      in.BaseStock,
		Attributes: attributes,
		Image:      in.MainImage,
	}

	if o := matchOverride(in.Overrides, attributes); o != nil {
		if o.Price != nil {
			draft.Price = *o.Price
		}
		if o.OriginalPrice != nil {
			draft.OriginalPrice = o.OriginalPrice
		}
		if o.Stock != nil {
			draft.Stock = *o.Stock
		}
	}

	// Scan axis values in declaration order; the first with a mapped
	// image overrides the product's main image.
	for _, value := range combination {
		if img, ok := in.ImageMap[value]; ok {
			draft.Image = img
			break
		}
	}

	return draft
}

// matchOverride returns the first override whose match pairs are all
// satisfied by the combination's attributes, or nil.
func matchOverride(overrides []Override, attributes model.AxisValues) *Override {
	for i := range overrides {
		satisfied := true
		for axis, want := range overrides[i].Match {
			if attributes.First(axis) != want {
				satisfied = false
				break
			}
		}
		if satisfied {
			return &overrides[i]
		}
	}
	return nil
}

// buildSKU derives the variant SKU: uppercased prefix + "-" + values joined
// by "-", with every character outside [A-Z0-9-] removed. The prefix is the
// base SKU when provided, else the slug, else the lowercased product name
// with whitespace collapsed to hyphens.
func buildSKU(in GenerateInput, combination []string) string {
	prefix := in.BaseSKU
	if prefix == "" {
		prefix = in.Slug
	}
	if prefix == "" {
		prefix = strings.Join(strings.Fields(strings.ToLower(in.ProductName)), "-")
	}

	parts := append([]string{prefix}, combination...)
	raw := strings.ToUpper(strings.Join(parts, "-"))

	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// dedupeAxes removes duplicate values within each axis, preserving first
// occurrence, so the cartesian product cannot contain duplicates. Axes
// without a name are dropped.
func dedupeAxes(axes []Axis) []Axis {
	out := make([]Axis, 0, len(axes))
	for _, axis := range axes {
		if axis.Name == "" {
			continue
		}
		seen := make(map[string]struct{}, len(axis.Values))
		values := make([]string, 0, len(axis.Values))
		for _, v := range axis.Values {
			if _, dup := seen[v]; dup {
				continue
			}
			seen[v] = struct{}{}
			values = append(values, v)
		}
		out = append(out, Axis{Name: axis.Name, Values: values})
	}
	return out
}
