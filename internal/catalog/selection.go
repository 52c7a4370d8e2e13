package catalog

import (
	"fmt"

	"storefront/internal/model"
)

// SelectVariant resolves one variant of a product:
//
//  1. An explicit variantID (from a query parameter or a virtual id) must
//     exist under the product, else ErrVariantNotFound.
//  2. Otherwise a non-empty attribute selection picks the first variant
//     whose attribute map contains every supplied (axis, value) pair.
//     Selection keys must all be declared axes of the product; an unknown
//     key is a validation error rather than silently ignored.
//  3. Otherwise the first variant in persisted order.
//
// A product without variants resolves to (nil, nil) unless an explicit
// variant or selection was requested.
func SelectVariant(pv model.ProductWithVariants, variantID int64, selection map[string]string) (*model.Variant, error) {
	if variantID > 0 {
		for i := range pv.Variants {
			if pv.Variants[i].ID == variantID {
				return &pv.Variants[i], nil
			}
		}
		return nil, model.ErrVariantNotFound
	}

	if len(selection) > 0 {
		for axis := range selection {
			if _, declared := pv.Product.Attributes[axis]; !declared {
				return nil, model.NewValidationError(model.ErrCodeUnknownAxis,
					fmt.Sprintf("Unknown option axis %q", axis))
			}
		}
		for i := range pv.Variants {
			if matchesSelection(pv.Variants[i].Attributes, selection) {
				return &pv.Variants[i], nil
			}
		}
		return nil, model.ErrVariantNotFound
	}

	if len(pv.Variants) > 0 {
		return &pv.Variants[0], nil
	}
	return nil, nil
}

func matchesSelection(attributes model.AxisValues, selection map[string]string) bool {
	for axis, want := range selection {
		if attributes.First(axis) != want {
			return false
		}
	}
	return true
}

// MergeView builds the effective display object for a resolved pair:
// variant name/price/stock/image/description when present, with product
// fields as fallbacks.
func MergeView(pv model.ProductWithVariants, v *model.Variant) model.EffectiveView {
	p := pv.Product
	view := model.EffectiveView{
		Product:       p,
		Variant:       v,
		Name:          p.Name,
		Price:         p.Price,
		OriginalPrice: p.OriginalPrice,
		Images:        p.Images,
		Description:   p.Description,
		Attributes:    p.Attributes,
	}
	if v == nil {
		return view
	}

	view.Name = v.Name
	view.Price = v.Price
	view.OriginalPrice = v.OriginalPrice
	view.Stock = v.Stock
	view.Attributes = v.Attributes
	if v.Image != nil && *v.Image != "" {
		view.Images = model.Images{Main: *v.Image, Gallery: p.Images.Gallery}
	}
	if v.Description != nil && *v.Description != "" {
		view.Description = *v.Description
	}
	return view
}
