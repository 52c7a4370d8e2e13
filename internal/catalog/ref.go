// Package catalog holds the pure projection logic of the storefront
// catalogue: reference parsing, the composite virtual-identifier codec,
// the listing projection and variant selection.
package catalog

import (
	"fmt"
	"strconv"
	"strings"
)

// virtualSeparator joins the product key and the variant id in a composite
// virtual identifier, e.g. "protein-powder-v-3".
const virtualSeparator = "-v-"

// RefKind discriminates the ways a client may address a catalogue item.
type RefKind int

const (
	RefNumericID RefKind = iota
	RefSlug
	RefVirtual
)

// Ref is a product reference parsed once at the API boundary.
type Ref struct {
	Kind RefKind
	// ID is set for RefNumericID.
	ID int64
	// Slug is set for RefSlug, and holds the base product key (id in
	// decimal form or slug) for RefVirtual.
	Slug string
	// VariantID is set for RefVirtual.
	VariantID int64
}

// EncodeVirtualID builds the composite identifier for a variant presented
// as its own listing card. base is the product's id in decimal form or its
// slug.
func EncodeVirtualID(base string, variantID int64) string {
	return fmt.Sprintf("%s%s%d", base, virtualSeparator, variantID)
}

// DecodeVirtualID splits a composite identifier back into its product key
// and variant id. It splits on the last occurrence of the separator so a
// slug containing "-v-" still round-trips. ok is false when raw is not a
// valid virtual identifier.
func DecodeVirtualID(raw string) (base string, variantID int64, ok bool) {
	idx := strings.LastIndex(raw, virtualSeparator)
	if idx <= 0 {
		return "", 0, false
	}
	base = raw[:idx]
	id, err := strconv.ParseInt(raw[idx+len(virtualSeparator):], 10, 64)
	if err != nil || id <= 0 {
		return "", 0, false
	}
	return base, id, true
}

// ParseRef classifies a raw path reference. Virtual identifiers win over
// slugs; an all-digit reference is a numeric id.
func ParseRef(raw string) Ref {
	if base, variantID, ok := DecodeVirtualID(raw); ok {
		return Ref{Kind: RefVirtual, Slug: base, VariantID: variantID}
	}
	if id, err := strconv.ParseInt(raw, 10, 64); err == nil && id > 0 {
		return Ref{Kind: RefNumericID, ID: id}
	}
	return Ref{Kind: RefSlug, Slug: raw}
}
