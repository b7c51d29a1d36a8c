package checkout

import (
	"fmt"
	"regexp"
)

// Package ids are embedded in product SKUs as the first run of digits,
// e.g. "PKG-12-X" -> "12".
var skuDigitsRegex = regexp.MustCompile(`\d+`)

// packageIDFromSKU extracts the package id from a product SKU. SKUs with
// no digit run fall back to the raw SKU string; that is not an error.
func packageIDFromSKU(sku string) string {
	if digits := skuDigitsRegex.FindString(sku); digits != "" {
		return digits
	}
	return sku
}

// completedUpsellsFromOrder derives the completed-upsell package ids
// embedded in an order's lines. Insertion order follows line order.
func completedUpsellsFromOrder(order *Order) []string {
	completed := []string{}
	if order == nil {
		return completed
	}
	for _, line := range order.Lines {
		if line.IsUpsell {
			completed = append(completed, packageIDFromSKU(line.ProductSKU))
		}
	}
	return completed
}

// packageIDsFromRequest stringifies the package ids of an upsell request,
// preserving line order. Numeric ids arriving from JSON are float64.
func packageIDsFromRequest(req UpsellRequest) []string {
	ids := make([]string, 0, len(req.Lines))
	for _, line := range req.Lines {
		switch v := line.PackageID.(type) {
		case string:
			ids = append(ids, v)
		case float64:
			ids = append(ids, fmt.Sprintf("%.0f", v))
		case int:
			ids = append(ids, fmt.Sprintf("%d", v))
		case int64:
			ids = append(ids, fmt.Sprintf("%d", v))
		default:
			ids = append(ids, fmt.Sprintf("%v", v))
		}
	}
	return ids
}
