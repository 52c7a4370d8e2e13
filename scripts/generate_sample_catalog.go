//go:build ignore

package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// generateSampleCatalog writes a compact catalogue document for local
// seeding. Run with: go run scripts/generate_sample_catalog.go
func main() {
	dataDir := "data"

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Fatalf("Failed to create directory: %v", err)
	}

	catalog := []map[string]any{
		{
			"name":             "Protein Powder",
			"baseSku":          "PROT",
			"tagline":          "Clean whey isolate",
			"shortDescription": "24g protein per serving",
			"basePrice":        99900,
			"baseStock":        50,
			"options": []map[string]any{
				{"name": "Flavor", "values": []string{"Vanilla", "Chocolate"}},
				{"name": "Size", "values": []string{"500g", "1kg"}},
			},
			"variantOverrides": []map[string]any{
				{
					"match": map[string]string{"Flavor": "Vanilla", "Size": "1kg"},
					"price": 119900,
				},
			},
			"imageMap": map[string]string{
				"Vanilla":   "/images/protein-vanilla.jpg",
				"Chocolate": "/images/protein-chocolate.jpg",
			},
			"images": map[string]any{
				"main":    "/images/protein-main.jpg",
				"gallery": []string{"/images/protein-scoop.jpg"},
			},
			"benefits":       []string{"Fast absorption", "No added sugar"},
			"exposeVariants": true,
			"status":         "PUBLISHED",
			"categorySlug":   "supplements",
		},
		{
			"name":         "Shaker Bottle",
			"baseSku":      "SHAKE",
			"basePrice":    29900,
			"baseStock":    200,
			"options": []map[string]any{
				{"name": "Color", "values": []string{"Black", "Blue"}},
			},
			"images": map[string]any{
				"main": "/images/shaker-main.jpg",
			},
			"exposeVariants": false,
			"status":         "PUBLISHED",
			"categorySlug":   "accessories",
		},
	}

	data, err := json.MarshalIndent(catalog, "", "  ")
	if err != nil {
		log.Fatalf("Failed to marshal catalogue: %v", err)
	}

	filePath := filepath.Join(dataDir, "products-compact.json")
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		log.Fatalf("Failed to write %s: %v", filePath, err)
	}

	fmt.Printf("Created %s with %d products\n", filePath, len(catalog))
	fmt.Println("Seed it with SEED_ENABLED=true SEED_PATH=" + filePath)
}
