package commons

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"
)

// CatalogSeed is the on-disk shape of the initial catalog.
type CatalogSeed struct {
	Formats []FormatSeed `yaml:"formats"`
}

type FormatSeed struct {
	Volume      string         `yaml:"volume"`
	Description string         `yaml:"description"`
	Products    []ProductSeed  `yaml:"products"`
	Metadata    map[string]any `yaml:"metadata"`
}

type ProductSeed struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Price       string         `yaml:"price"`
	Stock       int            `yaml:"stock"`
	Image       string         `yaml:"image"`
	Metadata    map[string]any `yaml:"metadata"`
}

func LoadCatalog(path string) (*CatalogSeed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog file: %w", err)
	}

	var seed CatalogSeed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parsing catalog file: %w", err)
	}

	for i, f := range seed.Formats {
		if f.Volume == "" {
			return nil, fmt.Errorf("format %d: volume is required", i)
		}
		for j, p := range f.Products {
			if p.Name == "" || p.Price == "" {
				return nil, fmt.Errorf("format %d product %d: name and price are required", i, j)
			}
		}
	}

	return &seed, nil
}
