package domain

import (
	"fmt"
	"slices"
)

// Category groups documents under a display name.
type Category struct {
	Name      string   `yaml:"name" json:"name"`
	Documents []string `yaml:"documents" json:"documents"`
}

// Catalogue is the ordered, static category to document mapping used for
// filtering and usage statistics. Matching is by exact document name.
type Catalogue []Category

// DefaultCatalogue returns the built-in categories.
func DefaultCatalogue() Catalogue {
	return Catalogue{
		{
			Name: "Finance & Banking",
			Documents: []string{
				"jpmorganchase_financial-highlights-2024.pdf",
				"jpmorganchase_annualreport.pdf",
				"jpmorganchase_corporate-data-and-shareholder-information-2023.pdf",
				"citi-2024-annual-report.pdf",
				"goldmansachs_shareholders_letter.pdf",
				"wellsfargo_investor_presentation.pdf",
				"financial-stability-report-20251107.pdf",
				"federalreserve_mprfullreport.pdf",
			},
		},
		{
			Name: "Healthcare",
			Documents: []string{
				"CVS-Health-2025-Proxy.pdf",
				"UNH_Q1-2024_Form-10-Q.pdf",
				"UNH-Reports-Q1-2025-Results-Revises-Full-Year-Guidance.pdf",
				"Johnson-Johnson-2024-Annual-Report.pdf",
				"departament-of-healthcare-annual-report.pdf",
				"quick-definitions-health-expenditure.pdf",
			},
		},
		{
			Name: "Supply Chain",
			Documents: []string{
				"Fedex-Annual-Report.pdf",
				"UPS-annualreport.pdf",
				"roadsafety-annual-report.pdf",
				"World Bank Group Annual Report 2025.pdf",
				"OGD-2023-annual-report.pdf",
			},
		},
	}
}

// Names returns the category names in catalogue order.
func (c Catalogue) Names() []string {
	names := make([]string, 0, len(c))
	for _, cat := range c {
		names = append(names, cat.Name)
	}
	return names
}

// Lookup returns the category with the given name.
func (c Catalogue) Lookup(name string) (Category, bool) {
	for _, cat := range c {
		if cat.Name == name {
			return cat, true
		}
	}
	return Category{}, false
}

// CategoriesOf returns the names of every category listing document.
// A document absent from the catalogue belongs to no category.
func (c Catalogue) CategoriesOf(document string) []string {
	var names []string
	for _, cat := range c {
		if slices.Contains(cat.Documents, document) {
			names = append(names, cat.Name)
		}
	}
	return names
}

// BuildFilter turns a category selection into a retrieval filter.
// Selecting nothing or every category yields nil (unrestricted).
// Otherwise the filter allows the union of the selected document lists.
func (c Catalogue) BuildFilter(selected []string) (*Filter, error) {
	if len(selected) == 0 {
		return nil, nil
	}

	seen := make(map[string]bool, len(selected))
	for _, name := range selected {
		if _, ok := c.Lookup(name); !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, name)
		}
		seen[name] = true
	}
	if len(seen) == len(c) {
		return nil, nil
	}

	var docs []string
	for _, cat := range c {
		if !seen[cat.Name] {
			continue
		}
		for _, d := range cat.Documents {
			if !slices.Contains(docs, d) {
				docs = append(docs, d)
			}
		}
	}
	return NewSourceFilter(docs...), nil
}

// Validate checks that names are non-empty and unique.
func (c Catalogue) Validate() error {
	seen := make(map[string]bool, len(c))
	for i, cat := range c {
		if cat.Name == "" {
			return fmt.Errorf("%w: category %d has no name", ErrInvalidInput, i)
		}
		if seen[cat.Name] {
			return fmt.Errorf("%w: duplicate category %q", ErrInvalidInput, cat.Name)
		}
		seen[cat.Name] = true
	}
	return nil
}
