// backend/models/category.go
package models

import "strings"

// Category is one entry of the fixed requirement-class taxonomy.
// Names are immutable once seeded; the taxonomy may only ever grow.
type Category struct {
	ID          int64  `db:"id" json:"id"`
	Name        string `db:"name" json:"name"`
	Description string `db:"description" json:"description"`
}

// FallbackCategoryName is the designated bucket for changes that cannot be
// classified. It must exist in the seeded taxonomy.
const FallbackCategoryName = "Other / unclear"

// TaxonomyEntry pairs a fixed category name with its seeded description.
type TaxonomyEntry struct {
	Name        string
	Description string
}

// Taxonomy is the fixed set of requirement classes used to classify
// regulatory changes. Entries may be appended over time but existing names
// are never renamed or removed, so historical classifications stay comparable.
var Taxonomy = []TaxonomyEntry{
	{
		Name:        "Spatial constraints",
		Description: "Geographic or spatial limitations on where operations can occur, including exclusion zones, proximity restrictions, and area-specific requirements.",
	},
	{
		Name:        "Temporal constraints",
		Description: "Time-based requirements including deadlines, scheduling obligations, seasonal restrictions, and temporal windows for operations.",
	},
	{
		Name:        "Procedural obligations",
		Description: "Required processes, workflows, or steps that must be followed, including approval procedures, consultation requirements, and mandatory protocols.",
	},
	{
		Name:        "Technical performance expectations",
		Description: "Specifications for technical standards, performance metrics, equipment requirements, and engineering criteria that must be met.",
	},
	{
		Name:        "Operational restrictions",
		Description: "Limitations on how operations can be conducted, including activity prohibitions, operational boundaries, and conduct requirements.",
	},
	{
		Name:        "Evidence and reporting requirements",
		Description: "Obligations to document, record, submit, or provide evidence of compliance, including reporting schedules, documentation standards, and audit requirements.",
	},
	{
		Name:        FallbackCategoryName,
		Description: "Regulatory changes that do not clearly fit into the above categories or where the requirement class cannot be determined.",
	},
}

// TaxonomyNames returns the category names in seeding order.
func TaxonomyNames() []string {
	names := make([]string, len(Taxonomy))
	for i, entry := range Taxonomy {
		names[i] = entry.Name
	}
	return names
}

// categoryAliases maps lowercased shorthand labels to exact taxonomy names.
var categoryAliases = map[string]string{
	"spatial":                            "Spatial constraints",
	"spatial constraint":                 "Spatial constraints",
	"temporal":                           "Temporal constraints",
	"temporal constraint":                "Temporal constraints",
	"procedural":                         "Procedural obligations",
	"procedural obligation":              "Procedural obligations",
	"procedure":                          "Procedural obligations",
	"technical":                          "Technical performance expectations",
	"technical performance":              "Technical performance expectations",
	"performance":                        "Technical performance expectations",
	"operational":                        "Operational restrictions",
	"operational restriction":            "Operational restrictions",
	"restriction":                        "Operational restrictions",
	"evidence":                           "Evidence and reporting requirements",
	"reporting":                          "Evidence and reporting requirements",
	"evidence and reporting":             "Evidence and reporting requirements",
	"evidence and reporting requirement": "Evidence and reporting requirements",
	"other":                              FallbackCategoryName,
	"unclear":                            FallbackCategoryName,
	"unknown":                            FallbackCategoryName,
}

// NormalizeCategoryName maps a free-form label onto the exact taxonomy name.
// Matching is case-insensitive and tolerates "&" in place of "and" plus a few
// common short forms. Labels that cannot be mapped resolve to the fallback.
func NormalizeCategoryName(label string) string {
	normalized := strings.TrimSpace(label)
	if normalized == "" {
		return FallbackCategoryName
	}
	// "&" and "and" are interchangeable in classifier output.
	normalized = strings.ReplaceAll(normalized, "&", "and")
	normalized = strings.Join(strings.Fields(normalized), " ")
	lowered := strings.ToLower(normalized)

	for _, entry := range Taxonomy {
		candidate := strings.ReplaceAll(entry.Name, "&", "and")
		candidate = strings.Join(strings.Fields(candidate), " ")
		if lowered == strings.ToLower(candidate) {
			return entry.Name
		}
	}
	if exact, ok := categoryAliases[lowered]; ok {
		return exact
	}
	return FallbackCategoryName
}
