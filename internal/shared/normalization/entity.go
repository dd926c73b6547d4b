package normalization

import "strings"

// entityAliases maps the names used by routes, upstream paths and broker topics
// onto the four canonical admin sections.
var entityAliases = map[string]string{
	"table":       "tables",
	"tables":      "tables",
	"cafetable":   "tables",
	"cafetables":  "tables",
	"cafe-table":  "tables",
	"cafe-tables": "tables",

	"customer":  "customers",
	"customers": "customers",

	"reservation":  "reservations",
	"reservations": "reservations",
	"booking":      "reservations",
	"bookings":     "reservations",

	"menu":       "menu",
	"menus":      "menu",
	"menuitem":   "menu",
	"menuitems":  "menu",
	"menu-item":  "menu",
	"menu-items": "menu",
}

// NormalizeEntity converts entity names to their canonical form. Unknown names
// come back lowercased with underscores replaced by hyphens.
//
//	NormalizeEntity("CafeTables") => "tables"
//	NormalizeEntity("menu_items") => "menu"
func NormalizeEntity(raw string) string {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(raw)), "_", "-")
	if canonical, found := entityAliases[normalized]; found {
		return canonical
	}
	return normalized
}

// IsValidEntity checks if the given entity name is a known section.
func IsValidEntity(raw string) bool {
	_, ok := entityAliases[strings.ReplaceAll(strings.ToLower(strings.TrimSpace(raw)), "_", "-")]
	return ok
}
