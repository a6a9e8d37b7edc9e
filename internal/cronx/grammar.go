package cronx

import "fmt"

// FieldSpec defines the accepted values for a single cron field.
type FieldSpec struct {
	// Name identifies the field in diagnostics ("minute", "hour", ...).
	Name string

	// Min and Max bound the accepted literals, inclusive. Strict: a
	// literal outside the range fails the parse.
	Min, Max int

	// Names maps lowercase symbolic values ("jan", "mon") to numbers.
	Names map[string]int

	// Remap rewrites accepted literals after range validation. The
	// default grammar maps day-of-week 7 to 0 so both denote Sunday.
	Remap map[int]int
}

// Grammar is an ordered set of five field specs plus alias expansions.
// Construct once and share; a Grammar is read-only after NewGrammar.
type Grammar struct {
	fields  [numFields]FieldSpec
	aliases map[string]string
}

const numFields = 5

// Field indices, in parse order.
const (
	fieldMinute = iota
	fieldHour
	fieldDOM
	fieldMonth
	fieldDOW
)

var monthNames = map[string]int{
	"jan": 1, "feb": 2, "mar": 3, "apr": 4, "may": 5, "jun": 6,
	"jul": 7, "aug": 8, "sep": 9, "oct": 10, "nov": 11, "dec": 12,
}

// Monday is canonically 1. Sunday is 0, with the literal 7 remapped to 0.
var dowNames = map[string]int{
	"sun": 0, "mon": 1, "tue": 2, "wed": 3, "thu": 4, "fri": 5, "sat": 6,
}

var defaultGrammar = mustGrammar(
	[numFields]FieldSpec{
		{Name: "minute", Min: 0, Max: 59},
		{Name: "hour", Min: 0, Max: 23},
		{Name: "day-of-month", Min: 1, Max: 31},
		{Name: "month", Min: 1, Max: 12, Names: monthNames},
		{Name: "day-of-week", Min: 0, Max: 7, Names: dowNames, Remap: map[int]int{7: 0}},
	},
	map[string]string{
		"@yearly":   "0 0 1 1 *",
		"@annually": "0 0 1 1 *",
		"@monthly":  "0 0 1 * *",
		"@weekly":   "0 0 * * 0",
		"@daily":    "0 0 * * *",
		"@midnight": "0 0 * * *",
		"@hourly":   "0 * * * *",
	},
)

// Default returns the standard unix cron grammar: minute 0-59, hour 0-23,
// day-of-month 1-31, month 1-12 (jan-dec), day-of-week 0-7 (sun-sat,
// 7 = Sunday) and the usual @yearly/@monthly/@weekly/@daily/@midnight/
// @hourly aliases.
func Default() *Grammar { return defaultGrammar }

// NewGrammar builds a custom grammar for a schedule family. The five-field
// shape is fixed; ranges, names, remaps and aliases may differ from the
// default. Alias expansions are validated lazily, at first parse.
func NewGrammar(fields [numFields]FieldSpec, aliases map[string]string) (*Grammar, error) {
	for i, f := range fields {
		if f.Name == "" {
			return nil, fmt.Errorf("cron grammar: field %d has no name", i)
		}
		if f.Min < 0 || f.Max < f.Min {
			return nil, fmt.Errorf("cron grammar: field %s has invalid range %d-%d", f.Name, f.Min, f.Max)
		}
		// Fields are stored as uint64 bitsets.
		if f.Max > 63 {
			return nil, fmt.Errorf("cron grammar: field %s max %d exceeds bitset capacity", f.Name, f.Max)
		}
		for from, to := range f.Remap {
			if from < f.Min || from > f.Max || to < f.Min || to > f.Max {
				return nil, fmt.Errorf("cron grammar: field %s remap %d->%d outside range %d-%d", f.Name, from, to, f.Min, f.Max)
			}
		}
	}
	g := &Grammar{fields: fields}
	if len(aliases) > 0 {
		g.aliases = make(map[string]string, len(aliases))
		for k, v := range aliases {
			g.aliases[k] = v
		}
	}
	return g, nil
}

func mustGrammar(fields [numFields]FieldSpec, aliases map[string]string) *Grammar {
	g, err := NewGrammar(fields, aliases)
	if err != nil {
		panic(err)
	}
	return g
}

// Alias returns the five-field expansion for an alias token, if defined.
func (g *Grammar) Alias(token string) (string, bool) {
	v, ok := g.aliases[token]
	return v, ok
}

// Field returns the spec for the i-th field (parse order).
func (g *Grammar) Field(i int) FieldSpec { return g.fields[i] }
