package cronx

import (
	"strconv"
	"strings"
)

// Parse validates a raw time expression against the grammar and returns an
// immutable Expression.
//
// The input is trimmed and lower-cased for the alias lookup only. An alias
// must match the whole (trimmed) input; otherwise the text must split into
// exactly five whitespace-separated fields. Each field supports the usual
// cron forms: "*", literals, names, comma lists, ranges "a-b" and steps
// "a/b" or "*/b", validated against the grammar's range for that field.
//
// All failures are *ParseError values carrying the original text.
func Parse(g *Grammar, text string) (*Expression, error) {
	if g == nil {
		g = Default()
	}
	spec := strings.TrimSpace(text)
	if spec == "" {
		return nil, structuralErr(text, "empty expression")
	}
	if exp, ok := g.Alias(strings.ToLower(spec)); ok {
		spec = exp
	}

	fields := strings.Fields(spec)
	if len(fields) != numFields {
		return nil, structuralErr(text, "expected %d fields, found %d", numFields, len(fields))
	}

	e := &Expression{text: text}
	dests := [numFields]*uint64{&e.minute, &e.hour, &e.dom, &e.month, &e.dow}
	for i, tok := range fields {
		fs := g.Field(i)
		bits, err := parseField(fs, tok, text)
		if err != nil {
			return nil, err
		}
		*dests[i] = bits
	}
	e.domStar = wildcardToken(fields[fieldDOM])
	e.dowStar = wildcardToken(fields[fieldDOW])
	return e, nil
}

// wildcardToken reports whether any list term of a day field is the full
// wildcard, stepped or not. "*/2" still counts as unrestricted for the
// dom/dow combination rule, matching standard cron engines.
func wildcardToken(tok string) bool {
	for _, expr := range strings.Split(tok, ",") {
		if expr == "*" || strings.HasPrefix(expr, "*/") {
			return true
		}
	}
	return false
}

// parseField resolves one field token into a bitset of accepted values.
// A field is a comma-separated list of range expressions.
func parseField(fs FieldSpec, tok, text string) (uint64, error) {
	var bits uint64
	for _, expr := range strings.Split(tok, ",") {
		b, err := parseRange(fs, expr, text)
		if err != nil {
			return 0, err
		}
		bits |= b
	}
	return bits, nil
}

// parseRange handles a single expression of the form
//
//	"*" | "*/step" | value | value "/" step | value "-" value [ "/" step ]
func parseRange(fs FieldSpec, expr, text string) (uint64, error) {
	rangeAndStep := strings.Split(expr, "/")
	if len(rangeAndStep) > 2 {
		return 0, fieldErr(KindStructural, fs.Name, text, "too many slashes in %q", expr)
	}
	lowAndHigh := strings.Split(rangeAndStep[0], "-")
	if len(lowAndHigh) > 2 {
		return 0, fieldErr(KindStructural, fs.Name, text, "too many hyphens in %q", expr)
	}

	var start, end int
	single := len(lowAndHigh) == 1
	if lowAndHigh[0] == "*" {
		if !single {
			return 0, fieldErr(KindStructural, fs.Name, text, "wildcard cannot start a range in %q", expr)
		}
		start, end = fs.Min, fs.Max
	} else {
		var err error
		start, err = parseValue(fs, lowAndHigh[0], text)
		if err != nil {
			return 0, err
		}
		end = start
		if !single {
			end, err = parseValue(fs, lowAndHigh[1], text)
			if err != nil {
				return 0, err
			}
		}
	}

	step := 1
	if len(rangeAndStep) == 2 {
		n, err := strconv.Atoi(rangeAndStep[1])
		if err != nil {
			return 0, fieldErr(KindStructural, fs.Name, text, "invalid step %q", expr)
		}
		if n <= 0 {
			return 0, fieldErr(KindStructural, fs.Name, text, "step must be positive in %q", expr)
		}
		step = n
		// "N/step" means "N through max, every step".
		if single && lowAndHigh[0] != "*" {
			end = fs.Max
		}
	}

	if start > end {
		return 0, fieldErr(KindStructural, fs.Name, text, "range start %d beyond end %d in %q", start, end, expr)
	}

	var bits uint64
	for v := start; v <= end; v += step {
		n := v
		if m, ok := fs.Remap[v]; ok {
			n = m
		}
		bits |= 1 << uint(n)
	}
	return bits, nil
}

// parseValue resolves a literal or symbolic value and enforces the field's
// strict range.
func parseValue(fs FieldSpec, s, text string) (int, error) {
	if n, ok := fs.Names[strings.ToLower(s)]; ok {
		return n, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fieldErr(KindStructural, fs.Name, text, "invalid value %q", s)
	}
	if n < fs.Min || n > fs.Max {
		return 0, fieldErr(KindGrammar, fs.Name, text, "value %d out of range %d-%d", n, fs.Min, fs.Max)
	}
	return n, nil
}
