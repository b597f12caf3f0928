// Package directive parses mc command-line directives.
//
// Directives are order-independent key=value tokens with comma-separated
// values, e.g. "infile=base.yaml" or "paramsweep=mua1,0.01,0.03,3". Keys are
// case-insensitive.
package directive

import (
	"strings"
)

// Kind is the closed set of directive names.
type Kind int

const (
	KindHelp Kind = iota
	KindGenInFiles
	KindInFile
	KindInFiles
	KindOutName
	KindOutPath
	KindCPUCount
	KindParamSweep
	KindParamSweepDelta
	KindParamSweepList
)

var kindNames = [...]string{
	KindHelp:            "help",
	KindGenInFiles:      "geninfiles",
	KindInFile:          "infile",
	KindInFiles:         "infiles",
	KindOutName:         "outname",
	KindOutPath:         "outpath",
	KindCPUCount:        "cpucount",
	KindParamSweep:      "paramsweep",
	KindParamSweepDelta: "paramsweepdelta",
	KindParamSweepList:  "paramsweeplist",
}

// String returns the canonical directive name.
func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Kinds returns every directive kind in declaration order.
func Kinds() []Kind {
	kinds := make([]Kind, len(kindNames))
	for i := range kindNames {
		kinds[i] = Kind(i)
	}
	return kinds
}

// LookupKind resolves a directive name case-insensitively.
func LookupKind(name string) (Kind, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range kindNames {
		if n == name {
			return Kind(i), true
		}
	}
	return 0, false
}

// Directive is one recognised token.
type Directive struct {
	Kind   Kind
	Values []string
}

// Value returns the first value, or "" when none was given.
func (d Directive) Value() string {
	if len(d.Values) == 0 {
		return ""
	}
	return d.Values[0]
}

// Parse splits args into recognised directives and unrecognised tokens,
// both in argument order.
func Parse(args []string) (directives []Directive, unknown []string) {
	for _, arg := range args {
		name, value, hasValue := strings.Cut(arg, "=")
		kind, ok := LookupKind(name)
		if !ok {
			unknown = append(unknown, arg)
			continue
		}
		var values []string
		if hasValue {
			values = splitValues(value)
		}
		directives = append(directives, Directive{Kind: kind, Values: values})
	}
	return directives, unknown
}

// splitValues splits on commas outside double quotes, trims spaces and
// strips the quotes, so a quoted path may contain commas or spaces.
func splitValues(s string) []string {
	var values []string
	var cur strings.Builder
	quoted := false
	for _, r := range s {
		switch {
		case r == '"':
			quoted = !quoted
		case r == ',' && !quoted:
			values = append(values, strings.TrimSpace(cur.String()))
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	values = append(values, strings.TrimSpace(cur.String()))
	return values
}
