// Package resolver turns a message pattern plus caller arguments into
// final output text. Resolution never fails for input errors: every
// failure writes best-effort fallback text and records one structured
// diagnostic. Hard resource limits (nesting depth, cross-call depth,
// output budget) are the only conditions that cut a call short.
package resolver

import (
	"fmt"
	"strconv"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"lingo/internal/plural"
)

// Value is a runtime argument or intermediate result. The closed set of
// implementations mirrors what patterns can produce: strings, numbers,
// booleans, and timestamps.
type Value interface {
	// Format renders the value for output under the given locale.
	Format(tag language.Tag) string
	isValue()
}

type StringValue struct {
	Val string
}

func (StringValue) isValue()                      {}
func (v StringValue) Format(language.Tag) string { return v.Val }

// NumberOptions carries NUMBER() formatting parameters. The zero value
// means "render the source spelling verbatim".
type NumberOptions struct {
	MinFractionDigits int
	MaxFractionDigits int
	UseGrouping       bool
	Percent           bool
	set               bool
}

// NumberValue keeps both the numeric value and its source spelling.
// The spelling drives plural category selection: "1.0" and "1" are the
// same float64 but can land in different CLDR categories.
type NumberValue struct {
	Val    float64
	Source string
	Opts   NumberOptions
}

func (NumberValue) isValue() {}

func (v NumberValue) Format(tag language.Tag) string {
	if !v.Opts.set {
		return v.Source
	}
	opts := make([]number.Option, 0, 3)
	if v.Opts.MinFractionDigits > 0 {
		opts = append(opts, number.MinFractionDigits(v.Opts.MinFractionDigits))
	}
	if v.Opts.MaxFractionDigits > 0 {
		opts = append(opts, number.MaxFractionDigits(v.Opts.MaxFractionDigits))
	}
	if !v.Opts.UseGrouping {
		opts = append(opts, number.NoSeparator())
	}
	p := message.NewPrinter(tag)
	if v.Opts.Percent {
		return p.Sprint(number.Percent(v.Val, opts...))
	}
	return p.Sprint(number.Decimal(v.Val, opts...))
}

// PluralCategory returns the CLDR cardinal category of this number,
// computed over the spelling that formatting would produce.
func (v NumberValue) PluralCategory(tag language.Tag) string {
	spelling := v.Source
	if v.Opts.set && v.Opts.MinFractionDigits > 0 {
		spelling = strconv.FormatFloat(v.Val, 'f', v.Opts.MinFractionDigits, 64)
	}
	return plural.Category(spelling, tag)
}

// BoolValue exists so boolean arguments survive conversion without
// being coerced into numbers. It matches no variant key; select
// expressions over a boolean always fall through to the default.
type BoolValue struct {
	Val bool
}

func (BoolValue) isValue() {}
func (v BoolValue) Format(language.Tag) string {
	return strconv.FormatBool(v.Val)
}

type TimeValue struct {
	Val time.Time
}

func (TimeValue) isValue() {}
func (v TimeValue) Format(language.Tag) string {
	return v.Val.Format(time.RFC3339)
}

// FromArg converts one caller-supplied argument into a Value. The
// second result is false for types that have no sensible rendering.
func FromArg(arg any) (Value, bool) {
	switch a := arg.(type) {
	case Value:
		return a, true
	case string:
		return StringValue{Val: a}, true
	case bool:
		return BoolValue{Val: a}, true
	case time.Time:
		return TimeValue{Val: a}, true
	case int:
		return numArg(float64(a), strconv.Itoa(a)), true
	case int8:
		return numArg(float64(a), strconv.FormatInt(int64(a), 10)), true
	case int16:
		return numArg(float64(a), strconv.FormatInt(int64(a), 10)), true
	case int32:
		return numArg(float64(a), strconv.FormatInt(int64(a), 10)), true
	case int64:
		return numArg(float64(a), strconv.FormatInt(a, 10)), true
	case uint:
		return numArg(float64(a), strconv.FormatUint(uint64(a), 10)), true
	case uint8:
		return numArg(float64(a), strconv.FormatUint(uint64(a), 10)), true
	case uint16:
		return numArg(float64(a), strconv.FormatUint(uint64(a), 10)), true
	case uint32:
		return numArg(float64(a), strconv.FormatUint(uint64(a), 10)), true
	case uint64:
		return numArg(float64(a), strconv.FormatUint(a, 10)), true
	case float32:
		return numArg(float64(a), strconv.FormatFloat(float64(a), 'g', -1, 32)), true
	case float64:
		return numArg(a, strconv.FormatFloat(a, 'g', -1, 64)), true
	case fmt.Stringer:
		return StringValue{Val: a.String()}, true
	default:
		return nil, false
	}
}

func numArg(v float64, spelling string) NumberValue {
	return NumberValue{Val: v, Source: spelling}
}

// FromArgs converts an argument map, dropping entries with no
// conversion and returning their names for diagnostics.
func FromArgs(args map[string]any) (map[string]Value, []string) {
	if len(args) == 0 {
		return nil, nil
	}
	out := make(map[string]Value, len(args))
	var dropped []string
	for name, arg := range args {
		v, ok := FromArg(arg)
		if !ok {
			dropped = append(dropped, name)
			continue
		}
		out[name] = v
	}
	return out, dropped
}
