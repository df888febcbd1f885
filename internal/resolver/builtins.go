package resolver

import (
	"fmt"
	"strconv"
	"time"
)

// builtinNumber implements NUMBER(...): locale-aware decimal and
// percent formatting of the first positional argument. Named options
// follow the conventional camelCase spelling used in patterns.
func builtinNumber(ctx FuncContext, positional []Value, named map[string]Value) (Value, error) {
	if len(positional) != 1 {
		return nil, &FormattingError{
			Fallback: "NUMBER()",
			Reason:   fmt.Sprintf("NUMBER takes one positional argument, got %d", len(positional)),
		}
	}
	num, ok := positional[0].(NumberValue)
	if !ok {
		return nil, &FormattingError{
			Fallback: positional[0].Format(ctx.Locale),
			Reason:   "NUMBER argument is not numeric",
		}
	}

	opts := num.Opts
	opts.set = true
	opts.UseGrouping = true
	for key, v := range named {
		switch key {
		case "minimumFractionDigits":
			opts.MinFractionDigits = intOption(v)
		case "maximumFractionDigits":
			opts.MaxFractionDigits = intOption(v)
		case "useGrouping":
			opts.UseGrouping = boolOption(v, true)
		case "style":
			if sv, ok := v.(StringValue); ok && sv.Val == "percent" {
				opts.Percent = true
			}
		}
	}
	num.Opts = opts
	return num, nil
}

// builtinDatetime implements DATETIME(...). Layout presets are chosen
// with dateStyle/timeStyle named options; full locale-aware calendar
// formatting is a host concern reachable by registering a richer
// DATETIME over this one.
func builtinDatetime(ctx FuncContext, positional []Value, named map[string]Value) (Value, error) {
	if len(positional) != 1 {
		return nil, &FormattingError{
			Fallback: "DATETIME()",
			Reason:   fmt.Sprintf("DATETIME takes one positional argument, got %d", len(positional)),
		}
	}

	var t time.Time
	switch v := positional[0].(type) {
	case TimeValue:
		t = v.Val
	case NumberValue:
		sec := int64(v.Val)
		t = time.Unix(sec, 0).UTC()
	case StringValue:
		parsed, err := time.Parse(time.RFC3339, v.Val)
		if err != nil {
			return nil, &FormattingError{
				Fallback: v.Val,
				Reason:   "DATETIME argument is not an RFC 3339 timestamp",
			}
		}
		t = parsed
	default:
		return nil, &FormattingError{
			Fallback: "DATETIME()",
			Reason:   "DATETIME argument is not a timestamp",
		}
	}

	dateLayout := "2006-01-02"
	timeLayout := ""
	for key, v := range named {
		sv, ok := v.(StringValue)
		if !ok {
			continue
		}
		switch key {
		case "dateStyle":
			switch sv.Val {
			case "short":
				dateLayout = "01/02/06"
			case "medium":
				dateLayout = "Jan 2, 2006"
			case "long":
				dateLayout = "January 2, 2006"
			case "full":
				dateLayout = "Monday, January 2, 2006"
			}
		case "timeStyle":
			switch sv.Val {
			case "short":
				timeLayout = "15:04"
			case "medium":
				timeLayout = "15:04:05"
			case "long", "full":
				timeLayout = "15:04:05 MST"
			}
		}
	}

	layout := dateLayout
	if timeLayout != "" {
		layout = dateLayout + " " + timeLayout
	}
	return StringValue{Val: t.Format(layout)}, nil
}

func intOption(v Value) int {
	switch n := v.(type) {
	case NumberValue:
		return int(n.Val)
	case StringValue:
		i, err := strconv.Atoi(n.Val)
		if err != nil {
			return 0
		}
		return i
	}
	return 0
}

func boolOption(v Value, def bool) bool {
	switch b := v.(type) {
	case BoolValue:
		return b.Val
	case StringValue:
		switch b.Val {
		case "false":
			return false
		case "true":
			return true
		}
	}
	return def
}
