package cache

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// BuildKey derives the cache key from every input that affects output:
// entry id, attribute, locale, isolation mode, and the full argument
// map in sorted order. The second result is false when any argument
// value has no stable representation; such calls skip caching rather
// than risk caching incorrectly.
func BuildKey(messageID, attribute, locale string, isolating bool, args map[string]any) (string, bool) {
	var b strings.Builder
	b.WriteString(messageID)
	b.WriteByte('\x1f')
	b.WriteString(attribute)
	b.WriteByte('\x1f')
	b.WriteString(locale)
	b.WriteByte('\x1f')
	if isolating {
		b.WriteByte('1')
	} else {
		b.WriteByte('0')
	}

	if len(args) > 0 {
		names := make([]string, 0, len(args))
		for name := range args {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			repr, ok := argRepr(args[name])
			if !ok {
				return "", false
			}
			b.WriteByte('\x1f')
			b.WriteString(name)
			b.WriteByte('=')
			b.WriteString(repr)
		}
	}
	return b.String(), true
}

// argRepr renders one argument value with its type, so 1 and "1" key
// differently. The whitelist mirrors what the resolver can format;
// anything else (slices, maps, arbitrary structs) is uncachable.
func argRepr(arg any) (string, bool) {
	switch a := arg.(type) {
	case string:
		return "s:" + a, true
	case bool:
		return "b:" + strconv.FormatBool(a), true
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("i:%d", a), true
	case float32:
		return "f:" + strconv.FormatFloat(float64(a), 'g', -1, 32), true
	case float64:
		return "f:" + strconv.FormatFloat(a, 'g', -1, 64), true
	case time.Time:
		return "t:" + a.Format(time.RFC3339Nano), true
	case fmt.Stringer:
		return "s:" + a.String(), true
	default:
		return "", false
	}
}
