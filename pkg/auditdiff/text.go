package auditdiff

import (
	"fmt"
	"reflect"
	"strconv"
	"time"
)

// timeLayout keeps the offset and drops the monotonic clock reading.
const timeLayout = "2006-01-02 15:04:05.999999999Z07:00"

// Text renders a field value the way it is stored in a history entry.
// nil renders as [NoneText].
func Text(v any) string {
	if isNil(v) {
		return NoneText
	}
	switch t := v.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	case time.Time:
		return t.Format(timeLayout)
	case bool:
		return strconv.FormatBool(t)
	case fmt.Stringer:
		return t.String()
	case error:
		return t.Error()
	}
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Pointer {
		return Text(rv.Elem().Interface())
	}
	return fmt.Sprint(v)
}
