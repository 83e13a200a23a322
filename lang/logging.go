package lang

import "reflect"

// resultTypeName names the dynamic type of value for log attributes.
func resultTypeName(value any) string {
	if value == nil {
		return "nil"
	}

	return reflect.TypeOf(value).String()
}
