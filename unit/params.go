package unit

// Params normalizes boundary data into a trusted bag. A plain bag is treated
// as fully trusted and deep-copied. A Permitter is asked for the allowed names
// only. Anything else yields an empty bag.
func Params(src interface{}, allowed ...string) Attrs {
	switch v := src.(type) {
	case Attrs:
		return deepCopy(v)
	case map[string]interface{}:
		return deepCopy(v)
	case Permitter:
		return Attrs(v.Permit(allowed...))
	default:
		return Attrs{}
	}
}

func deepCopy(src map[string]interface{}) Attrs {
	dst := make(Attrs, len(src))
	for k, v := range src {
		dst[k] = copyValue(v)
	}
	return dst
}

func copyValue(v interface{}) interface{} {
	switch t := v.(type) {
	case Attrs:
		return deepCopy(t)
	case map[string]interface{}:
		m := make(map[string]interface{}, len(t))
		for k, e := range t {
			m[k] = copyValue(e)
		}
		return m
	case []interface{}:
		s := make([]interface{}, len(t))
		for i, e := range t {
			s[i] = copyValue(e)
		}
		return s
	default:
		return v
	}
}
