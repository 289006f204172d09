package vectorstore

// Filter selects chunks by metadata equality. A []string value matches when
// the field equals any element; scalar values must match exactly. Numeric
// comparisons tolerate the int/float64 split JSON decoding introduces.
type Filter map[string]interface{}

// matches reports whether meta satisfies every filter condition. A nil or
// empty filter matches everything.
func (f Filter) matches(meta map[string]interface{}) bool {
	for key, want := range f {
		got, ok := meta[key]
		if !ok {
			return false
		}
		switch w := want.(type) {
		case []string:
			s, ok := got.(string)
			if !ok {
				return false
			}
			if !containsString(w, s) {
				return false
			}
		case []interface{}:
			if !containsValue(w, got) {
				return false
			}
		default:
			if !valueEqual(got, want) {
				return false
			}
		}
	}
	return true
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func containsValue(list []interface{}, got interface{}) bool {
	for _, v := range list {
		if valueEqual(got, v) {
			return true
		}
	}
	return false
}

func valueEqual(got, want interface{}) bool {
	if g, ok := toFloat(got); ok {
		if w, ok := toFloat(want); ok {
			return g == w
		}
		return false
	}
	return got == want
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
