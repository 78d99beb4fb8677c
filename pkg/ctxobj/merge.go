package ctxobj

// Merge combines two values under the deterministic merge law:
// object+object merges recursively key-wise with right-hand keys winning;
// every other combination (array+array, array+scalar, scalar+anything)
// replaces the left-hand value entirely with the right-hand one.
//
// The result shares no structure with src; dst subtrees not overridden are
// reused as-is.
func Merge(dst, src any) any {
	dstMap, dstOK := dst.(map[string]any)
	srcMap, srcOK := src.(map[string]any)
	if !dstOK || !srcOK {
		return DeepCopy(src)
	}
	out := make(map[string]any, len(dstMap)+len(srcMap))
	for key, value := range dstMap {
		out[key] = value
	}
	for key, value := range srcMap {
		if existing, ok := out[key]; ok {
			out[key] = Merge(existing, value)
			continue
		}
		out[key] = DeepCopy(value)
	}
	return out
}

// DeepCopy returns a structurally independent copy of a JSON-compatible
// value. Scalars are returned as-is.
func DeepCopy(value any) any {
	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[key] = DeepCopy(item)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = DeepCopy(item)
		}
		return out
	default:
		return value
	}
}
