package convert

// Direction selects which wire convention a conversion targets.
type Direction int

const (
	// WebAPIToCirceDir renames camelCase keys to their Circe spelling.
	WebAPIToCirceDir Direction = iota
	// CirceToWebAPIDir renames Circe keys to their camelCase spelling.
	CirceToWebAPIDir
)

func (d Direction) table() map[string]string {
	if d == CirceToWebAPIDir {
		return CirceToWebAPI
	}
	return WebAPIToCirce
}

// Convert walks a JSON-compatible tree depth-first and retargets every
// mapped key to the direction's convention. Lookup is exact-match only:
// no case folding, no prefix matching. Unmapped keys pass through verbatim
// with their values still converted, sequences keep order and length, and
// scalars are returned untouched even when a string value happens to spell
// a mapping key. Convert never fails; an unknown field is a legitimate
// extension, not an error.
func Convert(tree interface{}, dir Direction) interface{} {
	switch node := tree.(type) {
	case map[string]interface{}:
		table := dir.table()
		out := make(map[string]interface{}, len(node))
		for key, value := range node {
			mapped, ok := table[key]
			if !ok {
				mapped = key
			}
			out[mapped] = Convert(value, dir)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(node))
		for i, item := range node {
			out[i] = Convert(item, dir)
		}
		return out
	default:
		// Scalar (string, number, bool, nil): never inspected.
		return tree
	}
}

// ToCirce converts a WebAPI-convention document to the Circe convention.
func ToCirce(doc map[string]interface{}) map[string]interface{} {
	return Convert(doc, WebAPIToCirceDir).(map[string]interface{})
}

// ToWebAPI converts a Circe-convention document to the WebAPI convention.
func ToWebAPI(doc map[string]interface{}) map[string]interface{} {
	return Convert(doc, CirceToWebAPIDir).(map[string]interface{})
}
