package sim

// ModifierSummary aggregates the active modifiers sharing a description:
// how many there are and what they contribute in total. UIs show one row
// per description instead of one per modifier.
type ModifierSummary struct {
	Description string  `json:"description"`
	Count       int     `json:"count"`
	Total       float64 `json:"total"`
}

// Summarize groups a variable's active modifiers by description, in
// first-appearance order. Value is called first so expired modifiers are
// pruned before the walk.
func Summarize(v *Variable) []ModifierSummary {
	v.Value()

	var out []ModifierSummary
	index := make(map[string]int)
	for _, m := range v.Modifiers() {
		desc := m.Description()
		i, ok := index[desc]
		if !ok {
			i = len(out)
			index[desc] = i
			out = append(out, ModifierSummary{Description: desc})
		}
		out[i].Count++
		out[i].Total += m.Value()
	}
	return out
}
