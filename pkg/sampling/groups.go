package sampling

import "sort"

// Groups is the grouped view of a table: the distinct label values in
// lexicographic order and, per label, the ascending row indices carrying it.
type Groups struct {
	keys  []string
	index map[string][]int
}

// GroupBy partitions row positions by label value
func GroupBy(labels []string) *Groups {
	g := &Groups{index: make(map[string][]int)}
	for i, label := range labels {
		if _, ok := g.index[label]; !ok {
			g.keys = append(g.keys, label)
		}
		g.index[label] = append(g.index[label], i)
	}
	sort.Strings(g.keys)
	return g
}

// Keys returns the labels in group order
func (g *Groups) Keys() []string {
	return g.keys
}

// Indices returns the row positions of label
func (g *Groups) Indices(label string) []int {
	return g.index[label]
}

// Len returns the number of distinct labels
func (g *Groups) Len() int {
	return len(g.keys)
}

// Size returns the number of rows carrying label
func (g *Groups) Size(label string) int {
	return len(g.index[label])
}

// Without returns a copy of g without the given row positions. Labels whose
// rows are all excluded stay present with no rows.
func (g *Groups) Without(exclude map[int]struct{}) *Groups {
	out := &Groups{
		keys:  g.keys,
		index: make(map[string][]int, len(g.index)),
	}
	for _, key := range g.keys {
		rows := make([]int, 0, len(g.index[key]))
		for _, i := range g.index[key] {
			if _, skip := exclude[i]; !skip {
				rows = append(rows, i)
			}
		}
		out.index[key] = rows
	}
	return out
}
