package api

import (
	"slices"
	"strconv"
)

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

func keys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}
