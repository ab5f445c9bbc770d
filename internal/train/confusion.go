package train

import (
	"fmt"
	"strings"
	"text/tabwriter"
)

// ConfusionMatrix counts predictions against truth. Rows are true
// labels, columns predicted, both indexed by label id. Out-of-range ids
// are ignored.
func ConfusionMatrix(truth, pred []int32, classes int) [][]int {
	m := make([][]int, classes)
	for i := range m {
		m[i] = make([]int, classes)
	}
	for i, tr := range truth {
		if i >= len(pred) {
			break
		}
		pr := pred[i]
		if tr < 0 || int(tr) >= classes || pr < 0 || int(pr) >= classes {
			continue
		}
		m[tr][pr]++
	}
	return m
}

// FormatConfusion renders the matrix with label names down the side and
// label ids across the top.
func FormatConfusion(m [][]int, labels []string) string {
	var b strings.Builder
	w := tabwriter.NewWriter(&b, 2, 0, 2, ' ', 0)

	fmt.Fprint(w, "true \\ pred")
	for i := range m {
		fmt.Fprintf(w, "\t%d", i)
	}
	fmt.Fprintln(w)

	for i, row := range m {
		name := fmt.Sprintf("%d", i)
		if i < len(labels) {
			name = fmt.Sprintf("%d %s", i, labels[i])
		}
		fmt.Fprint(w, name)
		for _, v := range row {
			fmt.Fprintf(w, "\t%d", v)
		}
		fmt.Fprintln(w)
	}
	w.Flush()
	return b.String()
}
