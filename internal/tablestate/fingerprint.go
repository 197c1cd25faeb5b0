package tablestate

import (
	"fmt"
	"hash/fnv"
	"strings"
	"time"

	"github.com/LinkesAuge/chestbuddy/pkg/types"
)

// fingerprintUnknown is the sentinel stored after a bulk update. It never
// equals a computed fingerprint, so the next NotifyIfChanged fires.
const fingerprintUnknown = ""

// fingerprint digests the table shape (row/column counts, column names)
// plus sampled row content: first, middle, and last row when non-empty.
// It never fails: any internal error degrades to a time-based unique value
// so a fingerprinting bug means "always notify", never "never notify".
func fingerprint(t *types.Table) (fp string) {
	defer func() {
		if r := recover(); r != nil {
			fp = fmt.Sprintf("fallback-%d", time.Now().UnixNano())
		}
	}()

	h := fnv.New64a()
	fmt.Fprintf(h, "shape:%dx%d;", t.RowCount(), t.ColumnCount())
	fmt.Fprintf(h, "cols:%s;", strings.Join(t.ColumnNames(), "\x1f"))

	n := t.RowCount()
	if n > 0 {
		for _, idx := range sampleIndices(n) {
			row, err := t.Row(idx)
			if err != nil {
				panic(err)
			}
			fmt.Fprintf(h, "row%d:%s;", idx, strings.Join(row, "\x1f"))
		}
	}
	return fmt.Sprintf("%016x", h.Sum64())
}

// sampleIndices returns the first, middle, and last row indices without
// duplicates.
func sampleIndices(n int) []int {
	indices := []int{0}
	if mid := n / 2; mid != 0 {
		indices = append(indices, mid)
	}
	if last := n - 1; last != 0 && last != n/2 {
		indices = append(indices, last)
	}
	return indices
}
