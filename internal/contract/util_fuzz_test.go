package contract

import (
	"slices"
	"testing"
)

// FuzzParseIntList fuzzes ParseIntList with random comma-separated input.
func FuzzParseIntList(f *testing.F) {
	seeds := []string{"1,2,3", "36, 12,1", "", ",", "0", "-3", "a,b", "99999999999999999999"}
	for _, seed := range seeds {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, s string) {
		out, err := ParseIntList(s, []int{1})
		if err != nil {
			return
		}
		if !slices.IsSorted(out) {
			t.Fatalf("output not sorted: %v", out)
		}
		for _, n := range out {
			if n <= 0 {
				t.Fatalf("non-positive value %d in %v", n, out)
			}
		}
	})
}
