package runner

import (
	"context"
	"testing"

	"github.com/gregvale/apexfmt/internal/config"
	"github.com/gregvale/apexfmt/internal/testutil"
)

// TestGolden covers spec.md §8's end-to-end scenarios S1-S4 and S6 via
// input.apex/expected.apex fixture pairs, in the teacher's golden-file
// testing style (internal/testutil.RunGoldenDir, -update flag).
func TestGolden(t *testing.T) {
	testutil.RunGoldenDir(t, "testdata", func(input string) (string, error) {
		return Format(context.Background(), []byte(input), config.Default())
	})
}
