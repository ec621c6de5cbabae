package human

import (
	"fmt"
	"math"
)

// Bytes formats b as a decimal size, e.g. "83 MB". Build archives of a few files are tiny, so
// anything below 1 kB is reported in bytes.
func Bytes(b int64) string {
	if b < 1000 {
		return fmt.Sprintf("%d B", b)
	}

	sizes := []string{"B", "kB", "MB", "GB"}
	e := math.Floor(math.Log(float64(b)) / math.Log(1000))
	e = math.Min(e, float64(len(sizes)-1))
	val := float64(b) / math.Pow(1000, e)
	return fmt.Sprintf("%.0f %s", val, sizes[int(e)])
}
