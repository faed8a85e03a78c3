package types

import (
	"fmt"
	"math"
	"strconv"
)

// Size stores a number of bytes
type Size uint64

func (s Size) String() string {
	t := uint64(s)
	switch {
	case t < 1<<10:
		return fmt.Sprintf("%d B", t)
	case t < 1<<20:
		return fmt.Sprintf("%.1f KiB", float64(t)/float64(1<<10))
	case t < 1<<30:
		return fmt.Sprintf("%.1f MiB", float64(t)/float64(1<<20))
	default:
		return fmt.Sprintf("%.1f GiB", float64(t)/float64(1<<30))
	}
}

// Set parses size from string like "128m", "64k" or "1g" (flag.Value)
func (s *Size) Set(str string) error {
	if str == "" {
		return fmt.Errorf("empty size")
	}
	var unit uint64 = 1
	switch str[len(str)-1] {
	case 'b', 'B':
		str = str[:len(str)-1]
	case 'k', 'K':
		unit = 1 << 10
		str = str[:len(str)-1]
	case 'm', 'M':
		unit = 1 << 20
		str = str[:len(str)-1]
	case 'g', 'G':
		unit = 1 << 30
		str = str[:len(str)-1]
	}
	n, err := strconv.ParseUint(str, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid size %q: %w", str, err)
	}
	if n > math.MaxUint64/unit {
		return fmt.Errorf("size %q overflows", str)
	}
	*s = Size(n * unit)
	return nil
}

// Byte returns size in bytes
func (s Size) Byte() uint64 {
	return uint64(s)
}

// KiB returns size in KiB
func (s Size) KiB() uint64 {
	return uint64(s) >> 10
}

// MiB returns size in MiB
func (s Size) MiB() uint64 {
	return uint64(s) >> 20
}
