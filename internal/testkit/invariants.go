package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"metabin/internal/pack"
	"metabin/internal/typecode"
)

// CheckLockStep runs the packing invariants on a source:
// 1) every record with bytes is paired with exactly one chunk, in order
// 2) every chunk is as wide as its record's pattern on target
// 3) array and failed records own no chunk
// 4) the payload size fits in 32 bits, as pattern-language offsets require
func CheckLockStep(src pack.Source, target typecode.Target) error {
	if src == nil {
		return fmt.Errorf("nil source")
	}
	var total uint64
	err := pack.Pairs(src, func(rec pack.FieldRecord, chunk []byte) error {
		if !rec.HasBytes() {
			if chunk != nil {
				return fmt.Errorf("record %s owns a chunk but has no bytes", rec.Name)
			}
			return nil
		}
		p, err := typecode.Parse(rec.Pattern, target)
		if err != nil {
			return fmt.Errorf("record %s: %w", rec.Name, err)
		}
		if len(chunk) != p.Width() {
			return fmt.Errorf("record %s: chunk is %d bytes, pattern %q is %d", rec.Name, len(chunk), rec.Pattern, p.Width())
		}
		n, err := safecast.Conv[uint64](len(chunk))
		if err != nil {
			return err
		}
		total += n
		return nil
	})
	if err != nil {
		return err
	}
	if _, err := safecast.Conv[uint32](total); err != nil {
		return fmt.Errorf("payload size overflow: %w", err)
	}
	return nil
}
