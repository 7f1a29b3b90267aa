package op

import "fmt"

// Identifier returns the `name@stream` form spec.md §6's CSV format uses
// to tell apart the same named GpuOp bound to different streams; every
// other variant's identifier is just its name.
func Identifier(o Operation) string {
	if bg, ok := o.(*BoundGpuOp); ok {
		return fmt.Sprintf("%s@%d", bg.Name(), bg.Stream().ID)
	}
	return o.Name()
}
