// Package schema describes memory layouts: an Element is the layout of
// one cell, a Type is an Element with X/Y/Z extents plus optional cube
// faces and mip chain. Both are immutable after creation and are shared
// by reference between allocations, scripts and goroutines.
package schema
