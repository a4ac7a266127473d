// Package grid maps linear buffer indices to 2D coordinates.
package grid

// GetGridCoords converts a linear index into (x, y) coordinates for a
// row-major grid with the given number of columns.
func GetGridCoords(index, cols int) (int, int) {
	return index % cols, index / cols
}
