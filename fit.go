package docforge

// Display sizing constants. Raster pixels are converted to points
// assuming a fixed 96 px/inch reference resolution.
const (
	referencePxPerInch = 96.0
	pointsPerInch      = 72.0

	maxDisplayWidth  = 6.0 * pointsPerInch
	maxDisplayHeight = 4.5 * pointsPerInch

	// Readable floor. Diagrams below it are scaled back up, which is
	// the one sanctioned exception to "never upscale".
	minDisplayWidth  = 3.0 * pointsPerInch
	minDisplayHeight = 2.0 * pointsPerInch
)

// fitDimensions converts a native pixel size to display points, fitted
// inside the page image area with aspect ratio preserved. Images are
// never scaled above native size unless the fitted result would fall
// below the readable floor, in which case both axes scale up uniformly.
func fitDimensions(pixelWidth, pixelHeight int) (width, height float64) {
	nativeW := float64(pixelWidth) / referencePxPerInch * pointsPerInch
	nativeH := float64(pixelHeight) / referencePxPerInch * pointsPerInch

	scale := maxDisplayWidth / nativeW
	if s := maxDisplayHeight / nativeH; s < scale {
		scale = s
	}
	if scale > 1.0 {
		scale = 1.0
	}

	width = nativeW * scale
	height = nativeH * scale

	if width < minDisplayWidth || height < minDisplayHeight {
		up := minDisplayWidth / width
		if s := minDisplayHeight / height; s > up {
			up = s
		}
		width *= up
		height *= up
	}
	return width, height
}
