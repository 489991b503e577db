package utils

import (
	"fmt"
	"image"
	"math"
)

// ParseCameraID parses a camera index, returning 0 when arg is not a number
func ParseCameraID(arg string) int {
	var id int
	fmt.Sscanf(arg, "%d", &id)
	return id
}

// ClampRect shrinks rect so it stays within an imgWidth x imgHeight image
func ClampRect(rect image.Rectangle, imgWidth, imgHeight int) image.Rectangle {
	return rect.Intersect(image.Rect(0, 0, imgWidth, imgHeight))
}

// CirclePoint rounds a floating point center to pixel coordinates
func CirclePoint(x, y float64) image.Point {
	return image.Pt(int(math.Round(x)), int(math.Round(y)))
}

// LabelPoint places a text label just above a circle, keeping it inside the image
func LabelPoint(center image.Point, radius, imgWidth, imgHeight int) image.Point {
	pt := image.Pt(center.X-radius, center.Y-radius-10)
	if pt.X < 0 {
		pt.X = 0
	}
	if pt.Y < 12 {
		pt.Y = center.Y + radius + 16
	}
	if pt.X > imgWidth-1 {
		pt.X = imgWidth - 1
	}
	if pt.Y > imgHeight-1 {
		pt.Y = imgHeight - 1
	}
	return pt
}
