package ui

import (
	"strings"

	"github.com/samber/lo"
)

const (
	mapCols = 72 // 5° of longitude per column
	mapRows = 18 // 10° of latitude per row
)

// landBands lists land column ranges for each 10° latitude band, north to
// south, on a 72-column equirectangular grid. Coarse, but enough to tell
// continents apart.
var landBands = [mapRows][][2]int{
	{{25, 31}},                               // 90N..80N
	{{10, 24}, {25, 32}, {56, 66}},           // 80N..70N
	{{2, 26}, {27, 31}, {37, 71}},            // 70N..60N
	{{4, 24}, {35, 35}, {36, 68}},            // 60N..50N
	{{7, 23}, {35, 64}},                      // 50N..40N
	{{8, 20}, {33, 62}, {63, 64}},            // 40N..30N
	{{12, 17}, {33, 48}, {50, 60}},           // 30N..20N
	{{15, 19}, {33, 47}, {51, 53}, {55, 61}}, // 20N..10N
	{{19, 26}, {34, 45}, {56, 63}},           // 10N..0
	{{20, 29}, {38, 44}, {57, 66}},           // 0..10S
	{{21, 28}, {38, 44}, {45, 45}, {60, 65}}, // 10S..20S
	{{22, 27}, {39, 43}, {59, 66}},           // 20S..30S
	{{22, 26}, {39, 41}, {59, 65}},           // 30S..40S
	{{22, 25}, {69, 70}},                     // 40S..50S
	{{22, 23}},                               // 50S..60S
	{{23, 24}},                               // 60S..70S
	{{0, mapCols - 1}},                       // 70S..80S
	{{0, mapCols - 1}},                       // 80S..90S
}

// isLand reports whether the coarse grid cell is land.
func isLand(row, col int) bool {
	if row < 0 || row >= mapRows {
		return false
	}
	for _, band := range landBands[row] {
		if col >= band[0] && col <= band[1] {
			return true
		}
	}
	return false
}

// project maps a coordinate onto a width x height grid.
func project(lat, lng float64, width, height int) (x, y int) {
	lat = lo.Clamp(lat, -90, 90)
	lng = lo.Clamp(lng, -180, 180)
	x = int((lng + 180) / 360 * float64(width))
	y = int((90 - lat) / 180 * float64(height))
	return lo.Clamp(x, 0, width-1), lo.Clamp(y, 0, height-1)
}

type mapCell int

const (
	cellSea mapCell = iota
	cellLand
	cellMarker
)

// minimapCells samples the land grid at width x height and places the marker.
func minimapCells(lat, lng float64, width, height int, marked bool) [][]mapCell {
	cells := make([][]mapCell, height)
	for y := range cells {
		cells[y] = make([]mapCell, width)
		row := y * mapRows / height
		for x := range cells[y] {
			if isLand(row, x*mapCols/width) {
				cells[y][x] = cellLand
			}
		}
	}
	if marked {
		x, y := project(lat, lng, width, height)
		cells[y][x] = cellMarker
	}
	return cells
}

// renderMinimap draws the world with a marker at (lat, lng).
func renderMinimap(lat, lng float64, width, height int, marked bool, styles Styles) string {
	if width < 4 || height < 2 {
		return ""
	}
	cells := minimapCells(lat, lng, width, height, marked)
	lines := make([]string, len(cells))
	for y, row := range cells {
		var b strings.Builder
		for _, c := range row {
			switch c {
			case cellMarker:
				b.WriteString(styles.Marker.Render("◉"))
			case cellLand:
				b.WriteString(styles.Land.Render("▓"))
			default:
				b.WriteString(styles.Sea.Render("·"))
			}
		}
		lines[y] = b.String()
	}
	return strings.Join(lines, "\n")
}
