package core

// Color represents a foreground color for a screen cell.
// Values map to ANSI 256-color codes in the platform renderer.
type Color uint8

// Palette used by the watermelon field.
const (
	ColorDefault Color = iota
	ColorRed
	ColorGreen
	ColorYellow
	ColorBlue
	ColorMagenta
	ColorCyan
	ColorWhite
	ColorBrightRed
	ColorBrightGreen
	ColorBrightYellow
	ColorBrightBlue
	ColorBrightMagenta
	ColorBrightCyan
	ColorBrightWhite
	ColorOrange
	ColorGray
	ColorDarkGreen // low terrain, melon rind
	ColorOlive     // mid terrain
	ColorSand      // high terrain
	ColorPink      // melon flesh
	ColorBrown     // bat
)

// TerrainShades orders terrain colours from lowest to highest ground.
var TerrainShades = []Color{ColorDarkGreen, ColorGreen, ColorOlive, ColorSand}
