package colorseg

import (
	"fmt"
	"strings"
)

// ESC is the escape character starting every ANSI control sequence.
const ESC = "\u001b"

const (
	upperHalfBlock = "▀"
	blankCell      = " "
)

// RenderLabelsToAnsi renders a label grid as 24-bit color ANSI text. Each
// character cell covers two block rows: the upper half block takes the top
// block's class color as foreground, the bottom block's as background.
// Cells whose two blocks share a color are written as a space on that
// background. The output is uncompressed; see CompressANSI.
func RenderLabelsToAnsi(grid *LabelGrid, colors []RGB) string {
	var sb strings.Builder
	codes := make(map[uint32]string)
	code := func(prefix string, c RGB) string {
		key := toUint32(c)
		if s, ok := codes[key]; ok {
			return prefix + s
		}
		s := fmt.Sprintf("2;%d;%d;%d", c.R, c.G, c.B)
		codes[key] = s
		return prefix + s
	}

	for row := 0; row < grid.Rows; row += 2 {
		for col := 0; col < grid.Cols; col++ {
			top, _ := grid.At(col, row)
			if row+1 >= grid.Rows {
				fmt.Fprintf(&sb, "%s[%s;49m%s", ESC, code("38;", colors[top]), upperHalfBlock)
				continue
			}
			bottom, _ := grid.At(col, row+1)
			if colors[top] == colors[bottom] {
				fmt.Fprintf(&sb, "%s[%sm%s", ESC, code("48;", colors[bottom]), blankCell)
				continue
			}
			fmt.Fprintf(&sb, "%s[%s;%sm%s", ESC,
				code("38;", colors[top]), code("48;", colors[bottom]), upperHalfBlock)
		}
		// Reset colors at the end of each line
		sb.WriteString(ESC + "[0m\n")
	}
	return sb.String()
}

// CompressANSI shortens an ANSI image by emitting one escape sequence for
// each run of identical cells instead of one per cell. Colors that cannot
// show through a cell (the foreground of a space) are dropped first so more
// cells compare equal.
func CompressANSI(ansiImage string) string {
	var compressed strings.Builder
	var currentFg, currentBg, currentBlock string
	var count int

	for _, line := range strings.Split(strings.TrimSuffix(ansiImage, "\n"), "\n") {
		for _, segment := range strings.Split(line, ESC+"[") {
			if segment == "" {
				continue
			}
			parts := strings.SplitN(segment, "m", 2)
			if len(parts) != 2 || parts[1] == "" {
				continue
			}
			colorCode, block := parts[0], parts[1]
			fg, bg := extractColors(colorCode)
			if block == blankCell {
				fg = ""
			}

			if fg != currentFg || bg != currentBg || block != currentBlock {
				if count > 0 {
					compressed.WriteString(formatANSICode(currentFg, currentBg, currentBlock, count))
				}
				currentFg, currentBg, currentBlock = fg, bg, block
				count = 1
			} else {
				count++
			}
		}
		if count > 0 {
			compressed.WriteString(formatANSICode(currentFg, currentBg, currentBlock, count))
		}
		compressed.WriteString(ESC + "[0m\n")
		count = 0
		currentFg, currentBg, currentBlock = "", "", ""
	}
	return compressed.String()
}

// formatANSICode writes one escape sequence followed by block repeated
// count times.
func formatANSICode(fg, bg, block string, count int) string {
	var code strings.Builder
	code.WriteString(ESC)
	code.WriteByte('[')
	code.WriteString(strings.Join(nonEmpty(fg, bg), ";"))
	code.WriteByte('m')
	code.WriteString(strings.Repeat(block, count))
	return code.String()
}

// extractColors splits an SGR parameter list into its foreground and
// background parts. 24-bit (38;2;r;g;b), 256 color (38;5;n) and basic
// codes are recognized.
func extractColors(colorCodes string) (fg string, bg string) {
	params := strings.Split(colorCodes, ";")
	for i := 0; i < len(params); i++ {
		p := params[i]
		switch {
		case (p == "38" || p == "48") && i+4 < len(params) && params[i+1] == "2":
			s := strings.Join(params[i:i+5], ";")
			if p == "38" {
				fg = s
			} else {
				bg = s
			}
			i += 4
		case (p == "38" || p == "48") && i+2 < len(params) && params[i+1] == "5":
			s := strings.Join(params[i:i+3], ";")
			if p == "38" {
				fg = s
			} else {
				bg = s
			}
			i += 2
		case colorIsForeground(p):
			fg = p
		case colorIsBackground(p):
			bg = p
		}
	}
	return fg, bg
}

func colorIsForeground(code string) bool {
	return strings.HasPrefix(code, "3") || strings.HasPrefix(code, "9")
}

func colorIsBackground(code string) bool {
	return strings.HasPrefix(code, "4") || strings.HasPrefix(code, "10")
}

func nonEmpty(values ...string) []string {
	out := values[:0]
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
