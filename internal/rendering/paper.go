package rendering

import "github.com/jonathan/cv-editor/internal/types"

// Paper is a printable page size
type Paper struct {
	Name string
	// CSS is the @page size keyword
	CSS string
	// Width and Height are in inches, as Chrome's print API expects
	Width  float64
	Height float64
}

// Supported paper sizes
var (
	PaperLetter = Paper{Name: "Letter", CSS: "letter", Width: 8.5, Height: 11}
	PaperA4     = Paper{Name: "A4", CSS: "A4", Width: 8.27, Height: 11.69}
)

// PaperFor returns Letter for North American packs and A4 everywhere else
func PaperFor(pack *types.RulePack) Paper {
	if pack == nil {
		return PaperLetter
	}
	switch pack.Country {
	case "US", "CA":
		return PaperLetter
	default:
		return PaperA4
	}
}
