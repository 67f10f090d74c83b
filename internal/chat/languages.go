package chat

// Languages is the fixed set of generation languages, in selector order.
var Languages = []string{
	"English",
	"Hindi",
	"Spanish",
	"French",
	"German",
	"Tamil",
	"Marathi",
}

// DefaultLanguage is selected when nothing else is.
const DefaultLanguage = "English"

// AdTypes are the slogan/poster tones, in selector order.
var AdTypes = []string{
	"Catchy",
	"Professional",
	"Luxury",
	"Humorous",
}

// PosterFormats are the poster layout options, in selector order.
var PosterFormats = []string{
	"Square",
	"Portrait",
	"Landscape",
}

// indexOf returns the position of value in options, or 0 when absent, so an
// unrecognized configured value degrades to the first (default) option.
func indexOf(options []string, value string) int {
	for i, v := range options {
		if v == value {
			return i
		}
	}
	return 0
}
