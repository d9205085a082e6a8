package output

import "strings"

// OutputFormat specifies how a rendered record is written.
type OutputFormat string

const (
	// FormatXML writes the standardized ISO19139 document.
	FormatXML OutputFormat = "xml"

	// FormatMCF writes the canonical metadata model as YAML.
	FormatMCF OutputFormat = "mcf"

	// FormatJSON writes the canonical metadata model as JSON.
	FormatJSON OutputFormat = "json"
)

// String returns the string representation of the output format.
func (f OutputFormat) String() string {
	return string(f)
}

// IsValid checks if the output format is valid.
func (f OutputFormat) IsValid() bool {
	switch f {
	case FormatXML, FormatMCF, FormatJSON:
		return true
	default:
		return false
	}
}

// ParseOutputFormat parses a string into an OutputFormat.
// Returns FormatXML if the string is empty or invalid.
func ParseOutputFormat(s string) OutputFormat {
	switch strings.ToLower(s) {
	case "mcf", "yaml", "yml":
		return FormatMCF
	case "json":
		return FormatJSON
	default:
		return FormatXML
	}
}

// ValidFormats returns a slice of valid output format strings.
func ValidFormats() []string {
	return []string{"xml", "mcf", "json"}
}
