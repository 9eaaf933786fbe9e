// Package naming derives output file names for converted images.
package naming

import (
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"

	"imagemill/internal/convert"
)

// fileNameReplacer replaces filesystem-unsafe characters with safe alternatives.
var fileNameReplacer = strings.NewReplacer(
	"/", "-",
	"\\", "-",
	":", "-",
	"*", "-",
	"?", "",
	"\"", "",
	"<", "",
	">", "",
	"|", "",
)

// OutputName builds the file name for a converted item. The base is the
// rename override when set, otherwise the source name without its extension.
// With sequence numbering on, the item's 1-based position in the batch
// listing is appended before the extension.
func OutputName(sourceName string, position int, settings convert.Settings) string {
	base := strings.TrimSpace(settings.BaseName)
	if base == "" {
		base = Stem(sourceName)
	}
	base = Sanitize(base)
	if base == "" {
		base = "image"
	}
	if settings.Sequence {
		base = fmt.Sprintf("%s_%d", base, position)
	}
	return base + "." + settings.Format.Extension()
}

// Stem returns a file name without its directory or extension.
func Stem(name string) string {
	base := filepath.Base(strings.TrimSpace(name))
	if base == "." || base == string(filepath.Separator) {
		return ""
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Sanitize normalizes a name to NFC and replaces filesystem-unsafe
// characters. Slashes, backslashes, colons, and asterisks become dashes;
// other unsafe characters are removed.
func Sanitize(name string) string {
	name = norm.NFC.String(strings.TrimSpace(name))
	if name == "" {
		return ""
	}
	return strings.TrimSpace(fileNameReplacer.Replace(name))
}
