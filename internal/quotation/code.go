// Package quotation materializes approved pre-quotation documents into
// formal quotations, generating sales item codes for the custom items along
// the way.
package quotation

import (
	"strconv"
	"strings"
	"time"
)

// CodeGenerator derives deterministic sales item codes from item fields plus
// a timestamp suffix. The legacy shape is preserved: 3-character uppercase
// prefixes of category, subcategory and material, an LxW segment when both
// dimensions are present, and the last 4 digits of the creation time in
// unix milliseconds. Two identical items generated within the same
// 10-second window can therefore collide; callers treat an existing code as
// "already created", which matches the legacy behavior.
type CodeGenerator struct {
	now func() time.Time
}

// NewCodeGenerator returns a generator using the wall clock.
func NewCodeGenerator() *CodeGenerator {
	return &CodeGenerator{now: time.Now}
}

// NewCodeGeneratorAt returns a generator with an injected clock, for tests
// and deterministic replays.
func NewCodeGeneratorAt(now func() time.Time) *CodeGenerator {
	return &CodeGenerator{now: now}
}

func prefix3(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	if len(s) > 3 {
		return s[:3]
	}
	return s
}

func sanitizeName(name string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(name), " ", "-"))
}

// Generate builds a code from whatever fields are available. When neither a
// category nor a subcategory is known the code falls back to a CUSTOM-<name>
// stem before the timestamp suffix.
func (g *CodeGenerator) Generate(itemName, category, subcategory string, specs map[string]string) string {
	var parts []string

	if category != "" {
		parts = append(parts, prefix3(category))
	}
	if subcategory != "" {
		parts = append(parts, prefix3(subcategory))
	}
	if len(parts) == 0 {
		parts = append(parts, "CUSTOM", sanitizeName(itemName))
	}

	if specs != nil {
		if material := specs["material"]; material != "" {
			parts = append(parts, prefix3(material))
		}
		if length, width := specs["length"], specs["width"]; length != "" && width != "" {
			parts = append(parts, length+"x"+width)
		}
	}

	millis := g.now().UnixMilli()
	suffix := strconv.FormatInt(millis, 10)
	if len(suffix) > 4 {
		suffix = suffix[len(suffix)-4:]
	}

	return strings.Join(parts, "-") + "-" + suffix
}
