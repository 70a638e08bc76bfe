// Package analytics renders the optional Plausible page-view script. It is
// enabled by setting PLAUSIBLE_DOMAIN.
package analytics

import (
	"html/template"
	"log"
	"slices"
	"strings"

	"github.com/mrlokans/classlib/internal/config"
)

// DefaultScriptURL is the hosted Plausible script.
const DefaultScriptURL = "https://plausible.io/js/script.js"

// Plausible is the effective analytics configuration.
type Plausible struct {
	Domain     string
	ScriptURL  string
	Extensions []string
}

// FromConfig builds the configuration from the environment settings.
// Unknown extensions are dropped with a warning.
func FromConfig(cfg config.Analytics) *Plausible {
	p := &Plausible{
		Domain:    strings.TrimSpace(cfg.PlausibleDomain),
		ScriptURL: strings.TrimSpace(cfg.PlausibleScriptURL),
	}
	if p.ScriptURL == "" {
		p.ScriptURL = DefaultScriptURL
	}
	for _, ext := range parseExtensions(cfg.PlausibleExtensions) {
		if !IsValidExtension(ext) {
			log.Printf("WARNING: ignoring unknown Plausible extension %q", ext)
			continue
		}
		p.Extensions = append(p.Extensions, ext)
	}
	return p
}

func (p *Plausible) Enabled() bool {
	return p != nil && p.Domain != ""
}

// ScriptTag returns the script element for the page layout, or nothing when
// analytics is disabled.
func (p *Plausible) ScriptTag() template.HTML {
	if !p.Enabled() {
		return ""
	}

	scriptURL := BuildScriptURL(p.ScriptURL, p.Extensions)

	return template.HTML(`<script defer data-domain="` + template.HTMLEscapeString(p.Domain) + `" src="` + template.HTMLEscapeString(scriptURL) + `"></script>`)
}

// BuildScriptURL constructs the Plausible script URL with extensions,
// e.g. script.js becomes script.outbound-links.js.
func BuildScriptURL(baseURL string, extensions []string) string {
	if len(extensions) == 0 {
		return baseURL
	}
	if base, found := strings.CutSuffix(baseURL, ".js"); found {
		return base + "." + strings.Join(extensions, ".") + ".js"
	}
	return baseURL
}

// parseExtensions splits comma-separated extensions and trims whitespace
func parseExtensions(s string) []string {
	if s == "" {
		return nil
	}

	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// ValidExtensions lists the known Plausible script extensions
var ValidExtensions = []string{
	"outbound-links",
	"file-downloads",
	"tagged-events",
	"hash",
	"compat",
	"local",
	"manual",
	"pageview-props",
}

// IsValidExtension checks if an extension is known
func IsValidExtension(ext string) bool {
	return slices.Contains(ValidExtensions, ext)
}
