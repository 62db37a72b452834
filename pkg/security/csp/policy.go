// Package csp builds Content-Security-Policy header values.
//
//	policy := csp.NewBuilder().
//	    DefaultSrc("'self'").
//	    ScriptSrc("'self'", csp.ChartJSOrigin).
//	    Build()
//	// "default-src 'self'; script-src 'self' https://cdn.jsdelivr.net"
//
// A Builder is not safe for concurrent use; Clone it per request.
package csp

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"
)

// CDN origins the dashboard page loads scripts from.
const (
	ChartJSOrigin  = "https://cdn.jsdelivr.net"
	TailwindOrigin = "https://cdn.tailwindcss.com"
)

const (
	headerEnforce    = "Content-Security-Policy"
	headerReportOnly = "Content-Security-Policy-Report-Only"
)

// directiveOrder fixes the output order so headers are stable across builds.
var directiveOrder = []string{
	"default-src",
	"script-src",
	"style-src",
	"img-src",
	"font-src",
	"connect-src",
	"frame-ancestors",
	"form-action",
	"base-uri",
	"object-src",
	"report-uri",
}

// Builder accumulates directives.
type Builder struct {
	directives map[string][]string
	reportOnly bool
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{directives: make(map[string][]string)}
}

func (b *Builder) set(name string, sources []string) *Builder {
	b.directives[name] = append([]string(nil), sources...)
	return b
}

// DefaultSrc is the fallback for fetch directives that are not set.
func (b *Builder) DefaultSrc(sources ...string) *Builder { return b.set("default-src", sources) }

// ScriptSrc controls where scripts may load and run from.
func (b *Builder) ScriptSrc(sources ...string) *Builder { return b.set("script-src", sources) }

func (b *Builder) StyleSrc(sources ...string) *Builder   { return b.set("style-src", sources) }
func (b *Builder) ImgSrc(sources ...string) *Builder     { return b.set("img-src", sources) }
func (b *Builder) FontSrc(sources ...string) *Builder    { return b.set("font-src", sources) }
func (b *Builder) ConnectSrc(sources ...string) *Builder { return b.set("connect-src", sources) }

// FrameAncestors limits who may embed the page.
func (b *Builder) FrameAncestors(sources ...string) *Builder {
	return b.set("frame-ancestors", sources)
}

func (b *Builder) FormAction(sources ...string) *Builder { return b.set("form-action", sources) }
func (b *Builder) BaseURI(sources ...string) *Builder    { return b.set("base-uri", sources) }
func (b *Builder) ObjectSrc(sources ...string) *Builder  { return b.set("object-src", sources) }

// ReportURI sets where browsers post violation reports.
func (b *Builder) ReportURI(uri string) *Builder { return b.set("report-uri", []string{uri}) }

// ReportOnly switches the header to Content-Security-Policy-Report-Only.
func (b *Builder) ReportOnly(enabled bool) *Builder {
	b.reportOnly = enabled
	return b
}

// AddScriptNonce appends 'nonce-<nonce>' to script-src.
func (b *Builder) AddScriptNonce(nonce string) *Builder {
	b.directives["script-src"] = append(b.directives["script-src"], "'nonce-"+nonce+"'")
	return b
}

// Has reports whether directive name has at least one source.
func (b *Builder) Has(name string) bool {
	return len(b.directives[name]) > 0
}

// Clone returns an independent copy.
func (b *Builder) Clone() *Builder {
	c := &Builder{directives: make(map[string][]string, len(b.directives)), reportOnly: b.reportOnly}
	for k, v := range b.directives {
		c.directives[k] = append([]string(nil), v...)
	}
	return c
}

// Build renders the header value. Directives without sources are omitted.
func (b *Builder) Build() string {
	parts := make([]string, 0, len(b.directives))
	for _, name := range directiveOrder {
		if sources := b.directives[name]; len(sources) > 0 {
			parts = append(parts, fmt.Sprintf("%s %s", name, strings.Join(sources, " ")))
		}
	}
	return strings.Join(parts, "; ")
}

// HeaderName is the header Build's value belongs in.
func (b *Builder) HeaderName() string {
	if b.reportOnly {
		return headerReportOnly
	}
	return headerEnforce
}

// NewNonce returns a random base64 value for a single response.
func NewNonce() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate csp nonce: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf), nil
}

// DashboardPolicy fits the HTML page: Chart.js and the Tailwind runtime from
// their CDNs, inline styles injected by Tailwind, and the page's own inline
// script once a nonce is added.
func DashboardPolicy() *Builder {
	return NewBuilder().
		DefaultSrc("'self'").
		ScriptSrc("'self'", ChartJSOrigin, TailwindOrigin).
		StyleSrc("'self'", "'unsafe-inline'").
		ImgSrc("'self'", "data:").
		ConnectSrc("'self'").
		FrameAncestors("'none'").
		FormAction("'none'").
		BaseURI("'self'").
		ObjectSrc("'none'")
}

// StrictPolicy fits JSON endpoints that never render.
func StrictPolicy() *Builder {
	return NewBuilder().
		DefaultSrc("'none'").
		FrameAncestors("'none'").
		BaseURI("'none'").
		FormAction("'none'")
}
