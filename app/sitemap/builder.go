package sitemap

import (
	"bytes"
	"context"
	"html"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/lysyi3m/sitemap-comb/app/site"
)

// LastModLayout is ISO 8601 with a numeric UTC offset.
const LastModLayout = "2006-01-02T15:04:05-07:00"

type Builder struct {
	urls          *site.URLBuilder
	stylesheetURL string
	priority      bool
	frequency     bool
	includeImages bool
	imagesLicense string
}

func NewBuilder(options *Options, urls *site.URLBuilder, stylesheetURL string) *Builder {
	return &Builder{
		urls:          urls,
		stylesheetURL: stylesheetURL,
		priority:      options.Priority.Enabled(),
		frequency:     options.Frequency.Enabled(),
		includeImages: options.IncludeImages,
		imagesLicense: options.ImagesLicense,
	}
}

// Run writes one <url> per page and language with existing content and
// returns the document together with the number of <url> elements.
func (b *Builder) Run(ctx context.Context, pages []site.Page, annotations Annotations, languages []site.Language) (string, int, error) {
	var buf bytes.Buffer

	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	buf.WriteString("\n")
	buf.WriteString(`<?xml-stylesheet type="text/xsl" href="`)
	buf.WriteString(escape(b.stylesheetURL))
	buf.WriteString(`"?>`)
	buf.WriteString("\n")
	buf.WriteString(`<urlset xmlns:image="` + NamespaceImage + `" xmlns:xhtml="` + NamespaceXHTML + `" xmlns="` + NamespaceSitemap + `">`)
	buf.WriteString("\n")

	codes := make([]string, 0, len(languages))
	for _, lang := range languages {
		codes = append(codes, lang.Code)
	}

	count := 0
	for _, page := range pages {
		if err := ctx.Err(); err != nil {
			return "", 0, err
		}

		for i, code := range codes {
			if !page.HasContent(code) {
				continue
			}
			b.writeURL(&buf, page, annotations[page.ID], languages, languages[i])
			count++
		}
	}

	buf.WriteString("</urlset>\n")

	return buf.String(), count, nil
}

func (b *Builder) writeURL(buf *bytes.Buffer, page site.Page, annotation Annotation, languages []site.Language, lang site.Language) {
	buf.WriteString("  <url>\n")

	b.writeElement(buf, "loc", b.urls.PageURL(page, lang), 4)
	b.writeElement(buf, "lastmod", page.LastModified().Format(LastModLayout), 4)

	// The current language is listed among its own alternates, but only when
	// there is at least one other translation to point to.
	if len(languages) > 1 && translations(page, languages) > 1 {
		for _, alternate := range languages {
			if !page.HasContent(alternate.Code) {
				continue
			}
			buf.WriteString(`    <xhtml:link hreflang="`)
			buf.WriteString(escape(alternate.Code))
			buf.WriteString(`" href="`)
			buf.WriteString(escape(b.urls.PageURL(page, alternate)))
			buf.WriteString(`" rel="alternate"/>`)
			buf.WriteString("\n")
		}
	}

	if b.priority {
		b.writeElement(buf, "priority", strconv.FormatFloat(annotation.Priority, 'f', 1, 64), 4)
	}

	if b.frequency {
		b.writeElement(buf, "changefreq", string(annotation.Frequency), 4)
	}

	if b.includeImages {
		for _, image := range page.Images {
			b.writeImage(buf, image, lang.Code)
		}
	}

	buf.WriteString("  </url>\n")
}

func (b *Builder) writeImage(buf *bytes.Buffer, image site.Image, code string) {
	buf.WriteString("    <image:image>\n")

	b.writeElement(buf, "image:loc", b.urls.ImageURL(image), 6)

	meta := image.MetaFor(code)
	if caption := firstNonEmpty(meta.Caption, meta.Alt); caption != "" {
		buf.WriteString("      <image:caption>")
		buf.WriteString(cdata(caption))
		buf.WriteString("</image:caption>\n")
	}

	if b.imagesLicense != "" {
		b.writeElement(buf, "image:license", b.imagesLicense, 6)
	}

	buf.WriteString("    </image:image>\n")
}

func (b *Builder) writeElement(buf *bytes.Buffer, tag, content string, indent int) {
	if content == "" {
		return
	}

	for i := 0; i < indent; i++ {
		buf.WriteByte(' ')
	}

	buf.WriteString("<")
	buf.WriteString(tag)
	buf.WriteString(">")
	buf.WriteString(escape(content))
	buf.WriteString("</")
	buf.WriteString(tag)
	buf.WriteString(">\n")
}

func translations(page site.Page, languages []site.Language) int {
	n := 0
	for _, lang := range languages {
		if page.HasContent(lang.Code) {
			n++
		}
	}
	return n
}

// cdata wraps s in a CDATA section, splitting any "]]>" it contains.
func cdata(s string) string {
	return "<![CDATA[" + strings.ReplaceAll(xmlText(s), "]]>", "]]]]><![CDATA[>") + "]]>"
}

func escape(s string) string {
	return html.EscapeString(xmlText(s))
}

// xmlText drops runes XML 1.0 does not allow, invalid UTF-8 included.
func xmlText(s string) string {
	valid := true
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if !isXMLChar(r, size) {
			valid = false
			break
		}
		i += size
	}
	if valid {
		return s
	}

	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if isXMLChar(r, size) {
			sb.WriteRune(r)
		}
		i += size
	}
	return sb.String()
}

func isXMLChar(r rune, size int) bool {
	if r == utf8.RuneError && size <= 1 {
		return false
	}
	switch {
	case r == '\t' || r == '\n' || r == '\r':
		return true
	case r >= 0x20 && r <= 0xD7FF:
		return true
	case r >= 0xE000 && r <= 0xFFFD:
		return true
	case r >= 0x10000 && r <= utf8.MaxRune:
		return true
	}
	return false
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
