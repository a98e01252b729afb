package epub

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
)

// imageExtensions are the cover formats this core can decode.
var imageExtensions = []string{".jpg", ".jpeg", ".png", ".webp", ".gif"}

func isImagePath(p string) bool {
	lower := strings.ToLower(p)
	for _, ext := range imageExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

func (it manifestItem) isImage() bool {
	if strings.HasPrefix(strings.ToLower(it.MediaType), "image/") {
		return true
	}
	return isImagePath(it.Href)
}

func (it manifestItem) hasProperty(want string) bool {
	for _, p := range strings.Fields(it.Properties) {
		if strings.EqualFold(p, want) {
			return true
		}
	}
	return false
}

// CoverImage locates and returns the cover image bytes. Detection order:
// the EPUB 3 cover-image manifest property, the EPUB 2 cover meta
// reference, the guide's cover or title page, a manifest item whose id or
// href suggests a cover, and finally any archive entry named like one.
func (r *Reader) CoverImage() ([]byte, error) {
	// 1) EPUB 3: <item properties="cover-image"/>.
	for _, it := range r.pkg.Manifest.Items {
		if it.isImage() && it.hasProperty("cover-image") {
			if data, err := r.readFile(r.resolveHref(r.opfPath, it.Href)); err == nil {
				return data, nil
			}
		}
	}

	// 2) EPUB 2: <meta name="cover" content="item-id"/>.
	if id := r.coverMetaID(); id != "" {
		for _, it := range r.pkg.Manifest.Items {
			if it.ID == id && it.isImage() {
				if data, err := r.readFile(r.resolveHref(r.opfPath, it.Href)); err == nil {
					return data, nil
				}
			}
		}
	}

	// 3) Guide reference to a cover image or cover page.
	if data := r.coverFromGuide(); data != nil {
		return data, nil
	}

	// 4) Heuristic: a manifest image whose id or href suggests a cover.
	for _, it := range r.pkg.Manifest.Items {
		if !it.isImage() {
			continue
		}
		id := strings.ToLower(it.ID)
		href := strings.ToLower(it.Href)
		if strings.Contains(id, "cover") || strings.Contains(href, "cover") || strings.Contains(href, "title") {
			if data, err := r.readFile(r.resolveHref(r.opfPath, it.Href)); err == nil {
				return data, nil
			}
		}
	}

	// 5) Last resort: scan the archive itself.
	for _, f := range r.z.File {
		name := strings.ToLower(f.Name)
		if (strings.Contains(name, "cover") || strings.Contains(name, "title")) && isImagePath(name) {
			if data, err := readZipEntry(f); err == nil {
				return data, nil
			}
		}
	}

	return nil, ErrNoCover
}

// coverMetaID returns the manifest id named by an EPUB 2 cover meta tag.
func (r *Reader) coverMetaID() string {
	for _, m := range r.pkg.Metadata.Meta {
		if strings.EqualFold(strings.TrimSpace(m.Name), "cover") {
			if c := strings.TrimSpace(m.Content); c != "" {
				return c
			}
		}
	}
	return ""
}

// coverFromGuide follows guide references of type cover or title-page. A
// reference to an image is read directly; a reference to a page is parsed
// and its first image used.
func (r *Reader) coverFromGuide() []byte {
	for _, ref := range r.pkg.Guide.Refs {
		typ := strings.TrimSpace(ref.Type)
		if !strings.EqualFold(typ, "cover") && !strings.EqualFold(typ, "title-page") {
			continue
		}

		resolved := r.resolveHref(r.opfPath, ref.Href)
		if resolved == "" {
			continue
		}

		if isImagePath(resolved) {
			if data, err := r.readFile(resolved); err == nil {
				return data
			}
			continue
		}

		page, err := r.readFile(resolved)
		if err != nil {
			continue
		}
		imgHref := firstImageRef(page)
		if imgHref == "" {
			continue
		}

		imgPath := r.resolveHref(resolved, imgHref)
		if data, err := r.readFile(imgPath); err == nil {
			return data
		}
	}
	return nil
}

// firstImageRef returns the src of the first <img>, or the href of the
// first SVG <image>, in an XHTML cover page.
func firstImageRef(page []byte) string {
	doc, err := html.Parse(bytes.NewReader(page))
	if err != nil {
		return ""
	}

	var find func(n *html.Node) string
	find = func(n *html.Node) string {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "img":
				for _, a := range n.Attr {
					if a.Key == "src" && strings.TrimSpace(a.Val) != "" {
						return a.Val
					}
				}
			case "image":
				// Inline SVG cover pages reference the bitmap via href.
				for _, a := range n.Attr {
					if (a.Key == "href" || a.Key == "xlink:href") && strings.TrimSpace(a.Val) != "" {
						return a.Val
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if ref := find(c); ref != "" {
				return ref
			}
		}
		return ""
	}

	return find(doc)
}
