// Package epub provides the EPUB chapter and cover source feeding the text
// pipeline.
//
// Only the structural facts the pipeline needs are parsed: the container's
// rootfile, the OPF manifest and spine, a few metadata fields, and the
// cover-image reference. Chapter content is handed over as raw XHTML for the
// content package to parse.
package epub

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
)

// Reader-related errors.
var (
	ErrInvalidArchive = errors.New("epub: invalid or corrupted archive")
	ErrNoRootfile     = errors.New("epub: missing package document (OPF)")
	ErrMissingEntry   = errors.New("epub: referenced file not found")
	ErrEmptySpine     = errors.New("epub: no content in spine")
	ErrNoCover        = errors.New("epub: no cover image found")
)

// Reader provides access to one EPUB's chapters, metadata, and cover.
type Reader struct {
	zc      *zip.ReadCloser
	z       *zip.Reader
	opfPath string
	baseDir string
	pkg     pkgDocument
}

// Chapter is one spine item's raw XHTML content, in reading order.
type Chapter struct {
	ID      string
	Href    string
	Index   int
	Content []byte
}

// pkgDocument mirrors the subset of the OPF package document this core
// consumes.
type pkgDocument struct {
	XMLName  xml.Name `xml:"package"`
	Version  string   `xml:"version,attr"`
	Metadata struct {
		Title    []string `xml:"title"`
		Creator  []string `xml:"creator"`
		Language []string `xml:"language"`
		Meta     []struct {
			Name    string `xml:"name,attr"`
			Content string `xml:"content,attr"`
		} `xml:"meta"`
	} `xml:"metadata"`
	Manifest struct {
		Items []manifestItem `xml:"item"`
	} `xml:"manifest"`
	Spine struct {
		Refs []struct {
			IDRef string `xml:"idref,attr"`
		} `xml:"itemref"`
	} `xml:"spine"`
	Guide struct {
		Refs []struct {
			Type string `xml:"type,attr"`
			Href string `xml:"href,attr"`
		} `xml:"reference"`
	} `xml:"guide"`
}

type manifestItem struct {
	ID         string `xml:"id,attr"`
	Href       string `xml:"href,attr"`
	MediaType  string `xml:"media-type,attr"`
	Properties string `xml:"properties,attr"`
}

// container mirrors META-INF/container.xml.
type container struct {
	Rootfiles []struct {
		FullPath string `xml:"full-path,attr"`
	} `xml:"rootfiles>rootfile"`
}

// Open opens an EPUB file from a path.
func Open(filePath string) (*Reader, error) {
	zc, err := zip.OpenReader(filePath)
	if err != nil {
		return nil, ErrInvalidArchive
	}

	r := &Reader{zc: zc, z: &zc.Reader}
	if err := r.init(); err != nil {
		zc.Close()
		return nil, err
	}
	return r, nil
}

// OpenReader opens an EPUB from an io.ReaderAt.
func OpenReader(ra io.ReaderAt, size int64) (*Reader, error) {
	z, err := zip.NewReader(ra, size)
	if err != nil {
		return nil, ErrInvalidArchive
	}

	r := &Reader{z: z}
	if err := r.init(); err != nil {
		return nil, err
	}
	return r, nil
}

// Close releases the underlying archive, if this reader owns one.
func (r *Reader) Close() error {
	if r.zc != nil {
		return r.zc.Close()
	}
	return nil
}

func (r *Reader) init() error {
	data, err := r.readFile("META-INF/container.xml")
	if err != nil {
		return ErrNoRootfile
	}

	var c container
	if err := xml.Unmarshal(data, &c); err != nil {
		return fmt.Errorf("parsing container.xml: %w", err)
	}

	for _, rf := range c.Rootfiles {
		if p := strings.TrimSpace(rf.FullPath); p != "" {
			r.opfPath = cleanZipPath(p)
			break
		}
	}
	if r.opfPath == "" {
		return ErrNoRootfile
	}
	r.baseDir = path.Dir(r.opfPath)
	if r.baseDir == "." {
		r.baseDir = ""
	}

	opf, err := r.readFile(r.opfPath)
	if err != nil {
		return fmt.Errorf("reading OPF %s: %w", r.opfPath, err)
	}
	if err := xml.Unmarshal(opf, &r.pkg); err != nil {
		return fmt.Errorf("parsing OPF: %w", err)
	}

	return nil
}

// Title returns the first declared title, if any.
func (r *Reader) Title() string {
	if len(r.pkg.Metadata.Title) > 0 {
		return strings.TrimSpace(r.pkg.Metadata.Title[0])
	}
	return ""
}

// Language returns the first declared language, if any.
func (r *Reader) Language() string {
	if len(r.pkg.Metadata.Language) > 0 {
		return strings.TrimSpace(r.pkg.Metadata.Language[0])
	}
	return ""
}

// Authors returns the declared creators.
func (r *Reader) Authors() []string {
	out := make([]string, 0, len(r.pkg.Metadata.Creator))
	for _, c := range r.pkg.Metadata.Creator {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return out
}

// Chapters returns the spine's content documents in reading order. Spine
// entries whose manifest item or file is missing are skipped.
func (r *Reader) Chapters() ([]Chapter, error) {
	items := make(map[string]manifestItem, len(r.pkg.Manifest.Items))
	for _, it := range r.pkg.Manifest.Items {
		items[it.ID] = it
	}

	chapters := make([]Chapter, 0, len(r.pkg.Spine.Refs))
	for i, ref := range r.pkg.Spine.Refs {
		item, ok := items[ref.IDRef]
		if !ok {
			continue
		}

		href := r.resolveHref(r.opfPath, item.Href)
		content, err := r.readFile(href)
		if err != nil {
			continue
		}

		chapters = append(chapters, Chapter{
			ID:      item.ID,
			Href:    href,
			Index:   i,
			Content: content,
		})
	}

	if len(chapters) == 0 {
		return nil, ErrEmptySpine
	}
	return chapters, nil
}

// readFile reads a zip entry by name, falling back to a case-insensitive
// scan; some real-world archives disagree with their own manifest on case.
func (r *Reader) readFile(name string) ([]byte, error) {
	for _, f := range r.z.File {
		if f.Name == name {
			return readZipEntry(f)
		}
	}

	lower := strings.ToLower(name)
	for _, f := range r.z.File {
		if strings.ToLower(f.Name) == lower {
			return readZipEntry(f)
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrMissingEntry, name)
}

func readZipEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("opening zip entry %s: %w", f.Name, err)
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// resolveHref resolves a manifest or guide href against the file that
// referenced it, stripping any fragment or query and percent-decoding.
func (r *Reader) resolveHref(base, href string) string {
	href = strings.TrimSpace(href)
	if i := strings.IndexAny(href, "#?"); i >= 0 {
		href = href[:i]
	}
	if decoded, err := url.QueryUnescape(href); err == nil {
		href = decoded
	}

	if strings.HasPrefix(href, "/") {
		return cleanZipPath(href)
	}

	dir := path.Dir(base)
	if dir == "." {
		return cleanZipPath(href)
	}
	return cleanZipPath(path.Join(dir, href))
}

// cleanZipPath normalizes separators and collapses dot segments the way zip
// entry names are stored.
func cleanZipPath(p string) string {
	p = strings.ReplaceAll(p, `\`, "/")
	p = path.Clean(p)
	p = strings.TrimPrefix(p, "/")
	if p == "." {
		return ""
	}
	return p
}
