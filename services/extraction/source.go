package extraction

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/ledongthuc/pdf"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	// MaxSourceBytes caps fetched pages and uploaded PDFs
	MaxSourceBytes = 20 << 20
	minPDFText     = 50
)

// ErrBlockedAddress is returned when a source URL resolves to a loopback,
// private or link-local address
var ErrBlockedAddress = fmt.Errorf("%w: address is not publicly routable", ErrUnsupportedSource)

// Loader turns a request's content into plain text for the extractor
type Loader struct {
	httpClient *http.Client
}

// NewLoader creates a loader whose URL fetches time out after timeout and
// only connect to public addresses, redirects included
func NewLoader(timeout time.Duration) *Loader {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	dialer := &net.Dialer{
		Timeout: 10 * time.Second,
		Control: publicOnly,
	}
	return &Loader{httpClient: &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			DialContext:           dialer.DialContext,
			ForceAttemptHTTP2:     true,
			TLSHandshakeTimeout:   10 * time.Second,
			ResponseHeaderTimeout: timeout,
			MaxIdleConns:          10,
			IdleConnTimeout:       90 * time.Second,
		},
	}}
}

// publicOnly runs after DNS resolution, so it sees the address actually dialed
func publicOnly(network, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return ErrBlockedAddress
	}
	ip := net.ParseIP(host)
	if ip == nil || !isPublicIP(ip) {
		return ErrBlockedAddress
	}
	return nil
}

func isPublicIP(ip net.IP) bool {
	return !(ip.IsLoopback() ||
		ip.IsPrivate() ||
		ip.IsLinkLocalUnicast() ||
		ip.IsLinkLocalMulticast() ||
		ip.IsInterfaceLocalMulticast() ||
		ip.IsMulticast() ||
		ip.IsUnspecified())
}

// ParseSourceURL checks that raw is an absolute http(s) URL and returns it trimmed
func ParseSourceURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("%w: content must be an http(s) URL", ErrUnsupportedSource)
	}
	return u.String(), nil
}

// Load resolves the material to send for extraction. For SourcePDF the
// document bytes come from file; for SourceURL content is the address.
func (l *Loader) Load(ctx context.Context, source Source, content string, file []byte) (string, error) {
	var (
		text string
		err  error
	)
	switch source {
	case SourceText:
		text = content
	case SourceURL:
		text, err = l.fetch(ctx, content)
	case SourcePDF:
		text, err = PDFText(file)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedSource, source)
	}
	if err != nil {
		return "", err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyContent
	}
	return text, nil
}

func (l *Loader) fetch(ctx context.Context, raw string) (string, error) {
	target, err := ParseSourceURL(raw)
	if err != nil {
		return "", err
	}
	u, _ := url.Parse(target)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "enacton-training-extractor/1.0")
	req.Header.Set("Accept", "text/html,application/pdf;q=0.9,text/plain;q=0.8")

	resp, err := l.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, ErrBlockedAddress) {
			return "", fmt.Errorf("%w: %s", ErrBlockedAddress, u.Hostname())
		}
		return "", fmt.Errorf("failed to fetch %s: %w", u.Host, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("failed to fetch %s: status %d", u.Host, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxSourceBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", u.Host, err)
	}

	mediaType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	switch {
	case mediaType == "application/pdf" || bytes.HasPrefix(body, []byte("%PDF-")):
		return PDFText(body)
	case mediaType == "text/plain":
		return string(body), nil
	default:
		return HTMLText(bytes.NewReader(body))
	}
}

var blockElements = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Br: true, atom.Li: true, atom.Tr: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Section: true, atom.Article: true, atom.Header: true, atom.Footer: true,
	atom.Pre: true, atom.Blockquote: true, atom.Table: true, atom.Ul: true, atom.Ol: true,
}

var skippedElements = map[atom.Atom]bool{
	atom.Script: true, atom.Style: true, atom.Noscript: true, atom.Template: true,
	atom.Svg: true, atom.Iframe: true, atom.Nav: true,
}

var spaceRun = regexp.MustCompile(`[ \t\f\r]+`)
var blankLines = regexp.MustCompile(`\n\s*\n+`)

// HTMLText strips markup and returns the readable text of a page, one block per line
func HTMLText(r io.Reader) (string, error) {
	z := html.NewTokenizer(r)
	var sb strings.Builder
	skipDepth := 0

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if z.Err() == io.EOF {
				return collapseWhitespace(sb.String()), nil
			}
			return "", fmt.Errorf("failed to parse HTML: %w", z.Err())
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			a := atom.Lookup(name)
			if skippedElements[a] && tt == html.StartTagToken {
				skipDepth++
			}
			if blockElements[a] {
				sb.WriteByte('\n')
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			a := atom.Lookup(name)
			if skippedElements[a] && skipDepth > 0 {
				skipDepth--
			}
			if blockElements[a] {
				sb.WriteByte('\n')
			}
		case html.TextToken:
			if skipDepth > 0 {
				continue
			}
			sb.Write(z.Text())
			sb.WriteByte(' ')
		}
	}
}

func collapseWhitespace(s string) string {
	s = spaceRun.ReplaceAllString(s, " ")
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	s = strings.Join(lines, "\n")
	return strings.TrimSpace(blankLines.ReplaceAllString(s, "\n\n"))
}

// sanitizePDF truncates trailing bytes after the last %%EOF, which web
// servers sometimes append
func sanitizePDF(content []byte) []byte {
	if !bytes.HasPrefix(content, []byte("%PDF-")) {
		return content
	}
	eof := []byte("%%EOF")
	last := bytes.LastIndex(content, eof)
	if last == -1 {
		return content
	}
	end := last + len(eof)
	for end < len(content) && (content[end] == '\n' || content[end] == '\r') {
		end++
	}
	if len(content)-end > 10 {
		log.Debugf("[EXTRACTION] removing %d trailing bytes after %%%%EOF", len(content)-end)
		return content[:end]
	}
	return content
}

// PDFText extracts the text of every page, row by row
func PDFText(content []byte) (string, error) {
	if len(content) == 0 {
		return "", fmt.Errorf("%w: empty PDF", ErrEmptyContent)
	}
	content = sanitizePDF(content)

	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("failed to parse PDF: %w", err)
	}
	numPages := reader.NumPage()
	if numPages == 0 {
		return "", fmt.Errorf("%w: PDF has no pages", ErrEmptyContent)
	}

	var sb strings.Builder
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		rows, err := page.GetTextByRow()
		if err != nil {
			text, plainErr := page.GetPlainText(nil)
			if plainErr != nil {
				log.Warnf("[EXTRACTION] skipping unreadable PDF page %d: %v", i, plainErr)
				continue
			}
			sb.WriteString(text)
			sb.WriteString("\n\n")
			continue
		}

		for _, row := range rows {
			var line strings.Builder
			for _, word := range row.Content {
				line.WriteString(word.S)
			}
			if s := strings.TrimSpace(line.String()); s != "" {
				sb.WriteString(s)
				sb.WriteByte('\n')
			}
		}
		sb.WriteByte('\n')
	}

	text := strings.TrimSpace(sb.String())
	if len(text) < minPDFText {
		return "", fmt.Errorf("%w: only %d characters of text found, the PDF may be scanned", ErrEmptyContent, len(text))
	}
	log.Debugf("[EXTRACTION] extracted %d characters from %d PDF pages", len(text), numPages)
	return text, nil
}
