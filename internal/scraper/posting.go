package scraper

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"job-trail/internal/config"
	"job-trail/internal/pkg/logger"

	"github.com/PuerkitoBio/goquery"
	charmLog "github.com/charmbracelet/log"
	"github.com/chromedp/chromedp"
	"github.com/gocolly/colly/v2"
)

var (
	ErrPostingUnavailable = errors.New("job posting unavailable")
	errBlockedHost        = errors.New("host is not publicly routable")
)

const (
	maxPostingBytes = 4 << 20
	maxRedirects    = 10
)

// Posting holds the descriptive fields read from a job posting page.
type Posting struct {
	Title    string
	Company  string
	Location string
	URL      string
	// TextLength is the length of the visible body text, used to spot
	// client-rendered pages.
	TextLength int
}

type PostingExtractor struct {
	userAgent string
	timeout   time.Duration
	headless  bool
	minText   int
	logger    *charmLog.Logger

	fetch  func(ctx context.Context, pageURL string) (string, error)
	render func(ctx context.Context, pageURL string) (string, error)

	lookupIP  func(ctx context.Context, host string) ([]net.IP, error)
	allowAddr func(ip net.IP) bool
}

func NewPostingExtractor(cfg config.ScraperConfig, log *charmLog.Logger) *PostingExtractor {
	e := &PostingExtractor{
		userAgent: cfg.UserAgent,
		timeout:   cfg.Timeout,
		headless:  cfg.HeadlessEnabled,
		minText:   cfg.MinTextLength,
		logger:    logger.OrDiscard(log).WithPrefix("scraper"),
	}
	if e.timeout <= 0 {
		e.timeout = 20 * time.Second
	}
	e.fetch = e.fetchStatic
	e.render = e.renderHeadless
	e.lookupIP = func(ctx context.Context, host string) ([]net.IP, error) {
		return net.DefaultResolver.LookupIP(ctx, "ip", host)
	}
	e.allowAddr = isPublicAddr
	return e
}

// Extract fetches pageURL and reads the posting. When headless rendering is
// enabled, pages whose static HTML is unusable or too short are rendered in
// a browser and parsed again.
func (e *PostingExtractor) Extract(ctx context.Context, pageURL string) (Posting, error) {
	u, err := validatePostingURL(pageURL)
	if err != nil {
		return Posting{}, err
	}

	var p Posting
	html, err := e.fetch(ctx, u)
	if errors.Is(err, errBlockedHost) {
		return Posting{}, fmt.Errorf("%w: %w", ErrPostingUnavailable, err)
	}
	if err == nil {
		p, err = ParsePosting(html, u)
	}
	if !e.headless || (err == nil && p.TextLength >= e.minText) {
		if err != nil {
			return Posting{}, fmt.Errorf("%w: %v", ErrPostingUnavailable, err)
		}
		return p, nil
	}

	e.logger.Debug("falling back to headless render", "url", u, "static_err", err, "text_length", p.TextLength)
	rendered, rerr := e.render(ctx, u)
	if rerr != nil {
		if err == nil {
			return p, nil
		}
		return Posting{}, fmt.Errorf("%w: %v", ErrPostingUnavailable, rerr)
	}
	rp, perr := ParsePosting(rendered, u)
	if perr != nil {
		if err == nil {
			return p, nil
		}
		return Posting{}, fmt.Errorf("%w: %v", ErrPostingUnavailable, perr)
	}
	return rp, nil
}

func validatePostingURL(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("%w: %q is not an http(s) url", ErrPostingUnavailable, raw)
	}
	u.Fragment = ""
	return u.String(), nil
}

// checkHost resolves the host of rawURL and refuses it unless every address
// it resolves to is public.
func (e *PostingExtractor) checkHost(ctx context.Context, rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return fmt.Errorf("%w: %q", errBlockedHost, rawURL)
	}
	_, err = e.publicAddrs(ctx, u.Hostname())
	return err
}

func (e *PostingExtractor) publicAddrs(ctx context.Context, host string) ([]net.IP, error) {
	ips := []net.IP{net.ParseIP(host)}
	if ips[0] == nil {
		var err error
		if ips, err = e.lookupIP(ctx, host); err != nil {
			return nil, err
		}
	}
	if len(ips) == 0 {
		return nil, fmt.Errorf("%w: %s has no addresses", errBlockedHost, host)
	}
	for _, ip := range ips {
		if !e.allowAddr(ip) {
			return nil, fmt.Errorf("%w: %s resolves to %s", errBlockedHost, host, ip)
		}
	}
	return ips, nil
}

// dialPublic re-resolves at connect time and dials a vetted address, so a
// DNS answer that changes after checkHost cannot reach an internal host.
func (e *PostingExtractor) dialPublic(ctx context.Context, network, addr string) (net.Conn, error) {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, err
	}
	ips, err := e.publicAddrs(ctx, host)
	if err != nil {
		return nil, err
	}
	d := net.Dialer{Timeout: e.timeout}
	var lastErr error
	for _, ip := range ips {
		conn, err := d.DialContext(ctx, network, net.JoinHostPort(ip.String(), port))
		if err == nil {
			return conn, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

var sharedAddressSpace = &net.IPNet{IP: net.IPv4(100, 64, 0, 0), Mask: net.CIDRMask(10, 32)}

func isPublicAddr(ip net.IP) bool {
	if ip == nil {
		return false
	}
	if ip4 := ip.To4(); ip4 != nil {
		if ip4[0] == 0 || sharedAddressSpace.Contains(ip4) {
			return false
		}
	}
	return !(ip.IsLoopback() || ip.IsPrivate() || ip.IsUnspecified() ||
		ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() ||
		ip.IsInterfaceLocalMulticast() || ip.IsMulticast())
}

func (e *PostingExtractor) fetchStatic(ctx context.Context, pageURL string) (string, error) {
	if err := e.checkHost(ctx, pageURL); err != nil {
		return "", err
	}

	opts := []colly.CollectorOption{colly.MaxBodySize(maxPostingBytes)}
	if host := hostFromURL(pageURL); host != "" {
		opts = append(opts, colly.AllowedDomains(host))
	}
	if e.userAgent != "" {
		opts = append(opts, colly.UserAgent(e.userAgent))
	}
	c := colly.NewCollector(opts...)
	c.SetRequestTimeout(e.timeout)
	c.WithTransport(&http.Transport{
		DialContext:           e.dialPublic,
		TLSHandshakeTimeout:   e.timeout,
		ResponseHeaderTimeout: e.timeout,
		MaxIdleConns:          1,
	})
	c.SetRedirectHandler(func(req *http.Request, via []*http.Request) error {
		if len(via) >= maxRedirects {
			return fmt.Errorf("stopped after %d redirects", maxRedirects)
		}
		return e.checkHost(req.Context(), req.URL.String())
	})

	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept", "text/html,application/xhtml+xml")
		r.Headers.Set("Accept-Language", "en-US,en;q=0.9")
		if ctx.Err() != nil {
			r.Abort()
		}
	})

	var body string
	var reqErr error
	c.OnResponse(func(r *colly.Response) {
		body = string(r.Body)
	})
	c.OnError(func(r *colly.Response, err error) {
		reqErr = err
	})

	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	if err := c.Visit(pageURL); err != nil {
		return "", err
	}
	c.Wait()
	if reqErr != nil {
		return "", reqErr
	}
	if body == "" {
		return "", errors.New("empty response body")
	}
	return body, nil
}

func (e *PostingExtractor) renderHeadless(ctx context.Context, pageURL string) (string, error) {
	if err := e.checkHost(ctx, pageURL); err != nil {
		return "", err
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if e.userAgent != "" {
		opts = append(opts, chromedp.UserAgent(e.userAgent))
	}
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()

	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	defer browserCancel()

	reqCtx, reqCancel := context.WithTimeout(browserCtx, e.timeout)
	defer reqCancel()

	var html, landed string
	err := chromedp.Run(reqCtx,
		chromedp.Navigate(pageURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(1500*time.Millisecond),
		chromedp.Location(&landed),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return "", fmt.Errorf("headless render: %w", err)
	}
	// The browser follows redirects on its own; drop pages that ended up on
	// an internal host.
	if err := e.checkHost(ctx, landed); err != nil {
		return "", err
	}
	return html, nil
}

// ParsePosting reads title, company and location from JSON-LD JobPosting
// data, then OpenGraph tags, then the document title.
func ParsePosting(html, pageURL string) (Posting, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return Posting{}, err
	}

	p := Posting{URL: pageURL}
	if canonical, ok := doc.Find(`link[rel="canonical"]`).Attr("href"); ok && strings.TrimSpace(canonical) != "" {
		p.URL = resolveURL(pageURL, canonical)
	}

	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		jp, ok := findJobPosting([]byte(s.Text()))
		if !ok {
			return true
		}
		p.Title = pickNonEmpty(p.Title, jp.title())
		p.Company = pickNonEmpty(p.Company, jp.company())
		p.Location = pickNonEmpty(p.Location, jp.location())
		return p.Title == "" || p.Company == ""
	})

	if p.Title == "" {
		p.Title = metaContent(doc, "og:title")
	}
	if p.Company == "" {
		p.Company = metaContent(doc, "og:site_name")
	}
	if p.Title == "" || p.Company == "" {
		title, company := splitDocumentTitle(doc.Find("title").First().Text())
		p.Title = pickNonEmpty(p.Title, title)
		p.Company = pickNonEmpty(p.Company, company)
	}
	if p.Company == "" {
		p.Company = hostFromURL(p.URL)
	}

	body := doc.Find("body").Clone()
	body.Find("script, style, noscript").Remove()
	p.TextLength = len(strings.Join(strings.Fields(body.Text()), " "))

	p.Title = collapse(p.Title)
	p.Company = collapse(p.Company)
	p.Location = collapse(p.Location)
	if p.Title == "" {
		return Posting{}, errors.New("no job title found")
	}
	return p, nil
}

type jsonLDPosting struct {
	Type               any               `json:"@type"`
	Title              string            `json:"title"`
	HiringOrganization json.RawMessage   `json:"hiringOrganization"`
	JobLocation        json.RawMessage   `json:"jobLocation"`
	JobLocationType    string            `json:"jobLocationType"`
	Graph              []json.RawMessage `json:"@graph"`
}

func (j jsonLDPosting) isJobPosting() bool {
	switch t := j.Type.(type) {
	case string:
		return strings.EqualFold(t, "JobPosting")
	case []any:
		for _, v := range t {
			if s, ok := v.(string); ok && strings.EqualFold(s, "JobPosting") {
				return true
			}
		}
	}
	return false
}

func (j jsonLDPosting) title() string {
	return strings.TrimSpace(j.Title)
}

func (j jsonLDPosting) company() string {
	var name string
	if json.Unmarshal(j.HiringOrganization, &name) == nil {
		return name
	}
	var org struct {
		Name string `json:"name"`
	}
	if json.Unmarshal(j.HiringOrganization, &org) == nil {
		return org.Name
	}
	return ""
}

type jsonLDPlace struct {
	Address json.RawMessage `json:"address"`
}

type jsonLDAddress struct {
	Locality string `json:"addressLocality"`
	Region   string `json:"addressRegion"`
	Country  any    `json:"addressCountry"`
}

func (j jsonLDPosting) location() string {
	places := []jsonLDPlace{}
	var one jsonLDPlace
	if json.Unmarshal(j.JobLocation, &places) != nil || len(places) == 0 {
		if json.Unmarshal(j.JobLocation, &one) == nil {
			places = []jsonLDPlace{one}
		}
	}
	for _, pl := range places {
		var text string
		if json.Unmarshal(pl.Address, &text) == nil && strings.TrimSpace(text) != "" {
			return text
		}
		var addr jsonLDAddress
		if json.Unmarshal(pl.Address, &addr) != nil {
			continue
		}
		parts := make([]string, 0, 3)
		for _, v := range []string{addr.Locality, addr.Region, countryName(addr.Country)} {
			if v = strings.TrimSpace(v); v != "" {
				parts = append(parts, v)
			}
		}
		if len(parts) > 0 {
			return strings.Join(parts, ", ")
		}
	}
	if strings.EqualFold(j.JobLocationType, "TELECOMMUTE") {
		return "Remote"
	}
	return ""
}

func countryName(v any) string {
	switch c := v.(type) {
	case string:
		return c
	case map[string]any:
		if name, ok := c["name"].(string); ok {
			return name
		}
	}
	return ""
}

// findJobPosting accepts a single object, an array of objects or an @graph
// container.
func findJobPosting(raw []byte) (jsonLDPosting, bool) {
	var many []json.RawMessage
	if err := json.Unmarshal(raw, &many); err == nil {
		for _, m := range many {
			if jp, ok := findJobPosting(m); ok {
				return jp, true
			}
		}
		return jsonLDPosting{}, false
	}

	var jp jsonLDPosting
	if err := json.Unmarshal(raw, &jp); err != nil {
		return jsonLDPosting{}, false
	}
	if jp.isJobPosting() {
		return jp, true
	}
	for _, g := range jp.Graph {
		if found, ok := findJobPosting(g); ok {
			return found, true
		}
	}
	return jsonLDPosting{}, false
}

func metaContent(doc *goquery.Document, property string) string {
	v, _ := doc.Find(fmt.Sprintf(`meta[property=%q]`, property)).Attr("content")
	return strings.TrimSpace(v)
}

// splitDocumentTitle handles "Backend Engineer - Acme" and
// "Backend Engineer | Acme | Careers".
func splitDocumentTitle(raw string) (string, string) {
	raw = collapse(raw)
	for _, sep := range []string{" | ", " - ", " – ", " at "} {
		if parts := strings.Split(raw, sep); len(parts) >= 2 {
			return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
		}
	}
	return raw, ""
}

func resolveURL(base, ref string) string {
	b, err := url.Parse(base)
	if err != nil {
		return ref
	}
	r, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return base
	}
	return b.ResolveReference(r).String()
}

func hostFromURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return ""
	}
	if h, _, err := net.SplitHostPort(u.Host); err == nil {
		return h
	}
	return u.Host
}

func pickNonEmpty(a, b string) string {
	if strings.TrimSpace(a) != "" {
		return a
	}
	return b
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
