package catalog

import (
	"bytes"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"

	"github.com/use-agent/bookmeta/models"
)

// Detail page selectors.
var (
	selTitle     = cascadia.MustCompile(`span[property="v:itemreviewed"]`)
	selInfo      = cascadia.MustCompile(`#info`)
	selLabel     = cascadia.MustCompile(`span.pl`)
	selRating    = cascadia.MustCompile(`strong.rating_num`)
	selCoverImg  = cascadia.MustCompile(`a.nbg img`)
	selCoverLink = cascadia.MustCompile(`a.nbg[href]`)
	selLink      = cascadia.MustCompile(`a`)
)

// Search result selectors, tried in order. The first is the book site's own
// search page (rendered client side); the second is the site-wide search.
// Links elsewhere on the page (nav, sidebar, ads) are never results.
var searchSelectors = []cascadia.Selector{
	cascadia.MustCompile(`a.title-text[href]`),
	cascadia.MustCompile(`.result .title a[href]`),
}

// Info block labels.
const (
	labelAuthor    = "作者"
	labelPublisher = "出版社"
	labelPubDate   = "出版年"
	labelISBN      = "ISBN"
)

var reSubject = regexp.MustCompile(`/subject/(\d+)/?`)

// infoPatterns read a label's value straight from the #info text. Used when
// the node walk finds nothing, e.g. when the label and value share a text node.
var infoPatterns = map[string]*regexp.Regexp{
	labelPublisher: regexp.MustCompile(`(?m)出版社\s*[:：]\s*(\S.*?)\s*$`),
	labelPubDate:   regexp.MustCompile(`(?m)出版年\s*[:：]\s*(\S.*?)\s*$`),
	labelISBN:      regexp.MustCompile(`(?m)ISBN\s*[:：]\s*([0-9Xx-]+)`),
}

// coverSizes rewrites small and medium cover paths to the large variant.
var coverSizes = strings.NewReplacer(
	"/spic/", "/lpic/",
	"/mpic/", "/lpic/",
	"/view/subject/s/", "/view/subject/l/",
	"/view/subject/m/", "/view/subject/l/",
)

// LargeCover returns the large-image URL for a cover URL of any size.
func LargeCover(coverURL string) string {
	return coverSizes.Replace(coverURL)
}

// ParseBook extracts a BookRecord from a detail page. It never fails on
// missing fields; the caller decides whether an empty title means "not found".
func ParseBook(page []byte, pageURL string) (models.BookRecord, error) {
	rec := models.NewBookRecord()
	rec.SourceURL = pageURL

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return rec, err
	}

	rec.Title = normSpace(doc.FindMatcher(selTitle).First().Text())
	rec.Rating = normSpace(doc.FindMatcher(selRating).First().Text())

	info := doc.FindMatcher(selInfo).First()
	infoText := info.Text()

	if label := findLabel(info, labelAuthor); label != nil {
		rec.Authors = collectLinks(label)
		if len(rec.Authors) == 0 {
			rec.Authors = splitNames(valueAfter(label))
		}
	}
	rec.Publisher = infoValue(info, infoText, labelPublisher)
	rec.PubDate = infoValue(info, infoText, labelPubDate)
	rec.ISBN = infoValue(info, infoText, labelISBN)

	rec.CoverURL = coverURL(doc, pageURL)
	return rec, nil
}

// ParseSearch returns the detail page URL of the first search result that
// points at a subject on bookHost. An empty bookHost accepts any host.
func ParseSearch(page []byte, pageURL, bookHost string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return "", err
	}

	for _, sel := range searchSelectors {
		var found string
		doc.FindMatcher(sel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			href := unwrapRedirect(resolveURL(pageURL, s.AttrOr("href", "")))
			if isSubjectOn(href, bookHost) {
				found = href
				return false
			}
			return true
		})
		if found != "" {
			return found, nil
		}
	}
	return "", models.NotFound("no search results")
}

// isSubjectOn reports whether href is a subject page on host.
func isSubjectOn(href, host string) bool {
	u, err := url.Parse(href)
	if err != nil || !reSubject.MatchString(u.Path) {
		return false
	}
	return host == "" || strings.EqualFold(u.Hostname(), host)
}

// findLabel returns the span.pl node inside #info whose text names label.
func findLabel(info *goquery.Selection, label string) *html.Node {
	var node *html.Node
	info.FindMatcher(selLabel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if normLabel(s.Text()) == label {
			node = s.Nodes[0]
			return false
		}
		return true
	})
	return node
}

// infoValue reads the value after label, falling back to a regex over the
// #info text.
func infoValue(info *goquery.Selection, infoText, label string) string {
	if n := findLabel(info, label); n != nil {
		if v := valueAfter(n); v != "" {
			return v
		}
	}
	if re, ok := infoPatterns[label]; ok {
		if m := re.FindStringSubmatch(infoText); m != nil {
			return normSpace(m[1])
		}
	}
	return ""
}

// valueAfter concatenates the text of label's following siblings up to the
// next <br> or label.
func valueAfter(label *html.Node) string {
	var b strings.Builder
	eachValueNode(label, func(n *html.Node) {
		nodeText(n, &b)
		b.WriteByte(' ')
	})
	return trimValue(b.String())
}

// collectLinks returns the text of every link among label's value nodes.
func collectLinks(label *html.Node) []string {
	names := []string{}
	eachValueNode(label, func(n *html.Node) {
		if n.Type != html.ElementNode {
			return
		}
		if n.Data == "a" {
			if name := linkText(n); name != "" {
				names = append(names, name)
			}
			return
		}
		for _, a := range cascadia.QueryAll(n, selLink) {
			if name := linkText(a); name != "" {
				names = append(names, name)
			}
		}
	})
	return names
}

func linkText(n *html.Node) string {
	var b strings.Builder
	nodeText(n, &b)
	return normSpace(b.String())
}

func eachValueNode(label *html.Node, fn func(*html.Node)) {
	for n := label.NextSibling; n != nil; n = n.NextSibling {
		if n.Type == html.ElementNode && (n.Data == "br" || selLabel.Match(n)) {
			return
		}
		fn(n)
	}
}

func nodeText(n *html.Node, b *strings.Builder) {
	if n.Type == html.TextNode {
		b.WriteString(n.Data)
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		nodeText(c, b)
	}
}

// splitNames splits a plain-text author list such as "A / B".
func splitNames(s string) []string {
	names := []string{}
	for _, part := range strings.Split(s, "/") {
		if p := normSpace(part); p != "" {
			names = append(names, p)
		}
	}
	return names
}

func coverURL(doc *goquery.Document, pageURL string) string {
	src := ""
	if img := doc.FindMatcher(selCoverImg).First(); img.Length() > 0 {
		src = img.AttrOr("data-src", "")
		if src == "" {
			src = img.AttrOr("src", "")
		}
	}
	if src == "" {
		src = doc.FindMatcher(selCoverLink).First().AttrOr("href", "")
	}
	if src = resolveURL(pageURL, src); src == "" {
		return ""
	}
	return LargeCover(src)
}

// unwrapRedirect returns the target of a site-wide search click-through link.
func unwrapRedirect(href string) string {
	u, err := url.Parse(href)
	if err != nil || !strings.HasPrefix(u.Path, "/link2") {
		return href
	}
	if target := u.Query().Get("url"); target != "" {
		return target
	}
	return href
}

func resolveURL(base, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "//") {
		return "https:" + href
	}
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	bu, err := url.Parse(base)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return bu.ResolveReference(ref).String()
}

func normSpace(s string) string { return strings.Join(strings.Fields(s), " ") }

func normLabel(s string) string {
	s = normSpace(s)
	s = strings.TrimSuffix(s, ":")
	s = strings.TrimSuffix(s, "：")
	return strings.TrimSpace(s)
}

func trimValue(s string) string {
	s = normSpace(s)
	s = strings.TrimLeft(s, ":：")
	return strings.TrimSpace(s)
}
