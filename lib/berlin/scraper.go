// Package berlin bridges the Kleeblatt Berlin league pages, a secondary data
// source with no API. Standings, matchday listings and PDF report links are
// scraped from the public HTML. Read-only; nothing here touches the
// notification store.
package berlin

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/antchfx/htmlquery"
	"github.com/carlmjohnson/requests"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

type LeagueKey string

const (
	Berlinliga  LeagueKey = "berlinliga"
	Vereinsliga LeagueKey = "vereinsliga"
)

type source struct {
	Page    string
	PDFPage string
}

var leagueSources = map[LeagueKey]source{
	Berlinliga: {
		Page:    "https://kleeblatt-berlin.de/berlinliga-skb/",
		PDFPage: "https://kleeblatt-berlin.de/berlinliga-skb/auswertungen-berlinliga/",
	},
	Vereinsliga: {
		Page:    "https://kleeblatt-berlin.de/vereinsliga-skb/",
		PDFPage: "https://kleeblatt-berlin.de/vereinsliga-skb/auswertungen-vereinsliga/",
	},
}

type StandingRow struct {
	Place  string `json:"place"`
	Team   string `json:"team"`
	Games  string `json:"games"`
	MP     string `json:"mp"`
	SP     string `json:"sp"`
	Points string `json:"points"`
}

type Match struct {
	SpielNumber string `json:"spielNumber"`
	Time        string `json:"time"`
	Venue       string `json:"venue"`
	Pairing     string `json:"pairing"`
	Result      string `json:"result"`
	Note        string `json:"note,omitempty"`
}

type Matchday struct {
	Title    string  `json:"title"`
	AnchorID string  `json:"anchorId,omitempty"`
	Games    []Match `json:"games"`
}

type PDFLink struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

type LeagueData struct {
	League    LeagueKey     `json:"league"`
	Title     string        `json:"title"`
	SourceURL string        `json:"sourceUrl"`
	Standings []StandingRow `json:"standings"`
	Matchdays []Matchday    `json:"matchdays"`
	PDFLinks  []PDFLink     `json:"pdfLinks"`
	FetchedAt time.Time     `json:"fetchedAt"`
	Warnings  []string      `json:"warnings"`
}

type Scraper struct {
	log       *zap.Logger
	transport http.RoundTripper
}

func NewScraper(log *zap.Logger, transport http.RoundTripper) *Scraper {
	return &Scraper{log: log, transport: transport}
}

// Fetch scrapes one league's page and its PDF index. Sections that fail to
// parse degrade into warnings instead of failing the whole fetch.
func (s *Scraper) Fetch(ctx context.Context, league LeagueKey) (*LeagueData, error) {
	src, ok := leagueSources[league]
	if !ok {
		return nil, fmt.Errorf("unknown berlin league: %s", league)
	}

	data := &LeagueData{
		League:    league,
		SourceURL: src.Page,
		FetchedAt: time.Now().UTC(),
		Standings: []StandingRow{},
		Matchdays: []Matchday{},
		PDFLinks:  []PDFLink{},
		Warnings:  []string{},
	}

	doc, err := s.fetchPage(ctx, src.Page)
	if err != nil {
		return nil, err
	}
	data.Title = parseTitle(doc)
	data.Standings = parseStandings(doc)
	if len(data.Standings) == 0 {
		data.Warnings = append(data.Warnings, "standings table not found")
	}
	data.Matchdays = parseMatchdays(doc)
	if len(data.Matchdays) == 0 {
		data.Warnings = append(data.Warnings, "matchday sections not found")
	}

	if pdfDoc, err := s.fetchPage(ctx, src.PDFPage); err != nil {
		s.log.Sugar().Warnw("berlin pdf page fetch failed", "league", league, "err", err)
		data.Warnings = append(data.Warnings, "pdf report index unavailable")
	} else {
		data.PDFLinks = parsePDFLinks(pdfDoc, src.PDFPage)
	}

	return data, nil
}

func (s *Scraper) fetchPage(ctx context.Context, url string) (*html.Node, error) {
	var body string
	err := requests.
		URL(url).
		Transport(s.transport).
		Header("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8").
		Header("Accept-Language", "de-DE,de;q=0.8,en;q=0.6").
		Header("Referer", "https://kleeblatt-berlin.de/").
		ToString(&body).
		Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("kleeblatt fetch %s: %w", url, err)
	}
	doc, err := htmlquery.Parse(strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("kleeblatt parse %s: %w", url, err)
	}
	return doc, nil
}

func parseTitle(doc *html.Node) string {
	if h1 := htmlquery.FindOne(doc, `//h1[@id='post-title']`); h1 != nil {
		return nodeText(h1)
	}
	if title := htmlquery.FindOne(doc, `/html/head/title`); title != nil {
		return nodeText(title)
	}
	return "Berlinliga / Vereinsliga"
}

func parseStandings(doc *html.Node) []StandingRow {
	rows := []StandingRow{}
	trs := htmlquery.Find(doc, `//div[contains(@class, 'skb-liga-tabelle-container')]//tbody/tr`)
	for _, tr := range trs {
		cells := htmlquery.Find(tr, `./td`)
		if len(cells) < 6 {
			continue
		}
		rows = append(rows, StandingRow{
			Place:  nodeText(cells[0]),
			Team:   nodeText(cells[1]),
			Games:  nodeText(cells[2]),
			MP:     nodeText(cells[3]),
			SP:     nodeText(cells[4]),
			Points: nodeText(cells[5]),
		})
	}
	return rows
}

func parseMatchdays(doc *html.Node) []Matchday {
	sections := []Matchday{}
	headings := htmlquery.Find(doc, `//h3[contains(@class, 'spieltag-heading')]`)
	for _, heading := range headings {
		day := Matchday{
			Title:    nodeText(heading),
			AnchorID: htmlquery.SelectAttr(heading, "id"),
			Games:    []Match{},
		}

		list := heading.NextSibling
		for list != nil && !isElement(list, "ul") {
			list = list.NextSibling
		}
		if list == nil {
			continue
		}

		for _, item := range htmlquery.Find(list, `./li[contains(@class, 'spiel-item')]`) {
			game := Match{
				SpielNumber: findText(item, `.//span[contains(@class, 'spielnummer')]`),
				Venue:       findText(item, `.//strong`),
				Pairing:     findText(item, `.//span[contains(@class, 'spielpaarung')]`),
				Time:        parseTimeText(item),
				Result:      parseResultText(item),
			}
			if strings.Contains(nodeText(item), "Achtung: Spiel verlegt") {
				game.Note = "Achtung: Spiel verlegt"
			}
			if game.SpielNumber != "" || game.Pairing != "" || game.Result != "" {
				day.Games = append(day.Games, game)
			}
		}
		sections = append(sections, day)
	}
	return sections
}

func parseTimeText(item *html.Node) string {
	times := htmlquery.Find(item, `.//time`)
	if len(times) >= 2 {
		return nodeText(times[0]) + " -> " + nodeText(times[1])
	}
	if len(times) == 1 {
		return nodeText(times[0])
	}
	return findText(item, `.//span[contains(@class, 'spielzeit')]`)
}

func parseResultText(item *html.Node) string {
	block := htmlquery.FindOne(item, `.//div[contains(@class, 'ergebnis-info')]`)
	if block == nil {
		return ""
	}
	parts := []string{}
	for _, p := range htmlquery.Find(block, `./p`) {
		if text := nodeText(p); text != "" {
			parts = append(parts, text)
		}
	}
	if len(parts) > 0 {
		return strings.Join(parts, " | ")
	}
	return nodeText(block)
}

func parsePDFLinks(doc *html.Node, baseURL string) []PDFLink {
	links := []PDFLink{}
	seen := map[string]bool{}
	for _, a := range htmlquery.Find(doc, `//a[contains(@href, '.pdf')]`) {
		href := absoluteURL(htmlquery.SelectAttr(a, "href"), baseURL)
		if href == "" || seen[href] {
			continue
		}
		seen[href] = true
		title := nodeText(a)
		if title == "" {
			segments := strings.Split(href, "/")
			title = segments[len(segments)-1]
		}
		links = append(links, PDFLink{Title: title, URL: href})
	}
	sortNewestFirst(links)
	return links
}

// Report file names end in "-<spieltag>" before the extension; newest
// matchday first.
var spieltagSuffix = regexp.MustCompile(`-(\d{1,2})(?:_|\.|$)`)

func sortNewestFirst(links []PDFLink) {
	score := func(url string) int {
		segments := strings.Split(url, "/")
		name := segments[len(segments)-1]
		if m := spieltagSuffix.FindStringSubmatch(name); m != nil {
			n, _ := strconv.Atoi(m[1])
			return n
		}
		return -1
	}
	sort.SliceStable(links, func(i, j int) bool {
		return score(links[i].URL) > score(links[j].URL)
	})
}

var whitespace = regexp.MustCompile(`\s+`)

func nodeText(n *html.Node) string {
	if n == nil {
		return ""
	}
	buf := new(bytes.Buffer)
	dig(n, buf)
	return strings.Trim(whitespace.ReplaceAllString(buf.String(), " "), " ")
}

func dig(n *html.Node, buf *bytes.Buffer) {
	if n.Type == html.TextNode {
		buf.WriteString(n.Data)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		dig(c, buf)
	}
}

func findText(n *html.Node, xpath string) string {
	return nodeText(htmlquery.FindOne(n, xpath))
}

func isElement(n *html.Node, name string) bool {
	return n.Type == html.ElementNode && n.Data == name
}

func absoluteURL(href, base string) string {
	if href == "" {
		return ""
	}
	b, err := url.Parse(base)
	if err != nil {
		return href
	}
	h, err := url.Parse(href)
	if err != nil {
		return href
	}
	return b.ResolveReference(h).String()
}
