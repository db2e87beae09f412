package berlin

import (
	"strings"
	"testing"

	"github.com/antchfx/htmlquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func parseFixture(t *testing.T, page string) *html.Node {
	t.Helper()
	doc, err := htmlquery.Parse(strings.NewReader(page))
	require.NoError(t, err)
	return doc
}

const leaguePage = `<html><head><title>Berlinliga SKB</title></head><body>
<h1 id="post-title">  Berlinliga
	2025/26 </h1>
<div class="skb-liga-tabelle-container">
	<table>
		<thead><tr><th>Platz</th><th>Team</th><th>Sp</th><th>MP</th><th>SP</th><th>Kegel</th></tr></thead>
		<tbody>
			<tr><td>1.</td><td>KSC Nord</td><td>4</td><td>8:0</td><td>24:8</td><td>2450</td></tr>
			<tr><td>2.</td><td>BSV Mitte</td><td>4</td><td>6:2</td><td>20:12</td><td>2398</td></tr>
			<tr><td colspan="6">Stand: 14.09.2025</td></tr>
		</tbody>
	</table>
</div>
<h3 class="spieltag-heading" id="spieltag-1">1. Spieltag</h3>
<p>irrelevant paragraph between heading and list</p>
<ul>
	<li class="spiel-item">
		<span class="spielnummer">Spiel 101</span>
		<time datetime="2025-09-14T10:00">So. 10:00</time>
		<strong>Bahn Nord</strong>
		<span class="spielpaarung">KSC Nord vs BSV Mitte</span>
		<div class="ergebnis-info"><p>2450 : 2398</p><p>MP 6:2</p></div>
	</li>
	<li class="spiel-item">
		<span class="spielnummer">Spiel 102</span>
		<span class="spielzeit">14:00</span>
		<span class="spielpaarung">SV Ost vs TuS West</span>
		Achtung: Spiel verlegt
	</li>
	<li class="spiel-item"></li>
</ul>
<h3 class="spieltag-heading">2. Spieltag</h3>
</body></html>`

func TestParseTitle(t *testing.T) {
	doc := parseFixture(t, leaguePage)
	assert.Equal(t, "Berlinliga 2025/26", parseTitle(doc))

	doc = parseFixture(t, `<html><head><title>Fallback Title</title></head><body></body></html>`)
	assert.Equal(t, "Fallback Title", parseTitle(doc))
}

func TestParseStandings(t *testing.T) {
	doc := parseFixture(t, leaguePage)
	rows := parseStandings(doc)

	require.Len(t, rows, 2, "footer row with too few cells is skipped")
	assert.Equal(t, StandingRow{
		Place: "1.", Team: "KSC Nord", Games: "4", MP: "8:0", SP: "24:8", Points: "2450",
	}, rows[0])
	assert.Equal(t, "BSV Mitte", rows[1].Team)
}

func TestParseMatchdays(t *testing.T) {
	doc := parseFixture(t, leaguePage)
	days := parseMatchdays(doc)

	require.Len(t, days, 1, "heading without a following list is dropped")
	day := days[0]
	assert.Equal(t, "1. Spieltag", day.Title)
	assert.Equal(t, "spieltag-1", day.AnchorID)
	require.Len(t, day.Games, 2, "empty items are dropped")

	assert.Equal(t, Match{
		SpielNumber: "Spiel 101",
		Time:        "So. 10:00",
		Venue:       "Bahn Nord",
		Pairing:     "KSC Nord vs BSV Mitte",
		Result:      "2450 : 2398 | MP 6:2",
	}, day.Games[0])

	assert.Equal(t, "14:00", day.Games[1].Time)
	assert.Equal(t, "Achtung: Spiel verlegt", day.Games[1].Note)
	assert.Empty(t, day.Games[1].Result)
}

const pdfPage = `<html><body>
<a href="/wp-content/uploads/bericht-2.pdf">Spieltag 2</a>
<a href="https://kleeblatt-berlin.de/wp-content/uploads/bericht-10.pdf">Spieltag 10</a>
<a href="/wp-content/uploads/bericht-1.pdf"></a>
<a href="/wp-content/uploads/bericht-2.pdf">Duplicate</a>
<a href="/wp-content/uploads/readme.txt">not a report</a>
</body></html>`

func TestParsePDFLinks(t *testing.T) {
	doc := parseFixture(t, pdfPage)
	links := parsePDFLinks(doc, "https://kleeblatt-berlin.de/berlinliga-skb/auswertungen-berlinliga/")

	require.Len(t, links, 3, "duplicates and non-pdf links excluded")
	assert.Equal(t, "Spieltag 10", links[0].Title, "numeric matchday sort, not lexicographic")
	assert.Equal(t, "Spieltag 2", links[1].Title)
	assert.Equal(t, "bericht-1.pdf", links[2].Title, "anchor text falls back to the file name")

	for _, link := range links {
		assert.True(t, strings.HasPrefix(link.URL, "https://kleeblatt-berlin.de/"), link.URL)
	}
}
