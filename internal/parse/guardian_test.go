package parse_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/newsharvest/internal/parse"
)

const guardianListingHTML = `<!DOCTYPE html>
<html><body>
<div class="fc-container">
  <div class="fc-item">
    <a class="fc-item__link" href="https://www.theguardian.com/world/2026/aug/28/flood-recovery-update">Flood recovery update</a>
  </div>
  <div class="fc-item">
    <a class="fc-item__link" href="/technology/2026/aug/27/chip-export-rules">Chip export rules</a>
  </div>
  <div class="fc-item">
    <a class="fc-item__link" href="https://www.theguardian.com/world/europe-news">Europe news front</a>
  </div>
  <div class="fc-item">
    <a class="fc-item__link" href="https://www.theguardian.com/world/2026/aug/28/flood-recovery-update">Flood recovery update (repeat)</a>
  </div>
  <div class="fc-item">
    <a class="fc-item__link" href="https://example.com/world/2026/aug/28/elsewhere">External</a>
  </div>
</div>
</body></html>`

const guardianDetailHTML = `<!DOCTYPE html>
<html><head>
<meta property="article:published_time" content="2026-08-28T07:00:00.000Z">
<meta property="article:section" content="World news">
<meta property="og:image" content="https://i.guim.co.uk/img/media/lead.jpg">
</head><body>
<article>
  <h1>Flood recovery enters second week</h1>
  <div data-gu-name="standfirst"><p>Authorities say the cleanup will take months.</p></div>
  <div id="maincontent">
    <p>First body paragraph.</p>
    <p>Second body paragraph.</p>
  </div>
</article>
</body></html>`

func TestGuardianParseListing(t *testing.T) {
	doc, err := parse.NewDocument([]byte(guardianListingHTML), "https://www.theguardian.com/europe")
	require.NoError(t, err)

	parser := &parse.GuardianParser{}
	urls := parser.ParseListing(doc, mustParseURL(t, "https://www.theguardian.com/europe"))

	assert.Equal(t, []string{
		"https://www.theguardian.com/world/2026/aug/28/flood-recovery-update",
		"https://www.theguardian.com/technology/2026/aug/27/chip-export-rules",
	}, urls, "only dated guardian article URLs survive, once each")
}

func TestGuardianParseListingFallbackSelector(t *testing.T) {
	html := `<html><body>
<a href="/world/2026/aug/28/plain-link-story">Plain link story</a>
<a href="/world">Section front</a>
</body></html>`
	doc, err := parse.NewDocument([]byte(html), "https://www.theguardian.com/europe")
	require.NoError(t, err)

	parser := &parse.GuardianParser{}
	urls := parser.ParseListing(doc, mustParseURL(t, "https://www.theguardian.com/europe"))

	assert.Equal(t, []string{"https://www.theguardian.com/world/2026/aug/28/plain-link-story"}, urls)
}

func TestGuardianParseDetail(t *testing.T) {
	pageURL := "https://www.theguardian.com/world/2026/aug/28/flood-recovery-update"
	doc, err := parse.NewDocument([]byte(guardianDetailHTML), pageURL)
	require.NoError(t, err)

	parser := &parse.GuardianParser{}
	raw, err := parser.ParseDetail(doc, pageURL)
	require.NoError(t, err)

	assert.Equal(t, "Flood recovery enters second week", raw.Title)
	assert.Equal(t, "Authorities say the cleanup will take months.", raw.Summary)
	assert.Equal(t, []string{"First body paragraph.", "Second body paragraph."}, raw.BodyBlocks)
	assert.Equal(t, "https://i.guim.co.uk/img/media/lead.jpg", raw.ImageURL)
	assert.Equal(t, []string{"World news"}, raw.Labels)
	require.NotNil(t, raw.PublishedAt)
}

func TestGuardianParseDetailMissingTitle(t *testing.T) {
	html := `<html><body><div id="maincontent"><p>Body only.</p></div></body></html>`
	doc, err := parse.NewDocument([]byte(html), "https://www.theguardian.com/world/2026/aug/28/x")
	require.NoError(t, err)

	parser := &parse.GuardianParser{}
	_, err = parser.ParseDetail(doc, "https://www.theguardian.com/world/2026/aug/28/x")

	require.Error(t, err)
	assert.Equal(t, parse.KindMissingRequiredField, parse.KindOf(err))
}

func TestGuardianLabelsFallBackToSectionLinks(t *testing.T) {
	html := `<html><body>
<h1>Headline</h1>
<a data-link-name="article section" href="/world">World</a>
<div id="maincontent"><p>Body.</p></div>
</body></html>`
	doc, err := parse.NewDocument([]byte(html), "https://www.theguardian.com/world/2026/aug/28/x")
	require.NoError(t, err)

	parser := &parse.GuardianParser{}
	raw, err := parser.ParseDetail(doc, "https://www.theguardian.com/world/2026/aug/28/x")
	require.NoError(t, err)

	assert.Equal(t, []string{"World"}, raw.Labels)
}

func TestForSource(t *testing.T) {
	for _, slug := range []string{parse.SlugNovinky, parse.SlugPravda, parse.SlugGuardian} {
		parser, err := parse.ForSource(slug)
		require.NoError(t, err)
		assert.NotNil(t, parser)
	}

	_, err := parse.ForSource("unknown")
	assert.Error(t, err)
}
