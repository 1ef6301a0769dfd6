package parse_test

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/newsharvest/internal/parse"
)

const novinkyListingHTML = `<!DOCTYPE html>
<html><body>
<div class="feed">
  <a href="/clanek/domaci-povodne-na-morave-40412345">Povodně na Moravě</a>
  <a href="https://www.novinky.cz/clanek/krimi-loupez-v-brne-40412346">Loupež v Brně</a>
  <a href="/clanek/domaci-povodne-na-morave-40412345#diskuze">Diskuze</a>
  <a href="/clanek/domaci-povodne-na-morave-40412345">Povodně na Moravě (teaser)</a>
  <a href="/sekce/domaci">Domácí</a>
  <a href="#top">Nahoru</a>
</div>
</body></html>`

const novinkyDetailHTML = `<!DOCTYPE html>
<html><head>
<meta property="og:image" content="https://d15.novinky.cz/lead.jpg">
</head><body>
<article>
  <h1>Povodně zasáhly Moravu</h1>
  <div class="perex">27. 8. 2026 · Hladiny řek na Moravě v noci prudce stouply.</div>
  <time datetime="2026-08-27T06:30:00+02:00">dnes 6:30</time>
  <div class="articleBody">
    <p>První odstavec zprávy.</p>
    <p>Druhý odstavec zprávy.</p>
  </div>
</article>
</body></html>`

func mustParseURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	parsed, err := url.Parse(raw)
	require.NoError(t, err)
	return parsed
}

func TestNovinkyParseListing(t *testing.T) {
	doc, err := parse.NewDocument([]byte(novinkyListingHTML), "https://www.novinky.cz/")
	require.NoError(t, err)

	parser := &parse.NovinkyParser{}
	urls := parser.ParseListing(doc, mustParseURL(t, "https://www.novinky.cz/"))

	assert.Equal(t, []string{
		"https://www.novinky.cz/clanek/domaci-povodne-na-morave-40412345",
		"https://www.novinky.cz/clanek/krimi-loupez-v-brne-40412346",
	}, urls, "duplicates and fragments collapse, non-article links are ignored")
}

func TestNovinkyParseDetail(t *testing.T) {
	pageURL := "https://www.novinky.cz/clanek/domaci-povodne-na-morave-40412345"
	doc, err := parse.NewDocument([]byte(novinkyDetailHTML), pageURL)
	require.NoError(t, err)

	parser := &parse.NovinkyParser{}
	raw, err := parser.ParseDetail(doc, pageURL)
	require.NoError(t, err)

	assert.Equal(t, "Povodně zasáhly Moravu", raw.Title)
	assert.Equal(t, "Hladiny řek na Moravě v noci prudce stouply.", raw.Summary,
		"date prefix before the interpunct is stripped")
	assert.Equal(t, []string{"První odstavec zprávy.", "Druhý odstavec zprávy."}, raw.BodyBlocks)
	assert.Equal(t, "https://d15.novinky.cz/lead.jpg", raw.ImageURL)
	assert.Equal(t, []string{"Domácí"}, raw.Labels, "category label derives from the URL")

	require.NotNil(t, raw.PublishedAt)
	assert.Equal(t, time.Date(2026, 8, 27, 6, 30, 0, 0, raw.PublishedAt.Location()).Unix(), raw.PublishedAt.Unix())
}

func TestNovinkyParseDetailMissingTitle(t *testing.T) {
	html := `<html><body><article><p>Text bez titulku.</p></article></body></html>`
	doc, err := parse.NewDocument([]byte(html), "https://www.novinky.cz/clanek/domaci-x-1")
	require.NoError(t, err)

	parser := &parse.NovinkyParser{}
	_, err = parser.ParseDetail(doc, "https://www.novinky.cz/clanek/domaci-x-1")

	require.Error(t, err)
	assert.Equal(t, parse.KindMissingRequiredField, parse.KindOf(err))
}

func TestNovinkyParseDetailMalformedTimestamp(t *testing.T) {
	html := `<html><body>
<h1>Titulek</h1>
<time datetime="not a date">včera</time>
<article><p>Odstavec.</p></article>
</body></html>`
	doc, err := parse.NewDocument([]byte(html), "https://www.novinky.cz/clanek/domaci-x-1")
	require.NoError(t, err)

	parser := &parse.NovinkyParser{}
	raw, err := parser.ParseDetail(doc, "https://www.novinky.cz/clanek/domaci-x-1")

	require.NoError(t, err, "a malformed timestamp must not discard the article")
	assert.Nil(t, raw.PublishedAt)
}

func TestNovinkyParseDetailNotHTML(t *testing.T) {
	doc, err := parse.NewDocument([]byte(`{"error":"service unavailable"}`), "https://www.novinky.cz/clanek/x")
	require.NoError(t, err)

	parser := &parse.NovinkyParser{}
	_, err = parser.ParseDetail(doc, "https://www.novinky.cz/clanek/x")

	require.Error(t, err)
	assert.Equal(t, parse.KindMalformedDocument, parse.KindOf(err))
}

func TestNovinkyCategoryFromURL(t *testing.T) {
	parser := &parse.NovinkyParser{}

	tests := []struct {
		name string
		url  string
		want []string
	}{
		{
			name: "known slug maps to display label",
			url:  "https://www.novinky.cz/clanek/valka-utoky-na-kyjev-40412347",
			want: []string{"Válka na Ukrajině"},
		},
		{
			name: "unknown slug falls back to raw segment",
			url:  "https://www.novinky.cz/clanek/cestovani-tipy-na-vylet-40412348",
			want: []string{"cestovani"},
		},
		{
			name: "no article path yields no label",
			url:  "https://www.novinky.cz/sekce/domaci",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			html := `<html><body><h1>Titulek</h1><article><p>Odstavec.</p></article></body></html>`
			doc, err := parse.NewDocument([]byte(html), tt.url)
			require.NoError(t, err)

			raw, err := parser.ParseDetail(doc, tt.url)
			require.NoError(t, err)
			assert.Equal(t, tt.want, raw.Labels)
		})
	}
}
