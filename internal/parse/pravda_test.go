package parse_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/newsharvest/internal/parse"
)

const pravdaListingHTML = `<!DOCTYPE html>
<html><body>
<div class="container_sub_news_list">
  <div data-vr-contentbox="" data-vr-contentbox-url="/news/2026/08/28/7523001/">
    <a href="/news/2026/08/28/7523001/">Новина перша</a>
  </div>
  <div data-vr-contentbox="">
    <a href="https://www.pravda.com.ua/news/2026/08/28/7523002/">Новина друга</a>
  </div>
  <div data-vr-contentbox="" data-vr-contentbox-url="/news/2026/08/28/7523001/">
    <a href="/news/2026/08/28/7523001/">Новина перша (повтор)</a>
  </div>
</div>
</body></html>`

const pravdaDetailHTML = `<!DOCTYPE html>
<html><head>
<meta property="article:published_time" content="2026-08-28T09:15:00+03:00">
<meta property="og:image" content="https://img.pravda.com/images/lead.jpg">
</head><body>
<article>
  <h1 class="post_title">Заголовок новини</h1>
  <div class="post_text">
    <p>Перший абзац.</p>
    <p>Другий абзац.</p>
  </div>
  <div class="post_tags">
    <a href="/tags/politika/">Політика</a>
    <a href="/tags/ekonomika/">Економіка</a>
  </div>
</article>
</body></html>`

func TestPravdaParseListing(t *testing.T) {
	doc, err := parse.NewDocument([]byte(pravdaListingHTML), "https://www.pravda.com.ua/")
	require.NoError(t, err)

	parser := &parse.PravdaParser{}
	urls := parser.ParseListing(doc, mustParseURL(t, "https://www.pravda.com.ua/"))

	assert.Equal(t, []string{
		"https://www.pravda.com.ua/news/2026/08/28/7523001/",
		"https://www.pravda.com.ua/news/2026/08/28/7523002/",
	}, urls, "contentbox URL attribute preferred, nested anchor is the fallback")
}

func TestPravdaParseDetail(t *testing.T) {
	pageURL := "https://www.pravda.com.ua/news/2026/08/28/7523001/"
	doc, err := parse.NewDocument([]byte(pravdaDetailHTML), pageURL)
	require.NoError(t, err)

	parser := &parse.PravdaParser{}
	raw, err := parser.ParseDetail(doc, pageURL)
	require.NoError(t, err)

	assert.Equal(t, "Заголовок новини", raw.Title)
	assert.Empty(t, raw.Summary, "pravda supplies no summary")
	assert.Equal(t, []string{"Перший абзац.", "Другий абзац."}, raw.BodyBlocks)
	assert.Equal(t, "https://img.pravda.com/images/lead.jpg", raw.ImageURL)
	assert.Equal(t, []string{"Політика", "Економіка"}, raw.Labels)
	require.NotNil(t, raw.PublishedAt)
}

func TestPravdaParseDetailMissingTitle(t *testing.T) {
	html := `<html><body><div class="post_text"><p>Текст.</p></div></body></html>`
	doc, err := parse.NewDocument([]byte(html), "https://www.pravda.com.ua/news/x/")
	require.NoError(t, err)

	parser := &parse.PravdaParser{}
	_, err = parser.ParseDetail(doc, "https://www.pravda.com.ua/news/x/")

	require.Error(t, err)
	assert.Equal(t, parse.KindMissingRequiredField, parse.KindOf(err))
}

func TestPravdaParseDetailTitleFallsBackToMeta(t *testing.T) {
	html := `<html><head>
<meta property="og:title" content="Заголовок з мета">
</head><body><div class="post_text"><p>Текст.</p></div></body></html>`
	doc, err := parse.NewDocument([]byte(html), "https://www.pravda.com.ua/news/x/")
	require.NoError(t, err)

	parser := &parse.PravdaParser{}
	raw, err := parser.ParseDetail(doc, "https://www.pravda.com.ua/news/x/")
	require.NoError(t, err)

	assert.Equal(t, "Заголовок з мета", raw.Title)
}
