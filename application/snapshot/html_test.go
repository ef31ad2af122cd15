package snapshot

import (
	"strings"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flow_navigator/domain/entities"
)

const cakeShop = `<!doctype html>
<html>
<head><title>Cakes</title><style>.btn{}</style></head>
<body>
  <script>var tracking = "Buy now";</script>
  <nav><a href="/">Home</a></nav>
  <div class="Card product" data-testid="cake-1">
    <span>$12.00</span>
    <span>Chocolate   Fudge</span>
  </div>
  <div style="cursor: pointer">Open menu</div>
  <form id="search"><input name="q" placeholder="Search"><button type="submit">Go</button></form>
</body>
</html>`

func TestParseHTML(t *testing.T) {
	root, err := ParseHTML(strings.NewReader(cakeShop))
	require.NoError(t, err)
	require.NotNil(t, root)
	assert.Equal(t, "body", root.Tag)

	assert.NotContains(t, root.FullText, "tracking")

	var card, menu *entities.DOMNode
	for _, c := range root.Children {
		if c.Attrs["data-testid"] == "cake-1" {
			card = c
		}
		if c.DirectText == "Open menu" {
			menu = c
		}
	}
	require.NotNil(t, card)
	require.NotNil(t, menu)
	assert.True(t, card.Clickable)
	assert.True(t, menu.Clickable)
	require.Len(t, card.Children, 2)
	assert.Equal(t, "Chocolate Fudge", card.Children[1].DirectText)
}

func TestParseHTML_FeedsCollect(t *testing.T) {
	root, err := ParseHTML(strings.NewReader(cakeShop))
	require.NoError(t, err)

	logger, _ := test.NewNullLogger()
	records := NewSnapshotter(Settings{TextLimit: 150}, logger).Collect(root)

	texts := make(map[string]string)
	for _, r := range records {
		texts[r.Tag+"|"+r.Text] = r.Name
	}
	assert.Contains(t, texts, "a|Home")
	assert.Contains(t, texts, "span|Chocolate Fudge")
	assert.Contains(t, texts, "div|Open menu")
	assert.Contains(t, texts, "button|Go")
	assert.Equal(t, "q", texts["input|"])
}
