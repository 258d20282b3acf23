// Copyright 2025 Agentic World, LLC (Sherin Thomas)
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package sandbox

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentberlin/webcloner/indexer"
)

const page = `<!doctype html>
<html>
<head>
	<title>Demo</title>
	<link rel="stylesheet" href="/css/site.css">
	<link rel="icon" href="favicon.ico">
	<script src="js/app.js"></script>
	<style>.hero{background:url(img/hero.png)}</style>
</head>
<body>
	<div class="hero" style="background-image:url('../bg.jpg')"><p>Hello</p></div>
	<img src="logo.png">
</body>
</html>`

func TestLoadAbsolutizesAssets(t *testing.T) {
	h, err := Load(page, "https://example.com/blog/post")
	require.NoError(t, err)
	doc := h.Document()

	assert.Equal(t, "https://example.com/css/site.css", doc.Find("link[rel=stylesheet]").AttrOr("href", ""))
	assert.Equal(t, "favicon.ico", doc.Find("link[rel=icon]").AttrOr("href", ""), "only stylesheets are rewritten")
	assert.Equal(t, "https://example.com/blog/js/app.js", doc.Find(`script[src*="app.js"]`).AttrOr("src", ""))
	assert.Contains(t, doc.Find("style").Text(), "url(https://example.com/blog/img/hero.png)")
	assert.Contains(t, doc.Find("div.hero").AttrOr("style", ""), "url(https://example.com/bg.jpg)")
	assert.Equal(t, "logo.png", doc.Find("img").AttrOr("src", ""))
}

func TestLoadDropsEditorAttributes(t *testing.T) {
	src := `<body><div data-editor-id="editable-element-1" data-editor-locked="true" id="keep"></div></body>`
	h, err := Load(src, "")
	require.NoError(t, err)

	div := h.Document().Find("#keep")
	require.Equal(t, 1, div.Length())
	_, hasID := div.Attr(indexer.Attr)
	assert.False(t, hasID)
	_, hasLock := div.Attr("data-editor-locked")
	assert.False(t, hasLock)
}

func TestLoadInsertsBaseFirst(t *testing.T) {
	h, err := Load(page, "https://example.com/blog/post")
	require.NoError(t, err)

	head := h.Document().Find("head").Children()
	assert.Equal(t, "base", goquery.NodeName(head.First()))
	assert.Equal(t, "https://example.com/blog/post", head.First().AttrOr("href", ""))
	assert.Equal(t, 1, h.Document().Find("base").Length())
}

func TestLoadRepointsExistingBase(t *testing.T) {
	src := `<html><head><meta charset="utf-8"><base href="/old/"><base href="/another/"></head><body></body></html>`
	h, err := Load(src, "https://example.com/new/")
	require.NoError(t, err)

	bases := h.Document().Find("base")
	require.Equal(t, 1, bases.Length())
	assert.Equal(t, "https://example.com/new/", bases.AttrOr("href", ""))
	assert.Equal(t, "meta", goquery.NodeName(h.Document().Find("head").Children().First()), "an existing base keeps its position")
}

func TestLoadInjectsBaselineScript(t *testing.T) {
	h, err := Load(page, "https://example.com/")
	require.NoError(t, err)

	injected := h.Document().Find("[" + InjectedAttr + "]")
	require.Equal(t, 1, injected.Length())
	assert.Equal(t, DefaultBaselineScript, injected.AttrOr("src", ""))
	assert.Equal(t, "base", goquery.NodeName(injected.Prev()))

	withJQuery := `<html><head><script src="/static/jQuery.min.js"></script></head><body></body></html>`
	h, err = Load(withJQuery, "https://example.com/")
	require.NoError(t, err)
	assert.Equal(t, 0, h.Document().Find("["+InjectedAttr+"]").Length())

	h, err = Load(page, "https://example.com/", Options{})
	require.NoError(t, err)
	assert.Equal(t, 0, h.Document().Find("["+InjectedAttr+"]").Length())
}

func TestLoadEmptyDocument(t *testing.T) {
	h, err := Load("", "")
	require.NoError(t, err)
	require.NotNil(t, h.Root())
	assert.Equal(t, "body", h.Root().Data)
	assert.Equal(t, 0, h.Document().Find("base").Length())
}

func TestLoadInvalidBaseURL(t *testing.T) {
	_, err := Load(page, "http://[::1")
	assert.ErrorIs(t, err, ErrInvalidBaseURL)
}

func TestReadyFiresOnce(t *testing.T) {
	h, err := Load(page, "")
	require.NoError(t, err)
	assert.False(t, h.IsReady())

	h.MarkReady()
	h.MarkReady()
	assert.True(t, h.IsReady())
	select {
	case <-h.Ready():
	default:
		t.Fatal("ready channel should be closed")
	}
}

func TestSerializeRoundTrip(t *testing.T) {
	const base = "https://example.com/blog/post"
	h, err := Load(page, base)
	require.NoError(t, err)
	// Tag every element like the editor would.
	indexer.New(nil).BuildTree(h.Root())

	out, err := Serialize(h, base)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "<!DOCTYPE html>"))
	assert.NotContains(t, out, indexer.Attr)
	assert.NotContains(t, out, DefaultBaselineScript)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, base, doc.Find("head").Children().First().AttrOr("href", ""))
	assert.Equal(t, "Hello", doc.Find("div.hero p").Text())
	assert.Equal(t, "logo.png", doc.Find("img").AttrOr("src", ""))
	assert.Equal(t, "https://example.com/css/site.css", doc.Find("link[rel=stylesheet]").AttrOr("href", ""))

	// The live document still carries editor ids.
	_, tagged := h.Document().Find("div.hero").Attr(indexer.Attr)
	assert.True(t, tagged)
}

func TestSerializeAddsMissingBase(t *testing.T) {
	h, err := Load(`<html><head><title>x</title></head><body><p>x</p></body></html>`, "")
	require.NoError(t, err)
	out, err := Serialize(h, "https://example.org/")
	require.NoError(t, err)
	assert.Contains(t, out, `<head><base href="https://example.org/"/><title>`)
}

func TestDownloadName(t *testing.T) {
	assert.True(t, strings.HasPrefix(DownloadName("https://example.com/"), "example"))
	assert.Equal(t, "cloned-page.html", DownloadName(""))
	name := DownloadName("https://example.com/blog/My Post")
	assert.True(t, strings.HasSuffix(name, ".html"))
	assert.NotContains(t, name, " ")
	assert.NotContains(t, name, "/")
}

func TestDecode(t *testing.T) {
	latin1 := []byte("<html><body>caf\xe9</body></html>")
	out, err := Decode(latin1, "text/html; charset=iso-8859-1")
	require.NoError(t, err)
	assert.Contains(t, out, "café")

	meta := []byte(`<html><head><meta charset="iso-8859-1"></head><body>caf` + "\xe9" + `</body></html>`)
	out, err = Decode(meta, "")
	require.NoError(t, err)
	assert.Contains(t, out, "café")

	utf8 := []byte("<html><body>café</body></html>")
	out, err = Decode(utf8, "text/html; charset=utf-8")
	require.NoError(t, err)
	assert.Equal(t, string(utf8), out)
}
