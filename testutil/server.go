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

// Package testutil provides the fixture site shared by capture, editor and
// server tests.
package testutil

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"time"
)

// Test data shared across tests
var (
	IndexHTML = []byte(`<!DOCTYPE html>
<html>
<head>
<title>Fixture Site</title>
<link rel="stylesheet" href="/static/site.css">
<script src="/static/app.js"></script>
</head>
<body>
<header id="top"><nav><a href="/about">About</a></nav></header>
<main>
<section id="intro"><div class="card"><p>Welcome</p></div></section>
<section id="details"><p>Details</p></section>
</main>
<footer id="bottom">Footer</footer>
</body>
</html>
`)
	// DynamicHTML adds an element from script so captures can prove they
	// return the computed DOM.
	DynamicHTML = []byte(`<!DOCTYPE html>
<html>
<head><title>Dynamic</title></head>
<body>
<div id="static">Static</div>
<script>
document.addEventListener('DOMContentLoaded', function () {
  var el = document.createElement('section');
  el.id = 'injected';
  el.textContent = 'Injected by script';
  document.body.appendChild(el);
});
</script>
</body>
</html>
`)
	SiteCSS    = []byte(`body { margin: 0; background: url(img/bg.png); }`)
	AppJS      = []byte(`window.fixtureLoaded = true;`)
	RobotsFile = `
User-agent: *
Disallow: /private
`
	// Latin1HTML is served without a charset header.
	Latin1HTML = []byte("<html><head><meta charset=\"iso-8859-1\"></head><body><p>caf\xe9</p></body></html>")
)

// SlowDelay is how long /slow takes to respond.
var SlowDelay = 3 * time.Second

// Handler serves the fixture site.
func Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(IndexHTML)
	})

	mux.HandleFunc("/dynamic", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(DynamicHTML)
	})

	mux.HandleFunc("/static/site.css", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/css")
		w.Write(SiteCSS)
	})

	mux.HandleFunc("/static/app.js", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/javascript")
		w.Write(AppJS)
	})

	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(200)
		w.Write([]byte(RobotsFile))
	})

	mux.HandleFunc("/private", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html><body><p>private</p></body></html>"))
	})

	mux.HandleFunc("/latin1", func(w http.ResponseWriter, r *http.Request) {
		w.Header()["Content-Type"] = nil
		w.Write(Latin1HTML)
	})

	mux.HandleFunc("/slow", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(SlowDelay):
		case <-r.Context().Done():
			return
		}
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, "<html><body><p>slow</p></body></html>")
	})

	mux.HandleFunc("/500", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(500)
		w.Write([]byte("<p>error</p>"))
	})

	mux.HandleFunc("/user_agent", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprintf(w, "<html><body><p id=\"ua\">%s</p></body></html>", r.Header.Get("User-Agent"))
	})

	return mux
}

// NewUnstartedTestServer creates an unstarted HTTP test server with all endpoints configured
func NewUnstartedTestServer() *httptest.Server {
	return httptest.NewUnstartedServer(Handler())
}

// NewTestServer creates and starts a new HTTP test server
func NewTestServer() *httptest.Server {
	srv := NewUnstartedTestServer()
	srv.Start()
	return srv
}
