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

// Package framework recognizes the site builder or JavaScript framework a
// captured page was made with.
package framework

import (
	"strings"
)

// Framework represents a web framework/platform
type Framework string

const (
	FrameworkOther     Framework = "other"
	FrameworkNextJS    Framework = "nextjs"
	FrameworkNuxtJS    Framework = "nuxtjs"
	FrameworkGatsby    Framework = "gatsby"
	FrameworkReact     Framework = "react"
	FrameworkVue       Framework = "vue"
	FrameworkAngular   Framework = "angular"
	FrameworkWordPress Framework = "wordpress"
	FrameworkWebflow   Framework = "webflow"
	FrameworkShopify   Framework = "shopify"
	FrameworkWix       Framework = "wix"
	FrameworkDrupal    Framework = "drupal"
	FrameworkJoomla    Framework = "joomla"
)

// Detection is the framework of a page and the evidence for it.
type Detection struct {
	Framework Framework `json:"id"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	// ClientRendered frameworks build the page in script. A capture is a
	// snapshot of their output, and the clone loses their interactivity.
	ClientRendered bool     `json:"clientRendered"`
	Signals        []string `json:"signals"`
}

// where a signal looks.
type where int

const (
	inHTML where = 1 << iota
	inRequests
	inEither = inHTML | inRequests
)

type signal struct {
	needle string
	in     where
	weight int
	desc   string
	// also must be present in the HTML for the signal to count.
	also []string
}

type rule struct {
	fw             Framework
	name, category string
	client         bool
	signals        []signal
}

// threshold is the score a rule needs to match.
const threshold = 3

// rules are tried in order; the first rule reaching threshold wins, so
// meta-frameworks come before the libraries they are built on.
var rules = []rule{
	{FrameworkNextJS, "Next.js", "JavaScript Framework", true, []signal{
		{needle: "/_next/static/", in: inEither, weight: 3, desc: "Found /_next/static/ in HTML or network requests"},
		{needle: `<div id="__next"`, in: inHTML, weight: 2, desc: `Found <div id="__next">`},
		{needle: "_rsc=", in: inRequests, weight: 2, desc: "Found _rsc= query params in network requests"},
		{needle: "__next_data__", in: inHTML, weight: 2, desc: "Found Next.js data script"},
	}},
	{FrameworkNuxtJS, "Nuxt.js", "JavaScript Framework", true, []signal{
		{needle: "/_nuxt/", in: inEither, weight: 3, desc: "Found /_nuxt/ in HTML or network requests"},
		{needle: `<div id="__nuxt"`, in: inHTML, weight: 2, desc: `Found <div id="__nuxt">`},
	}},
	{FrameworkWordPress, "WordPress", "CMS", false, []signal{
		{needle: "/wp-content/", in: inEither, weight: 3, desc: "Found /wp-content/ in HTML or network requests"},
		{needle: "/wp-includes/", in: inEither, weight: 2, desc: "Found /wp-includes/ in HTML or network requests"},
		{needle: `name="generator" content="wordpress`, in: inHTML, weight: 2, desc: "Found WordPress generator meta tag"},
	}},
	{FrameworkShopify, "Shopify", "E-commerce", false, []signal{
		{needle: "cdn.shopify.com", in: inEither, weight: 3, desc: "Found cdn.shopify.com in HTML or network requests"},
		{needle: "shopify.theme", in: inHTML, weight: 2, desc: "Found Shopify theme object"},
	}},
	{FrameworkWebflow, "Webflow", "No-Code Platform", false, []signal{
		{needle: "webflow.js", in: inEither, weight: 3, desc: "Found webflow.js in HTML or network requests"},
		{needle: `class="w-`, in: inHTML, weight: 2, desc: "Found Webflow w- classes"},
	}},
	{FrameworkWix, "Wix", "No-Code Platform", false, []signal{
		{needle: "wix.com", in: inEither, weight: 3, desc: "Found wix.com in HTML or network requests"},
		{needle: "data-wix-", in: inHTML, weight: 2, desc: "Found data-wix- attributes"},
	}},
	{FrameworkGatsby, "Gatsby", "Static Site Generator", true, []signal{
		{needle: "/___gatsby", in: inEither, weight: 3, desc: "Found /___gatsby in HTML or network requests"},
		{needle: "gatsby-", in: inHTML, weight: 1, desc: "Found gatsby- reference"},
	}},
	{FrameworkAngular, "Angular", "JavaScript Framework", true, []signal{
		{needle: "ng-version", in: inHTML, weight: 2, desc: "Found ng-version attribute"},
		{needle: "<app-root", in: inHTML, weight: 2, desc: "Found <app-root>"},
	}},
	{FrameworkVue, "Vue.js", "JavaScript Framework", true, []signal{
		{needle: "data-v-", in: inHTML, weight: 2, desc: "Found scoped data-v- attributes"},
		{needle: `<div id="app"`, in: inHTML, weight: 2, desc: `Found <div id="app">`, also: []string{"data-v-"}},
	}},
	{FrameworkReact, "React", "JavaScript Framework", true, []signal{
		{needle: `<div id="root"`, in: inHTML, weight: 1, desc: `Found <div id="root">`},
		{needle: "data-reactroot", in: inHTML, weight: 2, desc: "Found data-reactroot attribute"},
	}},
	{FrameworkDrupal, "Drupal", "CMS", false, []signal{
		{needle: "/sites/default/files/", in: inEither, weight: 3, desc: "Found /sites/default/files/ in HTML or network requests"},
		{needle: "drupal-settings-json", in: inHTML, weight: 2, desc: "Found Drupal settings script"},
		{needle: `name="generator" content="drupal`, in: inHTML, weight: 2, desc: "Found Drupal generator meta tag"},
	}},
	{FrameworkJoomla, "Joomla", "CMS", false, []signal{
		{needle: "/media/jui/", in: inEither, weight: 3, desc: "Found /media/jui/ in HTML or network requests"},
		{needle: `name="generator" content="joomla`, in: inHTML, weight: 2, desc: "Found Joomla generator meta tag"},
	}},
}

// Detect analyzes HTML content and the URLs the page requested. Pages
// matching no rule get FrameworkOther.
func Detect(html string, requestURLs []string) Detection {
	htmlLower := strings.ToLower(html)
	urls := strings.ToLower(strings.Join(requestURLs, " "))

	for _, r := range rules {
		score := 0
		var signals []string
		for _, s := range r.signals {
			if !s.found(htmlLower, urls) {
				continue
			}
			score += s.weight
			signals = append(signals, s.desc)
		}
		if score >= threshold {
			return Detection{
				Framework:      r.fw,
				Name:           r.name,
				Category:       r.category,
				ClientRendered: r.client,
				Signals:        signals,
			}
		}
	}
	return Detection{Framework: FrameworkOther, Name: "Other", Category: "Unknown", Signals: []string{}}
}

func (s signal) found(html, urls string) bool {
	needle := strings.ToLower(s.needle)
	hit := (s.in&inHTML != 0 && strings.Contains(html, needle)) ||
		(s.in&inRequests != 0 && strings.Contains(urls, needle))
	if !hit {
		return false
	}
	for _, a := range s.also {
		if !strings.Contains(html, a) {
			return false
		}
	}
	return true
}

// Known lists every framework Detect can report, in detection order.
func Known() []Detection {
	out := make([]Detection, 0, len(rules))
	for _, r := range rules {
		out = append(out, Detection{Framework: r.fw, Name: r.name, Category: r.category, ClientRendered: r.client})
	}
	return out
}
