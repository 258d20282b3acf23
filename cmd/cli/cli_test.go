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

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentberlin/webcloner/editor"
	"github.com/agentberlin/webcloner/internal/store"
)

const page = `<html><head><link rel="stylesheet" href="css/site.css"></head>
<body><header>Top</header><main><section><p>One</p></section></main></body></html>`

func TestOpenSessionFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "page.html")
	require.NoError(t, os.WriteFile(path, []byte(page), 0644))

	a, err := openApp(commonFlags{storePath: store.MemoryDSN, quiet: true})
	require.NoError(t, err)
	defer a.Close()

	_, err = a.openSession(context.Background(), path, "")
	assert.ErrorContains(t, err, "--base-url")

	_, err = a.openSession(context.Background(), filepath.Join(t.TempDir(), "missing.html"), "https://example.com/")
	assert.Error(t, err)

	sess, err := a.openSession(context.Background(), path, "https://example.com/blog/")
	require.NoError(t, err)
	tree, err := sess.View()
	require.NoError(t, err)
	require.Len(t, tree, 2)
	assert.Equal(t, "header", tree[0].Tag)

	res, err := a.Export(sess.ID())
	require.NoError(t, err)
	assert.Contains(t, res.HTML, "https://example.com/blog/css/site.css")
}

func TestPrintTree(t *testing.T) {
	var buf bytes.Buffer
	printTree(&buf, []*editor.TreeNode{{
		ID:    "editable-element-0",
		Label: "Main",
		Children: []*editor.TreeNode{
			{ID: "editable-element-1", Label: "Section"},
		},
	}}, 0)
	assert.Equal(t, "Main  [editable-element-0]\n  Section  [editable-element-1]\n", buf.String())
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "250ms", formatDuration(250))
	assert.Equal(t, "1.5s", formatDuration(1500))
	assert.Equal(t, "abc...", truncate("abcdefgh", 6))
}
