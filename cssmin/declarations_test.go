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

package cssmin

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDeclarations(t *testing.T) {
	decls := ParseDeclarations(`color: red; background: url(data:image/png;base64,AA==) no-repeat; Margin : 0 auto`)
	assert.Equal(t, []Declaration{
		{Property: "color", Value: "red"},
		{Property: "background", Value: "url(data:image/png;base64,AA==) no-repeat"},
		{Property: "margin", Value: "0 auto"},
	}, decls)

	assert.Empty(t, ParseDeclarations(""))
	assert.Empty(t, ParseDeclarations(";;"))
}

func TestSetProperty(t *testing.T) {
	tests := []struct {
		name     string
		style    string
		property string
		value    string
		want     string
	}{
		{"Append to empty", "", "display", "flex", "display: flex;"},
		{"Replace in place", "color: red; margin: 0", "color", "blue", "color: blue; margin: 0;"},
		{"Remove with empty value", "color: red; margin: 0", "color", "", "margin: 0;"},
		{"Case insensitive name", "COLOR: red", "Color", "green", "color: green;"},
		{"Append after existing", "margin: 0", "padding", "4px 8px", "margin: 0; padding: 4px 8px;"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SetProperty(tt.style, tt.property, tt.value))
		})
	}
}
