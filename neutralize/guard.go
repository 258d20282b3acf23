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

package neutralize

const guardScript = `(function () {
  if (window.__editorGuarded) { return; }
  window.__editorGuarded = true;
  window.addEventListener('error', function (e) { e.preventDefault(); return true; }, true);
  window.addEventListener('unhandledrejection', function (e) { e.preventDefault(); }, true);
  var empty = function (s) { return s === null || s === undefined || (typeof s === 'string' && s.trim() === ''); };
  [Document.prototype, Element.prototype, DocumentFragment.prototype].forEach(function (proto) {
    var one = proto.querySelector, all = proto.querySelectorAll;
    proto.querySelector = function (s) { return empty(s) ? null : one.call(this, s); };
    proto.querySelectorAll = function (s) {
      return empty(s) ? document.createDocumentFragment().querySelectorAll('*') : all.call(this, s);
    };
  });
})();`

// GuardScript returns the script installed as soon as the document is
// ready. It swallows uncaught errors and unhandled rejections and makes
// querySelector calls with an empty selector return no match instead of
// throwing. Installing it twice is harmless.
func GuardScript() string {
	return guardScript
}
