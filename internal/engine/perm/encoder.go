// Copyright 2025 Scenecast Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package perm holds the permission alias table and the role
// expansion table. Both trigger paths of the claims materializer
// import this single definition; changing an alias is a coordinated
// migration, never an edit in one call site.
package perm

// TableVersion identifies the alias table revision. Bump it together
// with any alias change so drifted clients can be detected.
const TableVersion = 1

// aliases maps each known permission string to its short token. The
// short form keeps the serialized claims payload inside its size
// budget.
var aliases = map[string]string{
	"*":             "*",
	"org:read":      "or",
	"org:update":    "ou",
	"org:delete":    "od",
	"member:read":   "mr",
	"member:invite": "mi",
	"member:update": "mu",
	"member:remove": "mx",
	"brand:read":    "br",
	"brand:create":  "bc",
	"brand:update":  "bu",
	"brand:delete":  "bd",
	"event:read":    "er",
	"event:create":  "ec",
	"event:update":  "eu",
	"event:delete":  "ed",
	"scene:view":    "sv",
	"scene:direct":  "sd",
}

// reverse is derived from aliases at init for Decode.
var reverse = func() map[string]string {
	m := make(map[string]string, len(aliases))
	for k, v := range aliases {
		m[v] = k
	}
	return m
}()

// Encode maps a permission string to its short token. Unknown
// permissions pass through unmodified; they serialize larger but stay
// forward-compatible.
func Encode(permission string) string {
	if alias, ok := aliases[permission]; ok {
		return alias
	}
	return permission
}

// Decode maps a short token back to the full permission string.
// Pass-through tokens come back unchanged.
func Decode(token string) string {
	if permission, ok := reverse[token]; ok {
		return permission
	}
	return token
}
