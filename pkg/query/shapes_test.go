// Copyright 2025 KrakLabs
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
//
// SPDX-License-Identifier: Apache-2.0

package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSynthesizeTypeDeclaration_RendersFields(t *testing.T) {
	decl := synthesizeTypeDeclaration("models/todo.js", "completed:boolean,description:string")

	assert.Contains(t, decl, "interface TodoShape {")
	assert.Contains(t, decl, "completed: boolean;")
	assert.Contains(t, decl, "description: string;")
}

func TestInterfaceNameFrom_StripsDirectoryAndExtension(t *testing.T) {
	assert.Equal(t, "TodoShape", interfaceNameFrom("src/models/todo.js"))
}

func TestTsTypeFor_KnownAndUnknown(t *testing.T) {
	assert.Equal(t, "string", tsTypeFor("string"))
	assert.Equal(t, "number", tsTypeFor("number"))
	assert.Equal(t, "unknown[]", tsTypeFor("array"))
	assert.Equal(t, "Record<string, unknown>", tsTypeFor("object"))
	assert.Equal(t, "unknown", tsTypeFor("function"))
}
