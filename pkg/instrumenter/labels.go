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

package instrumenter

import "fmt"

// entryLabel builds the "<fn>_entry" label for a function-entry record.
func entryLabel(fnName string) string {
	return fmt.Sprintf("%s_entry", fnName)
}

// paramLabel builds the "<fn>_param_<p>" label. fnName is already fully
// composed by the caller: "constructor" for constructors, "<callee>_argN"
// for callback arguments, the declared name otherwise — so this one
// builder covers every parameter construct.
func paramLabel(fnName, paramName string) string {
	return fmt.Sprintf("%s_param_%s", fnName, paramName)
}
