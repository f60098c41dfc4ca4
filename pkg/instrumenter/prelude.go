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

// DefaultFlushPeriodMillis is the default single-shot flush timer period.
const DefaultFlushPeriodMillis = 2000

// DefaultIngestPath is the default collector endpoint the runtime posts to.
const DefaultIngestPath = "/ingest"

// DefaultMaxSerializedBytes bounds the size of one serialised value before
// the structural-descriptor fallback substitutes a shallow summary.
const DefaultMaxSerializedBytes = 8192

// Prelude returns the JavaScript runtime library source that must be
// prepended to any bundle containing instrumented output. It defines the
// global `twiz()` entry point instrumented call sites invoke, and is
// otherwise self-contained: no dependency on any bundler global.
//
// endpoint and flushPeriodMillis configure the collector URL and flush
// cadence; a zero flushPeriodMillis selects DefaultFlushPeriodMillis.
func Prelude(endpoint string, flushPeriodMillis int) string {
	if endpoint == "" {
		endpoint = DefaultIngestPath
	}
	if flushPeriodMillis <= 0 {
		flushPeriodMillis = DefaultFlushPeriodMillis
	}
	return fmt.Sprintf(preludeTemplate, endpoint, flushPeriodMillis, DefaultMaxSerializedBytes)
}

// preludeTemplate is filled in with (endpoint, flushPeriodMillis, maxBytes).
//
// The buffer is keyed by JSON.stringify([filename, offset]) and maps to a
// Map of serialised-value-string -> provenance-or-null, giving the
// dedup-by-(filename,offset) set semantics without a nested-map lookup.
// The key is decoded with JSON.parse rather than split on a separator
// character, since filenames may contain anything a filesystem allows.
// track() records provenance in a WeakMap so a tracked object's origin
// survives being passed around without pinning it from GC.
const preludeTemplate = `
(function (global) {
  "use strict";

  if (typeof global.twiz === "function") {
    // Already installed by an earlier copy of this prelude in the same
    // bundle: redefining it would orphan anything already buffered.
    return;
  }

  var ENDPOINT = %q;
  var FLUSH_PERIOD_MS = %d;
  var MAX_SERIALIZED_BYTES = %d;

  var buffer = new Map(); // JSON.stringify([filename, offset]) -> { meta, values: Map<string, provenance> }
  var provenance = typeof WeakMap !== "undefined" ? new WeakMap() : null;
  var flushTimer = null;

  function isHostElement(value) {
    return typeof Element !== "undefined" && value instanceof Element;
  }
  function isHostEvent(value) {
    return typeof Event !== "undefined" && value instanceof Event;
  }
  function isHostNodeList(value) {
    return (typeof NodeList !== "undefined" && value instanceof NodeList) ||
      (typeof HTMLCollection !== "undefined" && value instanceof HTMLCollection);
  }
  function isDate(value) {
    return value instanceof Date;
  }
  function isRegExp(value) {
    return value instanceof RegExp;
  }

  function structuralDescriptor(value) {
    var kind = typeof value;
    var keys = [];
    if (value && kind === "object") {
      var names = Object.keys(value);
      keys = names.slice(0, 20);
    }
    var desc = { __structural: true, kind: kind, keys: keys };
    if (Array.isArray(value)) {
      desc.length = value.length;
    }
    return desc;
  }

  function safeSerialize(value, seen) {
    if (value === null || typeof value === "undefined") {
      return value === null ? null : undefined;
    }
    var t = typeof value;
    if (t === "number" || t === "string" || t === "boolean") {
      return value;
    }
    if (isHostElement(value)) {
      return "[Element: " + value.tagName + "]";
    }
    if (isHostEvent(value)) {
      return "[Event: " + value.type + "]";
    }
    if (isHostNodeList(value)) {
      return "[NodeList length=" + value.length + "]";
    }
    if (isDate(value)) {
      return "[Date: " + value.toISOString() + "]";
    }
    if (isRegExp(value)) {
      return "[RegExp: " + value.toString() + "]";
    }
    try {
      if (seen.has(value)) {
        return "[Circular Reference]";
      }
      if (t === "object" || t === "function") {
        seen.add(value);
        try {
          var out = Array.isArray(value) ? [] : {};
          for (var key in value) {
            if (!Object.prototype.hasOwnProperty.call(value, key)) continue;
            out[key] = safeSerialize(value[key], seen);
          }
          var json = JSON.stringify(out);
          if (json && json.length > MAX_SERIALIZED_BYTES) {
            return structuralDescriptor(value);
          }
          return out;
        } finally {
          seen.delete(value);
        }
      }
      return String(value);
    } catch (err) {
      return "[Serialization Error: " + (err && err.message ? err.message : String(err)) + "]";
    }
  }

  function serialize(value) {
    return safeSerialize(value, new Set());
  }

  function track(value, filename, offset) {
    if (provenance && value !== null && (typeof value === "object" || typeof value === "function")) {
      provenance.set(value, [filename, offset]);
    }
    return value;
  }

  function lookupProvenance(value) {
    if (provenance && value !== null && (typeof value === "object" || typeof value === "function")) {
      var entry = provenance.get(value);
      if (entry) return entry;
    }
    return null;
  }

  function scheduleFlush() {
    if (flushTimer !== null) return;
    flushTimer = setTimeout(flush, FLUSH_PERIOD_MS);
  }

  function flush() {
    flushTimer = null;
    if (buffer.size === 0) return;

    var pending = buffer;
    buffer = new Map();

    var records = [];
    pending.forEach(function (entry, key) {
      var parts = JSON.parse(key);
      var filename = parts[0];
      var offset = parts[1];
      var values = [];
      entry.values.forEach(function (prov, serialized) {
        values.push([JSON.parse(serialized), prov]);
      });
      records.push([filename, offset, values, entry.meta]);
    });

    if (typeof fetch !== "function") {
      // No transport available: retain the drained batch so nothing is
      // lost, and try again on the next flush cycle's schedule.
      pending.forEach(function (entry, key) {
        var existing = buffer.get(key);
        if (!existing) {
          buffer.set(key, entry);
        } else {
          entry.values.forEach(function (prov, serialized) {
            if (!existing.values.has(serialized)) existing.values.set(serialized, prov);
          });
        }
      });
      scheduleFlush();
      return;
    }

    try {
      fetch(ENDPOINT, {
        method: "POST",
        headers: { "Content-Type": "application/json" },
        body: JSON.stringify(records),
      }).catch(function () {
        // Best-effort delivery per the at-most-once-on-crash model;
        // a failed POST simply drops this batch.
      });
    } catch (err) {
      // Synchronous fetch failure (e.g. disallowed in this context):
      // drop the batch rather than throw out of instrumented code.
    }
  }

  global.twiz = function twiz(label, value, offset, filename, metadata) {
    try {
      var key = JSON.stringify([filename, offset]);
      var entry = buffer.get(key);
      if (!entry) {
        entry = { meta: metadata || {}, values: new Map() };
        buffer.set(key, entry);
      }

      var serialized = serialize(value);
      var prov = lookupProvenance(value);
      var serializedKey = JSON.stringify(serialized);
      if (!entry.values.has(serializedKey)) {
        entry.values.set(serializedKey, prov);
      }

      scheduleFlush();
    } catch (err) {
      // twiz() must never throw into instrumented code.
    }
  };

  global.__twizTrack = track;
})(typeof globalThis !== "undefined" ? globalThis : this);
`
