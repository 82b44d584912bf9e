// Package ir provides the declarative intermediate representation for flowc.
//
// This package contains type definitions and pure helpers only. All other
// internal packages import ir; ir imports nothing internal. This keeps the IR
// the foundational layer with no circular dependencies.
//
// Key design constraints:
//   - The IR expresses intent only: no plugin bindings, no step ids, no
//     execution tokens (see ForbiddenTokens)
//   - Variable references use {{name}} or {{name.prop}} exclusively
//   - All JSON tags use snake_case
//   - Canonical JSON (sorted keys, NFC strings) is the only serialization
//     used for fingerprints
package ir
