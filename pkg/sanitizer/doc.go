// Package sanitizer normalizes free-form booking input before validation and storage.
//
// Every function is idempotent and never fails: unusable input comes back as an
// empty string so the validator can reject it with a field-level message.
//
//   - Phone numbers: E.164 (+[country][number]), parsed against a default region
//   - Emails: trimmed and lowercased
//   - Text: whitespace collapsed, leading/trailing spaces removed
//   - Labels: collapsed and lowercased, e.g. " Wedding  Reception " becomes "wedding reception"
package sanitizer
