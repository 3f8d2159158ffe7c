// Package sanitizer normalizes customer-supplied order data before validation and storage.
//
// All normalization functions are idempotent - applying them multiple times produces
// the same result. Functions never fail: input that cannot be normalized is returned
// trimmed so the validator can report it.
//
// Normalization includes:
//   - Phone numbers: Convert to E.164 format (+[country][number])
//   - Strings: Collapse whitespace, trim leading/trailing spaces
//   - Emails: Trim and lowercase
//   - Equipment IDs: Trim and uppercase, "tb145" becomes "TB145"
//   - Enumerations: Trim and lowercase ("Excavators" becomes "excavators")
package sanitizer
