// Package sanitizer normalises user input before it is validated and stored.
//
// Helpers are plain string transforms that compose with Apply and Compose:
//
//	clean := sanitizer.Compose(sanitizer.Trim, sanitizer.NormalizeWhitespace)
//	name := clean("  Acme \t Corp ") // "Acme Corp"
//
// None of the helpers returns an error. Input that cannot be normalised is
// returned in its trimmed form and left for the validator to reject.
package sanitizer
