// Package detectors holds the registry of credential signatures used by
// SecretShields. Every pattern pairs a Matcher with the metadata needed to
// mask and report what it finds: provider, severity, how many characters of
// the secret stay readable, an optional entropy floor and the detector
// category that toggles it.
package detectors
