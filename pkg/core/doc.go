// Package core provides a small, stable facade over the SecretShields
// detection engine for external integrations. It re-exports a narrow API
// surface so other tools can depend on a stable import path without
// importing internal packages.
//
// Example:
//
//	res := core.Scan(text, nil)
//	if res.Found() {
//		_ = core.MarshalDetections(os.Stdout, res.Detections)
//	}
package core
