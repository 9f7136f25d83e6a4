// Package engine contains the detection and masking logic for SecretShields.
// It runs the active detectors over a piece of text, drops allowlisted and
// low-entropy candidates, resolves overlapping matches and returns a masked
// copy together with structured detections. This package is internal;
// external consumers should use the stable facade in pkg/core.
package engine
