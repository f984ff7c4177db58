//go:build !simdebug

package simulation

// debugNumerics turns numeric anomalies and step panics into process-wide
// panics. Build with -tags simdebug to enable it.
const debugNumerics = false
