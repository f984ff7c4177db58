//go:build simdebug

package simulation

const debugNumerics = true
