//go:build production

package api

// Dev credentials are compiled out of production builds.
const devAuthCompiled = false
