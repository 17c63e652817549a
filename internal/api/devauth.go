//go:build !production

package api

const devAuthCompiled = true
