//go:build unit

package commands

var RequestHashOf = calculateRequestHash
