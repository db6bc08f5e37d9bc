// Package ecparams exposes the secp256k1 curve's scalar and base field
// moduli as saferith.Modulus values, for protocols that need a concrete
// modulus to reduce against rather than a full curve implementation —
// in particular pkg/compare's generic-width comparison, run with
// OrderBitLen as its width to compare values mod the curve order.
package ecparams

import (
	"github.com/cronokirby/saferith"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

var (
	order     = secp256k1.S256().N
	baseField = secp256k1.S256().P

	orderModulus     = saferith.ModulusFromBytes(order.Bytes())
	baseFieldModulus = saferith.ModulusFromBytes(baseField.Bytes())
)

// Order returns the secp256k1 scalar field modulus (the group order).
func Order() *saferith.Modulus { return orderModulus }

// BaseField returns the secp256k1 base field modulus (the prime p
// defining the curve equation).
func BaseField() *saferith.Modulus { return baseFieldModulus }

// OrderBitLen is the bit width pkg/compare's generic BatchCompare
// should be called with to compare two values modulo the curve order.
func OrderBitLen() int { return order.BitLen() }

// BaseFieldBitLen is the bit width for comparisons modulo the base
// field prime.
func BaseFieldBitLen() int { return baseField.BitLen() }
