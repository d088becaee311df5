/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package main

import (
	"crypto/rand"
	"math/big"
)

const (
	codeLength  = 4
	codeLetters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// generateCode returns a string of length uppercase letters, each drawn
// independently and uniformly at random. Bytes >= 234 are rejected and
// redrawn, since 256 % 26 != 0 and a plain modulo would skew toward the
// start of the alphabet.
func generateCode(length int) string {
	const limit = 256 - 256%len(codeLetters)

	out := make([]byte, 0, length)
	buf := make([]byte, 1)

	for len(out) < length {
		if _, err := rand.Read(buf); err != nil {
			panic("crypto/rand failure: " + err.Error())
		}
		if int(buf[0]) >= limit {
			continue
		}
		out = append(out, codeLetters[int(buf[0])%len(codeLetters)])
	}

	return string(out)
}

// randomIndex returns a uniform value in [0, n).
func randomIndex(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic("crypto/rand failure: " + err.Error())
	}

	return int(v.Int64())
}
