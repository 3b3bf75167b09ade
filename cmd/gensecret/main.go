package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/spf13/pflag"
)

const defaultSecretKeyBytesLen = 32

// Prints random hex encoded value suitable for SECRET_KEY
func main() {
	n := pflag.IntP("bytes", "n", defaultSecretKeyBytesLen, "Secret key length in bytes")
	pflag.Parse()

	key, err := generate(*n)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error while generating secret key: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(key)
}

func generate(n int) (string, error) {
	if n < 16 {
		return "", fmt.Errorf("secret key must be at least 16 bytes, got %d", n)
	}

	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
