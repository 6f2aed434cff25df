// Generates a random secret key suitable for the SECRET_KEY setting.
package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/spf13/pflag"
)

func main() {
	length := pflag.IntP("length", "n", 32, "Secret key length in bytes")
	pflag.Parse()

	b := make([]byte, *length)

	_, err := rand.Read(b)
	if err != nil {
		fmt.Printf("error while generating secret key: %v", err)
		os.Exit(1)
	}

	fmt.Println(hex.EncodeToString(b))
}
