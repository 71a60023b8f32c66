// cmd/genhash prints a bcrypt hash for the password given as argument.
package main

import (
	"fmt"
	"os"

	"bebidaspos/internal/service"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: genhash <password>")
		os.Exit(2)
	}
	h, err := bcrypt.GenerateFromPassword([]byte(os.Args[1]), service.BcryptCost)
	if err != nil {
		panic(err)
	}
	fmt.Println(string(h))
}
