// Command hash-generator produces bcrypt hashes for seeding accounts by
// hand. Passwords are given as arguments; with -derive, a date of birth and
// mobile number are given instead and the imported-account initial password
// is derived from them first.
package main

import (
	"flag"
	"fmt"
	"os"

	"golang.org/x/crypto/bcrypt"

	"github.com/tsplhq/registration-api/internal/domain"
)

func main() {
	derive := flag.Bool("derive", false, "treat arguments as <dob> <mobile> pairs and derive the password")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "usage: hash-generator [-derive] <password>... | -derive <dob> <mobile>")
		os.Exit(2)
	}

	var passwords []string
	if *derive {
		if len(args)%2 != 0 {
			fmt.Fprintln(os.Stderr, "-derive expects <dob> <mobile> pairs")
			os.Exit(2)
		}
		for i := 0; i < len(args); i += 2 {
			passwords = append(passwords, domain.DerivePassword(args[i], args[i+1]))
		}
	} else {
		passwords = args
	}

	for _, password := range passwords {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error generating hash for %s: %v\n", password, err)
			continue
		}
		fmt.Printf("Password: %s\nHash: %s\n\n", password, string(hash))
	}
}
