// keyctl is the client-side companion for keygate accounts. The server only
// ever sees key hashes; this tool performs the raw-key handling that
// otherwise happens inside the product's clients.
//
// Usage:
//
//	keyctl new    generate a fresh access key and print it with its hash
//	keyctl hash   read an existing access key (no echo) and print its hash
package main

import (
	"fmt"
	"os"

	"github.com/filmood/keygate/internal/common"
	"github.com/filmood/keygate/internal/keyx"
	"golang.org/x/term"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "new":
		key, err := keyx.GenerateAccessKey()
		if err != nil {
			fmt.Fprintf(os.Stderr, "keyctl: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("access key:", key)
		fmt.Println("key hash:  ", keyx.DeriveKeyHash([]byte(key)))

	case "hash":
		fmt.Fprint(os.Stderr, "Enter access key: ")
		raw, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "keyctl: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(keyx.DeriveKeyHash(raw))
		common.WipeByteArray(raw)

	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: keyctl new|hash")
}
