package main

import (
	"flag"
	"fmt"
	"os"
)

const dictUsage = `proofctl dict - user dictionary maintenance

Usage:
  proofctl dict list
  proofctl dict add <word>...
  proofctl dict remove <word>...

The daemon watches the dictionary file and picks changes up live.
`

func runDict() {
	fs := flag.NewFlagSet("dict", flag.ExitOnError)
	fs.Usage = func() { fmt.Print(dictUsage) }
	fs.Parse(os.Args[1:])

	args := fs.Args()
	if len(args) == 0 {
		fmt.Print(dictUsage)
		os.Exit(0)
	}

	d := openDict()
	defer d.Close()

	switch args[0] {
	case "list":
		for _, w := range d.Words() {
			fmt.Println(w)
		}
		fmt.Fprintf(os.Stderr, "%d words\n", d.Len())

	case "add":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "error: add needs at least one word")
			os.Exit(1)
		}
		for _, w := range args[1:] {
			if err := d.Add(w); err != nil {
				fmt.Fprintf(os.Stderr, "error adding %q: %v\n", w, err)
				os.Exit(1)
			}
		}

	case "remove":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "error: remove needs at least one word")
			os.Exit(1)
		}
		for _, w := range args[1:] {
			if err := d.Remove(w); err != nil {
				fmt.Fprintf(os.Stderr, "error removing %q: %v\n", w, err)
				os.Exit(1)
			}
		}

	default:
		fmt.Fprintf(os.Stderr, "proofctl dict: unknown subcommand %q\n\n", args[0])
		fmt.Print(dictUsage)
		os.Exit(1)
	}
}
