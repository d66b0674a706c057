// Command png2ico packs the per-resolution app icon PNGs into a single
// multi-image Windows ICO for the .exe build. The source PNGs are left
// untouched (the MSIX package uses them directly).
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/schedulehq/desktop-tools/internal/ico"
)

func main() {
	dir := flag.String("dir", ".", "directory holding <prefix>_<size>.png sources")
	out := flag.String("o", "app_icon.ico", "output ICO path")
	prefix := flag.String("prefix", "app_icon", "source file name prefix")
	sizesArg := flag.String("sizes", "", "comma-separated sizes to pack (default 256,128,64,48,36,16)")
	scale := flag.Bool("scale", false, "synthesize missing sizes from the largest source")
	check := flag.Bool("check", false, "re-parse and decode the output after writing")
	flag.Parse()

	sizes, err := parseSizes(*sizesArg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "bad -sizes: %v\n", err)
		os.Exit(2)
	}

	entries, err := ico.LoadSources(*dir, *prefix, ico.SourceOptions{
		Sizes:        sizes,
		ScaleMissing: *scale,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "load sources: %v\n", err)
		os.Exit(1)
	}
	for _, e := range entries {
		fmt.Printf("  %dx%d - %d bytes\n", e.Dim, e.Dim, len(e.Data))
	}

	if err := ico.EncodeFile(*out, entries); err != nil {
		fmt.Fprintf(os.Stderr, "write ico: %v\n", err)
		os.Exit(1)
	}

	if *check {
		data, err := os.ReadFile(*out)
		if err == nil {
			err = ico.Verify(data)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "check failed: %v\n", err)
			os.Exit(1)
		}
	}

	fmt.Printf("Created %s with %d resolutions\n", *out, len(entries))
}

func parseSizes(arg string) ([]int, error) {
	if arg == "" {
		return nil, nil
	}
	var sizes []int
	for _, part := range strings.Split(arg, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		if n < 1 || n > ico.MaxDim {
			return nil, fmt.Errorf("size %d outside [1,%d]", n, ico.MaxDim)
		}
		sizes = append(sizes, n)
	}
	return sizes, nil
}
