// iiifpath inspects IIIF Image API request paths: parse, canonicalise
// and resolve them to storage keys. Paths come from arguments or, with
// none given, one per line on stdin.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"

	"github.com/openglam/tilegate/internal/iiif"
	"github.com/openglam/tilegate/internal/resolve"
)

func main() {
	os.Exit(run())
}

func run() int {
	imageTemplate := flag.String("image-template", resolve.DefaultImageTemplate, "image key template")
	infoTemplate := flag.String("info-template", resolve.DefaultInfoTemplate, "info.json key template")
	keysOnly := flag.Bool("keys", false, "print only storage keys")
	flag.Parse()

	resolver, err := resolve.New(*imageTemplate, *infoTemplate)
	if err != nil {
		fmt.Fprintf(os.Stderr, "iiifpath: %v\n", err)
		return 2
	}

	paths := flag.Args()
	if len(paths) == 0 {
		sc := bufio.NewScanner(os.Stdin)
		for sc.Scan() {
			paths = append(paths, sc.Text())
		}
		if err := sc.Err(); err != nil {
			fmt.Fprintf(os.Stderr, "iiifpath: read stdin: %v\n", err)
			return 2
		}
	}

	bad := 0
	for _, p := range paths {
		if !inspect(resolver, p, *keysOnly) {
			bad++
		}
	}
	if bad > 0 {
		return 1
	}
	return 0
}

func inspect(resolver *resolve.Resolver, path string, keysOnly bool) bool {
	req, ok := iiif.ParsePath(path)
	if !ok {
		fmt.Printf("%s\trejected\n", path)
		return false
	}

	canonical := iiif.Canonical(req)
	key, resolvable := resolver.Resolve(canonical)

	if keysOnly {
		if resolvable {
			fmt.Println(key)
		}
		return true
	}

	status := "canonical"
	if canonical != req {
		status = "redirect " + iiif.FormatPath(canonical)
	}
	if resolvable {
		fmt.Printf("%s\t%s\tkey=%s\n", path, status, key)
	} else {
		fmt.Printf("%s\t%s\tno key\n", path, status)
	}
	return true
}
