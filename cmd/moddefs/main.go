// Package main provides the moddefs CLI for generating distribution module
// metadata descriptors from flat package-list inputs.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/ochairo/moddefs/internal/domain/entities"
	"github.com/ochairo/moddefs/internal/domain/interfaces"
	"github.com/ochairo/moddefs/internal/external-adapters/charmlog"
)

const defaultBuildsysURL = "https://buildsys.fedoraproject.org/api"

func main() {
	fs := flag.NewFlagSet("moddefs", flag.ExitOnError)
	var (
		verbose     = fs.Bool("verbose", false, "Enable debug logging")
		buildsysURL = fs.String("buildsys-url", "", "Build system endpoint URL (default: $MODDEFS_BUILDSYS_URL)")
		cacheFile   = fs.String("cache-file", "references.cache", "Reference cache file, relative to the working directory")
	)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: moddefs [options] <base-dir>

Generate module metadata descriptors from the package lists under <base-dir>.

The last segment of <base-dir> selects what is emitted:
  .../bootstrap     emit only the bootstrap module
  .../atomic        emit only the atomic module
  anything else     emit host, shim and platform together

Options:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing flags: %v\n", err)
		os.Exit(2)
	}

	if fs.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "Error: exactly one base directory is required\n\n")
		fs.Usage()
		os.Exit(2)
	}

	baseDir := fs.Arg(0)
	info, err := os.Stat(baseDir)
	if err != nil || !info.IsDir() {
		fmt.Fprintf(os.Stderr, "Error: %s is not a directory\n\n", baseDir)
		fs.Usage()
		os.Exit(2)
	}

	url := *buildsysURL
	if url == "" {
		url = os.Getenv("MODDEFS_BUILDSYS_URL")
	}
	if url == "" {
		url = defaultBuildsysURL
	}

	mode := entities.ModeFromPath(baseDir)
	logger := charmlog.New(*verbose)
	logger.Debug("run configured",
		interfaces.F("mode", mode),
		interfaces.F("base_dir", baseDir),
		interfaces.F("buildsys_url", url))

	if err := runGenerate(context.Background(), baseDir, mode, url, *cacheFile, logger); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
