// Package main generates markdown reference docs for blogadmin: the CLI
// commands, the connector resources and the configuration keys.
//
// Usage:
//
//	go run ./scripts/gendocs -gen=cli -outdir=docs/cli
//	go run ./scripts/gendocs -gen=resources -outdir=docs/resources
//	go run ./scripts/gendocs -gen=config -outdir=docs
//	go run ./scripts/gendocs -gen=all
package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"
)

var (
	genFlag    = flag.String("gen", "all", "what to generate: cli, resources, config, all")
	outDirFlag = flag.String("outdir", "", "output directory (defaults based on gen type)")
)

type generator struct {
	name   string
	subdir string
	run    func(outDir string) error
}

var generators = []generator{
	{name: "cli", subdir: "cli", run: generateCLIDocs},
	{name: "resources", subdir: "resources", run: generateResourceDocs},
	{name: "config", subdir: "", run: generateConfigDocs},
}

func main() {
	flag.Parse()

	projectRoot, err := findProjectRoot()
	if err != nil {
		log.Fatalf("failed to find project root: %v", err)
	}
	log.Printf("Project root: %s", projectRoot)

	ran := false
	for _, g := range generators {
		if *genFlag != "all" && *genFlag != g.name {
			continue
		}
		ran = true
		outDir := *outDirFlag
		if outDir == "" || *genFlag == "all" {
			outDir = filepath.Join(projectRoot, "docs", g.subdir)
		}
		if err := g.run(outDir); err != nil {
			log.Fatalf("failed to generate %s docs: %v", g.name, err)
		}
	}
	if !ran {
		log.Fatalf("unknown -gen value: %s (use: cli, resources, config, all)", *genFlag)
	}

	log.Println("Done!")
}

// findProjectRoot walks up from current directory to find go.mod.
func findProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", os.ErrNotExist
		}
		dir = parent
	}
}
