package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/ankit-chaubey/opus-tag-surgery/core"
	"github.com/ankit-chaubey/opus-tag-surgery/core/audio"
)

func usage() {
	fmt.Println(`Usage:
  surgery view  <file.opus> [--json]
  surgery edit  <file.opus> [--out path] [--cover image] Key=Value... Key-...
  surgery strip <file.opus> [--out path] [--keep Key]... [--keep-pictures]`)
	os.Exit(1)
}

func main() {
	if len(os.Args) < 3 {
		usage()
	}

	cmd := os.Args[1]
	file := os.Args[2]
	rest := os.Args[3:]

	id, err := core.DetectFormat(file)
	if err != nil {
		log.Fatal(err)
	}
	if id != core.FmtOpus && id != core.FmtOGG {
		log.Fatal("not an Ogg audio file")
	}
	h := audio.New(id)

	switch cmd {
	case "view":
		jsonMode := hasFlag(rest, "--json")
		m, err := h.View(file)
		if err != nil {
			core.PrintError(err.Error())
			os.Exit(1)
		}
		core.NewPrinter(jsonMode).PrintMetadata(m)

	case "edit":
		opts := core.EditOptions{Set: map[string]string{}}
		outPath := flagValue(rest, "--out")
		opts.AddPicture = flagValue(rest, "--cover")
		for _, arg := range positional(rest) {
			if k, v, ok := core.ParseKV(arg); ok {
				opts.Set[k] = v
			} else if strings.HasSuffix(arg, "-") {
				opts.Delete = append(opts.Delete, strings.TrimSuffix(arg, "-"))
			} else {
				log.Fatalf("expected Key=Value or Key-, got %q", arg)
			}
		}
		if err := h.Edit(file, outPath, opts); err != nil {
			core.PrintError(err.Error())
			os.Exit(1)
		}
		core.NewPrinter(false).PrintSuccess("tags updated")

	case "strip":
		opts := core.StripOptions{KeepPictures: hasFlag(rest, "--keep-pictures")}
		outPath := flagValue(rest, "--out")
		opts.KeepFields = flagValues(rest, "--keep")
		if err := h.Strip(file, outPath, opts); err != nil {
			core.PrintError(err.Error())
			os.Exit(1)
		}
		core.NewPrinter(false).PrintSuccess("tags stripped")

	default:
		usage()
	}
}

func hasFlag(args []string, name string) bool {
	for _, a := range args {
		if a == name {
			return true
		}
	}
	return false
}

func flagValue(args []string, name string) string {
	for i, a := range args {
		if a == name && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

func flagValues(args []string, name string) []string {
	var vals []string
	for i, a := range args {
		if a == name && i+1 < len(args) {
			vals = append(vals, args[i+1])
		}
	}
	return vals
}

// positional returns the arguments that are not flags or flag values.
func positional(args []string) []string {
	var out []string
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--out", "--cover", "--keep":
			i++
		case "--json", "--keep-pictures":
		default:
			out = append(out, args[i])
		}
	}
	return out
}
