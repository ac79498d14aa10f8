package main

import (
	"log"

	tool "github.com/minwonhaeso/esc-server/internal/tools/loadgen"
)

func main() {
	if err := tool.NewRootCommand().Execute(); err != nil {
		log.Fatal(err)
	}
}
