package main

import (
	"log"

	tool "github.com/minwonhaeso/esc-server/internal/tools/seed"
)

func main() {
	if err := tool.NewRootCommand().Execute(); err != nil {
		log.Fatal(err)
	}
}
