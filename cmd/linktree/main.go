package main

import (
	"log"

	"github.com/MrSnakeDoc/linktree/internal/app"
)

func main() {
	a, err := app.New()
	if err != nil {
		log.Fatalf("❌ linktree failed to start: %v", err)
	}
	if err := a.Run(); err != nil {
		log.Fatalf("❌ linktree failed: %v", err)
	}
}
