package main

import (
	"flag"
	"log"
	"os"

	"github.com/df07/go-progressive-pathtracer/web/server"
)

func main() {
	port := flag.Int("port", 8080, "Port to serve on")
	flag.Parse()

	log.Printf("Progressive Path Tracer preview server")
	log.Printf("Render sessions: ws://localhost:%d/ws/render?scene=cornell&codec=png", *port)
	log.Printf("Scene list: http://localhost:%d/api/scenes", *port)

	if err := server.NewServer(*port).Start(); err != nil {
		log.Printf("Server stopped: %v", err)
		os.Exit(1)
	}
}
