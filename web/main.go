package main

import (
	"flag"
	"log"
	"os"

	"github.com/df07/go-recursive-raytracer/pkg/scene"
	"github.com/df07/go-recursive-raytracer/web/server"
)

func main() {
	// Parse command line flags
	port := flag.Int("port", 8080, "Port to serve on")
	scenesDir := flag.String("scenes", scene.ScriptsDir(), "Directory of .zy scene scripts")
	flag.Parse()

	webServer := server.NewServer(*port, *scenesDir)

	log.Printf("Recursive Raytracer Web Server")
	log.Printf("Visit http://localhost:%d to start rendering", *port)

	if err := webServer.Start(); err != nil {
		log.Printf("Error starting server: %v", err)
		os.Exit(1)
	}
}
