// Package main provides diagram generation utilities for the go-ehparse project.
//
// This application generates architectural and component diagrams for the go-ehparse
// page extraction engine using the go-diagrams library. It creates visual
// representations of the parse pipeline and package relationships to aid in
// documentation and understanding.
//
// The generated diagrams are saved as .dot files in the docs/diagrams/go-diagrams/
// directory and can be converted to various image formats using Graphviz.
//
// Usage:
//
//	go run cmd/diagrams/main.go
//
// This will generate:
//   - architecture.dot: High-level architecture showing the request and parse flow
//   - components.dot: Package relationships and dependencies
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/blushft/go-diagrams/diagram"
	"github.com/blushft/go-diagrams/nodes/generic"
	"github.com/blushft/go-diagrams/nodes/programming"
)

// main is the entry point for the diagram generation utility.
//
// This function orchestrates the entire diagram generation process:
//  1. Creates the output directory structure
//  2. Changes to the appropriate working directory
//  3. Generates architecture and component diagrams
//  4. Reports successful completion
//
// The function will terminate with log.Fatal if any critical operation fails,
// such as directory creation, navigation, or diagram rendering.
func main() {
	// Ensure output directory exists
	if err := os.MkdirAll("docs/diagrams", 0o750); err != nil {
		log.Fatal("Failed to create output directory:", err)
	}

	// Change to docs/diagrams directory
	if err := os.Chdir("docs/diagrams"); err != nil {
		log.Fatal("Failed to change directory:", err)
	}

	// Generate architecture diagram
	generateArchitectureDiagram()

	// Generate component diagram
	generateComponentDiagram()

	fmt.Println("Diagram .dot files generated successfully in ./docs/diagrams/go-diagrams/")
}

// generateArchitectureDiagram creates a high-level architecture diagram showing
// how a saved page travels from a client through the parse pipeline.
//
// The diagram illustrates:
//   - CLI and HTTP clients submitting pages
//   - the middleware chain in front of the API
//   - the DOM loader, field extractors and page parsers
//   - the message classifier and the metrics endpoint
//
// The diagram is rendered in top-to-bottom (TB) direction and saved as
// "architecture.dot" in the current working directory. The function will
// terminate the program with log.Fatal if diagram creation or rendering fails.
func generateArchitectureDiagram() {
	d, err := diagram.New(diagram.Filename("architecture"), diagram.Label("Go-EHParse Architecture"), diagram.Direction("TB"))
	if err != nil {
		log.Fatal(err)
	}

	// Define components
	cli := generic.Blank.Blank(diagram.NodeLabel("CLI\n(parse, classify)"))
	client := generic.Blank.Blank(diagram.NodeLabel("HTTP Client"))
	httpServer := programming.Language.Go(diagram.NodeLabel("HTTP Server\n(net/http ServeMux)"))
	middleware := programming.Language.Go(diagram.NodeLabel("Middleware\n(security, rate limit, logging)"))
	loader := programming.Language.Go(diagram.NodeLabel("DOM Loader\n(charset, goquery)"))
	parser := programming.Language.Go(diagram.NodeLabel("Page Parsers\n(list, gallery, mpv, ...)"))
	extract := programming.Language.Go(diagram.NodeLabel("Field Extractors\n(identity, style, script)"))
	classifier := programming.Language.Go(diagram.NodeLabel("Message Classifier\n(fuzzy)"))
	metrics := generic.Blank.Blank(diagram.NodeLabel("Metrics\n(prometheus)"))
	config := generic.Blank.Blank(diagram.NodeLabel("Configuration\n(env/godotenv)"))
	logging := generic.Blank.Blank(diagram.NodeLabel("Logging\n(logrus)"))

	// Create connections
	d.Connect(client, httpServer, diagram.Forward())
	d.Connect(httpServer, middleware, diagram.Forward())
	d.Connect(middleware, parser, diagram.Forward())
	d.Connect(middleware, classifier, diagram.Forward())
	d.Connect(cli, parser, diagram.Forward())
	d.Connect(cli, classifier, diagram.Forward())
	d.Connect(parser, loader, diagram.Forward())
	d.Connect(parser, extract, diagram.Forward())
	d.Connect(httpServer, metrics, diagram.Forward())
	d.Connect(httpServer, config, diagram.Forward())
	d.Connect(httpServer, logging, diagram.Forward())

	if err := d.Render(); err != nil {
		log.Fatal(err)
	}
}

// generateComponentDiagram creates a detailed component diagram showing the
// relationships and dependencies between the packages of the go-ehparse project.
//
// The diagram is rendered in left-to-right (LR) direction and saved as
// "components.dot" in the current working directory. The function will
// terminate the program with log.Fatal if diagram creation or rendering fails.
func generateComponentDiagram() {
	d, err := diagram.New(diagram.Filename("components"), diagram.Label("Go-EHParse Components"), diagram.Direction("LR"))
	if err != nil {
		log.Fatal(err)
	}

	// Main components
	main := programming.Language.Go(diagram.NodeLabel("main.go"))
	rootCmd := programming.Language.Go(diagram.NodeLabel("cmd/go-ehparse\nroot.go"))
	parseCmd := programming.Language.Go(diagram.NodeLabel("cmd/go-ehparse\nparse.go, classify.go"))
	serveCmd := programming.Language.Go(diagram.NodeLabel("cmd/go-ehparse\nserve.go"))
	server := programming.Language.Go(diagram.NodeLabel("internal/server\nserver.go"))

	// Services
	parserService := programming.Language.Go(diagram.NodeLabel("internal/services/parser"))
	loaderService := programming.Language.Go(diagram.NodeLabel("internal/services/loader"))
	extractService := programming.Language.Go(diagram.NodeLabel("internal/services/extract"))
	classifyService := programming.Language.Go(diagram.NodeLabel("internal/services/classify"))
	types := programming.Language.Go(diagram.NodeLabel("internal/types"))

	// Middleware
	middleware := programming.Language.Go(diagram.NodeLabel("internal/middleware\nlogging, security, ratelimit"))
	metrics := programming.Language.Go(diagram.NodeLabel("internal/metrics"))

	// Packages
	config := programming.Language.Go(diagram.NodeLabel("pkg/config\nconfig.go"))
	version := programming.Language.Go(diagram.NodeLabel("pkg/version\nversion.go"))
	man := programming.Language.Go(diagram.NodeLabel("pkg/man\nman.go"))
	logging := programming.Language.Go(diagram.NodeLabel("pkg/logging\nlogger.go"))

	// Create connections showing the flow
	d.Connect(main, rootCmd, diagram.Forward())
	d.Connect(rootCmd, parseCmd, diagram.Forward())
	d.Connect(rootCmd, serveCmd, diagram.Forward())
	d.Connect(serveCmd, server, diagram.Forward())
	d.Connect(parseCmd, parserService, diagram.Forward())
	d.Connect(parseCmd, classifyService, diagram.Forward())
	d.Connect(server, middleware, diagram.Forward())
	d.Connect(server, metrics, diagram.Forward())
	d.Connect(server, parserService, diagram.Forward())
	d.Connect(server, classifyService, diagram.Forward())
	d.Connect(parserService, loaderService, diagram.Forward())
	d.Connect(parserService, extractService, diagram.Forward())
	d.Connect(parserService, types, diagram.Forward())
	d.Connect(rootCmd, config, diagram.Forward())
	d.Connect(rootCmd, version, diagram.Forward())
	d.Connect(rootCmd, man, diagram.Forward())
	d.Connect(server, logging, diagram.Forward())

	if err := d.Render(); err != nil {
		log.Fatal(err)
	}
}
