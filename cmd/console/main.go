package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jwebster45206/story-crafter/pkg/catalogue"
	"github.com/jwebster45206/story-crafter/pkg/character"
	"github.com/jwebster45206/story-crafter/pkg/dice"
	"github.com/jwebster45206/story-crafter/pkg/plot"
)

func main() {
	apiURL := flag.String("api", getEnv("API_BASE_URL", ""), "story API base URL; empty runs offline")
	dir := flag.String("catalogue", getEnv("CATALOGUE_DIR", ""), "catalogue directory for offline mode; empty uses the built-in one")
	seed := flag.Int64("seed", 0, "random seed for offline mode; 0 picks one")
	title := flag.String("title", "", "story title")
	themes := flag.String("themes", "", "comma-separated theme order, highest priority first")
	flag.Parse()

	backend, err := newBackend(*apiURL, *dir, *seed)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	var order []string
	if *themes != "" {
		for t := range strings.SplitSeq(*themes, ",") {
			order = append(order, strings.TrimSpace(t))
		}
	}

	story, err := backend.Create(strings.TrimSpace(*title), order)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create story: %v\n", err)
		os.Exit(1)
	}

	p := tea.NewProgram(NewConsoleUI(backend, story),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}

func newBackend(apiURL, dir string, seed int64) (Backend, error) {
	if apiURL != "" {
		client := &http.Client{Timeout: 30 * time.Second}
		if !testConnection(client, apiURL) {
			return nil, fmt.Errorf("could not connect to API at %s. Please ensure the API is running.\nTry: docker-compose up -d", apiURL)
		}
		return newAPIBackend(client, apiURL), nil
	}

	var (
		cat *catalogue.Catalogue
		err error
	)
	if dir == "" {
		cat, err = catalogue.Default()
	} else {
		cat, err = catalogue.LoadDir(dir)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load catalogue: %w", err)
	}

	src, _, err := dice.NewSource(seed)
	if err != nil {
		return nil, err
	}
	builder := plot.NewBuilder(cat.Plot, character.NewGenerator(cat.Characters))
	return newLocalBackend(builder, src), nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
