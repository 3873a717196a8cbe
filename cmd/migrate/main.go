package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"strings"

	"calcdash/domain/dashboard"
	"calcdash/internal/config"
	"calcdash/internal/container"

	"github.com/joho/godotenv"
)

// migrate creates the schema on the configured database and, given a
// directory, imports section payloads from <section>.json files in it.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()
	c, err := container.New(cfg)
	if err != nil {
		log.Fatalf("Failed to create application container: %v", err)
	}
	// Init runs the migrations
	if err := c.Init(ctx); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer c.Shutdown(ctx)
	log.Printf("Schema ready on %s database", cfg.Database.Driver)

	if len(os.Args) < 2 {
		return
	}
	sectionsDir := os.Args[1]

	files, err := findSectionFiles(sectionsDir)
	if err != nil {
		log.Fatalf("Failed to find section files: %v", err)
	}
	log.Printf("Found %d section files to import", len(files))

	imported := 0
	skipped := 0
	for sec, file := range files {
		raw, err := os.ReadFile(file)
		if err != nil {
			log.Printf("Failed to read %s: %v", file, err)
			skipped++
			continue
		}

		if err := importSection(ctx, c, sec, raw); err != nil {
			log.Printf("Failed to import %s from %s: %v", sec, filepath.Base(file), err)
			skipped++
			continue
		}
		imported++
		log.Printf("Imported %s from %s", sec, filepath.Base(file))
	}

	log.Printf("Import complete: %d imported, %d skipped", imported, skipped)
}

// findSectionFiles maps every known section to its <section>.json file in dir.
func findSectionFiles(dir string) (map[dashboard.Section]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	files := map[dashboard.Section]string{}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		sec, ok := dashboard.ParseSection(strings.TrimSuffix(entry.Name(), ".json"))
		if !ok {
			log.Printf("Skipping %s: not a dashboard section", entry.Name())
			continue
		}
		files[sec] = filepath.Join(dir, entry.Name())
	}
	return files, nil
}

// importSection saves editable sections through the sanitizer. state_data is
// not editable, so it is only checked to decode before it is stored.
func importSection(ctx context.Context, c *container.Container, sec dashboard.Section, raw []byte) error {
	if sec.Editable() {
		_, err := c.Dashboard.SaveSection(ctx, string(sec), raw)
		return err
	}

	var states []dashboard.StateEntry
	if err := json.Unmarshal(raw, &states); err != nil {
		return err
	}
	return c.Sections.Save(ctx, sec, states)
}
