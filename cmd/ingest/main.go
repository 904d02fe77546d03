package main

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"guru-api/internal/config"
	"guru-api/internal/db"
	"guru-api/internal/helper"
	"guru-api/internal/parser"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Caller().Logger()

	cfgPath := flag.String("config", "./configs/config.yaml", "Path to the config file")
	filePath := flag.String("file", "", "Path to the source-material file to ingest")
	figuresPath := flag.String("figures", "", "Path to a figure-index spreadsheet to ingest")
	subject := flag.String("subject", "", "Subject tag for the ingested rows")
	medium := flag.String("medium", "", "Medium tag for the ingested rows")
	dryRun := flag.Bool("dry-run", false, "Parse and print, do not save to database")
	flag.Parse()

	if *subject == "" || *medium == "" {
		log.Fatal().Msg("Please provide both -subject and -medium")
	}
	if *filePath == "" && *figuresPath == "" {
		log.Fatal().Msg("Please provide -file and/or -figures")
	}

	_ = godotenv.Load()

	cfg, err := config.LoadConfig(*cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading config")
	}

	ctx := context.Background()
	batch := helper.BatchID()
	log.Info().Str("batch", batch).Msg("Starting ingest")

	var store *db.Store
	if !*dryRun {
		sqldb, err := db.ConnectDB(&cfg.Database)
		if err != nil {
			log.Fatal().Err(err).Msg("Error connecting to database")
		}
		bunDB := db.NewDB(sqldb, cfg.Database.Debug)
		store = db.NewStore(bunDB)
		defer store.Close()

		if err := db.InitDB(ctx, bunDB); err != nil {
			log.Fatal().Err(err).Msg("Error initializing database")
		}
	}

	if *filePath != "" {
		ingestPassages(ctx, store, cfg, *filePath, *subject, *medium, batch, *dryRun)
	}
	if *figuresPath != "" {
		ingestFigures(ctx, store, *figuresPath, *subject, *medium, *dryRun)
	}
}

func ingestPassages(ctx context.Context, store *db.Store, cfg *config.Config, filePath, subject, medium, batch string, dryRun bool) {
	chunks, err := parser.Parse(filePath, cfg.RAG.ChunkSize, cfg.RAG.ChunkOverlap)
	if err != nil {
		log.Fatal().Err(err).Msg("Error parsing document")
	}
	log.Info().Int("chunks", len(chunks)).Str("file", filePath).Msg("Parsed source material")

	if dryRun {
		helper.PrettyPrint(chunks)
		return
	}

	docs := make([]db.Document, len(chunks))
	for i, chunk := range chunks {
		docs[i] = db.Document{
			Content: chunk.Content,
			Metadata: map[string]string{
				"subject": subject,
				"medium":  medium,
				"source":  filepath.Base(filePath),
				"batch":   batch,
			},
		}
	}
	if err := store.StoreDocuments(ctx, docs); err != nil {
		log.Fatal().Err(err).Msg("Error storing documents")
	}
	log.Info().Int("documents", len(docs)).Msg("Stored passages")
}

func ingestFigures(ctx context.Context, store *db.Store, figuresPath, subject, medium string, dryRun bool) {
	entries, err := parser.ParseFigureIndex(figuresPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error parsing figure index")
	}
	log.Info().Int("figures", len(entries)).Str("file", figuresPath).Msg("Parsed figure index")

	if dryRun {
		helper.PrettyPrint(entries)
		return
	}

	figs := make([]db.Figure, len(entries))
	for i, entry := range entries {
		figs[i] = db.Figure{
			Subject:     subject,
			Medium:      medium,
			ImageURL:    entry.ImageURL,
			Description: entry.Description,
			PageNumber:  entry.PageNumber,
		}
	}
	if err := store.StoreFigures(ctx, figs); err != nil {
		log.Fatal().Err(err).Msg("Error storing figures")
	}
	log.Info().Int("figures", len(figs)).Msg("Stored figure records")
}
