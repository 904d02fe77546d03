package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"guru-api/internal/config"
	"guru-api/internal/db"
	"guru-api/internal/keys"
	"guru-api/internal/llm"
	"guru-api/internal/rag"
	"guru-api/internal/server"
)

const configFilePath = "./configs/config.yaml"

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Caller().Logger()

	cfgPath := flag.String("config", configFilePath, "Path to the config file")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.LoadConfig(*cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading config")
	}

	sqldb, err := db.ConnectDB(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Error connecting to database")
	}
	bunDB := db.NewDB(sqldb, cfg.Database.Debug)
	store := db.NewStore(bunDB)
	defer store.Close()

	if err := db.InitDB(context.Background(), bunDB); err != nil {
		log.Fatal().Err(err).Msg("Error initializing database")
	}

	llmClient, err := llm.NewClient(&cfg.LLM)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing model client")
	}

	keySvc := keys.NewService(store)
	pipeline := rag.NewRAG(store, llmClient, &cfg.RAG)
	srv := server.New(keySvc, pipeline)

	log.Info().Str("port", cfg.Server.Port).Msg("guru api listening")
	if err := http.ListenAndServe(":"+cfg.Server.Port, srv); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}
