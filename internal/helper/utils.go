package helper

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// BatchID tags one ingest run so its rows can be traced in the logs.
func BatchID() string {
	return uuid.NewString()
}

// PrettyPrint dumps a value as indented JSON, used by dry runs.
func PrettyPrint(v any) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Warn().Err(err).Msg("pretty print failed")
		return
	}
	fmt.Println(string(b))
}
