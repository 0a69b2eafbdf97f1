package pkg

import (
	"github.com/rs/zerolog/log"

	"nbayes/pkg/io"
)

func printDataErrors(errors []io.DataError) {
	for _, err := range errors {
		log.Error().Str("File", err.File).Int("Line", err.Line).Msgf("Error parsing data: %s", err.Error)
	}
}
