package utils

import (
	"log"
	"os"
)

// InitLogger builds the application logger.
func InitLogger() *log.Logger {
	return log.New(os.Stdout, "[lingo] ", log.LstdFlags|log.LUTC)
}
