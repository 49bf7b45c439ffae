package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/localnerve/crmdb/internal/devdb"
)

func main() {
	var showHelp bool
	flag.BoolVar(&showHelp, "h", false, "show help")
	var envFilename string
	flag.StringVar(&envFilename, "f", "", "path to the .env file")
	var image string
	flag.StringVar(&image, "image", "", "MariaDB image (default mariadb:11)")
	flag.Parse()

	usage := `
Run a disposable MariaDB for crmdb development. Database credentials come
from the .env file (DB_ROOT_PASSWORD, DB_PASSWORD) or the current environment.

Usage:

devdb [-h] [-f ENV_FILE_PATH] [-image IMAGE]

example
  devdb -f /path/to/something/.env
`
	if showHelp {
		fmt.Println(usage)
		return
	}

	if envFilename != "" {
		log.Printf("Loading environment variables from %s\n", envFilename)
		if err := godotenv.Load(envFilename); err != nil {
			log.Fatalf("Failed to load environment variables: %v\n", err)
		}
	} else {
		log.Printf("No environment file specified, using current environment variables\n")
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	ctx := context.Background()
	c, err := devdb.Start(ctx, devdb.Options{
		Image:        image,
		RootPassword: os.Getenv("DB_ROOT_PASSWORD"),
		Password:     os.Getenv("DB_PASSWORD"),
	})
	if err != nil {
		log.Fatalf("Failed to start dev database: %v\n", err)
	}

	cfg := c.Config()
	log.Printf("MariaDB ready, use:\n  STORAGE_DRIVER=sql DB_TYPE=%s DB_HOST=%s DB_PORT=%s DB_DATABASE=%s DB_USER=%s\n",
		cfg.DBType, cfg.DBHost, cfg.DBPort, cfg.DBDatabase, cfg.DBUser)

	sig := <-sigs
	log.Printf("\nReceived signal: %v, terminating dev database...\n", sig)
	for _, err := range c.Terminate(ctx) {
		log.Println(err)
	}
}
