// Command migrate applies or rolls back SQL migrations against the
// configured database.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"moneta/internal/database"
)

func main() {
	down := flag.Bool("down", false, "roll back one migration instead of applying all")
	steps := flag.Int("steps", 0, "apply exactly N migrations (negative rolls back)")
	flag.Parse()

	cfg, err := database.NewConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
		os.Exit(1)
	}

	url := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.DBName, cfg.SSLMode)

	mig, err := migrate.New("file://migrations", url)
	if err != nil {
		fmt.Fprintf(os.Stderr, "creating migrator: %v\n", err)
		os.Exit(1)
	}
	defer mig.Close()

	switch {
	case *steps != 0:
		err = mig.Steps(*steps)
	case *down:
		err = mig.Steps(-1)
	default:
		err = mig.Up()
	}
	if err != nil && err != migrate.ErrNoChange {
		fmt.Fprintf(os.Stderr, "migration failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("migrations up to date")
}
