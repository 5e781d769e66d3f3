// Command wasimctl moves simulator state between seed JSON files and the snapshot database.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"wasim/internal/database"
	"wasim/internal/state"

	"github.com/sirupsen/logrus"
)

const usage = `usage:
  wasimctl import -seed state.json -db wasim.db
  wasimctl export -db wasim.db -out state.json
  wasimctl info   -db wasim.db`

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	if err := run(context.Background(), os.Args[1:], os.Stdout, logger); err != nil {
		logger.WithError(err).Fatal("wasimctl failed")
	}
}

func run(ctx context.Context, args []string, out io.Writer, logger *logrus.Logger) error {
	if len(args) == 0 {
		return fmt.Errorf("missing command\n%s", usage)
	}

	fs := flag.NewFlagSet(args[0], flag.ContinueOnError)
	fs.SetOutput(out)
	dbPath := fs.String("db", "wasim.db", "Path to the snapshot database")
	seedPath := fs.String("seed", "", "Seed JSON file to import")
	outPath := fs.String("out", "", "JSON file to export to")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	switch args[0] {
	case "import":
		if *seedPath == "" {
			return fmt.Errorf("import requires -seed")
		}
		return importSeed(ctx, *seedPath, *dbPath, logger)
	case "export":
		if *outPath == "" {
			return fmt.Errorf("export requires -out")
		}
		return exportSnapshot(ctx, *dbPath, *outPath, logger)
	case "info":
		return printInfo(ctx, *dbPath, out)
	default:
		return fmt.Errorf("unknown command %q\n%s", args[0], usage)
	}
}

func importSeed(ctx context.Context, seedPath, dbPath string, logger *logrus.Logger) error {
	snap, err := state.LoadFile(seedPath)
	if err != nil {
		return fmt.Errorf("failed to load seed: %w", err)
	}

	db, err := database.New(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.SaveSnapshot(ctx, snap); err != nil {
		return err
	}

	logger.WithFields(logrus.Fields{
		"seed":     seedPath,
		"db":       dbPath,
		"contacts": len(snap.Contacts),
		"chats":    len(snap.Chats),
	}).Info("Seed imported")
	return nil
}

func exportSnapshot(ctx context.Context, dbPath, outPath string, logger *logrus.Logger) error {
	db, err := database.New(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	snap, err := db.LoadSnapshot(ctx)
	if err != nil {
		return err
	}
	if snap == nil {
		return fmt.Errorf("database %s holds no snapshot", dbPath)
	}

	if err := state.SaveFile(outPath, snap); err != nil {
		return err
	}

	logger.WithFields(logrus.Fields{
		"db":    dbPath,
		"out":   outPath,
		"chats": len(snap.Chats),
	}).Info("Snapshot exported")
	return nil
}

func printInfo(ctx context.Context, dbPath string, out io.Writer) error {
	db, err := database.New(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	info, err := db.LatestSnapshot(ctx)
	if err != nil {
		return err
	}
	if info == nil {
		_, err = fmt.Fprintln(out, "no snapshot saved")
		return err
	}
	_, err = fmt.Fprintf(out, "saved_at=%s chats=%d messages=%d\n",
		info.SavedAt.Format("2006-01-02T15:04:05Z07:00"), info.ChatCount, info.MessageCount)
	return err
}
