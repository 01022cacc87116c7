// Ledger maintenance: schema init, forced retention purge, CSV export.
//
//	ledgertool init-schema
//	ledgertool purge
//	ledgertool export --out dump.csv
//
// Configuration comes from ledgertool.yaml in the working directory plus
// LT_* environment variables (LT_DSN, LT_LEDGER_PATH, LT_RETENTION_DAYS).
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"signal_bot/internal/modules/ledger"
	"signal_bot/internal/modules/ledger/service/file"
	"signal_bot/internal/modules/ledger/service/pg"
	"signal_bot/pkg/db"
	"signal_bot/pkg/logger"
)

func loadSettings() error {
	viper.SetConfigName("ledgertool")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	viper.SetDefault("ledger_path", "data/taken_signals.csv")
	viper.SetDefault("retention_days", 30)

	viper.SetEnvPrefix("LT")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return errors.Wrap(err, "read ledgertool.yaml")
		}
	}
	return nil
}

func openStore(ctx context.Context) (ledger.Store, error) {
	dsn := viper.GetString("dsn")
	retention := viper.GetInt("retention_days")
	if dsn == "" {
		return file.NewStore(viper.GetString("ledger_path"), retention), nil
	}

	pool, err := db.NewPool(ctx, db.PoolConfig{DSN: dsn})
	if err != nil {
		return nil, errors.Wrap(err, "connect postgres")
	}
	if err := pool.Ping(ctx); err != nil {
		return nil, errors.Wrap(err, "ping postgres")
	}
	return pg.NewStore(db.NewPgTxManager(pool), retention), nil
}

func initSchema(ctx context.Context) error {
	dsn := viper.GetString("dsn")
	if dsn == "" {
		return errors.New("init-schema needs a postgres dsn (LT_DSN or dsn in ledgertool.yaml)")
	}
	pool, err := db.NewPool(ctx, db.PoolConfig{DSN: dsn})
	if err != nil {
		return errors.Wrap(err, "connect postgres")
	}
	store := pg.NewStore(db.NewPgTxManager(pool), viper.GetInt("retention_days"))
	if err := store.EnsureSchema(ctx); err != nil {
		return errors.Wrap(err, "ensure schema")
	}
	fmt.Println("schema ready")
	return nil
}

// purge loads the store, which applies retention and persists the shrink.
func purge(ctx context.Context) error {
	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	entries, err := store.Load(ctx)
	if err != nil {
		return errors.Wrap(err, "load ledger")
	}
	fmt.Printf("purge done, %d entries kept\n", len(entries))
	return nil
}

func export(ctx context.Context, out string) error {
	if out == "" {
		return errors.New("export needs --out")
	}
	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	entries, err := store.Load(ctx)
	if err != nil {
		return errors.Wrap(err, "load ledger")
	}

	// the file store writes the canonical column layout
	dump := file.NewStore(out, viper.GetInt("retention_days"))
	if err := dump.Save(ctx, entries); err != nil {
		return errors.Wrap(err, "write export")
	}
	fmt.Printf("exported %d entries to %s\n", len(entries), out)
	return nil
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: ledgertool <init-schema|purge|export> [flags]")
		os.Exit(2)
	}
	logger.SetServiceName("ledgertool")
	if err := logger.Init(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := loadSettings(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	cmd := os.Args[1]
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	out := fs.String("out", "", "export destination file")
	_ = fs.Parse(os.Args[2:])

	ctx := context.Background()
	var err error
	switch cmd {
	case "init-schema":
		err = initSchema(ctx)
	case "purge":
		err = purge(ctx)
	case "export":
		err = export(ctx, *out)
	default:
		err = errors.Errorf("unknown command %q", cmd)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
