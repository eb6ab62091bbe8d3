// Command schemactl plans and applies YAML schema manifests.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tinywasm/schema"
	"github.com/tinywasm/schema/manifest"
	"github.com/tinywasm/schema/mongoexec"
	"github.com/tinywasm/schema/sqlexec"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

func main() {
	if err := run(os.Args, os.Stdout); err != nil {
		log.Fatal(err)
	}
}

func run(args []string, out io.Writer) error {
	command := newCommand(out)
	parsedArgs := []string{}
	if len(args) > 1 {
		parsedArgs = args[1:]
	}
	command.SetArgs(parsedArgs)
	return command.Execute()
}

func newCommand(out io.Writer) *cobra.Command {
	command := &cobra.Command{
		Use:          "schemactl",
		Short:        "Plan and apply schema manifests",
		SilenceUsage: true,
	}
	command.SetOut(out)

	flags := command.PersistentFlags()
	flags.String("config", "", "path to schemactl config file")
	flags.String("driver", "sqlite", "sqlite, pgx or mongodb")
	flags.String("dsn", "", "data source name or mongodb URI")
	flags.String("database", "", "mongodb database")
	flags.Bool("verbose", false, "development logging")
	flags.Duration("timeout", 30*time.Second, "apply timeout")
	command.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		return initConfig(cmd)
	}

	command.AddCommand(&cobra.Command{
		Use:   "plan FILE",
		Short: "Print the SQL statements a manifest translates to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return plan(cmd.OutOrStdout(), args[0])
		},
	})
	command.AddCommand(&cobra.Command{
		Use:   "apply FILE",
		Short: "Execute a manifest against the configured database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return apply(cmd.Context(), args[0])
		},
	})
	return command
}

func initConfig(cmd *cobra.Command) error {
	flags := cmd.Root().PersistentFlags()
	configPath, err := flags.GetString("config")
	if err != nil {
		return fmt.Errorf("read config flag: %w", err)
	}

	viper.Reset()
	viper.SetEnvPrefix("SCHEMACTL")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	for _, key := range []string{"driver", "dsn", "database", "verbose", "timeout"} {
		if err := viper.BindPFlag(key, flags.Lookup(key)); err != nil {
			return fmt.Errorf("bind %s: %w", key, err)
		}
	}

	if configPath != "" {
		viper.SetConfigFile(configPath)
	} else {
		viper.SetConfigName("schemactl")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "schemactl"))
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		var missing viper.ConfigFileNotFoundError
		if !errors.As(err, &missing) {
			return fmt.Errorf("read config: %w", err)
		}
	}
	return nil
}

func newLogger() (*zap.Logger, error) {
	if viper.GetBool("verbose") {
		z := zap.NewDevelopmentConfig()
		z.OutputPaths = []string{"stderr"}
		return z.Build()
	}
	return zap.NewProduction()
}

func readManifest(path string) (*manifest.Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return manifest.Decode(f)
}

// plan prints statements without touching a database.
func plan(out io.Writer, path string) error {
	m, err := readManifest(path)
	if err != nil {
		return err
	}

	var dialect sqlexec.Dialect
	switch driver := viper.GetString("driver"); driver {
	case "sqlite":
		dialect = sqlexec.DialectConfigFor(sqlexec.DialectSQLite)
	case "pgx", "postgres":
		dialect = sqlexec.DialectConfigFor(sqlexec.DialectPostgres)
	default:
		return fmt.Errorf("plan: driver %q has no SQL dialect", driver)
	}

	var captured *schema.Schema
	db := schema.New(schema.ExecutorFunc(func(_ context.Context, s *schema.Schema) error {
		captured = s
		return nil
	}))
	if err := m.Submit(context.Background(), db).Wait(); err != nil {
		return err
	}

	stmts, err := sqlexec.Statements(dialect, captured)
	if err != nil {
		return err
	}
	for _, stmt := range stmts {
		fmt.Fprintln(out, stmt+";")
	}
	return nil
}

func apply(ctx context.Context, path string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, viper.GetDuration("timeout"))
	defer cancel()

	logger, err := newLogger()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()

	m, err := readManifest(path)
	if err != nil {
		return err
	}

	exec, closeFn, err := openExecutor(ctx, logger)
	if err != nil {
		return err
	}
	defer closeFn()

	db := schema.New(exec, schema.WithLogger(logger))
	if err := m.Submit(ctx, db).Wait(); err != nil {
		return fmt.Errorf("apply %s: %w", path, err)
	}
	logger.Info("schema change applied",
		zap.String("manifest", path),
		zap.String("schema", m.Schema),
		zap.String("action", m.Action))
	return nil
}

func openExecutor(ctx context.Context, logger *zap.Logger) (schema.Executor, func() error, error) {
	driver := viper.GetString("driver")
	dsn := viper.GetString("dsn")
	if dsn == "" {
		return nil, nil, errors.New("dsn is required")
	}

	if driver == "mongodb" {
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(dsn))
		if err != nil {
			return nil, nil, fmt.Errorf("connect mongodb: %w", err)
		}
		database := viper.GetString("database")
		if database == "" {
			database = "schema"
		}
		exec := mongoexec.New(client.Database(database), mongoexec.WithLogger(logger))
		return exec, func() error { return client.Disconnect(context.Background()) }, nil
	}

	exec, err := sqlexec.Open(driver, dsn, sqlexec.WithLogger(logger))
	if err != nil {
		return nil, nil, err
	}
	return exec, exec.Close, nil
}
