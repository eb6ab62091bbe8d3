//go:build !wasm

// Command schemagen writes <Struct>Schema builder functions next to the
// model.go and models.go files under a directory.
package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/tinywasm/schema/gen"
	"go.uber.org/zap"
)

func main() {
	if err := newCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newCommand() *cobra.Command {
	var root string
	command := &cobra.Command{
		Use:          "schemagen",
		Short:        "Generate schema builders from tagged model structs",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(*cobra.Command, []string) error {
			logger, err := zap.NewDevelopment()
			if err != nil {
				log.Fatalf("schemagen: %v", err)
			}
			defer logger.Sync()
			sugar := logger.Sugar()

			g := gen.NewGen()
			g.SetRootDir(root)
			g.SetLog(func(messages ...any) {
				sugar.Warn(messages...)
			})
			return g.Run()
		},
	}
	command.Flags().StringVar(&root, "root", ".", "directory to scan")
	return command
}
