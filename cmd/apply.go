package cmd

import (
	"context"
	"os"
	"sync"
	"time"

	"ycensure/internal/config"
	"ycensure/internal/logging"
	"ycensure/internal/manifest"
	"ycensure/internal/reconcile"
	"ycensure/internal/sshkey"
	"ycensure/internal/yccli"

	"github.com/alitto/pond/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	applyFile  string
	applyCheck bool
)

// applyCmd represents the apply command
var applyCmd = &cobra.Command{
	Use:   "apply [manifest file]",
	Short: "Reconcile every instance declared in a manifest",
	Long: `Apply reads a YAML manifest of instances and runs one reconciliation pass
per instance on a bounded worker pool. Passes are independent: each makes
its own fresh queries against the provider.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if applyFile == "" {
			if len(args) > 0 {
				applyFile = args[0]
			} else {
				logging.Logger().Fatal("Manifest file is required")
			}
		}

		cfg, err := config.Load()
		if err != nil {
			logging.Logger().Fatal("Failed to load configuration", zap.Error(err))
		}

		data, err := os.ReadFile(applyFile)
		if err != nil {
			logging.Logger().Fatal("Failed to read manifest file", zap.Error(err))
		}

		m, err := manifest.Parse(data)
		if err != nil {
			logging.Logger().Fatal("Invalid manifest", zap.Error(err))
		}

		runner, err := yccli.New(cfg.YcBin)
		if err != nil {
			logging.Logger().Fatal("Provisioning tool unavailable", zap.Error(err))
		}

		rec := reconcile.New(runner,
			time.Duration(cfg.PollTimeoutSeconds)*time.Second,
			time.Duration(cfg.PollIntervalSeconds)*time.Second)

		specs := m.Specs()
		workersCount := min(cfg.MaxWorkers, len(specs))

		logging.Logger().Info("applying manifest",
			zap.String("file", applyFile),
			zap.Int("instances", len(specs)),
			zap.Int("workers", workersCount),
			zap.Bool("check", applyCheck))

		ctx := context.Background()
		pool := pond.NewPool(workersCount)

		var mu sync.Mutex
		results := make([]*reconcile.Result, 0, len(specs))
		failures := 0

		for _, spec := range specs {
			pool.Submit(func() {
				key, err := sshkey.Resolve(spec.SSHKey)
				if err != nil {
					logging.Logger().Error("failed to resolve ssh key",
						zap.String("name", spec.Name), zap.Error(err))
					mu.Lock()
					failures++
					mu.Unlock()
					return
				}
				spec.SSHKey = key

				res, err := rec.Ensure(ctx, spec, applyCheck)
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					logging.Logger().Error("reconciliation failed",
						zap.String("name", spec.Name), zap.Error(err))
					failures++
					if res != nil {
						results = append(results, res)
					}
					return
				}
				results = append(results, res)
			})
		}

		pool.StopAndWait()

		printJSON(results)
		if failures > 0 {
			logging.Logger().Fatal("some instances failed to reconcile",
				zap.Int("failed", failures), zap.Int("total", len(specs)))
		}
	},
}

func init() {
	rootCmd.AddCommand(applyCmd)

	applyCmd.Flags().StringVarP(&applyFile, "file", "f", "", "Path to manifest YAML file")
	applyCmd.Flags().BoolVar(&applyCheck, "check", false, "Dry run: report what would change")
}
