package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ycensure/internal/compute"
	"ycensure/internal/config"
	"ycensure/internal/logging"
	"ycensure/internal/reconcile"
	"ycensure/internal/sshkey"
	"ycensure/internal/yccli"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	ensureName         string
	ensureFolderID     string
	ensureZone         string
	ensureSubnetID     string
	ensureImageID      string
	ensurePlatformID   string
	ensureCores        int
	ensureMemoryGB     int64
	ensureDiskGB       int64
	ensureDiskType     string
	ensureCoreFraction int
	ensurePreemptible  bool
	ensureNAT          bool
	ensureSSHKey       string
	ensureCheck        bool
)

// ensureCmd represents the ensure command
var ensureCmd = &cobra.Command{
	Use:   "ensure",
	Short: "Ensure a single instance exists",
	Long: `Ensure looks the instance up by name in the folder and creates it when
absent. The result is printed to stdout as JSON. With --check the command
only answers whether a create would happen, without performing it.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load()
		if err != nil {
			logging.Logger().Fatal("Failed to load configuration", zap.Error(err))
		}

		spec := compute.Spec{
			Name:         ensureName,
			FolderID:     ensureFolderID,
			Zone:         ensureZone,
			SubnetID:     ensureSubnetID,
			ImageID:      ensureImageID,
			PlatformID:   ensurePlatformID,
			Cores:        ensureCores,
			MemoryGB:     ensureMemoryGB,
			DiskGB:       ensureDiskGB,
			DiskType:     ensureDiskType,
			CoreFraction: ensureCoreFraction,
			Preemptible:  ensurePreemptible,
			NAT:          ensureNAT,
		}
		applyConfigDefaults(&spec, cfg, cmd)

		key, err := sshkey.Resolve(ensureSSHKey)
		if err != nil {
			logging.Logger().Fatal("Failed to resolve ssh key", zap.Error(err))
		}
		spec.SSHKey = key

		result, err := runEnsure(cfg, spec, ensureCheck)
		if err != nil {
			if result != nil {
				// The create may already have happened; report what we know.
				printJSON(result)
			}
			logging.Logger().Fatal("Reconciliation failed", zap.Error(err))
		}

		printJSON(result)
	},
}

func init() {
	rootCmd.AddCommand(ensureCmd)

	ensureCmd.Flags().StringVar(&ensureName, "name", "", "Instance name (required)")
	ensureCmd.Flags().StringVar(&ensureFolderID, "folder-id", "", "Folder ID (defaults to config/YC_FOLDER_ID)")
	ensureCmd.Flags().StringVar(&ensureZone, "zone", "", "Availability zone, e.g. ru-central1-a")
	ensureCmd.Flags().StringVar(&ensureSubnetID, "subnet-id", "", "Subnet ID for the primary interface (required)")
	ensureCmd.Flags().StringVar(&ensureImageID, "image-id", "", "Boot disk image ID (required)")
	ensureCmd.Flags().StringVar(&ensurePlatformID, "platform-id", "", "Platform (CPU generation), e.g. standard-v2")
	ensureCmd.Flags().IntVar(&ensureCores, "cores", 0, "Number of vCPUs")
	ensureCmd.Flags().Int64Var(&ensureMemoryGB, "memory", 0, "RAM size in GB")
	ensureCmd.Flags().Int64Var(&ensureDiskGB, "disk-size", 0, "Boot disk size in GB")
	ensureCmd.Flags().StringVar(&ensureDiskType, "disk-type", "", "Boot disk type")
	ensureCmd.Flags().IntVar(&ensureCoreFraction, "core-fraction", 0, "Guaranteed vCPU performance (5, 20, 50, 100)")
	ensureCmd.Flags().BoolVar(&ensurePreemptible, "preemptible", true, "Create a preemptible instance")
	ensureCmd.Flags().BoolVar(&ensureNAT, "nat", true, "Attach a public IPv4 via NAT")
	ensureCmd.Flags().StringVar(&ensureSSHKey, "ssh-key", "", "SSH public key (path or literal material)")
	ensureCmd.Flags().BoolVar(&ensureCheck, "check", false, "Dry run: report whether a create would happen")

	for _, flag := range []string{"name", "subnet-id", "image-id"} {
		if err := ensureCmd.MarkFlagRequired(flag); err != nil {
			panic(fmt.Sprintf("failed to mark flag as required: %v", err))
		}
	}
}

// applyConfigDefaults fills spec fields the user did not set with the
// configured defaults. Explicitly passed values are kept even when zero so
// validation can reject them.
func applyConfigDefaults(spec *compute.Spec, cfg *config.Config, cmd *cobra.Command) {
	flags := cmd.Flags()

	if spec.FolderID == "" {
		spec.FolderID = cfg.FolderID
	}
	if spec.Zone == "" {
		spec.Zone = cfg.DefaultZone
	}
	if spec.PlatformID == "" {
		spec.PlatformID = cfg.DefaultPlatformID
	}
	if spec.DiskType == "" {
		spec.DiskType = cfg.DefaultDiskType
	}
	if !flags.Changed("cores") {
		spec.Cores = cfg.DefaultCores
	}
	if !flags.Changed("memory") {
		spec.MemoryGB = cfg.DefaultMemoryGB
	}
	if !flags.Changed("disk-size") {
		spec.DiskGB = cfg.DefaultDiskGB
	}
	if !flags.Changed("core-fraction") {
		spec.CoreFraction = cfg.DefaultCoreFraction
	}
}

func runEnsure(cfg *config.Config, spec compute.Spec, check bool) (*reconcile.Result, error) {
	runner, err := yccli.New(cfg.YcBin)
	if err != nil {
		// ErrToolNotFound surfaces here, before any provider call
		return nil, err
	}

	rec := reconcile.New(runner,
		time.Duration(cfg.PollTimeoutSeconds)*time.Second,
		time.Duration(cfg.PollIntervalSeconds)*time.Second)

	return rec.Ensure(context.Background(), spec, check)
}

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		logging.Logger().Fatal("Failed to marshal result", zap.Error(err))
	}
	fmt.Println(string(data))
}
