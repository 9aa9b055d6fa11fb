package cmd

import (
	"context"
	"fmt"

	"ycensure/internal/compute"
	"ycensure/internal/config"
	"ycensure/internal/logging"
	"ycensure/internal/yccli"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	lookupName     string
	lookupFolderID string
)

// lookupCmd represents the lookup command
var lookupCmd = &cobra.Command{
	Use:   "lookup",
	Short: "Look up an instance by name without changing anything",
	Long: `Lookup performs the read-only existence check: it lists instances in the
folder and reports the matching record, if any. Nothing is created.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load()
		if err != nil {
			logging.Logger().Fatal("Failed to load configuration", zap.Error(err))
		}
		if lookupFolderID == "" {
			lookupFolderID = cfg.FolderID
		}
		if lookupFolderID == "" {
			logging.Logger().Fatal("Folder ID is required (flag, config or YC_FOLDER_ID)")
		}

		runner, err := yccli.New(cfg.YcBin)
		if err != nil {
			logging.Logger().Fatal("Provisioning tool unavailable", zap.Error(err))
		}

		directory := compute.NewDirectory(runner)
		inst, err := directory.FindByName(context.Background(), lookupName, lookupFolderID)
		if err != nil {
			logging.Logger().Fatal("Lookup failed", zap.Error(err))
		}

		if inst == nil {
			fmt.Printf("Instance %q not found in folder %s\n", lookupName, lookupFolderID)
			return
		}

		printJSON(struct {
			InstanceID string `json:"instance_id"`
			Name       string `json:"name"`
			Status     string `json:"status,omitempty"`
			PublicIP   string `json:"public_ip,omitempty"`
		}{
			InstanceID: inst.ID,
			Name:       inst.Name,
			Status:     inst.Status,
			PublicIP:   inst.PublicIP(),
		})
	},
}

func init() {
	rootCmd.AddCommand(lookupCmd)

	lookupCmd.Flags().StringVar(&lookupName, "name", "", "Instance name (required)")
	lookupCmd.Flags().StringVar(&lookupFolderID, "folder-id", "", "Folder ID (defaults to config/YC_FOLDER_ID)")
	if err := lookupCmd.MarkFlagRequired("name"); err != nil {
		panic(fmt.Sprintf("failed to mark flag as required: %v", err))
	}
}
