package compute

import (
	"context"
	"fmt"
	"strconv"

	"ycensure/internal/logging"
	"ycensure/internal/yccli"

	"go.uber.org/zap"
)

// CreateArgs translates a spec into the yc argument vector that creates the
// instance. The translation is deterministic: the same spec always yields
// the same argv.
func CreateArgs(spec Spec) []string {
	bootDisk := fmt.Sprintf("size=%dGB,type=%s,image-id=%s", spec.DiskGB, spec.DiskType, spec.ImageID)

	args := []string{
		"compute", "instance", "create",
		"--name", spec.Name,
		"--folder-id", spec.FolderID,
		"--zone", spec.Zone,
		"--create-boot-disk", bootDisk,
		"--cores", strconv.Itoa(spec.Cores),
		"--memory", strconv.FormatInt(spec.MemoryGB, 10),
		"--core-fraction", strconv.Itoa(spec.CoreFraction),
		"--platform-id", spec.PlatformID,
		"--format", "json",
	}

	// Exactly one of the two scheduling flags is always present.
	if spec.Preemptible {
		args = append(args, "--preemptible")
	} else {
		args = append(args, "--non-preemptible")
	}

	nic := "subnet-id=" + spec.SubnetID
	if spec.NAT {
		nic += ",nat-ip-version=ipv4"
	}
	args = append(args, "--network-interface", nic)

	if spec.SSHKey != "" {
		args = append(args, "--ssh-key", spec.SSHKey)
	}

	return args
}

// Provisioner performs the single mutating action in the system: creating
// an instance through the yc CLI.
type Provisioner struct {
	runner yccli.Runner
}

// NewProvisioner creates a Provisioner on top of the given runner.
func NewProvisioner(runner yccli.Runner) *Provisioner {
	return &Provisioner{runner: runner}
}

// Create builds and runs the creation command. The returned output is
// advisory only: the create response may be incomplete or precede full
// initialization, so authoritative state comes from a subsequent poll.
// A failed command is not retried.
func (p *Provisioner) Create(ctx context.Context, spec Spec) ([]byte, error) {
	logging.Logger().Info("creating instance",
		zap.String("name", spec.Name),
		zap.String("zone", spec.Zone),
		zap.Int("cores", spec.Cores),
		zap.Int64("memory_gb", spec.MemoryGB),
		zap.Int64("disk_gb", spec.DiskGB),
		zap.Bool("preemptible", spec.Preemptible),
		zap.Bool("nat", spec.NAT))

	out, err := p.runner.Run(ctx, CreateArgs(spec)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create instance %q: %w", spec.Name, err)
	}
	return out, nil
}
