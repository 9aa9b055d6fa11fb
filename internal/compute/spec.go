package compute

import "fmt"

// YC platforms (CPU generations). standard-v2 is Intel Cascade Lake.
const (
	PlatformStandardV1 = "standard-v1"
	PlatformStandardV2 = "standard-v2"
	PlatformStandardV3 = "standard-v3"
)

// Boot disk types.
const (
	DiskTypeHDD              = "network-hdd"
	DiskTypeSSD              = "network-ssd"
	DiskTypeSSDNonreplicated = "network-ssd-nonreplicated"
)

// allowedCoreFractions are the guaranteed vCPU performance levels YC accepts.
var allowedCoreFractions = []int{5, 20, 50, 100}

// Spec is the desired configuration of a single instance for one
// reconciliation pass. It is owned by the caller and never mutated here.
type Spec struct {
	Name     string `yaml:"name"`
	FolderID string `yaml:"folder_id"`
	Zone     string `yaml:"zone"`
	SubnetID string `yaml:"subnet_id"`
	ImageID  string `yaml:"image_id"`

	PlatformID   string `yaml:"platform_id"`
	Cores        int    `yaml:"cores"`
	MemoryGB     int64  `yaml:"memory_gb"`
	DiskGB       int64  `yaml:"disk_gb"`
	DiskType     string `yaml:"disk_type"`
	CoreFraction int    `yaml:"core_fraction"`
	Preemptible  bool   `yaml:"preemptible"`
	NAT          bool   `yaml:"nat"`

	// SSHKey is literal authorized_keys material, optionally prefixed with
	// a login ("user:ssh-ed25519 ..."). Empty means no key injection.
	SSHKey string `yaml:"ssh_key"`
}

// ValidationError names the first constraint a Spec violates.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Validate checks the spec against YC domain constraints. Checks run in a
// fixed order and the first violation wins. It has no side effects and must
// pass before any yc invocation.
func (s Spec) Validate() error {
	if s.Cores < 1 {
		return &ValidationError{Field: "cores", Message: "cores must be >= 1"}
	}
	if s.MemoryGB < 1 {
		return &ValidationError{Field: "memory_gb", Message: "memory_gb must be >= 1"}
	}
	if s.DiskGB < 1 {
		return &ValidationError{Field: "disk_gb", Message: "disk_gb must be >= 1"}
	}
	validFraction := false
	for _, f := range allowedCoreFractions {
		if s.CoreFraction == f {
			validFraction = true
			break
		}
	}
	if !validFraction {
		return &ValidationError{Field: "core_fraction", Message: "core_fraction must be one of 5, 20, 50, 100"}
	}
	for _, req := range []struct {
		field, value string
	}{
		{"name", s.Name},
		{"folder_id", s.FolderID},
		{"zone", s.Zone},
		{"subnet_id", s.SubnetID},
		{"image_id", s.ImageID},
	} {
		if req.value == "" {
			return &ValidationError{Field: req.field, Message: fmt.Sprintf("%s is required", req.field)}
		}
	}
	return nil
}
