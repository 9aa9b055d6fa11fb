package manifest

import (
	"fmt"

	"ycensure/internal/compute"

	"gopkg.in/yaml.v3"
)

// Manifest declares a set of instances to reconcile in one apply run. Each
// entry becomes an independent reconciliation pass; entries must carry
// distinct names, concurrent passes for the same name race at the provider.
type Manifest struct {
	FolderID  string         `yaml:"folder_id"`
	Instances []InstanceDecl `yaml:"instances"`
}

// InstanceDecl is a compute.Spec with manifest defaults applied to fields
// the entry leaves out.
type InstanceDecl compute.Spec

// entryDefaults mirror the per-parameter defaults of the ensure command.
var entryDefaults = InstanceDecl{
	PlatformID:   compute.PlatformStandardV2,
	Cores:        2,
	MemoryGB:     2,
	DiskGB:       10,
	DiskType:     compute.DiskTypeHDD,
	CoreFraction: 5,
	Preemptible:  true,
	NAT:          true,
}

func (d *InstanceDecl) UnmarshalYAML(value *yaml.Node) error {
	type plain InstanceDecl
	decl := plain(entryDefaults)
	if err := value.Decode(&decl); err != nil {
		return err
	}
	*d = InstanceDecl(decl)
	return nil
}

// Parse decodes a manifest and validates every declared instance. The
// top-level folder_id fills entries that do not set their own.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	if len(m.Instances) == 0 {
		return nil, fmt.Errorf("manifest declares no instances")
	}

	seen := make(map[string]bool, len(m.Instances))
	for i := range m.Instances {
		if m.Instances[i].FolderID == "" {
			m.Instances[i].FolderID = m.FolderID
		}
		spec := compute.Spec(m.Instances[i])
		if err := spec.Validate(); err != nil {
			return nil, fmt.Errorf("instance %d (%q): %w", i, spec.Name, err)
		}
		if seen[spec.Name] {
			return nil, fmt.Errorf("duplicate instance name %q", spec.Name)
		}
		seen[spec.Name] = true
	}

	return &m, nil
}

// Specs returns the declared instances as reconciler inputs.
func (m *Manifest) Specs() []compute.Spec {
	specs := make([]compute.Spec, len(m.Instances))
	for i := range m.Instances {
		specs[i] = compute.Spec(m.Instances[i])
	}
	return specs
}
