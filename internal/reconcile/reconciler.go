package reconcile

import (
	"context"
	"fmt"
	"time"

	"ycensure/internal/compute"
	"ycensure/internal/logging"
	"ycensure/internal/yccli"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Result is the outcome of one reconciliation pass. Optional fields stay
// empty when the corresponding state could not be observed; that is a valid
// terminal outcome, not an error.
type Result struct {
	Changed    bool   `json:"changed"`
	InstanceID string `json:"instance_id,omitempty"`
	Name       string `json:"name"`
	Status     string `json:"status,omitempty"`
	PublicIP   string `json:"public_ip,omitempty"`
}

// Creator is the mutating side of the provider channel.
type Creator interface {
	Create(ctx context.Context, spec compute.Spec) ([]byte, error)
}

// Reconciler runs the validate -> lookup -> create -> poll -> report pass
// for a single instance. Passes are independent: no state survives between
// invocations, every pass queries the provider fresh.
type Reconciler struct {
	directory   Finder
	provisioner Creator
	poller      *Poller
}

// New wires a Reconciler on top of a yc runner with the given poll budget.
func New(runner yccli.Runner, pollTimeout, pollInterval time.Duration) *Reconciler {
	directory := compute.NewDirectory(runner)
	return &Reconciler{
		directory:   directory,
		provisioner: compute.NewProvisioner(runner),
		poller:      NewPoller(directory, pollTimeout, pollInterval),
	}
}

// NewWith assembles a Reconciler from explicit collaborators.
func NewWith(directory Finder, provisioner Creator, poller *Poller) *Reconciler {
	return &Reconciler{directory: directory, provisioner: provisioner, poller: poller}
}

// Ensure makes the instance described by spec exist. When checkMode is set
// the pass answers "would this change anything" from the existence lookup
// alone and never mutates.
//
// Two concurrent passes for the same name can both observe "absent" and both
// create; YC is the arbiter of that race, not this code.
func (r *Reconciler) Ensure(ctx context.Context, spec compute.Spec, checkMode bool) (*Result, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	log := logging.Logger().With(
		zap.String("pass_id", uuid.NewString()),
		zap.String("name", spec.Name),
		zap.String("folder_id", spec.FolderID))

	inst, err := r.directory.FindByName(ctx, spec.Name, spec.FolderID)
	if err != nil {
		return nil, err
	}

	if inst != nil {
		log.Info("instance already present, nothing to do",
			zap.String("instance_id", inst.ID),
			zap.String("status", inst.Status))
		return resultFrom(inst, false), nil
	}

	if checkMode {
		log.Info("check mode: instance would be created")
		return &Result{Changed: true, Name: spec.Name}, nil
	}

	if _, err := r.provisioner.Create(ctx, spec); err != nil {
		return nil, err
	}

	// The create happened; from here on every outcome reports Changed=true.
	inst, err = r.poller.Wait(ctx, spec.Name, spec.FolderID)
	if err != nil {
		return &Result{Changed: true, Name: spec.Name},
			fmt.Errorf("instance %q created but status lookup failed: %w", spec.Name, err)
	}
	if inst == nil {
		log.Warn("instance created but status not confirmed within poll budget")
		return &Result{Changed: true, Name: spec.Name}, nil
	}

	log.Info("instance created",
		zap.String("instance_id", inst.ID),
		zap.String("status", inst.Status),
		zap.String("public_ip", inst.PublicIP()))

	return resultFrom(inst, true), nil
}

func resultFrom(inst *compute.Instance, changed bool) *Result {
	return &Result{
		Changed:    changed,
		InstanceID: inst.ID,
		Name:       inst.Name,
		Status:     inst.Status,
		PublicIP:   inst.PublicIP(),
	}
}
