package e2e_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"ycensure/internal/compute"
	"ycensure/internal/reconcile"
	"ycensure/internal/yccli"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// FakeYC implements yccli.Runner with canned responses instead of spawning
// the real yc binary. List calls pop responses from a queue (the last one
// repeats); create calls are recorded and answered with a stub.
type FakeYC struct {
	mu          sync.Mutex
	ListQueue   []string
	ListErr     error
	CreateErr   error
	CreateCalls [][]string
	OnCreate    func()
	listCalls   int
}

func (f *FakeYC) Run(ctx context.Context, args ...string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	argv := strings.Join(args, " ")
	switch {
	case strings.HasPrefix(argv, "compute instance list"):
		if f.ListErr != nil {
			return nil, f.ListErr
		}
		i := f.listCalls
		f.listCalls++
		if len(f.ListQueue) == 0 {
			return []byte("[]"), nil
		}
		if i >= len(f.ListQueue) {
			i = len(f.ListQueue) - 1
		}
		return []byte(f.ListQueue[i]), nil

	case strings.HasPrefix(argv, "compute instance create"):
		f.CreateCalls = append(f.CreateCalls, args)
		if f.CreateErr != nil {
			return nil, f.CreateErr
		}
		if f.OnCreate != nil {
			f.OnCreate()
		}
		return []byte(`{"id": "fhmnew"}`), nil

	default:
		return nil, fmt.Errorf("unexpected yc invocation: %s", argv)
	}
}

func runningDemo(ip string) string {
	nat := ""
	if ip != "" {
		nat = fmt.Sprintf(`, "one_to_one_nat": {"address": %q}`, ip)
	}
	return fmt.Sprintf(`[
	  {
	    "id": "fhmdemo",
	    "name": "demo",
	    "status": "RUNNING",
	    "network_interfaces": [
	      {"primary_v4_address": {"address": "10.128.0.3"%s}}
	    ]
	  }
	]`, nat)
}

func demoSpec() compute.Spec {
	return compute.Spec{
		Name:         "demo",
		FolderID:     "b1gfolder",
		Zone:         "ru-central1-a",
		SubnetID:     "e9bsubnet",
		ImageID:      "fd8image",
		PlatformID:   compute.PlatformStandardV2,
		Cores:        2,
		MemoryGB:     2,
		DiskGB:       10,
		DiskType:     compute.DiskTypeHDD,
		CoreFraction: 5,
		Preemptible:  true,
		NAT:          true,
	}
}

// newReconciler wires a reconciler on the fake runner with a fake clock so
// polling never waits on the wall clock.
func newReconciler(fake *FakeYC, timeout time.Duration) *reconcile.Reconciler {
	directory := compute.NewDirectory(fake)
	poller := reconcile.NewPoller(directory, timeout, 2*time.Second)

	now := time.Unix(1000, 0)
	poller.Now = func() time.Time { return now }
	poller.Sleep = func(d time.Duration) { now = now.Add(d) }

	return reconcile.NewWith(directory, compute.NewProvisioner(fake), poller)
}

var _ = Describe("Instance reconciliation", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	Describe("when the instance is absent", func() {
		It("creates it and reports the polled status", func() {
			fake := &FakeYC{ListQueue: []string{"[]"}}
			fake.OnCreate = func() {
				// Status shows up on the second post-create poll.
				fake.ListQueue = []string{"[]", runningDemo("1.2.3.4")}
				fake.listCalls = 0
			}
			rec := newReconciler(fake, 90*time.Second)

			result, err := rec.Ensure(ctx, demoSpec(), false)
			Expect(err).NotTo(HaveOccurred())

			Expect(result.Changed).To(BeTrue())
			Expect(result.Status).To(Equal("RUNNING"))
			Expect(result.InstanceID).To(Equal("fhmdemo"))
			Expect(fake.CreateCalls).To(HaveLen(1))
		})

		It("builds the create command from the desired state", func() {
			fake := &FakeYC{ListQueue: []string{"[]"}}
			fake.OnCreate = func() {
				fake.ListQueue = []string{runningDemo("")}
				fake.listCalls = 0
			}
			rec := newReconciler(fake, 90*time.Second)

			_, err := rec.Ensure(ctx, demoSpec(), false)
			Expect(err).NotTo(HaveOccurred())

			argv := strings.Join(fake.CreateCalls[0], " ")
			Expect(argv).To(ContainSubstring("--name demo"))
			Expect(argv).To(ContainSubstring("--create-boot-disk size=10GB,type=network-hdd,image-id=fd8image"))
			Expect(argv).To(ContainSubstring("--preemptible"))
			Expect(argv).NotTo(ContainSubstring("--non-preemptible"))
			Expect(argv).To(ContainSubstring("--network-interface subnet-id=e9bsubnet,nat-ip-version=ipv4"))
		})
	})

	Describe("when the instance already exists", func() {
		It("reports changed=false with the observed record and never creates", func() {
			fake := &FakeYC{ListQueue: []string{runningDemo("1.2.3.4")}}
			rec := newReconciler(fake, 90*time.Second)

			result, err := rec.Ensure(ctx, demoSpec(), false)
			Expect(err).NotTo(HaveOccurred())

			Expect(result.Changed).To(BeFalse())
			Expect(result.InstanceID).To(Equal("fhmdemo"))
			Expect(result.Status).To(Equal("RUNNING"))
			Expect(result.PublicIP).To(Equal("1.2.3.4"))
			Expect(fake.CreateCalls).To(BeEmpty())
		})
	})

	Describe("when the poll budget runs out", func() {
		It("reports changed=true with unknown fields and no error", func() {
			// The instance never shows up in any list after create.
			fake := &FakeYC{ListQueue: []string{"[]"}}
			rec := newReconciler(fake, 10*time.Second)

			result, err := rec.Ensure(ctx, demoSpec(), false)
			Expect(err).NotTo(HaveOccurred())

			Expect(result.Changed).To(BeTrue())
			Expect(result.Name).To(Equal("demo"))
			Expect(result.InstanceID).To(BeEmpty())
			Expect(result.Status).To(BeEmpty())
			Expect(result.PublicIP).To(BeEmpty())
		})
	})

	Describe("when the list output is malformed", func() {
		It("fails with a parse error before any create", func() {
			fake := &FakeYC{ListQueue: []string{"garbage не json"}}
			rec := newReconciler(fake, 90*time.Second)

			_, err := rec.Ensure(ctx, demoSpec(), false)
			Expect(err).To(HaveOccurred())

			var perr *compute.ParseError
			Expect(errors.As(err, &perr)).To(BeTrue())
			Expect(fake.CreateCalls).To(BeEmpty())
		})
	})

	Describe("when the list command itself fails", func() {
		It("surfaces the tool diagnostics as a command error", func() {
			fake := &FakeYC{ListErr: &yccli.CommandError{ExitCode: 1, Output: "ERROR: permission denied"}}
			rec := newReconciler(fake, 90*time.Second)

			_, err := rec.Ensure(ctx, demoSpec(), false)
			Expect(err).To(HaveOccurred())

			var cerr *yccli.CommandError
			Expect(errors.As(err, &cerr)).To(BeTrue())
			Expect(cerr.Output).To(ContainSubstring("permission denied"))
		})
	})

	Describe("check mode", func() {
		It("reports a pending create without performing it", func() {
			fake := &FakeYC{ListQueue: []string{"[]"}}
			rec := newReconciler(fake, 90*time.Second)

			result, err := rec.Ensure(ctx, demoSpec(), true)
			Expect(err).NotTo(HaveOccurred())

			Expect(result.Changed).To(BeTrue())
			Expect(fake.CreateCalls).To(BeEmpty())
		})

		It("reports no change for an existing instance", func() {
			fake := &FakeYC{ListQueue: []string{runningDemo("")}}
			rec := newReconciler(fake, 90*time.Second)

			result, err := rec.Ensure(ctx, demoSpec(), true)
			Expect(err).NotTo(HaveOccurred())

			Expect(result.Changed).To(BeFalse())
			Expect(fake.CreateCalls).To(BeEmpty())
		})
	})

	Describe("running two passes with identical input", func() {
		It("only changes anything on the first pass", func() {
			fake := &FakeYC{ListQueue: []string{"[]"}}
			fake.OnCreate = func() {
				fake.ListQueue = []string{runningDemo("1.2.3.4")}
				fake.listCalls = 0
			}
			rec := newReconciler(fake, 90*time.Second)

			first, err := rec.Ensure(ctx, demoSpec(), false)
			Expect(err).NotTo(HaveOccurred())
			second, err := rec.Ensure(ctx, demoSpec(), false)
			Expect(err).NotTo(HaveOccurred())

			Expect(first.Changed).To(BeTrue())
			Expect(second.Changed).To(BeFalse())
			Expect(second.PublicIP).To(Equal("1.2.3.4"))
			Expect(fake.CreateCalls).To(HaveLen(1))
		})
	})

	Describe("invalid desired state", func() {
		It("is rejected before any yc invocation", func() {
			fake := &FakeYC{ListQueue: []string{"[]"}}
			rec := newReconciler(fake, 90*time.Second)

			spec := demoSpec()
			spec.CoreFraction = 33

			_, err := rec.Ensure(ctx, spec, false)
			Expect(err).To(MatchError(ContainSubstring("core_fraction must be one of 5, 20, 50, 100")))
			Expect(fake.listCalls).To(BeZero())
			Expect(fake.CreateCalls).To(BeEmpty())
		})
	})
})
