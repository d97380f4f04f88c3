package sweep_test

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/netsens/internal/dynamo"
	"github.com/san-kum/netsens/internal/logging"
	"github.com/san-kum/netsens/internal/network"
	"github.com/san-kum/netsens/internal/sweep"
)

// A -> B -> C plus an isolated D
func chainModel() *network.Model {
	sp := func(name string) network.Species {
		return network.Species{Name: name, Tau: 1, Ymax: 1, N: 1.4, EC50: 0.5}
	}
	return &network.Model{
		Name:    "chain",
		Species: []network.Species{sp("A"), sp("B"), sp("C"), sp("D")},
		Reactions: []network.Reaction{
			{ID: "r1", Inputs: []network.Input{{Species: 0}}, Output: 1, Weight: 1},
			{ID: "r2", Inputs: []network.Input{{Species: 1}}, Output: 2, Weight: 1},
		},
	}
}

// A activates C, B inhibits C, both through separate reactions
func mixedModel() *network.Model {
	sp := func(name string, tau float64) network.Species {
		return network.Species{Name: name, Tau: tau, Ymax: 1, N: 1.4, EC50: 0.5}
	}
	return &network.Model{
		Name:    "mixed",
		Species: []network.Species{sp("A", 1), sp("B", 2), sp("C", 0.5), sp("E", 1)},
		Reactions: []network.Reaction{
			{ID: "r1", Inputs: []network.Input{{Species: 0}, {Species: 1, Inhibit: true}}, Output: 2, Weight: 0.9},
			{ID: "r2", Inputs: []network.Input{{Species: 3}}, Output: 2, Weight: 0.4},
			{ID: "r3", Inputs: []network.Input{{Species: 2}}, Output: 1, Weight: 0.6},
		},
	}
}

func config(phenotype int) sweep.Config {
	cfg := sweep.DefaultConfig()
	cfg.Phenotype = phenotype
	return cfg
}

func byIndex(scenarios []sweep.Scenario, i int) sweep.Scenario {
	for _, s := range scenarios {
		if s.Index == i {
			return s
		}
	}
	Fail("no scenario for index")
	return sweep.Scenario{}
}

var _ = Describe("Driver", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	Describe("configuration", func() {
		It("rejects an out of range phenotype", func() {
			_, err := sweep.NewDriver(chainModel(), config(9), nil)
			Expect(errors.Is(err, sweep.ErrInvalidPhenotype)).To(BeTrue())
		})

		It("rejects out of range exclusions", func() {
			cfg := config(2)
			cfg.Excluded = []int{-1}
			_, err := sweep.NewDriver(chainModel(), cfg, nil)
			Expect(errors.Is(err, sweep.ErrInvalidExcluded)).To(BeTrue())
		})

		It("rejects a full-capacity knockdown level", func() {
			cfg := config(2)
			cfg.Level = 1
			_, err := sweep.NewDriver(chainModel(), cfg, nil)
			Expect(errors.Is(err, sweep.ErrInvalidLevel)).To(BeTrue())
		})

		It("rejects an invalid model before integrating", func() {
			m := chainModel()
			m.Species[0].Tau = 0
			_, err := sweep.NewDriver(m, config(2), nil)
			Expect(errors.Is(err, network.ErrInvalidModel)).To(BeTrue())
		})

		It("rejects an unknown integrator", func() {
			cfg := config(2)
			cfg.Integrator = "leapfrog"
			_, err := sweep.NewDriver(chainModel(), cfg, nil)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("baseline", func() {
		It("settles source species at ymax", func() {
			m := chainModel()
			m.Species[0].Ymax = 0.7
			d, err := sweep.NewDriver(m, config(2), nil)
			Expect(err).NotTo(HaveOccurred())

			base, err := d.Baseline(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(base.Values[0]).To(BeNumerically("~", 0.7, 1e-6))
			Expect(base.Values[3]).To(BeNumerically("~", 1.0, 1e-6))
			Expect(base.Stable).To(BeTrue())
			Expect(base.Residual).To(BeNumerically("<", 1e-6))
			Expect(len(base.Trajectory.States)).To(BeNumerically(">", 2))
		})
	})

	Describe("sweep over a linear chain", func() {
		var (
			d         *sweep.Driver
			base      *sweep.Baseline
			scenarios []sweep.Scenario
		)

		BeforeEach(func() {
			var err error
			d, err = sweep.NewDriver(chainModel(), config(2), nil)
			Expect(err).NotTo(HaveOccurred())
			base, err = d.Baseline(ctx)
			Expect(err).NotTo(HaveOccurred())
			scenarios, err = d.Run(ctx, base)
			Expect(err).NotTo(HaveOccurred())
		})

		It("returns one scenario per species in index order", func() {
			Expect(scenarios).To(HaveLen(4))
			for k, s := range scenarios {
				Expect(s.Index).To(Equal(k))
				Expect(s.Species).To(Equal(chainModel().Species[k].Name))
				Expect(s.Failed()).To(BeFalse())
			}
		})

		It("gives identical deltas for every node on the sole path", func() {
			a, b := byIndex(scenarios, 0), byIndex(scenarios, 1)
			Expect(a.Delta).To(BeNumerically("~", b.Delta, 1e-9))
			Expect(a.Magnitude).To(BeNumerically(">", 0.5))
		})

		It("drives the knocked phenotype itself to zero", func() {
			c := byIndex(scenarios, 2)
			Expect(c.Phenotype).To(BeNumerically("~", 0, 1e-9))
			Expect(c.Perturbed[2]).To(BeNumerically("~", 0, 1e-9))
		})

		It("leaves the phenotype alone when the knocked node has no path to it", func() {
			dd := byIndex(scenarios, 3)
			Expect(dd.Magnitude).To(BeNumerically("<", 1e-9))
			Expect(dd.Perturbed[3]).To(BeNumerically("~", 0, 1e-9))
		})

		It("marks which knockdowns have a reaction path to the phenotype", func() {
			for _, i := range []int{0, 1, 2} {
				Expect(byIndex(scenarios, i).Reaches).To(BeTrue())
			}
			Expect(byIndex(scenarios, 3).Reaches).To(BeFalse())
		})

		It("reports the same scenario through Knockdown", func() {
			single, err := d.Knockdown(ctx, base, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(single.Delta).To(Equal(byIndex(scenarios, 1).Delta))
		})
	})

	Describe("independence", func() {
		It("produces identical results regardless of worker count", func() {
			run := func(workers int) []sweep.Scenario {
				cfg := config(2)
				cfg.Workers = workers
				d, err := sweep.NewDriver(mixedModel(), cfg, nil)
				Expect(err).NotTo(HaveOccurred())
				a, err := d.Analyze(ctx)
				Expect(err).NotTo(HaveOccurred())
				return a.Scenarios
			}

			serial := run(1)
			parallel := run(8)
			Expect(parallel).To(HaveLen(len(serial)))
			for k := range serial {
				Expect(parallel[k].Index).To(Equal(serial[k].Index))
				Expect(parallel[k].Delta).To(Equal(serial[k].Delta))
				Expect(parallel[k].Perturbed).To(Equal(serial[k].Perturbed))
			}
		})

		It("does not leak a knockdown into the driver's parameters", func() {
			d, err := sweep.NewDriver(mixedModel(), config(2), nil)
			Expect(err).NotTo(HaveOccurred())
			before, err := d.Baseline(ctx)
			Expect(err).NotTo(HaveOccurred())
			_, err = d.Run(ctx, before)
			Expect(err).NotTo(HaveOccurred())
			after, err := d.Baseline(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(after.Values).To(Equal(before.Values))
		})
	})

	Describe("exclusions", func() {
		It("never knocks excluded species", func() {
			cfg := config(2)
			cfg.Excluded = []int{2, 3}
			d, err := sweep.NewDriver(chainModel(), cfg, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(d.Targets()).To(Equal([]int{0, 1}))

			a, err := d.Analyze(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(a.Scenarios).To(HaveLen(2))
			Expect(a.PhenotypeName()).To(Equal("C"))
		})
	})

	Describe("partial knockdown", func() {
		It("moves the phenotype less than a full knockdown", func() {
			full, err := sweep.Analyze(ctx, chainModel(), config(2), nil)
			Expect(err).NotTo(HaveOccurred())

			cfg := config(2)
			cfg.Level = 0.5
			half, err := sweep.Analyze(ctx, chainModel(), cfg, nil)
			Expect(err).NotTo(HaveOccurred())

			Expect(half.Scenarios[0].Magnitude).To(BeNumerically(">", 0))
			Expect(half.Scenarios[0].Magnitude).To(BeNumerically("<", full.Scenarios[0].Magnitude))
		})
	})

	Describe("failures", func() {
		It("records a per-scenario timeout and keeps going", func() {
			cfg := config(2)
			cfg.Integrator = "euler"
			cfg.Sim.Dt = 1e-4
			cfg.Sim.MaxSteps = 1_000_000
			cfg.ScenarioTimeout = time.Nanosecond
			d, err := sweep.NewDriver(chainModel(), cfg, nil)
			Expect(err).NotTo(HaveOccurred())
			base, err := d.Baseline(ctx)
			Expect(err).NotTo(HaveOccurred())

			scenarios, err := d.Run(ctx, base)
			Expect(err).NotTo(HaveOccurred())
			Expect(scenarios).To(HaveLen(4))
			for _, s := range scenarios {
				Expect(s.Failed()).To(BeTrue())
				Expect(errors.Is(s.Err, dynamo.ErrContextCanceled)).To(BeTrue())
				Expect(math.IsNaN(s.Delta)).To(BeTrue())
				Expect(s.Perturbed).To(BeNil())
			}
		})

		It("flags scenarios that do not settle", func() {
			m := chainModel()
			for i := range m.Species {
				m.Species[i].Tau = 50
			}
			d, err := sweep.NewDriver(m, config(2), nil)
			Expect(err).NotTo(HaveOccurred())
			base, err := d.Baseline(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(base.Warning).NotTo(BeEmpty())

			s, err := d.Knockdown(ctx, base, 3)
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Warning).NotTo(BeEmpty())
		})

		It("aborts when the parent context is canceled", func() {
			d, err := sweep.NewDriver(chainModel(), config(2), nil)
			Expect(err).NotTo(HaveOccurred())
			base, err := d.Baseline(ctx)
			Expect(err).NotTo(HaveOccurred())

			canceled, cancel := context.WithCancel(ctx)
			cancel()
			_, err = d.Run(canceled, base)
			Expect(errors.Is(err, context.Canceled)).To(BeTrue())
		})

		It("rejects a misaligned baseline", func() {
			d, err := sweep.NewDriver(chainModel(), config(2), nil)
			Expect(err).NotTo(HaveOccurred())
			_, err = d.Run(ctx, &sweep.Baseline{Values: dynamo.State{1}})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("trace logging", func() {
		It("logs every accepted step of a scenario", func() {
			var buf strings.Builder
			d, err := sweep.NewDriver(chainModel(), config(2), logging.NewLogger("trace", &buf))
			Expect(err).NotTo(HaveOccurred())
			base, err := d.Baseline(ctx)
			Expect(err).NotTo(HaveOccurred())
			buf.Reset()

			s, err := d.Knockdown(ctx, base, 1)
			Expect(err).NotTo(HaveOccurred())
			out := buf.String()
			Expect(out).To(ContainSubstring("level=TRACE"))
			Expect(out).To(ContainSubstring("msg=step"))
			Expect(out).To(ContainSubstring("scenario=B"))
			Expect(strings.Count(out, "msg=step")).To(BeNumerically(">=", s.Steps))
		})

		It("stays quiet above trace level", func() {
			var buf strings.Builder
			d, err := sweep.NewDriver(chainModel(), config(2), logging.NewLogger("debug", &buf))
			Expect(err).NotTo(HaveOccurred())
			_, err = d.Analyze(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(buf.String()).NotTo(ContainSubstring("msg=step"))
		})
	})

	Describe("event log", func() {
		It("writes one line per scenario", func() {
			dir := GinkgoT().TempDir()
			events := logging.NewEventLog(dir)
			DeferCleanup(events.Close)

			d, err := sweep.NewDriver(chainModel(), config(2), logging.NewLogger("debug", GinkgoWriter))
			Expect(err).NotTo(HaveOccurred())
			d.SetEventLog(events)
			_, err = d.Analyze(ctx)
			Expect(err).NotTo(HaveOccurred())

			data, err := os.ReadFile(filepath.Join(dir, "events.jsonl"))
			Expect(err).NotTo(HaveOccurred())
			Expect(strings.Count(string(data), "\n")).To(Equal(4))
			Expect(string(data)).To(ContainSubstring(`"status":"ok"`))
		})
	})
})
