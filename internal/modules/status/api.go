// Package status provides health, status and metrics endpoints
package status

import (
	"net/http"
	"runtime"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/eientei/eagle/internal/bot"
	"github.com/eientei/eagle/internal/router"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
)

const pendingMetric = "eagle_restorations_pending"

// New provides module instance
func New() bot.Module {
	return &module{}
}

type module struct {
	config  *bot.Configuration
	started time.Time
}

type guildStatus struct {
	Ready bool   `json:"ready"`
	ID    string `json:"id,omitempty"`
	Name  string `json:"name,omitempty"`
}

type systemStatus struct {
	Platform      string  `json:"platform,omitempty"`
	Kernel        string  `json:"kernel,omitempty"`
	GoVersion     string  `json:"go_version"`
	CPUs          int     `json:"cpus"`
	MemoryUsed    float64 `json:"memory_used_percent"`
	Goroutines    int     `json:"goroutines"`
	UptimeSeconds int64   `json:"uptime_seconds"`
}

type statusResponse struct {
	Guild     guildStatus  `json:"guild"`
	Pending   int          `json:"pending_restorations"`
	Latency   string       `json:"gateway_latency,omitempty"`
	System    systemStatus `json:"system"`
	Timestamp time.Time    `json:"timestamp"`
}

func (mod *module) Initialize(config *bot.Configuration) error {
	mod.config = config
	mod.started = time.Now()

	for _, c := range []prometheus.Collector{
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	} {
		err := config.Registry.Register(c)
		if err != nil {
			return err
		}
	}

	config.Router.Get("/", mod.handleHello)
	config.Router.Group("/api").Get("/status", mod.handleStatus)
	config.Router.Handle("/metrics", router.MetricsHandler(config.Registry))

	return nil
}

func (mod *module) Configure(config *bot.Configuration, guild *discordgo.Guild) {

}

func (mod *module) Shutdown(config *bot.Configuration) {

}

func (mod *module) handleHello(ctx *router.Context) error {
	return ctx.Text(http.StatusOK, "Hello, world!")
}

func (mod *module) handleStatus(ctx *router.Context) error {
	resp := &statusResponse{
		Guild: guildStatus{
			Ready: mod.config.Directory.Ready(),
		},
		Pending:   mod.pending(),
		System:    mod.system(),
		Timestamp: time.Now().UTC(),
	}

	if guild := mod.config.Guild(); guild != nil {
		resp.Guild.ID = guild.ID
		resp.Guild.Name = guild.Name
	}

	if mod.config.Discord != nil {
		resp.Latency = mod.config.Discord.HeartbeatLatency().String()
	}

	return ctx.JSON(http.StatusOK, resp)
}

func (mod *module) pending() int {
	families, err := mod.config.Registry.Gather()
	if err != nil {
		mod.config.Log.WithError(err).Error("Gathering metrics")
		return 0
	}

	for _, f := range families {
		if f.GetName() != pendingMetric {
			continue
		}

		for _, m := range f.GetMetric() {
			return int(m.GetGauge().GetValue())
		}
	}

	return 0
}

func (mod *module) system() systemStatus {
	s := systemStatus{
		GoVersion:     runtime.Version(),
		Goroutines:    runtime.NumGoroutine(),
		UptimeSeconds: int64(time.Since(mod.started) / time.Second),
	}

	if n, err := cpu.Counts(true); err == nil {
		s.CPUs = n
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		s.MemoryUsed = vm.UsedPercent
	}

	if info, err := host.Info(); err == nil {
		s.Platform = info.Platform + " " + info.PlatformVersion
		s.Kernel = info.KernelVersion
	}

	return s
}
