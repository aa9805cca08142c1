package main

import (
	"fmt"
	"io"
	"runtime"
	"text/template"
	"time"

	"github.com/plus3/roids/ecs"
)

type Report struct {
	// Configuration
	Duration    time.Duration
	Entities    int
	MaxEntities int
	Seed        uint64
	Session     string

	// Results
	TotalUpdates   int64
	TotalTime      time.Duration
	UpdateTime     Stats
	GCPauseMetrics bool
	MemStatsStart  runtime.MemStats
	MemStatsEnd    runtime.MemStats

	BulletsFired       int
	Collisions         int
	AsteroidsRespawned int
	Swept              int
	Scheduler          *ecs.SchedulerStats
	World              ecs.WorldStats
}

type Stats struct {
	Min     time.Duration
	Max     time.Duration
	Avg     time.Duration
	Samples []time.Duration
}

func (s *Stats) Finalize() {
	if len(s.Samples) == 0 {
		return
	}

	var total time.Duration
	s.Min = s.Samples[0]
	s.Max = s.Samples[0]

	for _, sample := range s.Samples {
		if sample < s.Min {
			s.Min = sample
		}
		if sample > s.Max {
			s.Max = sample
		}
		total += sample
	}
	s.Avg = total / time.Duration(len(s.Samples))
}

// collect copies the simulation's counters and the world's stats into the report.
func (r *Report) collect(sim *simulation) {
	r.BulletsFired = sim.gun.Fired
	r.Collisions = sim.collisions.Hits
	r.AsteroidsRespawned = sim.respawn.Total
	r.Swept = sim.sweep.Swept
	r.Scheduler = sim.world.Scheduler().Stats()
	r.World = sim.world.CollectStats()
}

func (r *Report) Generate(w io.Writer) error {
	const reportTemplate = `
# ECS Stress Test Report

## Test Configuration
- **Run Duration:** {{.Duration}}
- **Asteroids:** {{.Entities}}
- **Entity Limit:** {{.MaxEntities}}
- **Seed:** {{.Seed}}
- **Session:** {{.Session}}

## Performance Results
- **Total Updates:** {{.TotalUpdates}}
- **Total Test Time:** {{.TotalTime}}
- **Update Time (Frame):**
  - **Avg:** {{.UpdateTime.Avg}}
  - **Min:** {{.UpdateTime.Min}}
  - **Max:** {{.UpdateTime.Max}}

## Simulation
- **Bullets Fired:** {{.BulletsFired}}
- **Collisions:** {{.Collisions}}
- **Asteroids Respawned:** {{.AsteroidsRespawned}}
- **Entities Swept:** {{.Swept}}
{{with .Scheduler}}
## Systems ({{.FrameCount}} frames, {{.TotalExecutions}} executions)
| System | Runs | Avg | Min | Max |
|---|---|---|---|---|
{{range .Systems}}| {{.Name}} | {{.ExecutionCount}} | {{.AvgDuration}} | {{.MinDuration}} | {{.MaxDuration}} |
{{end}}{{end}}
## World ({{.World.EntityCount}}/{{.World.MaxEntities}} entities, {{.World.KindCount}}/{{.World.MaxComponents}} kinds)
| Kind | Name | Flavor | Entities |
|---|---|---|---|
{{range .World.KindBreakdown}}| {{.Kind}} | {{.Name}} | {{flavor .}} | {{.EntityCount}} |
{{end}}
## Memory Usage (MiB)
- Heap Alloc:     {{mb .MemStatsStart.HeapAlloc}} (start) -> {{mb .MemStatsEnd.HeapAlloc}} (end)
- Total Alloc:    {{mb .MemStatsStart.TotalAlloc}} (start) -> {{mb .MemStatsEnd.TotalAlloc}} (end) -> delta: {{mb (bsub .MemStatsEnd.TotalAlloc .MemStatsStart.TotalAlloc)}}
- Sys Memory:     {{mb .MemStatsStart.Sys}} (start) -> {{mb .MemStatsEnd.Sys}} (end)
- Num GC:         {{.MemStatsStart.NumGC}} (start) -> {{.MemStatsEnd.NumGC}} (end) -> delta: {{usub .MemStatsEnd.NumGC .MemStatsStart.NumGC}}

{{if .GCPauseMetrics}}
## GC Pause Durations
- **Total GC Pause:** {{bsub .MemStatsEnd.PauseTotalNs .MemStatsStart.PauseTotalNs | ns}}
- **Num GC Cycles:** {{ usub .MemStatsEnd.NumGC .MemStatsStart.NumGC }}
{{end}}
`

	fm := template.FuncMap{
		"mb": func(v any) string {
			switch val := v.(type) {
			case uint64:
				return fmt.Sprintf("%.2f", float64(val)/1024/1024)
			case int64:
				return fmt.Sprintf("%.2f", float64(val)/1024/1024)
			default:
				return "N/A"
			}
		},
		"bsub": func(a, b uint64) int64 {
			return int64(a) - int64(b)
		},
		"usub": func(a, b uint32) uint32 {
			return a - b
		},
		"ns": func(ns int64) string {
			return time.Duration(ns).String()
		},
		"flavor": func(ks ecs.KindStats) string {
			switch {
			case ks.Tag:
				return "tag"
			case ks.Sparse:
				return "sparse"
			default:
				return "dense"
			}
		},
	}

	tmpl, err := template.New("report").Funcs(fm).Parse(reportTemplate)
	if err != nil {
		return err
	}

	return tmpl.Execute(w, r)
}
