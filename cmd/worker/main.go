package main

import (
	"context"
	"log"
	"os"

	"outfitapi/dbhelper"
	"outfitapi/services"
	"outfitapi/tasks"

	"github.com/hibiken/asynq"
)

func newNightlyPrecomputeTask() *asynq.Task {
	return asynq.NewTask("outfit:nightly_warm", []byte{})
}

func runScheduler() {
	scheduler := asynq.NewScheduler(asynq.RedisClientOpt{Addr: os.Getenv("ASYNC_BROKER_ADDRESS")}, &asynq.SchedulerOpts{
		LogLevel: asynq.InfoLevel,
	})

	scheduled := []struct {
		cron string
		task *asynq.Task
		desc string
	}{
		{
			cron: "0 5 * * *", // 5:00 AM daily, before the morning rush
			task: newNightlyPrecomputeTask(),
			desc: "Nightly cache warming",
		},
	}

	for _, t := range scheduled {
		entryID, err := scheduler.Register(t.cron, t.task)
		if err != nil {
			log.Fatalf("Failed to register task '%s': %v", t.desc, err)
		}
		log.Printf("Registered task '%s' with ID: %s, cron: %s", t.desc, entryID, t.cron)
	}

	log.Println("Starting scheduler...")
	if err := scheduler.Run(); err != nil {
		log.Fatalf("Scheduler failed: %v", err)
	}
}

func main() {
	srv := asynq.NewServer(
		asynq.RedisClientOpt{Addr: os.Getenv("ASYNC_BROKER_ADDRESS")},
		asynq.Config{Concurrency: 10, Queues: map[string]int{
			"generate": 7,
		}},
	)

	db := dbhelper.SetupDB()

	outfitCache, err := services.NewOutfitCacheService(0)
	if err != nil {
		log.Fatal("[Queue] Failed to initialize outfit cache service")
	}
	engine := services.NewOutfitEngine(outfitCache, services.NewPerformanceMonitor())
	stylist := services.GeminiStylist{}

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeOutfitPrecompute, func(ctx context.Context, t *asynq.Task) error {
		return tasks.HandleOutfitPrecomputeTask(ctx, t, db, engine)
	})
	mux.HandleFunc(tasks.TypeStylistNote, func(ctx context.Context, t *asynq.Task) error {
		return tasks.HandleStylistNoteTask(ctx, t, db, stylist)
	})
	mux.HandleFunc("outfit:nightly_warm", func(ctx context.Context, t *asynq.Task) error {
		return tasks.HandleNightlyWarmTask(ctx, t, db, engine)
	})

	go runScheduler()
	if err := srv.Run(mux); err != nil {
		log.Fatal(err)
	}
}
