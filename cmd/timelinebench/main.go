package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/purpleforest/purpleforest/internal/model"
	"github.com/purpleforest/purpleforest/internal/repository"
	"github.com/purpleforest/purpleforest/internal/service"
	"github.com/purpleforest/purpleforest/pkg/database"
)

func must[T any](v T, err error) T { if err != nil { panic(err) }; return v }

func pct(vs []time.Duration, p float64) time.Duration {
	if len(vs) == 0 { return 0 }
	xs := append([]time.Duration(nil), vs...)
	sort.Slice(xs, func(i, j int) bool { return xs[i] < xs[j] })
	k := int(math.Ceil(p*float64(len(xs)))) - 1
	if k < 0 { k = 0 }
	if k >= len(xs) { k = len(xs)-1 }
	return xs[k]
}

func envInt(name string, def int) int {
	if s := os.Getenv(name); s != "" {
		if v, e := strconv.Atoi(s); e == nil && v > 0 { return v }
	}
	return def
}

// Measures fan-out-on-read home timeline latency: one viewer following
// FOLLOWED users who each posted BLOOMS times.
func main() {
	dsn := os.Getenv("DSN")
	if dsn == "" { dsn = ":memory:" }
	db := must(gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true}))
	must(0, database.Migrate(db))

	followed := envInt("FOLLOWED", 100)
	perUser := envInt("BLOOMS", 60)
	reads := envInt("READS", 200)

	ctx := context.Background()
	followRepo := repository.NewFollowRepository(db)
	bloomRepo := repository.NewBloomRepository(db)
	blooms := service.NewBloomService(bloomRepo)
	timelines := service.NewTimelineService(bloomRepo, followRepo, nil)

	viewer := model.User{Username: "viewer", PasswordSalt: []byte("x"), PasswordHash: []byte("x")}
	must(0, db.Create(&viewer).Error)

	for i := 0; i < followed; i++ {
		u := model.User{Username: fmt.Sprintf("u%05d", i), PasswordSalt: []byte("x"), PasswordHash: []byte("x")}
		must(0, db.Create(&u).Error)
		must(0, followRepo.Create(ctx, viewer.ID, u.ID))
		for j := 0; j < perUser; j++ {
			must(blooms.Create(ctx, &u, fmt.Sprintf("bloom %d from %s #bench", j, u.Username), nil))
		}
	}

	durations := make([]time.Duration, 0, reads)
	var got int
	for i := 0; i < reads; i++ {
		start := time.Now()
		views := must(timelines.Home(ctx, &viewer))
		durations = append(durations, time.Since(start))
		got = len(views)
	}

	fmt.Printf("followed=%d blooms/user=%d reads=%d merged=%d\n", followed, perUser, reads, got)
	fmt.Printf("p50=%v p95=%v p99=%v max=%v\n", pct(durations, 0.50), pct(durations, 0.95), pct(durations, 0.99), pct(durations, 1.0))
}
