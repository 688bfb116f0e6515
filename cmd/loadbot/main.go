// Command loadbot drives headless synthetic players against a running sync
// server. Each bot connects over WebSocket, matchmakes into a room, wanders
// in a circle while streaming poses, fires bullets, and occasionally shoots
// down birds. Useful for exercising room capacity limits, relay fan-out, and
// score convergence without a headset.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand"
	"os"
	"os/signal"
	stdsync "sync"
	"syscall"
	"time"

	"github.com/skyshot-game/skyshot/game/config"
	"github.com/skyshot-game/skyshot/game/protocol"
	gamesync "github.com/skyshot-game/skyshot/game/sync"
)

var (
	serverURL    = flag.String("url", "ws://localhost:8080/ws", "WebSocket relay URL")
	botCount     = flag.Int("bots", 4, "Number of bots to run")
	roomCode     = flag.String("room", "", "Room code to join (default: automatic matchmaking)")
	duration     = flag.Duration("duration", 30*time.Second, "How long the bots run")
	tick         = flag.Duration("tick", 50*time.Millisecond, "Simulated frame interval")
	fireInterval = flag.Duration("fire-interval", 2*time.Second, "How often each bot fires a bullet")
	configDir    = flag.String("config-dir", "", "Directory containing server profiles (optional)")
	profile      = flag.String("profile", "", "Server profile whose sync settings the bots adopt")
)

// botStats aggregates what a single bot did during its run.
type botStats struct {
	Shots int
	Kills int
	Errs  int
}

func main() {
	flag.Parse()

	opts, err := resolveOptions(*configDir, *profile)
	if err != nil {
		log.Fatalf("Failed to resolve sync options: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	// Let Ctrl-C end the run early but still print the summary.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-stop:
			log.Printf("Received signal: %v. Stopping bots...", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	log.Printf("Starting %d bots against %s for %s", *botCount, *serverURL, *duration)

	var wg stdsync.WaitGroup
	results := make([]botStats, *botCount)
	for i := 0; i < *botCount; i++ {
		wg.Add(1)
		go func(index int) {
			defer wg.Done()
			results[index] = runBot(ctx, index, *serverURL, *roomCode, opts, *fireInterval, *tick)
		}(i)
		// Stagger connects so room creation and matchmaking interleave.
		time.Sleep(25 * time.Millisecond)
	}
	wg.Wait()

	var total botStats
	for i, r := range results {
		log.Printf("[BOT %d] shots=%d kills=%d errors=%d", i, r.Shots, r.Kills, r.Errs)
		total.Shots += r.Shots
		total.Kills += r.Kills
		total.Errs += r.Errs
	}
	log.Printf("Done: %d bots, %d shots, %d kills, %d errors", *botCount, total.Shots, total.Kills, total.Errs)
}

// resolveOptions loads sync options from a server profile when one is given,
// otherwise returns zero options so the session defaults apply.
func resolveOptions(dir, name string) (gamesync.Options, error) {
	if dir == "" || name == "" {
		return gamesync.Options{}, nil
	}
	manager, err := config.NewManager(dir)
	if err != nil {
		return gamesync.Options{}, fmt.Errorf("failed to create config manager: %w", err)
	}
	serverConfig, err := manager.LoadConfig(name)
	if err != nil {
		return gamesync.Options{}, fmt.Errorf("failed to load profile %q: %w", name, err)
	}
	return serverConfig.SyncOptions(), nil
}

// runBot runs one synthetic player until the context expires.
func runBot(ctx context.Context, index int, url, room string, opts gamesync.Options, fireEvery, frame time.Duration) botStats {
	var stats botStats

	s := gamesync.NewSession(url, nil, opts)
	if err := s.Connect(ctx); err != nil {
		log.Printf("[BOT %d] connect failed: %v", index, err)
		stats.Errs++
		return stats
	}
	defer s.Close()

	var code string
	var err error
	if room != "" {
		code, err = room, s.JoinRoom(ctx, room)
	} else {
		code, err = s.AutoJoin(ctx)
	}
	if err != nil {
		log.Printf("[BOT %d] join failed: %v", index, err)
		stats.Errs++
		return stats
	}
	log.Printf("[BOT %d] joined room %s as %s (host=%v)", index, code, s.ClientID(), s.IsHost())

	rng := rand.New(rand.NewSource(time.Now().UnixNano() + int64(index)))
	start := time.Now()
	lastFire := start

	ticker := time.NewTicker(frame)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return stats
		case now := <-ticker.C:
			if s.State() == gamesync.StateDisconnected {
				log.Printf("[BOT %d] connection lost", index)
				stats.Errs++
				return stats
			}

			s.SetLocalPose(wanderPose(index, now.Sub(start).Seconds()))
			s.Advance(now)
			if s.State() != gamesync.StateInRoom {
				continue
			}

			// The host keeps one bird in the air at all times.
			if s.IsHost() {
				if _, _, birds, _ := s.Tracker().Counts(); birds == 0 {
					if _, err := s.SpawnBird(randomOrbit(rng)); err != nil {
						log.Printf("[BOT %d] spawn bird failed: %v", index, err)
						stats.Errs++
					}
				}
			}

			if now.Sub(lastFire) < fireEvery {
				continue
			}
			lastFire = now

			pose := wanderPose(index, now.Sub(start).Seconds())
			dir := protocol.Vec3{rng.Float64()*2 - 1, 0.5 + rng.Float64(), rng.Float64()*2 - 1}
			if _, err := s.FireBullet(pose.HeadPosition, dir, 40); err != nil {
				stats.Errs++
			} else {
				stats.Shots++
			}

			// Every few shots connects: report a hit, and a kill on the
			// third hit, mirroring how a real client scores.
			if birds := s.Tracker().Birds(); len(birds) > 0 && rng.Intn(3) == 0 {
				target := birds[rng.Intn(len(birds))]
				if target.Hits < 2 {
					if err := s.ReportBirdHit(target.ID, s.ClientID()); err != nil {
						stats.Errs++
					}
				} else if err := s.ReportBirdKilled(target.ID, s.ClientID(), 10); err != nil {
					stats.Errs++
				} else {
					stats.Kills++
				}
			}
		}
	}
}

// wanderPose walks the bot around a circle at roughly head height, offset by
// bot index so bots spread out instead of stacking.
func wanderPose(index int, elapsed float64) protocol.PlayerPose {
	angle := float64(index)*(math.Pi/4) + elapsed*0.5
	pos := protocol.Vec3{4 * math.Cos(angle), 0, 4 * math.Sin(angle)}
	return protocol.PlayerPose{
		Position:     pos,
		HeadPosition: protocol.Vec3{pos[0], 1.6, pos[2]},
		HeadRotation: protocol.IdentityQuat,
	}
}

// randomOrbit picks plausible orbit parameters for a bird spawn.
func randomOrbit(rng *rand.Rand) gamesync.OrbitParams {
	return gamesync.OrbitParams{
		Origin:       protocol.Vec3{rng.Float64()*10 - 5, 0, rng.Float64()*10 - 5},
		Radius:       3 + rng.Float64()*5,
		AngularSpeed: 0.5 + rng.Float64(),
		BaseHeight:   8 + rng.Float64()*4,
		BobAmplitude: 0.5 + rng.Float64(),
		BobFrequency: 0.5 + rng.Float64(),
	}
}
