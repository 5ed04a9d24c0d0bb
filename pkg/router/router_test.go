package router

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"sync"
	"testing"

	"github.com/mkallio/guildlog/pkg/event"
	"github.com/mkallio/guildlog/pkg/logconfig"
	"github.com/mkallio/guildlog/pkg/registry"
)

// fakeConfigs is an in-memory logconfig.Reader.
type fakeConfigs struct {
	mu      sync.Mutex
	configs map[uint64]*logconfig.GuildConfig
	err     error
}

func (f *fakeConfigs) Get(_ context.Context, guildID uint64) (*logconfig.GuildConfig, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	cfg, ok := f.configs[guildID]
	if !ok {
		return nil, logconfig.ErrNotFound
	}
	cp := *cfg
	return &cp, nil
}

func (f *fakeConfigs) setEnabled(guildID uint64, enabled bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.configs[guildID].Enabled = enabled
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func guildConfig(guildID uint64, enabled bool, slots map[event.Slot]uint64) *logconfig.GuildConfig {
	cfg := &logconfig.GuildConfig{GuildID: guildID, Enabled: enabled}
	for slot, ch := range slots {
		cfg.Channels[slot] = ch
	}
	return cfg
}

func TestResolveUnconfiguredGuild(t *testing.T) {
	r := New(&fakeConfigs{configs: map[uint64]*logconfig.GuildConfig{}}, registry.NewStatic(), testLogger())

	for _, kind := range event.Kinds() {
		d := r.Resolve(context.Background(), 999, kind)
		if d.Deliver {
			t.Errorf("kind %v: unconfigured guild should suppress", kind)
		}
		if d.Reason != ReasonUnconfigured {
			t.Errorf("kind %v: reason = %v, want unconfigured", kind, d.Reason)
		}
	}
}

func TestResolveDisabledGuild(t *testing.T) {
	// Channels are configured but the master switch is off.
	cfgs := &fakeConfigs{configs: map[uint64]*logconfig.GuildConfig{
		1: guildConfig(1, false, map[event.Slot]uint64{
			event.SlotUserBanned: 42,
			event.SlotUserJoined: 7,
		}),
	}}
	reg := registry.NewStatic()
	reg.Add(1, 42)
	reg.Add(1, 7)
	r := New(cfgs, reg, testLogger())

	for _, kind := range event.Kinds() {
		d := r.Resolve(context.Background(), 1, kind)
		if d.Deliver || d.Reason != ReasonDisabled {
			t.Errorf("kind %v: got %+v, want suppressed/disabled", kind, d)
		}
	}
}

func TestResolveDecisionTable(t *testing.T) {
	cfgs := &fakeConfigs{configs: map[uint64]*logconfig.GuildConfig{
		1: guildConfig(1, true, map[event.Slot]uint64{
			event.SlotUserBanned: 42,
			event.SlotUserJoined: 7,
		}),
	}}
	reg := registry.NewStatic()
	reg.Add(1, 7) // channel 42 does not exist anymore
	r := New(cfgs, reg, testLogger())

	tests := []struct {
		name        string
		kind        event.Kind
		wantDeliver bool
		wantChannel uint64
		wantReason  Reason
	}{
		{"configured and resolvable", event.UserJoined, true, 7, ReasonNone},
		{"configured but channel gone", event.UserBanned, false, 0, ReasonChannelUnavailable},
		{"shared slot follows same channel", event.UserBannedByBot, false, 0, ReasonChannelUnavailable},
		{"unset slot", event.MessageDeleted, false, 0, ReasonNoChannel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := r.Resolve(context.Background(), 1, tt.kind)
			if d.Deliver != tt.wantDeliver || d.ChannelID != tt.wantChannel || d.Reason != tt.wantReason {
				t.Errorf("Resolve(%v) = %+v, want deliver=%v channel=%d reason=%v",
					tt.kind, d, tt.wantDeliver, tt.wantChannel, tt.wantReason)
			}
		})
	}
}

func TestResolveIdempotent(t *testing.T) {
	cfgs := &fakeConfigs{configs: map[uint64]*logconfig.GuildConfig{
		1: guildConfig(1, true, map[event.Slot]uint64{event.SlotUserJoined: 7}),
	}}
	reg := registry.NewStatic()
	reg.Add(1, 7)
	r := New(cfgs, reg, testLogger())

	first := r.Resolve(context.Background(), 1, event.UserJoined)
	second := r.Resolve(context.Background(), 1, event.UserJoined)
	if first != second {
		t.Errorf("Resolve not idempotent: %+v then %+v", first, second)
	}
}

func TestResolveStoreErrorFailsSafe(t *testing.T) {
	cfgs := &fakeConfigs{err: errors.New("connection refused")}
	r := New(cfgs, registry.NewStatic(), testLogger())

	d := r.Resolve(context.Background(), 1, event.UserBanned)
	if d.Deliver {
		t.Fatal("store error must suppress, not deliver")
	}
	if d.Reason != ReasonConfigUnavailable {
		t.Errorf("reason = %v, want config_unavailable", d.Reason)
	}
}

func TestResolveTenantIsolationUnderConcurrency(t *testing.T) {
	// Guild 1 is stable and enabled; guild 2 gets toggled concurrently.
	// Guild 1's decisions must never observe guild 2's configuration.
	cfgs := &fakeConfigs{configs: map[uint64]*logconfig.GuildConfig{
		1: guildConfig(1, true, map[event.Slot]uint64{event.SlotUserJoined: 7}),
		2: guildConfig(2, true, map[event.Slot]uint64{event.SlotUserJoined: 9}),
	}}
	reg := registry.NewStatic()
	reg.Add(1, 7)
	reg.Add(2, 9)
	r := New(cfgs, reg, testLogger())

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		rng := rand.New(rand.NewSource(1))
		for i := 0; i < 500; i++ {
			cfgs.setEnabled(2, rng.Intn(2) == 0)
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			d := r.Resolve(context.Background(), 1, event.UserJoined)
			if !d.Deliver || d.ChannelID != 7 {
				select {
				case errCh <- errors.New("guild 1 decision changed while toggling guild 2"):
				default:
				}
				return
			}
		}
	}()

	wg.Wait()
	select {
	case err := <-errCh:
		t.Fatal(err)
	default:
	}
}
