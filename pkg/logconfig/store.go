package logconfig

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mkallio/guildlog/pkg/event"
)

// Store provides database operations for guild log configs.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a Store backed by the given pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const getQuery = `
SELECT guild_id, enabled,
       message_updated_channel, message_deleted_channel,
       user_banned_channel, user_unbanned_channel,
       user_joined_channel, user_left_channel,
       member_updates_channel, user_kicked_channel,
       user_muted_channel, user_unmuted_channel
FROM guild_log_configs
WHERE guild_id = $1`

// Get fetches a guild's config. Returns ErrNotFound for unconfigured guilds.
func (s *Store) Get(ctx context.Context, guildID uint64) (*GuildConfig, error) {
	var (
		cfg GuildConfig
		gid int64
		ch  [10]int64
	)
	err := s.pool.QueryRow(ctx, getQuery, int64(guildID)).Scan(
		&gid, &cfg.Enabled,
		&ch[event.SlotMessageUpdated], &ch[event.SlotMessageDeleted],
		&ch[event.SlotUserBanned], &ch[event.SlotUserUnbanned],
		&ch[event.SlotUserJoined], &ch[event.SlotUserLeft],
		&ch[event.SlotMemberUpdates], &ch[event.SlotUserKicked],
		&ch[event.SlotUserMuted], &ch[event.SlotUserUnmuted],
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("loading guild config: %w", err)
	}

	cfg.GuildID = uint64(gid)
	for i, c := range ch {
		cfg.Channels[i] = uint64(c)
	}
	return &cfg, nil
}

// ensure lazily creates the config record for a guild with all channels
// unset and logging disabled. First mutating command creates it; nothing
// else does.
func ensure(ctx context.Context, tx pgx.Tx, guildID uint64) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO guild_log_configs (guild_id)
		VALUES ($1)
		ON CONFLICT (guild_id) DO NOTHING`, int64(guildID))
	if err != nil {
		return fmt.Errorf("creating guild config: %w", err)
	}
	return nil
}

// SetChannel assigns a destination channel to one slot, creating the guild
// record if needed. A channelID of 0 clears the slot.
func (s *Store) SetChannel(ctx context.Context, guildID uint64, slot event.Slot, channelID uint64) error {
	if !slot.Valid() {
		return fmt.Errorf("invalid channel slot %d", slot)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := ensure(ctx, tx, guildID); err != nil {
		return err
	}

	// Column names come from the closed slot enum, never from input.
	query := fmt.Sprintf(
		"UPDATE guild_log_configs SET %s = $1, updated_at = now() WHERE guild_id = $2",
		slot.Column(),
	)
	if _, err := tx.Exec(ctx, query, int64(channelID), int64(guildID)); err != nil {
		return fmt.Errorf("setting channel: %w", err)
	}

	return tx.Commit(ctx)
}

// Toggle flips the master switch, creating the record if needed, and
// returns the new state. A freshly created record starts disabled, so the
// first toggle enables logging.
func (s *Store) Toggle(ctx context.Context, guildID uint64) (bool, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := ensure(ctx, tx, guildID); err != nil {
		return false, err
	}

	var enabled bool
	err = tx.QueryRow(ctx, `
		UPDATE guild_log_configs
		SET enabled = NOT enabled, updated_at = now()
		WHERE guild_id = $1
		RETURNING enabled`, int64(guildID)).Scan(&enabled)
	if err != nil {
		return false, fmt.Errorf("toggling logger: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return false, err
	}
	return enabled, nil
}
