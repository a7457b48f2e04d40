package presence

import (
	"Spinduel/models/postgres"
	redis_models "Spinduel/models/redis"
	"Spinduel/services/store"
	"context"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"
)

// Presence documents expire on their own if the heartbeat stops.
const presenceTTL = 2 * time.Minute

// Registry is the presence backend: who is online right now, plus the public
// profile bits other screens need (icon, whether the user is mid-game).
type Registry struct {
	store *store.Store
	db    *gorm.DB
}

func NewRegistry(s *store.Store, db *gorm.DB) *Registry {
	return &Registry{store: s, db: db}
}

type Profile struct {
	Username  string `json:"username"`
	Icon      int    `json:"icon"`
	IsPlaying bool   `json:"is_playing"`
}

// SetStatus writes the user's presence document.
func (r *Registry) SetStatus(ctx context.Context, username, socketId string, status redis_models.PlayerStatus) error {
	now, err := r.store.Now(ctx)
	if err != nil {
		now = time.Now()
	}
	doc := redis_models.PlayerPresence{
		Username: username,
		Status:   status,
		LastPing: now.Unix(),
		SocketID: socketId,
	}
	key := store.FormatPresenceKey(username)
	if err := r.store.SetJSON(ctx, key, doc); err != nil {
		return err
	}
	return r.store.Expire(ctx, key, presenceTTL)
}

// SetOffline removes the presence document outright.
func (r *Registry) SetOffline(ctx context.Context, username string) error {
	return r.store.Delete(ctx, store.FormatPresenceKey(username))
}

// Heartbeat refreshes LastPing and the document TTL.
func (r *Registry) Heartbeat(ctx context.Context, username string) error {
	key := store.FormatPresenceKey(username)
	var doc redis_models.PlayerPresence
	err := r.store.UpdateJSON(ctx, key, &doc, func() error {
		now, err := r.store.Now(ctx)
		if err != nil {
			now = time.Now()
		}
		doc.LastPing = now.Unix()
		return nil
	})
	if err != nil {
		return err
	}
	return r.store.Expire(ctx, key, presenceTTL)
}

// ListOnlineUsers returns every user with a live presence document, excluding
// the asking user.
func (r *Registry) ListOnlineUsers(ctx context.Context, excluding string) ([]string, error) {
	keys, err := r.store.ScanKeys(ctx, store.FormatPresenceKey("*"))
	if err != nil {
		return nil, err
	}

	var online []string
	for _, key := range keys {
		var doc redis_models.PlayerPresence
		found, err := r.store.GetJSON(ctx, key, &doc)
		if err != nil || !found {
			continue
		}
		if doc.Username == excluding || doc.Status == redis_models.StatusOffline {
			continue
		}
		online = append(online, doc.Username)
	}
	return online, nil
}

// GetUserProfile reads one public profile from the durable database.
func (r *Registry) GetUserProfile(ctx context.Context, username string) (*Profile, error) {
	var profile postgres.GameProfile
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&profile).Error; err != nil {
		return nil, fmt.Errorf("error reading profile %s: %v", username, err)
	}
	return &Profile{Username: profile.Username, Icon: profile.UserIcon, IsPlaying: profile.IsInAGame}, nil
}

// GetUserProfiles reads public profiles in one batched query.
func (r *Registry) GetUserProfiles(ctx context.Context, usernames []string) (map[string]Profile, error) {
	if len(usernames) == 0 {
		return map[string]Profile{}, nil
	}
	var profiles []postgres.GameProfile
	if err := r.db.WithContext(ctx).Where("username IN ?", usernames).Find(&profiles).Error; err != nil {
		return nil, fmt.Errorf("error batch reading profiles: %v", err)
	}
	out := make(map[string]Profile, len(profiles))
	for _, p := range profiles {
		out[p.Username] = Profile{Username: p.Username, Icon: p.UserIcon, IsPlaying: p.IsInAGame}
	}
	return out, nil
}

// MarkPlaying flips the durable in-game flag used to reject invites to busy
// users.
func (r *Registry) MarkPlaying(ctx context.Context, usernames []string, playing bool) error {
	if len(usernames) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Model(&postgres.GameProfile{}).
		Where("username IN ?", usernames).
		Update("is_in_a_game", playing).Error
	if err != nil {
		log.Printf("[PRESENCE-ERROR] Failed to mark players playing=%v: %v", playing, err)
		return err
	}
	return nil
}
