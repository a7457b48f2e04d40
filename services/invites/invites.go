package invites

import (
	game_constants "Spinduel/constants/game"
	redis_models "Spinduel/models/redis"
	"Spinduel/services/rooms"
	"Spinduel/services/store"
	"Spinduel/utils"
	"context"
	"errors"
	"log"
	"sort"
	"time"

	"gorm.io/gorm"
)

// errNoChange aborts a compare-and-set cycle without writing anything.
var errNoChange = errors.New("no change")

// BusyMarker flips the durable in-game flag for a set of players. Wired to
// the presence registry in production, nil-able in tests.
type BusyMarker interface {
	MarkPlaying(ctx context.Context, usernames []string, playing bool) error
}

// Manager owns the invite lifecycle. An invite lives in two places at once:
// the room's invites map and a per-recipient index record. Expiry is enforced
// on every read via IsExpired; the sender-side timer only exists for prompt
// cleanup and a dead sender process just leaves the stale record for the next
// reader to reap.
type Manager struct {
	store  *store.Store
	rooms  *rooms.Manager
	marker BusyMarker
	db     *gorm.DB
}

func NewManager(s *store.Store, roomMgr *rooms.Manager, marker BusyMarker, db *gorm.DB) *Manager {
	return &Manager{store: s, rooms: roomMgr, marker: marker, db: db}
}

// IsExpired is the single deadline check every read path uses.
func IsExpired(expiresAt, now time.Time) bool {
	return now.After(expiresAt)
}

// PendingInvites filters a raw invite list down to the live pending set,
// newest first, and separately returns the expired ones for cleanup.
func PendingInvites(list []redis_models.Invite, now time.Time) (pending, expired []redis_models.Invite) {
	for _, inv := range list {
		if inv.Status != redis_models.InvitePending {
			continue
		}
		if IsExpired(inv.ExpiresAt, now) {
			expired = append(expired, inv)
			continue
		}
		pending = append(pending, inv)
	}
	sort.SliceStable(pending, func(i, j int) bool {
		return pending[i].IssuedAt.After(pending[j].IssuedAt)
	})
	return pending, expired
}

// SendInvite issues a pending invite from a room member to another user. A
// new invite for the same (room, recipient) pair overwrites the prior one.
func (m *Manager) SendInvite(ctx context.Context, roomId, fromUser, toUser string) error {
	playing, err := utils.IsUserPlaying(m.db, toUser)
	if err != nil {
		log.Printf("[INVITE-ERROR] Could not check if %s is playing: %v", toUser, err)
		return err
	}
	if playing {
		log.Printf("[INVITE] Rejected invite to %s: already in a running game", toUser)
		return utils.ErrInvalidState
	}

	now, err := m.store.Now(ctx)
	if err != nil {
		now = time.Now()
	}
	invite := redis_models.Invite{
		RoomId:       roomId,
		FromUsername: fromUser,
		ToUsername:   toUser,
		Status:       redis_models.InvitePending,
		IssuedAt:     now,
		ExpiresAt:    now.Add(game_constants.INVITE_TTL),
	}

	var room redis_models.Room
	err = m.store.UpdateJSON(ctx, store.FormatRoomKey(roomId), &room, func() error {
		if !room.IsMember(fromUser) {
			return utils.ErrUnauthorized
		}
		room.Invites[toUser] = invite
		room.Version++
		return nil
	})
	if err != nil {
		log.Printf("[INVITE-ERROR] %s could not invite %s to room %s: %v", fromUser, toUser, roomId, err)
		return err
	}

	if err := m.store.SetJSON(ctx, store.FormatUserInviteKey(toUser, roomId), invite); err != nil {
		log.Printf("[INVITE-ERROR] Failed to write invite index for %s: %v", toUser, err)
		return err
	}

	// Local best-effort cleanup; if this process dies first, the next reader
	// reaps the stale invite via IsExpired.
	time.AfterFunc(game_constants.INVITE_TTL+time.Second, func() {
		if err := m.ExpireIfPending(context.Background(), roomId, toUser); err != nil {
			log.Printf("[INVITE-EXPIRE-ERROR] Deferred cleanup for %s in room %s: %v", toUser, roomId, err)
		}
	})

	log.Printf("[INVITE] %s invited %s to room %s (expires %s)", fromUser, toUser, roomId, invite.ExpiresAt.Format(time.RFC3339))
	return nil
}

// ApplyAccept validates an invite acceptance against a room snapshot. A live
// pending invite joins the user and marks the invite accepted. A pending
// invite past its deadline is reaped from the room's invite map instead and
// reported through the expired return; the mutation still counts as a write
// so the reap lands.
func ApplyAccept(room *redis_models.Room, user redis_models.PlayerInfo, now time.Time) (expired bool, err error) {
	invite, ok := room.Invites[user.Username]
	if !ok {
		return false, utils.ErrNotFound
	}
	if invite.IsTerminal() {
		return false, utils.ErrAlreadyProcessed
	}
	if IsExpired(invite.ExpiresAt, now) {
		delete(room.Invites, user.Username)
		room.Version++
		return true, nil
	}
	if err := rooms.ApplyJoin(room, user, now); err != nil {
		return false, err
	}
	invite.Status = redis_models.InviteAccepted
	room.Invites[user.Username] = invite
	return false, nil
}

// AcceptInvite joins the recipient into the room, marking the invite
// accepted. An expired pending invite is deleted as a side effect and the
// expiry reported. Filling the room triggers the auto-start path.
func (m *Manager) AcceptInvite(ctx context.Context, roomId string, user redis_models.PlayerInfo) error {
	now, err := m.store.Now(ctx)
	if err != nil {
		now = time.Now()
	}

	expiredInvite := false
	var room redis_models.Room
	err = m.store.UpdateJSON(ctx, store.FormatRoomKey(roomId), &room, func() error {
		var applyErr error
		expiredInvite, applyErr = ApplyAccept(&room, user, now)
		return applyErr
	})
	if err != nil {
		log.Printf("[INVITE-ACCEPT-ERROR] %s could not accept invite to room %s: %v", user.Username, roomId, err)
		return err
	}

	if expiredInvite {
		if err := m.store.Delete(ctx, store.FormatUserInviteKey(user.Username, roomId)); err != nil {
			log.Printf("[INVITE-ACCEPT-ERROR] Failed to delete expired invite index: %v", err)
		}
		log.Printf("[INVITE-ACCEPT] Invite for %s to room %s had expired", user.Username, roomId)
		return utils.ErrInviteExpired
	}

	if invite, ok := room.Invites[user.Username]; ok {
		if err := m.store.SetJSON(ctx, store.FormatUserInviteKey(user.Username, roomId), invite); err != nil {
			log.Printf("[INVITE-ACCEPT-ERROR] Failed to update invite index: %v", err)
		}
	}

	log.Printf("[INVITE-ACCEPT] %s accepted invite to room %s (%d/%d)",
		user.Username, roomId, room.CurrentPlayers, room.MaxPlayers)

	if room.CurrentPlayers >= room.MaxPlayers {
		if err := m.rooms.StartGame(ctx, roomId, user.Username); err != nil {
			log.Printf("[INVITE-ACCEPT-ERROR] Auto-start of room %s failed: %v", roomId, err)
		} else if m.marker != nil {
			// Same busy flag the HTTP start path sets; SendInvite reads it
			// to reject invites to players who are mid-game.
			if err := m.marker.MarkPlaying(ctx, room.Game.PlayerOrder, true); err != nil {
				log.Printf("[INVITE-ACCEPT-ERROR] In-game flags not set for room %s: %v", roomId, err)
			}
		}
	}
	return nil
}

// DeclineInvite marks the invite declined in both locations.
func (m *Manager) DeclineInvite(ctx context.Context, roomId, username string) error {
	var declined redis_models.Invite
	var room redis_models.Room
	err := m.store.UpdateJSON(ctx, store.FormatRoomKey(roomId), &room, func() error {
		invite, ok := room.Invites[username]
		if !ok {
			return utils.ErrNotFound
		}
		if invite.IsTerminal() {
			return utils.ErrAlreadyProcessed
		}
		invite.Status = redis_models.InviteDeclined
		room.Invites[username] = invite
		declined = invite
		room.Version++
		return nil
	})
	if err != nil {
		log.Printf("[INVITE-DECLINE-ERROR] %s could not decline invite to room %s: %v", username, roomId, err)
		return err
	}

	if err := m.store.SetJSON(ctx, store.FormatUserInviteKey(username, roomId), declined); err != nil {
		log.Printf("[INVITE-DECLINE-ERROR] Failed to update invite index: %v", err)
	}

	log.Printf("[INVITE-DECLINE] %s declined invite to room %s", username, roomId)
	return nil
}

// ExpireIfPending reaps the invite if it is still pending past its deadline.
// Safe to call from any process at any time; a no-op otherwise.
func (m *Manager) ExpireIfPending(ctx context.Context, roomId, username string) error {
	now, err := m.store.Now(ctx)
	if err != nil {
		now = time.Now()
	}

	var room redis_models.Room
	err = m.store.UpdateJSON(ctx, store.FormatRoomKey(roomId), &room, func() error {
		invite, ok := room.Invites[username]
		if !ok || invite.Status != redis_models.InvitePending || !IsExpired(invite.ExpiresAt, now) {
			return errNoChange
		}
		delete(room.Invites, username)
		room.Version++
		return nil
	})
	if errors.Is(err, errNoChange) || errors.Is(err, utils.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	if err := m.store.Delete(ctx, store.FormatUserInviteKey(username, roomId)); err != nil {
		return err
	}
	log.Printf("[INVITE-EXPIRE] Pending invite for %s in room %s expired and was removed", username, roomId)
	return nil
}

// ListInvites returns the user's live pending invites, newest first, reaping
// any that expired since they were written.
func (m *Manager) ListInvites(ctx context.Context, username string) ([]redis_models.Invite, error) {
	keys, err := m.store.ScanKeys(ctx, store.FormatUserInvitePattern(username))
	if err != nil {
		return nil, err
	}

	now, err := m.store.Now(ctx)
	if err != nil {
		now = time.Now()
	}

	var all []redis_models.Invite
	for _, key := range keys {
		var invite redis_models.Invite
		found, err := m.store.GetJSON(ctx, key, &invite)
		if err != nil || !found {
			continue
		}
		all = append(all, invite)
	}

	pending, expired := PendingInvites(all, now)
	for _, inv := range expired {
		if err := m.ExpireIfPending(ctx, inv.RoomId, username); err != nil {
			log.Printf("[INVITE-EXPIRE-ERROR] Reap of invite to room %s failed: %v", inv.RoomId, err)
		}
	}
	return pending, nil
}

// SubscribeUserInvites pushes the user's live pending invite set, once
// immediately and again after every invite index change.
func (m *Manager) SubscribeUserInvites(ctx context.Context, username string, onChange func([]redis_models.Invite)) (func(), error) {
	push := func() {
		pending, err := m.ListInvites(ctx, username)
		if err != nil {
			log.Printf("[INVITE-SUB-ERROR] Could not load invites for %s: %v", username, err)
			return
		}
		onChange(pending)
	}

	unsubscribe, err := m.store.Subscribe(ctx, store.FormatUserInvitePattern(username), func(store.Update) {
		push()
	})
	if err != nil {
		return nil, err
	}

	push()
	return unsubscribe, nil
}
