package promotion

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/JimmyVaras/ros-web-app/internal/detection"
	"github.com/JimmyVaras/ros-web-app/internal/geometry"
	"github.com/JimmyVaras/ros-web-app/internal/observability/metrics"
)

const roomsCacheKey = "rooms"

// roomCache holds the room list for a limited time. Rooms change rarely
// compared to the rate at which markers arrive.
type roomCache struct {
	c *cache.Cache // nil when caching is disabled
}

func newRoomCache(ttl time.Duration) *roomCache {
	if ttl <= 0 {
		return &roomCache{}
	}
	// No janitor: expired entries are ignored by Get and overwritten on reload.
	return &roomCache{c: cache.New(ttl, 0)}
}

func (rc *roomCache) get() ([]detection.Room, bool) {
	if rc.c == nil {
		return nil, false
	}
	v, ok := rc.c.Get(roomsCacheKey)
	if !ok {
		return nil, false
	}
	rooms, ok := v.([]detection.Room)
	return rooms, ok
}

func (rc *roomCache) set(rooms []detection.Room) {
	if rc.c == nil {
		return
	}
	rc.c.SetDefault(roomsCacheKey, rooms)
}

func (rc *roomCache) invalidate() {
	if rc.c == nil {
		return
	}
	rc.c.Delete(roomsCacheKey)
}

// roomsFrom returns the room list, preferring the cache. repo must be the
// repository of the current transaction when called from inside one.
func (e *Engine) roomsFrom(ctx context.Context, repo detection.Repository) ([]detection.Room, error) {
	if rooms, ok := e.rooms.get(); ok {
		e.recordRoomCache(true)
		return rooms, nil
	}
	e.recordRoomCache(false)

	rooms, err := repo.ListRooms(ctx)
	if err != nil {
		return nil, storeError(err, "list-rooms")
	}
	e.rooms.set(rooms)
	return rooms, nil
}

func (e *Engine) recordRoomCache(hit bool) {
	if e.metrics != nil && e.rooms.c != nil {
		e.metrics.RecordRoomCache(hit)
	}
}

// FindRoom returns the id of the first room, in id order, whose rectangle
// contains p on the x/y plane, or detection.NoRoom.
func (e *Engine) FindRoom(ctx context.Context, p geometry.Point3) (roomID uint, err error) {
	start := time.Now()
	defer func() { e.observe(metrics.OpFindRoom, start, err) }()

	if err := p.Validate(); err != nil {
		return detection.NoRoom, err
	}

	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	rooms, err := e.roomsFrom(ctx, e.store)
	if err != nil {
		return detection.NoRoom, err
	}
	return geometry.FindRoom(p, rooms), nil
}

// ListRooms returns all rooms ordered by id.
func (e *Engine) ListRooms(ctx context.Context) ([]detection.Room, error) {
	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	rooms, err := e.store.ListRooms(ctx)
	if err != nil {
		return nil, storeError(err, "list-rooms")
	}
	return rooms, nil
}

// AddRoom validates and stores a room, then drops the cached room list so
// the next lookup sees it.
func (e *Engine) AddRoom(ctx context.Context, room *detection.Room) error {
	if err := room.Validate(); err != nil {
		return err
	}

	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	if err := e.store.InsertRoom(ctx, room); err != nil {
		return storeError(err, "insert-room", "room", room.Name)
	}
	e.InvalidateRooms()
	e.logger.Info("room added", "room_id", room.ID, "name", room.Name)
	return nil
}

// InvalidateRooms drops the cached room list.
func (e *Engine) InvalidateRooms() {
	e.rooms.invalidate()
}
