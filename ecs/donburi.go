package ecs

import (
	"github.com/phanxgames/birch"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// InteractionEventType is the Donburi event type for pointer, click and drag
// events.
var InteractionEventType = events.NewEventType[birch.InteractionEvent]()

// CollisionEvent reports that EntityID's collider touched OtherEntityID's.
// Relation is seen from EntityID's side.
type CollisionEvent struct {
	EntityID      uint32
	OtherEntityID uint32
	Relation      birch.Relation
	X, Y          float64
}

// CollisionEventType is the Donburi event type for collision events.
var CollisionEventType = events.NewEventType[CollisionEvent]()

type donburiStore struct {
	world donburi.World
}

// NewDonburiStore creates an EntityStore backed by a Donburi world.
func NewDonburiStore(world donburi.World) birch.EntityStore {
	return &donburiStore{world: world}
}

func (s *donburiStore) EmitEvent(event birch.InteractionEvent) {
	if event.Type == birch.EventCollision {
		CollisionEventType.Publish(s.world, CollisionEvent{
			EntityID:      event.EntityID,
			OtherEntityID: event.OtherEntityID,
			Relation:      event.Relation,
			X:             event.GlobalX,
			Y:             event.GlobalY,
		})
		return
	}
	InteractionEventType.Publish(s.world, event)
}
