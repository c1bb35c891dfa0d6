// Package ecs bridges birch interaction and collision events into a
// [Donburi] world.
//
// [NewDonburiStore] returns a [birch.EntityStore]. Pointer and drag events on
// nodes with a non-zero EntityID are published to [InteractionEventType];
// collision events go to [CollisionEventType], one per participating entity.
//
//	store := ecs.NewDonburiStore(world)
//	scene.SetEntityStore(store)
//
//	ecs.CollisionEventType.Subscribe(world, func(w donburi.World, e ecs.CollisionEvent) {
//		// e.EntityID hit e.OtherEntityID
//	})
//
// Events are queued by Donburi until ProcessEvents is called.
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
