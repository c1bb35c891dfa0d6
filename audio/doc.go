// Package audio provides a sound player for birch built on [beep].
//
// A [Player] keeps decoded sounds in memory by id and mixes any number of
// them through the system speaker. It implements [birch.Audio], so it can be
// handed to a Director:
//
//	p := audio.NewPlayer(44100)
//	if err := p.Init(); err != nil {
//		log.Printf("audio disabled: %v", err)
//	}
//	_ = p.LoadWAV("jump", f)
//	director.SetAudio(p)
//
// Without Init the player still tracks sounds and voices; nothing reaches
// the speaker.
//
// [beep]: https://github.com/gopxl/beep
package audio
