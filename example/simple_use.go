package main

import (
	"fmt"
	"time"

	"github.com/leandrodaf/keytone/internal/logger"
	"github.com/leandrodaf/keytone/sdk/contracts"
	"github.com/leandrodaf/keytone/sdk/keytone"
)

func main() {
	log := logger.NewZapLogger()

	inst, err := keytone.New(
		contracts.WithLogger(log),
		contracts.WithLogLevel(contracts.InfoLevel),
		contracts.WithMasterVolume(0.7),
		contracts.WithMaxPolyphony(20),
	)
	if err != nil {
		log.Error("Failed to initialize instrument", log.Field().Error("error", err))
		return
	}
	defer inst.Close()

	if err := inst.Start(); err != nil {
		log.Error("Failed to start audio output", log.Field().Error("error", err))
		return
	}

	// Print every triggered note, the way a host shell would drive its
	// visual pulse.
	unsubscribe := inst.Subscribe(func(ev contracts.NoteEvent) {
		fmt.Printf("note %s (%.2f Hz) at %s\n", ev.Note.Name, ev.Note.FrequencyHz, ev.Timestamp.Format(time.StampMilli))
	})
	defer unsubscribe()

	// Record a short ascending phrase while it plays.
	if err := inst.StartRecording(); err != nil {
		log.Error("Failed to start recording", log.Field().Error("error", err))
		return
	}
	for i := 0; i < inst.NoteCount(); i++ {
		if _, err := inst.Trigger(i); err != nil {
			log.Warn("Trigger dropped", log.Field().Int("noteIndex", i), log.Field().Error("error", err))
		}
		time.Sleep(200 * time.Millisecond)
	}
	inst.StopRecording()

	data, err := inst.ExportSequence()
	if err != nil {
		log.Error("Failed to export sequence", log.Field().Error("error", err))
		return
	}
	fmt.Println("Recorded sequence:", string(data))

	// Replay through the same trigger path used above.
	if err := inst.Play(); err != nil {
		log.Error("Failed to start playback", log.Field().Error("error", err))
		return
	}
	for inst.RecorderState() == contracts.RecorderPlaying {
		time.Sleep(50 * time.Millisecond)
	}

	// Let the release tails ring out.
	time.Sleep(2 * time.Second)

	// Optionally hang a MIDI keyboard onto the same trigger path.
	if source, err := keytone.NewGestureSource(log); err == nil {
		if devices, err := source.ListDevices(); err == nil && len(devices) > 0 {
			fmt.Println("Available input devices:", devices)
			if err := source.SelectDevice(0); err == nil {
				stop := keytone.BindGestures(source, inst, log)
				defer stop()
				fmt.Println("Playing from MIDI input for 30 seconds...")
				time.Sleep(30 * time.Second)
			}
		}
	}
}
