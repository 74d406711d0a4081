package core

import (
	"io"
	"log"
	"os"
	"os/signal"
)

// SignalBridge kills the foreground child when the shell is interrupted.
// The shell itself survives the interrupt.
type SignalBridge struct {
	slot   *Foreground
	logger *log.Logger
	stop   func()
	done   chan struct{}
}

// StartSignalBridge starts listening for interrupts. Call Stop to restore
// the default interrupt behavior.
func StartSignalBridge(slot *Foreground, logger *log.Logger) *SignalBridge {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt)

	b := newSignalBridge(slot, logger)
	go func() {
		defer close(b.done)
		for range ch {
			b.interrupt()
		}
	}()

	b.stop = func() {
		signal.Stop(ch)
		close(ch)
	}
	return b
}

func newSignalBridge(slot *Foreground, logger *log.Logger) *SignalBridge {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &SignalBridge{
		slot:   slot,
		logger: logger,
		done:   make(chan struct{}),
	}
}

// interrupt handles a single interrupt signal.
func (b *SignalBridge) interrupt() {
	pid, killed, err := b.slot.Kill()
	switch {
	case !killed:
		b.logger.Println("interrupt: no foreground process")
	case err != nil:
		b.logger.Printf("interrupt: killing pid %d: %v", pid, err)
	default:
		b.logger.Printf("interrupt: killed pid %d", pid)
	}
}

// Stop stops listening and waits for the listener to exit.
func (b *SignalBridge) Stop() {
	b.stop()
	<-b.done
}
