package bdev

import (
	"fmt"
	"runtime"

	"golang.org/x/sys/unix"
)

// withPrivateMountNamespace runs fn on a dedicated, OS-thread-locked
// goroutine after unshare(CLONE_NEWNS)-ing it into a private mount
// namespace, then waits for fn to finish before returning.
//
// This is the idiomatic Go substitute for the original's "fork a child,
// have it unshare" pattern: unshare(2) only affects the calling thread's
// namespace, and runtime.LockOSThread pins the goroutine to a thread that
// is never reused once it has diverged, so mounts fn performs here can
// never leak into the caller's namespace or any other goroutine. It is
// load-bearing for both the fstype prober (§4.3) and the orchestrator's
// post-clone mount+copy step (§4.5) — without it, trial mounts or the
// clone's working mounts would perturb the host.
func withPrivateMountNamespace(fn func() error) error {
	errc := make(chan error, 1)

	go func() {
		runtime.LockOSThread()
		// Deliberately never unlocked: once this thread has a private
		// mount namespace, it must not be handed back to the Go
		// scheduler's general pool. The goroutine (and thread) exit
		// when fn returns.

		if err := unix.Unshare(unix.CLONE_NEWNS); err != nil {
			errc <- fmt.Errorf("unshare mount namespace: %w", err)
			return
		}

		// Prevent mount events from propagating back to the initial
		// namespace (and vice versa) before we start mounting.
		if err := unix.Mount("", "/", "", unix.MS_REC|unix.MS_PRIVATE, ""); err != nil {
			errc <- fmt.Errorf("make mounts private: %w", err)
			return
		}

		errc <- fn()
	}()

	return <-errc
}
