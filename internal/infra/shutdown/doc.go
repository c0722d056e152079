// Package shutdown ties process signals to context cancellation.
//
// The first SIGINT or SIGTERM cancels the run's context so blocking
// stages unwind and leave no partial archive under its final name. A
// second signal forces exit.
//
//	ctx, stop := shutdown.WithSignals(context.Background(), func(os.Signal) { os.Exit(130) })
//	defer stop()
package shutdown
