// Package pipe provides the stages of a queue-connected pipeline.
//
// This package is part of [stagepipe]. The family includes:
//
//   - [channel]: the unbounded queue and its end-of-stream Sentinel
//   - [pipe] (this package): Producer, Broker and Consumer stages
//   - [middleware]: recovery, timeout, retry, metrics and logging wrappers
//
// A [Producer] generates items into a queue, a [Broker] transforms items from
// one queue into another and a [Consumer] applies a side effect to each item
// of a queue. Each stage runs on its own goroutine and talks to others only
// through queues.
//
// [stagepipe]: https://github.com/fxsml/stagepipe
// [channel]: https://pkg.go.dev/github.com/fxsml/stagepipe/channel
// [pipe]: https://pkg.go.dev/github.com/fxsml/stagepipe/pipe
// [middleware]: https://pkg.go.dev/github.com/fxsml/stagepipe/pipe/middleware
//
// # Quick Start
//
//	raw := channel.New[int]()
//	doubled := channel.New[int]()
//	namer := pipe.NewNamer()
//
//	producer := pipe.NewProducer(raw, pipe.GenerateFunc[int](gen), pipe.Config{Namer: namer})
//	broker := pipe.NewBroker(raw, doubled, pipe.TransformFunc[int, int](double), pipe.Config{Namer: namer, Timeout: time.Second})
//	consumer := pipe.NewConsumer(doubled, pipe.HandleFunc[int](print), pipe.Config{Namer: namer, Timeout: time.Second})
//
//	err := pipe.Run(ctx, producer, broker, consumer)
//
// # Termination
//
// The Sentinel is the only end-of-stream signal. A Broker or Consumer that
// takes it puts it back on its input queue, so siblings reading the same queue
// stop too, and a Broker detaches from its output queue; the last detaching
// writer emits one Sentinel downstream. A receive that times out ends the
// stage with a [*StallError] instead.
//
// # Errors
//
// A failing item never stops a stage. Generation, transform and side-effect
// errors, panics included, are passed to Config.ErrorHandler and the item is
// dropped.
package pipe
