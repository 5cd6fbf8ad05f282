// Package channel provides the queue that connects pipeline stages.
//
// A [Queue] is an unbounded, FIFO container that is safe for concurrent use by
// any number of writers and readers. Insertion never blocks; removal blocks
// until an item arrives, a timeout elapses or the context is done.
//
// End of stream is signalled in-band: a queue carries [Item] values that are
// either a payload or the [Sentinel]. Queues are never closed.
//
// # Quick Start
//
//	q := channel.New[int]()
//	q.Attach()          // one writer will terminate q
//	q.Put(1)
//	q.Put(2)
//	q.Detach()          // last writer detached: Sentinel appended
//
//	for {
//		it, err := q.Get(ctx, time.Second)
//		if err != nil || it.IsSentinel() {
//			break
//		}
//		fmt.Println(it.Value)
//	}
//
// # Writers
//
// Several stages may write to the same queue. Each calls [Queue.Attach] when it
// is created and [Queue.Detach] when it has finished writing. Only the final
// Detach appends the Sentinel, so readers see exactly one Sentinel after the
// last payload of every writer.
//
// For the stages that read and write queues, see the pipe package.
package channel
