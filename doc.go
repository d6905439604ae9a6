// Package channels provides in-process coordination primitives for
// cooperating concurrent tasks: a blocking, fair exchange point
// ([Channel]), a lazy composable sequence ([Stream]), and a dynamic
// multi-source fan-in scheduler ([Merger]).
//
// # Channels
//
// [Channel] is a bounded or unbounded point-to-point exchange.
// [Channel.Send] blocks while the buffer is at capacity and
// [Channel.Recv] blocks while it is empty; blocked callers of the same
// kind are woken in strict FIFO order, and either call can be
// cancelled through its context without stranding other waiters.
// [Channel.Close] is a one-way, idempotent transition: every waiter
// blocked at that moment fails with [ErrClosed] exactly once, and the
// channel drains remaining buffered values before receivers see
// [ErrClosed] themselves.
//
//	ch := channels.New[int](8)
//	go func() {
//	    defer ch.Close()
//	    for i := 0; i < 4; i++ {
//	        ch.Send(ctx, i) // blocks when 8 values are buffered
//	    }
//	}()
//	values, _ := ch.Stream().Collect(ctx)
//
// # Streams
//
// [Stream] is a lazy, pull-based, single-pass sequence: the only
// blocking operation is [Stream.Next], which returns io.EOF on
// exhaustion. Operators ([Stream.Filter], [Stream.Limit],
// [Stream.Chain], [Stream.GlobalUnique], [Stream.LocalUnique],
// [Stream.Timeout], [Stream.Stagger], [Map], [Zip], [Enumerate])
// compose around pulls without buffering; terminal methods
// ([Stream.Collect], [Reduce], [Stream.Count], [Stream.All],
// [Stream.Any], [Stream.NextOr]) consume the stream. Expected
// termination signals (channel closure and [Stream.Timeout] deadlines)
// surface as ordinary exhaustion, never as errors.
//
// # Merging
//
// [Merger] interleaves an open set of streams into one stream,
// keeping one in-flight pull per source and yielding values in
// completion order. Sources may be added at any point via
// [Merger.Add], including from inside the consumer's own iteration
// step. A failing source aborts the merge with [*SourceError] by
// default, or is logged and dropped with [WithSuppressedFailures].
//
// # Collaborators
//
// [Registry] broadcasts one value to every attached [Sender],
// detaching sinks that report [ErrClosed]. [Limiter] wraps a Sender
// and enforces a minimum cooldown between sends. Both are written
// against the capability interfaces in this package ([Sender],
// [Receiver], [SendReceiver]), so any conforming type participates.
package channels
