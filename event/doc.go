/*
Package event is a multi-subscriber notifier: listeners register per event
name, a listener stays subscribed until explicitly unsubscribed, and
statusChanged fires exactly once per status transition.

Fan-out to subscribers uses golang.org/x/sync/errgroup to run a batch of
independent listener calls concurrently and wait for all of them, so one
slow subscriber cannot stall another.
*/
package event
