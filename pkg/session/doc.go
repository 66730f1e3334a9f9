/*
Package session orchestrates navigator snapshots across requests.

A Manager serializes work on one session (in process, and across replicas when a
DistributedLocker is configured), creates sessions with generated IDs, and fans
out indicator diffs to subscribers after each update.
*/
package session
