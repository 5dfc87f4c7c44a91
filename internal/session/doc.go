/*
Package session owns the one browser session shared by every render request.

The slot starts empty. Acquire fills it on first use, probes the occupant with
a title request on every later call, and replaces it when the probe fails.
Only reads and writes of the slot are serialized. Two requests holding the
same Driver may navigate it concurrently, and one can observe the other's
page. Callers that need isolation must serialize renders themselves.

Reset is advisory: it deletes cookies and parks the session on about:blank,
and its failure never evicts the session.
*/
package session
