// File: pump/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Package pump implements the per-connection output pump: a cooperative
// loop copying a connection's output byte channel to its socket, switching
// onto the loop thread for every write via looprt.Loop.PostAsync. Grounded
// on the teacher's protocol.WSConnection.sendLoop, generalized from a
// WebSocket frame sender into an explicit three-suspension-point state
// machine independent of any framing format.
package pump
