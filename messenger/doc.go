// Package messenger provides the session-oriented client for the embedded
// controller bootloader protocol.
//
// # Overview
//
// A Messenger owns one datagram transport (UDP by default) and exposes the
// protocol's operations as synchronous calls: query version, start a
// firmware update, write chunks, stop the update with a whole-image CRC,
// reset the device, and read raw memory. Each call is exactly one request
// and one blocking response bounded by a fixed timeout (10 s by default).
//
//	m, err := messenger.New("192.168.7.10:7450")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer m.Close()
//
//	info, err := m.GetVersion()
//
// # Firmware Updates
//
// An update is a client-tracked session: StartUpdate declares the image
// size, Write sends 1–1024 byte chunks in image order, StopUpdate supplies
// the CRC32 over the whole image and succeeds only if the device computed
// the same value over what it received. The updater package drives this
// sequence for a complete image.
//
// # Failure Semantics
//
// Failures surface immediately and are never retried internally:
//   - transport timeouts propagate uninterpreted (test with IsTimeout)
//   - a device rejection arrives as a *protocol.DeviceError with one of the
//     three device error codes
//   - a response that is neither the expected type nor an error is an
//     *UnexpectedOpcodeError
//   - argument violations (chunk size, read length) fail before any network
//     activity
//
// Retry policy is deliberately external: the transport has no sequence
// numbers, so a timed-out non-idempotent operation such as a chunk write
// may already have been applied by the device.
//
// # Concurrency
//
// A Messenger is single-threaded by contract. It holds no locks; concurrent
// callers must construct one Messenger per goroutine. The only mid-flight
// cancellation primitive is Close, which aborts a blocked receive.
package messenger
